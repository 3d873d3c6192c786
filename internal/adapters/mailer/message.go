package mailer

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/contact-relay/internal/core"
)

// headerValue strips line breaks so submitter input cannot add headers
func headerValue(s string) string {
	return strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
}

// formatAddress renders an address header value. Unparseable input is passed
// through with line breaks removed rather than dropped.
func formatAddress(s string) string {
	clean := headerValue(s)
	if addr, err := mail.ParseAddress(clean); err == nil {
		return addr.String()
	}
	return clean
}

// domainOf returns the part after the last @, or "localhost"
func domainOf(address string) string {
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		return address[at+1:]
	}
	return "localhost"
}

// composeMessage renders an OutboundEmail as an RFC 5322 message with a
// quoted-printable UTF-8 text body
func composeMessage(email *core.OutboundEmail, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	to := make([]string, 0, len(email.To))
	for _, rcpt := range email.To {
		to = append(to, formatAddress(rcpt))
	}

	fmt.Fprintf(&buf, "From: %s\r\n", formatAddress(email.From))
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	if email.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", formatAddress(email.ReplyTo))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domainOf(email.From))

	keys := make([]string, 0, len(email.Headers))
	for k := range email.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s: %s\r\n", headerValue(k), mime.QEncoding.Encode("utf-8", headerValue(email.Headers[k])))
	}

	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(email.Body)); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	buf.WriteString("\r\n")

	return buf.Bytes(), nil
}
