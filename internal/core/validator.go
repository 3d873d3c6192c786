package core

// Validate checks that every field of the submission is present. Values are
// accepted verbatim: no trimming, length limits or address syntax checks.
func Validate(sub Submission) (Submission, error) {
	if sub.Name == "" || sub.Email == "" || sub.Message == "" {
		return Submission{}, ErrMissingFields
	}
	return sub, nil
}
