package config

import (
	"fmt"
	"strings"
	"time"
)

// Settings is an immutable snapshot of the configuration taken at startup
type Settings struct {
	Server    ServerConfig
	CORS      CORSConfig
	Mail      MailConfig
	Store     StoreConfig
	Screening ScreeningConfig
	Metrics   MetricsConfig
}

// ServerConfig represents the HTTP listener configuration
type ServerConfig struct {
	Port            int
	TrustProxy      bool
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address for the configured port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// CORSConfig represents the cross-origin policy
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// MailConfig represents the outbound mail relay
type MailConfig struct {
	Provider string
	Host     string
	Port     int
	TLS      string
	User     string
	Pass     string
	From     string
	To       []string
	Timeout  time.Duration
}

// StoreConfig represents the message store
type StoreConfig struct {
	Type          string
	DSN           string
	SQLitePath    string
	MongoDatabase string
	Collection    string
}

// ScreeningConfig represents optional spam screening of submissions
type ScreeningConfig struct {
	Enabled            bool
	Provider           string
	Threshold          float64
	SubjectPrefix      string
	WhitelistedDomains []string
}

// MetricsConfig represents the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// Settings builds the immutable snapshot used by the rest of the application
func (c *Config) Settings() (*Settings, error) {
	server, err := c.GetServer()
	if err != nil {
		return nil, err
	}
	mail, err := c.GetMail()
	if err != nil {
		return nil, err
	}

	return &Settings{
		Server:    server,
		CORS:      c.GetCORS(),
		Mail:      mail,
		Store:     c.GetStore(),
		Screening: c.GetScreening(),
		Metrics:   MetricsConfig{Enabled: c.GetBool("metrics.enabled")},
	}, nil
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdownTimeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Port:            c.GetInt("server.port"),
		TrustProxy:      c.GetBool("server.trust_proxy"),
		MaxBodyBytes:    c.GetInt64("server.max_body_bytes"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// GetCORS returns the CORS configuration
func (c *Config) GetCORS() CORSConfig {
	return CORSConfig{
		AllowedOrigins: c.GetList("cors.allowed_origins"),
		MaxAge:         c.GetInt("cors.max_age"),
	}
}

// GetMail returns the mail configuration. From and To fall back to the
// account user, so by default mail goes from the owner's mailbox to itself.
func (c *Config) GetMail() (MailConfig, error) {
	timeout, err := c.GetDuration("mail.timeout")
	if err != nil {
		return MailConfig{}, err
	}

	user := c.GetString("mail.user")
	from := c.GetString("mail.from")
	if from == "" {
		from = user
	}
	to := c.GetList("mail.to")
	if len(to) == 0 && from != "" {
		to = []string{from}
	}

	return MailConfig{
		Provider: strings.ToLower(c.GetString("mail.provider")),
		Host:     c.GetString("mail.host"),
		Port:     c.GetInt("mail.port"),
		TLS:      strings.ToLower(c.GetString("mail.tls")),
		User:     user,
		Pass:     c.GetString("mail.pass"),
		From:     from,
		To:       to,
		Timeout:  timeout,
	}, nil
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:          strings.ToLower(c.GetString("store.type")),
		DSN:           c.GetString("store.dsn"),
		SQLitePath:    c.GetString("store.sqlite_path"),
		MongoDatabase: c.GetString("store.mongo_database"),
		Collection:    c.GetString("store.collection"),
	}
}

// GetScreening returns the screening configuration
func (c *Config) GetScreening() ScreeningConfig {
	return ScreeningConfig{
		Enabled:            c.GetBool("screening.enabled"),
		Provider:           strings.ToLower(c.GetString("screening.provider")),
		Threshold:          c.GetFloat64("screening.threshold"),
		SubjectPrefix:      c.GetString("screening.subject_prefix"),
		WhitelistedDomains: c.GetList("screening.whitelisted_domains"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}
