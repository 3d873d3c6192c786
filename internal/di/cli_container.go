package di

import (
	"flag"
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/contact-relay/internal/config"
	"github.com/mikey/contact-relay/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Submission flags
	Name        string
	Email       string
	Message     string
	MessageFile string

	// Delivery flags
	MailProvider string
	Store        string
	Screen       bool

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("contact-send", flag.ContinueOnError)
	fs.SetOutput(output)

	// Submission flags
	fs.StringVar(&flags.Name, "name", "", "Submitter name")
	fs.StringVar(&flags.Email, "email", "", "Submitter email address (used as Reply-To)")
	fs.StringVar(&flags.Message, "message", "", "Message text")
	fs.StringVar(&flags.MessageFile, "message-file", "", "Read the message text from a file (- for stdin)")

	// Delivery flags
	fs.StringVar(&flags.MailProvider, "mail-provider", "", "Override mail.provider (smtp, log)")
	fs.StringVar(&flags.Store, "store", "none", "Override store.type (none, memory, sqlite, mysql, postgres, mongo)")
	fs.BoolVar(&flags.Screen, "screen", false, "Enable spam screening for this submission")

	// Output flags
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		var (
			cfg *config.Config
			err error
		)
		if flags.ConfigFile != "" {
			cfg, err = config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", flags.ConfigFile))
		} else {
			cfg, err = config.New()
			if err != nil {
				return nil, err
			}
		}

		applyFlagOverrides(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlagOverrides layers command line flags over the loaded configuration
func applyFlagOverrides(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()

	if flags.MailProvider != "" {
		v.Set("mail.provider", flags.MailProvider)
	}
	if flags.Store != "" {
		v.Set("store.type", flags.Store)
	}
	if flags.Screen {
		v.Set("screening.enabled", true)
	}
}
