package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(
		flags *di.CLIFlags,
		dispatcher *core.Dispatcher,
		store core.MessageStore,
		logger *zap.Logger,
	) error {
		defer logger.Sync()
		if closer, ok := store.(io.Closer); ok {
			defer closer.Close()
		}
		return send(flags, dispatcher, logger)
	}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// send validates and dispatches the submission described by the flags
func send(flags *di.CLIFlags, dispatcher *core.Dispatcher, logger *zap.Logger) error {
	message, err := readMessage(flags)
	if err != nil {
		return err
	}

	sub, err := core.Validate(core.Submission{
		Name:    flags.Name,
		Email:   flags.Email,
		Message: message,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Submission ===\n")
	fmt.Printf("Name: %s\n", sub.Name)
	fmt.Printf("Email: %s\n", sub.Email)
	fmt.Printf("Message length: %d bytes\n", len(sub.Message))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	startTime := time.Now()
	receipt, err := dispatcher.Dispatch(ctx, sub)
	if err != nil {
		logger.Debug("Dispatch failed", zap.Error(errors.Unwrap(err)))
		return err
	}

	fmt.Printf("\n=== Delivery ===\n")
	fmt.Printf("Sent at: %s\n", receipt.SentAt.Format(time.RFC3339))
	if receipt.Stored != nil {
		fmt.Printf("Stored as: %s\n", receipt.Stored.ID)
	}
	if receipt.Screening != nil {
		fmt.Printf("Is spam: %t\n", receipt.Screening.IsSpam)
		fmt.Printf("Spam score: %.4f\n", receipt.Screening.Score)
		fmt.Printf("Explanation: %s\n", receipt.Screening.Explanation)
		fmt.Printf("Model used: %s\n", receipt.Screening.ModelUsed)
	}
	fmt.Printf("Processing time: %v\n", time.Since(startTime))

	return nil
}

// readMessage takes the message from -message, or from -message-file when set
func readMessage(flags *di.CLIFlags) (string, error) {
	if flags.MessageFile == "" {
		return flags.Message, nil
	}

	var r io.Reader = os.Stdin
	if flags.MessageFile != "-" {
		file, err := os.Open(flags.MessageFile)
		if err != nil {
			return "", fmt.Errorf("failed to open message file: %w", err)
		}
		defer file.Close()
		r = file
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	return string(b), nil
}
