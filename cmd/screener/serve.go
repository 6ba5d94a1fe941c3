package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/config"
	"github.com/jonathan/interview-screener/internal/db"
	"github.com/jonathan/interview-screener/internal/llm"
	"github.com/jonathan/interview-screener/internal/resume"
	"github.com/jonathan/interview-screener/internal/server"
	"github.com/jonathan/interview-screener/internal/telephony"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API and webhook server",
	Long:  `Start an HTTP server that exposes the management API and the Twilio webhook endpoints that drive live interview calls.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		settings.Port = servePort
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is not actionable

	ctx := context.Background()
	database, err := db.Connect(ctx, settings.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	client, err := llm.NewGeminiClient(ctx, settings.GeminiAPIKey, settings.LLMModel)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	srv := server.New(
		server.Config{Port: settings.Port, APIKey: settings.APIKey},
		server.Deps{
			Store:     database,
			Generator: llm.NewService(client, logger),
			Extractor: resume.NewExtractor(),
			Calls: telephony.NewTwilio(telephony.Config{
				AccountSID: settings.TwilioAccountSID,
				AuthToken:  settings.TwilioAuthToken,
				FromNumber: settings.TwilioFromNumber,
				BaseURL:    settings.BaseURL,
			}, logger),
		},
		logger,
	)

	return srv.Start()
}
