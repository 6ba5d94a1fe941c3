// Package config provides environment-backed configuration for the screener.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Settings holds everything the serve command needs. All values come from
// the environment; main loads a .env file first if one exists.
type Settings struct {
	Port             int
	DatabaseURL      string
	APIKey           string // static key for the management API
	GeminiAPIKey     string
	LLMModel         string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	BaseURL          string // public address Twilio resolves webhook paths against
}

// Load reads settings from the environment and validates required values.
func Load() (*Settings, error) {
	s := &Settings{
		Port:             8080,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		APIKey:           os.Getenv("API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		BaseURL:          os.Getenv("BASE_URL"),
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		s.Port = p
	}
	if s.LLMModel == "" {
		s.LLMModel = "gemini-2.5-flash"
	}

	required := map[string]string{
		"DATABASE_URL":       s.DatabaseURL,
		"API_KEY":            s.APIKey,
		"GEMINI_API_KEY":     s.GeminiAPIKey,
		"TWILIO_ACCOUNT_SID": s.TwilioAccountSID,
		"TWILIO_AUTH_TOKEN":  s.TwilioAuthToken,
		"TWILIO_FROM_NUMBER": s.TwilioFromNumber,
		"BASE_URL":           s.BaseURL,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("%s environment variable is required", name)
		}
	}

	return s, nil
}
