package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultAPIBase = "https://api.twilio.com/2010-04-01"

// callTimeoutSeconds is how long Twilio lets the phone ring before giving up.
const callTimeoutSeconds = 30

// Config holds the Twilio account credentials and webhook addressing.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// BaseURL is the public address of this service; Twilio resolves the
	// webhook paths against it.
	BaseURL string
	// APIBase overrides the Twilio API endpoint. Tests point it at a local server.
	APIBase string
}

// Twilio places outbound calls through the Twilio REST API.
type Twilio struct {
	client  *http.Client
	config  Config
	apiBase string
	logger  *zap.Logger
}

// NewTwilio creates a Twilio client.
func NewTwilio(config Config, logger *zap.Logger) *Twilio {
	apiBase := config.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Twilio{
		client:  &http.Client{Timeout: 30 * time.Second},
		config:  config,
		apiBase: apiBase,
		logger:  logger,
	}
}

type callResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// TriggerCall places an outbound call to toNumber whose initial webhook is
// the interview start endpoint for candidateID. Returns the call SID.
func (t *Twilio) TriggerCall(ctx context.Context, toNumber string, candidateID uuid.UUID) (string, error) {
	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", t.config.FromNumber)
	form.Set("Url", fmt.Sprintf("%s/twilio/interview/start/%s", strings.TrimSuffix(t.config.BaseURL, "/"), candidateID))
	form.Set("Method", "POST")
	form.Set("Timeout", fmt.Sprintf("%d", callTimeoutSeconds))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls.json", t.apiBase, t.config.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.config.AccountSID, t.config.AuthToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach Twilio: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var call callResponse
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return "", fmt.Errorf("failed to decode Twilio response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Error("Twilio call initiation failed",
			zap.Int("status", resp.StatusCode),
			zap.Int("code", call.Code),
			zap.String("message", call.Message),
		)
		return "", fmt.Errorf("twilio rejected call: %s (code %d)", call.Message, call.Code)
	}
	if call.SID == "" {
		return "", fmt.Errorf("twilio response missing call SID")
	}

	t.logger.Info("outbound call initiated",
		zap.String("call_sid", call.SID),
		zap.String("candidate_id", candidateID.String()),
	)
	return call.SID, nil
}
