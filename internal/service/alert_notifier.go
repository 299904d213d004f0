package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"balance-topup-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// alertRetryIntervals defines the delivery retry schedule.
var alertRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	5 * time.Minute,
}

// AlertPayload is the JSON structure posted to the ops alert webhook.
type AlertPayload struct {
	Event     string         `json:"event"`
	Error     string         `json:"error"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp int64          `json:"timestamp"`
	Signature string         `json:"signature"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// webhookAlertNotifier implements ports.ErrorNotifier by posting signed
// alert payloads to a configured webhook endpoint.
type webhookAlertNotifier struct {
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	webhookURL string
	secretKey  string
	log        zerolog.Logger
}

// NewWebhookAlertNotifier creates an alert notifier. An empty webhookURL
// disables delivery; alerts are still logged.
func NewWebhookAlertNotifier(
	sigSvc ports.SignatureService,
	httpClient HTTPClient,
	webhookURL string,
	secretKey string,
	log zerolog.Logger,
) ports.ErrorNotifier {
	return &webhookAlertNotifier{
		sigSvc:     sigSvc,
		httpClient: httpClient,
		webhookURL: webhookURL,
		secretKey:  secretKey,
		log:        log,
	}
}

// Notify reports a failure to the alert sink. Delivery is asynchronous;
// a dead alert endpoint must never slow down charge processing.
func (n *webhookAlertNotifier) Notify(ctx context.Context, err error, metadata map[string]any) {
	evt := n.log.Error().Err(err)
	for k, v := range metadata {
		evt = evt.Interface(k, v)
	}
	evt.Msg("charge processing alert")

	if n.webhookURL == "" {
		return
	}

	payload := AlertPayload{
		Event:     "topup_charge_failed",
		Error:     err.Error(),
		Metadata:  metadata,
		Timestamp: time.Now().Unix(),
	}
	body, merr := json.Marshal(payload)
	if merr != nil {
		n.log.Error().Err(merr).Msg("alert: failed to marshal payload")
		return
	}
	payload.Signature = n.sigSvc.Sign(n.secretKey, string(body))

	go n.deliverWithRetries(payload)
}

// deliverWithRetries posts the alert, backing off between attempts.
func (n *webhookAlertNotifier) deliverWithRetries(payload AlertPayload) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Msg("alert: failed to marshal payload")
		return
	}

	for attempt := 0; attempt <= len(alertRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(alertRetryIntervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, n.webhookURL, bytes.NewReader(payloadBytes))
		if err != nil {
			n.log.Error().Err(err).Int("attempt", attempt+1).Msg("alert: failed to create request")
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.httpClient.Do(req)
		if err != nil {
			n.log.Warn().Err(err).Int("attempt", attempt+1).Msg("alert: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			n.log.Debug().Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("alert: delivered")
			return
		}

		n.log.Warn().Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("alert: non-2xx response, retrying")
	}

	n.log.Error().Msg("alert: all retry attempts exhausted")
}
