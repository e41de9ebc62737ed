package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"mybestodds-engine/database"
	"mybestodds-engine/helpers"
)

// WebhookManager delivers run-completion notifications to the
// configured endpoint and records every delivery attempt.
type WebhookManager struct {
	repo    *database.ForecastRepository
	url     string
	enabled bool
	client  *http.Client
}

// RunPayload represents the JSON payload sent to webhooks after a
// pipeline run completes.
type RunPayload struct {
	RunID      string    `json:"RunID"`
	KitName    string    `json:"KitName"`
	FinishedAt time.Time `json:"FinishedAt"`
	RowCount   int       `json:"RowCount"`
	CoreCount  int       `json:"CoreCount"`
	BestNumber string    `json:"BestNumber,omitempty"`
	BestOdds   string    `json:"BestOdds,omitempty"`
	Message    string    `json:"Message"`
}

// NewWebhookManager creates a new webhook manager
func NewWebhookManager(repo *database.ForecastRepository, url string, enabled bool) *WebhookManager {
	return &WebhookManager{
		repo:    repo,
		url:     url,
		enabled: enabled && url != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyRunComplete sends the run summary to the configured endpoint.
// Delivery is asynchronous; a failed webhook never fails the run.
func (wm *WebhookManager) NotifyRunComplete(run *database.PipelineRun, top *database.ForecastRecord) {
	if !wm.enabled {
		return
	}

	payload := wm.CreatePayload(run, top)
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal webhook payload: %v", err)
		return
	}

	go wm.deliverWebhook(run.RunID, payloadBytes)
}

// CreatePayload generates the webhook payload from a run record and
// its top core pick (may be nil for jackpot-only kits).
func (wm *WebhookManager) CreatePayload(run *database.PipelineRun, top *database.ForecastRecord) RunPayload {
	p := RunPayload{
		RunID:      run.RunID,
		KitName:    run.KitName,
		FinishedAt: run.CreatedAt,
		RowCount:   run.RowCount,
		CoreCount:  run.CoreCount,
	}

	if top != nil {
		p.BestNumber = top.Number
		p.BestOdds = top.MboOddsText
		p.Message = fmt.Sprintf("🎯 Forecast run complete: %s | %d candidates, %d core picks | Top: %s %s (%s, %s)",
			run.KitName, run.RowCount, run.CoreCount,
			top.Game, top.Number, top.ConfidenceBand, helpers.FormatOdds(top.MboOdds))
	} else {
		p.Message = fmt.Sprintf("🎯 Forecast run complete: %s | %d candidates, %d core picks",
			run.KitName, run.RowCount, run.CoreCount)
	}

	return p
}

const (
	maxDeliveryAttempts = 3
	retryDelay          = 5 * time.Second
)

func (wm *WebhookManager) deliverWebhook(runID string, payload []byte) {
	var resp *http.Response
	var err error

	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		req, reqErr := http.NewRequest(http.MethodPost, wm.url, bytes.NewBuffer(payload))
		if reqErr != nil {
			log.Printf("⚠️  Bad webhook request: %v", reqErr)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "MyBestOdds-Engine/1.0")

		log.Printf("🔹 Sending webhook to %s (Attempt %d/%d)", wm.url, attempt, maxDeliveryAttempts)

		resp, err = wm.client.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			wm.logDelivery(runID, resp.StatusCode, true, "")
			resp.Body.Close()
			return
		}
		if err == nil && resp.Body != nil {
			resp.Body.Close()
		}

		if attempt < maxDeliveryAttempts {
			time.Sleep(retryDelay)
		}
	}

	errMsg := ""
	statusCode := 0
	if err != nil {
		errMsg = err.Error()
	} else if resp != nil {
		statusCode = resp.StatusCode
	}

	wm.logDelivery(runID, statusCode, false, errMsg)
}

func (wm *WebhookManager) logDelivery(runID string, code int, success bool, errMsg string) {
	entry := &database.WebhookLog{
		RunID:        runID,
		URL:          wm.url,
		StatusCode:   code,
		Success:      success,
		ErrorMessage: errMsg,
		CreatedAt:    time.Now(),
	}

	if dbErr := wm.repo.SaveWebhookLog(entry); dbErr != nil {
		log.Printf("⚠️  Failed to save webhook log: %v", dbErr)
	}
}
