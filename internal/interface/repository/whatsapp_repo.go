package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

// WhatsappNotifier sends pass reminders through the WhatsApp messaging service
type WhatsappNotifier struct {
	logger      logger.Logger
	client      *http.Client
	endpoint    string
	bearerToken string
	companyID   string
	agentID     string
}

// WhatsappOptions configures the WhatsApp service client
type WhatsappOptions struct {
	// Endpoint is the full URL reminders are posted to
	Endpoint    string
	BearerToken string
	CompanyID   string
	AgentID     string
	Timeout     time.Duration
}

// NewWhatsappNotifier creates a new WhatsApp notifier. Endpoint must be an absolute http(s) URL.
func NewWhatsappNotifier(opts WhatsappOptions, logger logger.Logger) (repository.Notifier, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("WhatsApp service endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid WhatsApp service endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid WhatsApp service endpoint %q: want an absolute http(s) URL", endpoint)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &WhatsappNotifier{
		logger:      logger,
		client:      &http.Client{Timeout: timeout},
		endpoint:    u.String(),
		bearerToken: opts.BearerToken,
		companyID:   opts.CompanyID,
		agentID:     opts.AgentID,
	}, nil
}

// Channel returns the WhatsApp channel
func (r *WhatsappNotifier) Channel() entity.NotificationChannel {
	return entity.ChannelWhatsApp
}

// CanNotify requires a phone number
func (r *WhatsappNotifier) CanNotify(reminder *entity.PassReminder) bool {
	return strings.TrimSpace(reminder.Phone) != ""
}

// Send posts the reminder text to the WhatsApp service
func (r *WhatsappNotifier) Send(ctx context.Context, reminder *entity.PassReminder) error {
	msg := entity.WhatsAppReminderRequest{
		CompanyID:   r.companyID,
		AgentID:     r.agentID,
		PhoneNumber: reminder.Phone,
		Message: entity.Message{
			Text: reminder.Text,
		},
		Type: "text",
	}

	if err := msg.Message.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("WhatsApp service returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			TaskID string `json:"taskId"`
			Status string `json:"status"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("failed to send reminder: %s (code: %s)", response.Error.Message, response.Error.Code)
	}

	r.logger.Info("Pass reminder queued on WhatsApp",
		"taskId", response.Data.TaskID,
		"passId", reminder.PassID,
		"phone", reminder.Phone)

	return nil
}
