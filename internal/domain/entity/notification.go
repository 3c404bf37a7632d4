package entity

import (
	"errors"
	"time"
)

// NotificationChannel identifies how a reminder reaches the pass holder
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// PassReminder is a rendered expiry reminder for one pass
type PassReminder struct {
	PassID        string
	Email         string
	Phone         string
	Name          string
	ExpiryDate    time.Time
	RemainingDays int
	Subject       string
	Text          string
}

// WhatsAppReminderRequest is the body posted to the WhatsApp service for one reminder
type WhatsAppReminderRequest struct {
	CompanyID   string  `json:"companyId"`
	AgentID     string  `json:"agentId"`
	PhoneNumber string  `json:"phoneNumber"`
	Message     Message `json:"message"`
	Type        string  `json:"type"`
}

// Message is the text body of a WhatsApp message
type Message struct {
	Text string `json:"text,omitempty"`
}

// Validate rejects empty messages
func (m Message) Validate() error {
	if m.Text == "" {
		return errors.New("message text is required")
	}
	return nil
}
