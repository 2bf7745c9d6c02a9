// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sidverse/gandaberunda/config"
	"github.com/sidverse/gandaberunda/utils"
)

// NotificationService delivers workflow events to the external dispatcher.
// Delivery is best effort; flows never roll back on notification failure.
type NotificationService interface {
	Notify(ctx context.Context, event NotificationEvent) error
}

// NotificationEvent is one workflow event pushed to the dispatcher
type NotificationEvent struct {
	Kind           string `json:"kind"`
	CampaignUUID   string `json:"campaign_uuid,omitempty"`
	EngagementUUID string `json:"engagement_uuid,omitempty"`
	BrandID        *uint  `json:"brand_id,omitempty"`
	CreatorID      *uint  `json:"creator_id,omitempty"`
	Message        string `json:"message"`
}

// Notification event kinds
const (
	NotifyShortlistUploaded = "shortlist_uploaded"
	NotifyCreatorAccepted   = "creator_accepted"
	NotifyBidResponded      = "bid_responded"
	NotifyDealFinalized     = "deal_finalized"
	NotifyBriefPublished    = "brief_published"
	NotifyScriptReviewed    = "script_reviewed"
	NotifyContentReviewed   = "content_reviewed"
	NotifyContentLive       = "content_live"
)

// NotificationServiceImpl posts events to the configured dispatcher webhook
type NotificationServiceImpl struct {
	config *config.NotificationConfig
	client *http.Client
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(cfg *config.NotificationConfig) NotificationService {
	return &NotificationServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Notify pushes one event to the dispatcher webhook
func (s *NotificationServiceImpl) Notify(ctx context.Context, event NotificationEvent) error {
	if s.config.WebhookURL == "" {
		return nil
	}

	requestBody, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.WebhookURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("x-api-key", s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification dispatcher returned status %d", resp.StatusCode)
	}

	return nil
}

// MockNotificationService implements NotificationService for testing
type MockNotificationService struct {
	SentEvents []MockNotification
}

// MockNotification records one dispatched event
type MockNotification struct {
	Event  NotificationEvent
	SentAt string
}

// NewMockNotificationService creates a new mock notification service
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{
		SentEvents: make([]MockNotification, 0),
	}
}

// Notify records a mock event
func (m *MockNotificationService) Notify(ctx context.Context, event NotificationEvent) error {
	m.SentEvents = append(m.SentEvents, MockNotification{
		Event:  event,
		SentAt: utils.UTCNow().Format("2006-01-02T15:04:05Z07:00"),
	})
	return nil
}

// ClearSentEvents clears the recorded events
func (m *MockNotificationService) ClearSentEvents() {
	m.SentEvents = make([]MockNotification, 0)
}
