package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Ekram2004/task-manager-saas-collaborative/logging"
)

// NotificationEvent is the payload posted to the notifications webhook when
// membership or assignment changes happen.
type NotificationEvent struct {
	Type           string    `json:"type"`
	OrganizationID string    `json:"organizationId"`
	UserID         string    `json:"userId"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

const (
	EventMemberAdded   = "member_added"
	EventMemberRemoved = "member_removed"
	EventTaskAssigned  = "task_assigned"
)

// NotificationService delivers events to an external webhook behind a circuit
// breaker. Delivery is best-effort: failures are logged and never surfaced to
// the request that triggered them. With no webhook URL configured the service
// is a no-op.
type NotificationService struct {
	WebhookURL string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker
}

func NewNotificationService(webhookURL string, httpClient *http.Client) *NotificationService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "NotificationsCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &NotificationService{
		WebhookURL: webhookURL,
		HTTPClient: httpClient,
		Breaker:    breaker,
	}
}

func (n *NotificationService) Publish(event NotificationEvent) error {
	if n.WebhookURL == "" {
		return nil
	}

	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %v", err)
	}

	_, err = n.Breaker.Execute(func() (interface{}, error) {
		resp, err := n.HTTPClient.Post(n.WebhookURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_DELIVERY_FAILED, Description: Failed to deliver '%s' event: %v", event.Type, err)
		return err
	}

	return nil
}
