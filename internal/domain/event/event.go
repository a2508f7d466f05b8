package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is the notification tuple the engine emits on every transition:
// who must be told, about which expense, and why. Delivery is a collaborator
// concern; the engine only publishes.
type Event struct {
	ID           string                 `json:"id"`
	Type         Type                   `json:"type"`
	ExpenseID    string                 `json:"expense_id"`
	TargetUserID string                 `json:"target_user_id"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// NewEvent creates a domain event with a generated ID and current timestamp
func NewEvent(eventType Type, expenseID, targetUserID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		ExpenseID:    expenseID,
		TargetUserID: targetUserID,
		Payload:      payload,
		Timestamp:    time.Now(),
	}
}

// PayloadString retrieves a string value from the payload, or "" when absent
func (e *Event) PayloadString(key string) string {
	if v, ok := e.Payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// PayloadFloat retrieves a float64 value from the payload, or 0 when absent
func (e *Event) PayloadFloat(key string) float64 {
	if v, ok := e.Payload[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return 0
}
