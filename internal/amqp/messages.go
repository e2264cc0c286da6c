package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LeadSubmittedMessage announces a stored lead. It carries only the id; the
// worker reads the lead itself from the database.
type LeadSubmittedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLeadSubmittedMessage(id int64) *LeadSubmittedMessage {
	return &LeadSubmittedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *LeadSubmittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LeadSubmittedMessageFromJSON rejects bodies without a positive id.
func LeadSubmittedMessageFromJSON(data []byte) (*LeadSubmittedMessage, error) {
	var msg LeadSubmittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("lead message: invalid id %d", msg.ID)
	}
	return &msg, nil
}
