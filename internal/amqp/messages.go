package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisRequestMessage asks the report worker to recompute a user's
// recurring-payment analysis and export the result. It carries only the
// username; the worker reads the transaction history itself.
type AnalysisRequestMessage struct {
	RequestID string    `json:"request_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAnalysisRequestMessage creates a request with a fresh request ID.
func NewAnalysisRequestMessage(username string) *AnalysisRequestMessage {
	return &AnalysisRequestMessage{
		RequestID: uuid.NewString(),
		Username:  username,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AnalysisRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AnalysisRequestMessageFromJSON creates a message from JSON bytes.
func AnalysisRequestMessageFromJSON(data []byte) (*AnalysisRequestMessage, error) {
	var msg AnalysisRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
