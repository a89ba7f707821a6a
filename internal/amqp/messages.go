package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PeriodArchivedMessage announces a committed period archive. The worker
// reloads the period and its archived transactions from storage.
type PeriodArchivedMessage struct {
	MessageID  string    `json:"message_id"`
	PeriodID   int64     `json:"period_id"`
	UserID     int64     `json:"user_id"`
	ArchivedAt time.Time `json:"archived_at"`
}

func NewPeriodArchivedMessage(periodID, userID int64, archivedAt time.Time) *PeriodArchivedMessage {
	return &PeriodArchivedMessage{
		MessageID:  uuid.NewString(),
		PeriodID:   periodID,
		UserID:     userID,
		ArchivedAt: archivedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *PeriodArchivedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PeriodArchivedMessageFromJSON(data []byte) (*PeriodArchivedMessage, error) {
	var msg PeriodArchivedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
