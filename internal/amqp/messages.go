package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"bankist/internal/journal"
)

// JournalMessage carries one journal event to the worker. The event id
// makes redelivery harmless: the worker stores each id once.
type JournalMessage struct {
	Event       journal.Event `json:"event"`
	PublishedAt time.Time     `json:"published_at"`
}

func NewJournalMessage(e journal.Event) *JournalMessage {
	return &JournalMessage{
		Event:       e,
		PublishedAt: time.Now(),
	}
}

func (m *JournalMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// JournalMessageFromJSON decodes a message and rejects ones without an event id.
func JournalMessageFromJSON(data []byte) (*JournalMessage, error) {
	var msg JournalMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event.ID == "" {
		return nil, fmt.Errorf("journal message without event id")
	}
	return &msg, nil
}
