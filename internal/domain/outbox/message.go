package outbox

import (
	"encoding/json"
	"time"

	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// PostingEvent is the payload published for one completed posting: the
// reference and every line written for it.
type PostingEvent struct {
	Reference ledger.Reference `json:"reference"`
	Lines     []*ledger.Line   `json:"lines"`
	PostedAt  time.Time        `json:"posted_at"`
}

// Message stores a posting event for reliable publication. It is written in
// the same database transaction as the ledger lines it describes.
type Message struct {
	ID            int64           `json:"id"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage builds a pending outbox message from a posted line group
func NewMessage(ref ledger.Reference, lines []*ledger.Line) (*Message, error) {
	event := PostingEvent{
		Reference: ref,
		Lines:     lines,
		PostedAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		ReferenceType: string(ref.Type),
		ReferenceID:   ref.ID,
		Payload:       payload,
		Status:        StatusPending,
		Attempts:      0,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Event decodes the posting event from the payload
func (m *Message) Event() (*PostingEvent, error) {
	var event PostingEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
