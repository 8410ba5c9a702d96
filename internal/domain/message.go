package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// Message is a single chat message in a chatroom's log. Messages are
// immutable once appended; there is no edit or delete operation.
//
// SendAt is assigned by the composing client, not by the server. Display
// ordering is the log's append order, never a sort by SendAt, so clock skew
// between clients cannot reorder a room's history.
type Message struct {
	SenderEmail string `json:"senderEmail" validate:"required"` // Author identity. Opaque; no auth binding is enforced here.
	Text        string `json:"text" validate:"required"`        // Message body. Must be non-empty.
	SendAt      string `json:"sendAt" validate:"required"`      // Client-assigned timestamp string (RFC3339 by convention).
}

// MessageIdentity is the triple that identifies a logical message for
// duplicate suppression. The same message can legitimately arrive twice at a
// client (optimistic echo of its own send plus the live subscription), so
// every place that merges message lists compares this triple and nothing else.
type MessageIdentity struct {
	SenderEmail string
	SendAt      string
	Text        string
}

// Identity returns the deduplication key for the message.
func (m Message) Identity() MessageIdentity {
	return MessageIdentity{
		SenderEmail: m.SenderEmail,
		SendAt:      m.SendAt,
		Text:        m.Text,
	}
}

// Validate checks that all required fields are present. A failed check wraps
// ErrInvalidMessage so callers can map it with errors.Is.
func (m Message) Validate() error {
	if err := validatorInstance.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}
