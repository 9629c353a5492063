package entity

import (
	"ExpenseChat/pkg/nlp"
	"time"
)

// PendingCapture is an expense that is still being clarified. It exists only
// while the conversation is waiting for an answer.
type PendingCapture struct {
	ID             string                       `json:"id"`
	UserID         string                       `json:"userId"`
	ConversationID string                       `json:"conversationId"`
	Partial        nlp.PartialTransaction       `json:"partial"`
	MissingSlots   []nlp.Slot                   `json:"missingSlots"`
	AmbiguousSlots []nlp.Slot                   `json:"ambiguousSlots"`
	Candidates     map[nlp.Slot][]nlp.Candidate `json:"candidates,omitempty"`
	AskedSlot      nlp.Slot                     `json:"askedSlot,omitempty"`
	Options        []nlp.Candidate              `json:"options,omitempty"`
	TurnsAsked     int                          `json:"turnsAsked"`
	CreatedAt      time.Time                    `json:"createdAt"`
	UpdatedAt      time.Time                    `json:"updatedAt"`
	ExpiresAt      time.Time                    `json:"expiresAt"`
}

func (p PendingCapture) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

func (p PendingCapture) Resolved() bool {
	return len(p.MissingSlots) == 0 && len(p.AmbiguousSlots) == 0
}

// Clone copies the slices and candidate map so the copy can be changed
// without touching a stored capture.
func (p PendingCapture) Clone() PendingCapture {
	c := p
	c.MissingSlots = append([]nlp.Slot(nil), p.MissingSlots...)
	c.AmbiguousSlots = append([]nlp.Slot(nil), p.AmbiguousSlots...)
	c.Options = append([]nlp.Candidate(nil), p.Options...)
	if p.Candidates != nil {
		c.Candidates = make(map[nlp.Slot][]nlp.Candidate, len(p.Candidates))
		for slot, candidates := range p.Candidates {
			c.Candidates[slot] = append([]nlp.Candidate(nil), candidates...)
		}
	}
	return c
}
