package domain

import (
	"strings"
	"time"
)

// Thread is an ongoing roleplay interaction logged against a character.
// Ownership is transitive: a thread belongs to whoever owns its character,
// and there is deliberately no user id on the thread itself. Every ownership
// check joins through the character.
type Thread struct {
	ID                   int64      `json:"id"`
	CharacterID          int64      `json:"characterId"`
	PartnerURLIdentifier string     `json:"partnerUrlIdentifier,omitempty"`
	PostID               string     `json:"postId,omitempty"`
	UserTitle            string     `json:"userTitle"`
	Archived             bool       `json:"archived"`
	DateMarkedQueued     *time.Time `json:"dateMarkedQueued,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	// Tags are always loaded with the thread.
	Tags []ThreadTag `json:"tags"`

	// Character is the owning character, loaded on request.
	Character *Character `json:"character,omitempty"`
}

// IsQueued reports whether the thread has been marked queued.
func (t *Thread) IsQueued() bool {
	return t.DateMarkedQueued != nil
}

// HasAnyTag reports whether the thread carries at least one of the given tag
// texts. Comparison is case-sensitive.
func (t *Thread) HasAnyTag(texts []string) bool {
	for _, tag := range t.Tags {
		for _, want := range texts {
			if tag.Text == want {
				return true
			}
		}
	}
	return false
}

// ThreadTag is a single tag row on a thread. Vocabulary identity is the
// case-folded text, not the row id: "Angst" on one thread and "angst" on
// another are the same vocabulary entry.
type ThreadTag struct {
	ID       string `json:"id"`
	ThreadID int64  `json:"threadId"`
	Text     string `json:"text"`
}

// FoldTag returns the vocabulary identity of a tag or partner string.
func FoldTag(text string) string {
	return strings.ToLower(text)
}
