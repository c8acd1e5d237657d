package domain

import "time"

// Platform identifies the blogging platform a character lives on.
type Platform string

const (
	PlatformTumblr     Platform = "tumblr"
	PlatformDreamwidth Platform = "dreamwidth"
)

// IsValid reports whether the platform is one we support.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformTumblr, PlatformDreamwidth:
		return true
	default:
		return false
	}
}

// Character is a roleplay character registered by a user. Each character
// belongs to exactly one user; threads hang off characters, never off users
// directly.
type Character struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	URLIdentifier string    `json:"urlIdentifier"`
	OnHiatus      bool      `json:"onHiatus"`
	Platform      Platform  `json:"platform"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
