package domain

import "regexp"

// slugPattern: lowercase alphanumeric segments separated by single hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// reservedSlugs are route words the public endpoint claims for itself.
var reservedSlugs = map[string]bool{
	"yourturn":  true,
	"theirturn": true,
	"archived":  true,
	"queued":    true,
	"legacy":    true,
	"threads":   true,
}

// AllowedViewColumns are the column keys a view may display and sort by.
var AllowedViewColumns = []string{
	"title", "character", "partner", "post", "queued", "archived", "tags",
}

// IsValidSlugFormat reports whether slug matches the lowercase-hyphen pattern.
func IsValidSlugFormat(slug string) bool {
	return slugPattern.MatchString(slug)
}

// IsReservedSlug reports whether slug is reserved for the application's own routes.
func IsReservedSlug(slug string) bool {
	return reservedSlugs[slug]
}

// IsAllowedViewColumn reports whether key is a displayable/sortable column.
func IsAllowedViewColumn(key string) bool {
	for _, c := range AllowedViewColumns {
		if c == key {
			return true
		}
	}
	return false
}

// TurnFilter selects which subset of a user's threads a public view includes.
// The three active flags gate non-archived threads as a group; the engine does
// not itself know whose turn it is.
type TurnFilter struct {
	IncludeMyTurn    bool `json:"includeMyTurn"`
	IncludeTheirTurn bool `json:"includeTheirTurn"`
	IncludeQueued    bool `json:"includeQueued"`
	IncludeArchived  bool `json:"includeArchived"`
}

// IsValid reports whether at least one flag is set. An all-false filter is
// meaningless and must be rejected before it reaches the aggregation engine.
func (f TurnFilter) IsValid() bool {
	return f.IncludeMyTurn || f.IncludeTheirTurn || f.IncludeQueued || f.IncludeArchived
}

// IncludesActive reports whether any non-archived threads are selected.
func (f TurnFilter) IncludesActive() bool {
	return f.IncludeMyTurn || f.IncludeTheirTurn || f.IncludeQueued
}

// PublicView is a shareable, slug-addressed projection of a user's threads.
// Slug uniqueness is global across all views of all users and is enforced by
// the view service at write time, not by the store.
//
// Empty CharacterIDs or Tags means "no restriction on that dimension", not
// "match nothing".
type PublicView struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Columns        []string   `json:"columns"`
	CharacterIDs   []int64    `json:"characterIds"`
	Tags           []string   `json:"tags"`
	SortKey        string     `json:"sortKey"`
	SortDescending bool       `json:"sortDescending"`
	TurnFilter     TurnFilter `json:"turnFilter"`
}

// LegacyPublicView is the older view shape that named a single character by
// URL identifier instead of carrying a set of character ids. It survives only
// as input to the translation endpoint.
type LegacyPublicView struct {
	Name                   string     `json:"name"`
	Slug                   string     `json:"slug"`
	Columns                []string   `json:"columns"`
	CharacterURLIdentifier string     `json:"characterUrlIdentifier"`
	Tags                   []string   `json:"tags"`
	SortKey                string     `json:"sortKey"`
	SortDescending         bool       `json:"sortDescending"`
	TurnFilter             TurnFilter `json:"turnFilter"`
}
