package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createTestView(t *testing.T, token, slug string, body map[string]any) ViewResponse {
	t.Helper()

	if body == nil {
		body = map[string]any{}
	}
	if _, ok := body["name"]; !ok {
		body["name"] = "View " + slug
	}
	body["slug"] = slug
	if _, ok := body["columns"]; !ok {
		body["columns"] = []string{"title", "tags"}
	}
	if _, ok := body["turn_filter"]; !ok {
		body["turn_filter"] = map[string]any{"include_my_turn": true}
	}

	resp := ts.api.Post("/api/v1/views", body, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "create view failed: %s", resp.Body.String())

	var envelope testEnvelope[ViewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCreateView_AndList(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerTestUser(t, "views@example.com")

	view := ts.createTestView(t, token, "open-threads", nil)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "open-threads", view.Slug)

	resp := ts.api.Get("/api/v1/views", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list testEnvelope[ListViewsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Data.Views, 1)
}

func TestCreateView_SlugConflictAcrossUsers(t *testing.T) {
	ts := newTestServer(t)
	a := ts.registerTestUser(t, "slug-a@example.com")
	b := ts.registerTestUser(t, "slug-b@example.com")

	ts.createTestView(t, a, "taken", nil)

	resp := ts.api.Post("/api/v1/views", map[string]any{
		"name":        "Mine",
		"slug":        "taken",
		"columns":     []string{"title"},
		"turn_filter": map[string]any{"include_my_turn": true},
	}, "Authorization: Bearer "+b)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "SLUG_EXISTS", envelope.Code)
}

func TestCreateView_AllFalseTurnFilterRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerTestUser(t, "turnfilter@example.com")

	resp := ts.api.Post("/api/v1/views", map[string]any{
		"name":        "No Filter",
		"slug":        "no-filter",
		"columns":     []string{"title"},
		"turn_filter": map[string]any{},
	}, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateView_KeepsOwnSlug(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerTestUser(t, "self-slug@example.com")

	view := ts.createTestView(t, token, "my-slug", nil)

	resp := ts.api.Put("/api/v1/views/"+view.ID, map[string]any{
		"name":        "Renamed",
		"slug":        "my-slug",
		"columns":     []string{"title"},
		"turn_filter": map[string]any{"include_my_turn": true},
	}, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestValidateSlug(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerTestUser(t, "validate@example.com")

	view := ts.createTestView(t, token, "held", nil)

	resp := ts.api.Post("/api/v1/views/validate-slug", map[string]any{
		"slug": "fresh-slug",
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var ok testEnvelope[ValidateSlugResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &ok))
	assert.True(t, ok.Data.Available)

	resp = ts.api.Post("/api/v1/views/validate-slug", map[string]any{
		"slug": "held",
	}, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusConflict, resp.Code)

	// While editing the holder itself, its own slug stays available.
	resp = ts.api.Post("/api/v1/views/validate-slug", map[string]any{
		"slug":            "held",
		"exclude_view_id": view.ID,
	}, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Reserved words are rejected as configuration errors.
	resp = ts.api.Post("/api/v1/views/validate-slug", map[string]any{
		"slug": "yourturn",
	}, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateViewFromLegacy(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerTestUser(t, "legacy@example.com")

	evelyn := ts.createTestCharacter(t, token, "evelyn", false)
	marcus := ts.createTestCharacter(t, token, "marcus", true)

	// Empty legacy identifier pins the full roster, hiatused included.
	resp := ts.api.Post("/api/v1/views/from-legacy", map[string]any{
		"name":        "Imported",
		"slug":        "imported",
		"columns":     []string{"title"},
		"turn_filter": map[string]any{"include_my_turn": true},
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created testEnvelope[ViewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.ElementsMatch(t, []int64{evelyn, marcus}, created.Data.CharacterIDs)

	// Non-empty identifier narrows to the matching character.
	resp = ts.api.Post("/api/v1/views/from-legacy", map[string]any{
		"name":                     "Imported Narrow",
		"slug":                     "imported-narrow",
		"columns":                  []string{"title"},
		"character_url_identifier": "evelyn-url",
		"turn_filter":              map[string]any{"include_my_turn": true},
	}, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, []int64{evelyn}, created.Data.CharacterIDs)
}

func TestGetPublicView(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerTestUser(t, "public@example.com")

	characterID := ts.createTestCharacter(t, token, "evelyn", false)
	ts.createTestThread(t, token, characterID, "beta thread", false, "angst")
	ts.createTestThread(t, token, characterID, "alpha thread", false)
	ts.createTestThread(t, token, characterID, "archived thread", true)

	ts.createTestView(t, token, "shared", map[string]any{
		"columns":  []string{"title", "character", "tags"},
		"sort_key": "title",
	})

	// No auth header: the whole point of a shared view.
	resp := ts.api.Get("/api/v1/p/shared")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var rendered testEnvelope[PublicViewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rendered))
	assert.Equal(t, []string{"title", "character", "tags"}, rendered.Data.Columns)

	// Archived thread excluded by the my-turn-only filter; rows sorted by title.
	require.Len(t, rendered.Data.Rows, 2)
	assert.Equal(t, []string{"alpha thread", "evelyn", ""}, rendered.Data.Rows[0])
	assert.Equal(t, []string{"beta thread", "evelyn", "angst"}, rendered.Data.Rows[1])
}

func TestGetPublicView_UnknownSlug(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/p/never-created")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestViewOwnership_CrossUserIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.registerTestUser(t, "view-owner@example.com")
	stranger := ts.registerTestUser(t, "view-stranger@example.com")

	view := ts.createTestView(t, owner, "private-view", nil)

	resp := ts.api.Get("/api/v1/views/"+view.ID, "Authorization: Bearer "+stranger)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/views/"+view.ID, "Authorization: Bearer "+stranger)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
