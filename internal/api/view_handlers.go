package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadkeep/threadkeep-server/internal/domain"
)

func (s *Server) registerViewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listViews",
		Method:      http.MethodGet,
		Path:        "/api/v1/views",
		Summary:     "List public views",
		Description: "Returns the current user's public views",
		Tags:        []string{"Views"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListViews)

	huma.Register(s.api, huma.Operation{
		OperationID: "createView",
		Method:      http.MethodPost,
		Path:        "/api/v1/views",
		Summary:     "Create public view",
		Description: "Creates a shareable public view. The slug must be globally unique.",
		Tags:        []string{"Views"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateView)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateViewSlug",
		Method:      http.MethodPost,
		Path:        "/api/v1/views/validate-slug",
		Summary:     "Validate slug",
		Description: "Pre-submit slug check: format, reserved words, and global uniqueness",
		Tags:        []string{"Views"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleValidateViewSlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "createViewFromLegacy",
		Method:      http.MethodPost,
		Path:        "/api/v1/views/from-legacy",
		Summary:     "Import legacy view",
		Description: "Translates a legacy single-character view into the current shape and creates it",
		Tags:        []string{"Views"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateViewFromLegacy)

	huma.Register(s.api, huma.Operation{
		OperationID: "getView",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/{id}",
		Summary:     "Get public view",
		Description: "Returns a view by ID",
		Tags:        []string{"Views"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetView)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateView",
		Method:      http.MethodPut,
		Path:        "/api/v1/views/{id}",
		Summary:     "Update public view",
		Description: "Replaces a view. A view may keep its own slug without conflicting.",
		Tags:        []string{"Views"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateView)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteView",
		Method:      http.MethodDelete,
		Path:        "/api/v1/views/{id}",
		Summary:     "Delete public view",
		Description: "Deletes a view, freeing its slug",
		Tags:        []string{"Views"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteView)
}

// === DTOs ===

// TurnFilterDTO mirrors the view's turn filter flags.
type TurnFilterDTO struct {
	IncludeMyTurn    bool `json:"include_my_turn" doc:"Include threads where it is the user's turn"`
	IncludeTheirTurn bool `json:"include_their_turn" doc:"Include threads where it is the partner's turn"`
	IncludeQueued    bool `json:"include_queued" doc:"Include queued threads"`
	IncludeArchived  bool `json:"include_archived" doc:"Include archived threads"`
}

// ViewResponse contains public view data in API responses.
type ViewResponse struct {
	ID             string        `json:"id" doc:"View ID"`
	Name           string        `json:"name" doc:"Display name"`
	Slug           string        `json:"slug" doc:"Globally unique URL slug"`
	Columns        []string      `json:"columns" doc:"Columns to render"`
	CharacterIDs   []int64       `json:"character_ids,omitempty" doc:"Character filter; empty means no restriction"`
	Tags           []string      `json:"tags,omitempty" doc:"Tag filter, case-sensitive; empty means no restriction"`
	SortKey        string        `json:"sort_key,omitempty" doc:"Column to sort by"`
	SortDescending bool          `json:"sort_descending" doc:"Sort direction"`
	TurnFilter     TurnFilterDTO `json:"turn_filter" doc:"Turn filter flags"`
}

// ListViewsInput contains parameters for listing views.
type ListViewsInput struct {
	Authorization string `header:"Authorization"`
}

// ListViewsResponse contains a list of views.
type ListViewsResponse struct {
	Views []ViewResponse `json:"views" doc:"List of views"`
}

// ListViewsOutput wraps the list views response for Huma.
type ListViewsOutput struct {
	Body ListViewsResponse
}

// ViewRequest is the request body for creating or updating a view.
type ViewRequest struct {
	Name           string        `json:"name" validate:"required,min=1,max=100" doc:"Display name"`
	Slug           string        `json:"slug" validate:"required,slug" doc:"Globally unique URL slug"`
	Columns        []string      `json:"columns" validate:"required,min=1,dive,viewcolumn" doc:"Columns to render"`
	CharacterIDs   []int64       `json:"character_ids,omitempty" doc:"Character filter; empty means no restriction"`
	Tags           []string      `json:"tags,omitempty" validate:"dive,min=1,max=100" doc:"Tag filter, case-sensitive"`
	SortKey        string        `json:"sort_key,omitempty" validate:"omitempty,viewcolumn" doc:"Column to sort by"`
	SortDescending bool          `json:"sort_descending" doc:"Sort direction"`
	TurnFilter     TurnFilterDTO `json:"turn_filter" doc:"Turn filter flags; at least one must be set"`
}

// CreateViewInput wraps the create view request for Huma.
type CreateViewInput struct {
	Authorization string `header:"Authorization"`
	Body          ViewRequest
}

// ViewOutput wraps the view response for Huma.
type ViewOutput struct {
	Body ViewResponse
}

// GetViewInput contains parameters for getting a view.
type GetViewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"View ID"`
}

// UpdateViewInput wraps the update view request for Huma.
type UpdateViewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"View ID"`
	Body          ViewRequest
}

// DeleteViewInput contains parameters for deleting a view.
type DeleteViewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"View ID"`
}

// ValidateSlugRequest is the request body for the pre-submit slug check.
type ValidateSlugRequest struct {
	Slug          string `json:"slug" validate:"required" doc:"Slug to check"`
	ExcludeViewID string `json:"exclude_view_id,omitempty" doc:"View ID whose own slug should not conflict (set while editing)"`
}

// ValidateSlugInput wraps the slug check request for Huma.
type ValidateSlugInput struct {
	Authorization string `header:"Authorization"`
	Body          ValidateSlugRequest
}

// ValidateSlugResponse reports slug availability.
type ValidateSlugResponse struct {
	Available bool `json:"available" doc:"Whether the slug can be used"`
}

// ValidateSlugOutput wraps the slug check response for Huma.
type ValidateSlugOutput struct {
	Body ValidateSlugResponse
}

// LegacyViewRequest is the request body for importing a legacy view.
type LegacyViewRequest struct {
	Name                   string        `json:"name" validate:"required,min=1,max=100" doc:"Display name"`
	Slug                   string        `json:"slug" validate:"required,slug" doc:"Globally unique URL slug"`
	Columns                []string      `json:"columns" validate:"required,min=1,dive,viewcolumn" doc:"Columns to render"`
	CharacterURLIdentifier string        `json:"character_url_identifier,omitempty" doc:"Legacy single-character filter; empty pins all current characters"`
	Tags                   []string      `json:"tags,omitempty" validate:"dive,min=1,max=100" doc:"Tag filter, case-sensitive"`
	SortKey                string        `json:"sort_key,omitempty" validate:"omitempty,viewcolumn" doc:"Column to sort by"`
	SortDescending         bool          `json:"sort_descending" doc:"Sort direction"`
	TurnFilter             TurnFilterDTO `json:"turn_filter" doc:"Turn filter flags; at least one must be set"`
}

// LegacyViewInput wraps the legacy import request for Huma.
type LegacyViewInput struct {
	Authorization string `header:"Authorization"`
	Body          LegacyViewRequest
}

// === Handlers ===

func (s *Server) handleListViews(ctx context.Context, input *ListViewsInput) (*ListViewsOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	views, err := s.services.View.ViewsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]ViewResponse, len(views))
	for i, view := range views {
		resp[i] = mapViewResponse(view)
	}

	return &ListViewsOutput{Body: ListViewsResponse{Views: resp}}, nil
}

func (s *Server) handleCreateView(ctx context.Context, input *CreateViewInput) (*ViewOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	view, err := s.services.View.CreateView(ctx, userID, viewFromRequest("", &input.Body))
	if err != nil {
		return nil, err
	}

	return &ViewOutput{Body: mapViewResponse(view)}, nil
}

func (s *Server) handleGetView(ctx context.Context, input *GetViewInput) (*ViewOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	view, err := s.services.View.GetView(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &ViewOutput{Body: mapViewResponse(view)}, nil
}

func (s *Server) handleUpdateView(ctx context.Context, input *UpdateViewInput) (*ViewOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	view, err := s.services.View.UpdateView(ctx, userID, viewFromRequest(input.ID, &input.Body))
	if err != nil {
		return nil, err
	}

	return &ViewOutput{Body: mapViewResponse(view)}, nil
}

func (s *Server) handleDeleteView(ctx context.Context, input *DeleteViewInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.View.DeleteView(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "View deleted"}}, nil
}

func (s *Server) handleValidateViewSlug(ctx context.Context, input *ValidateSlugInput) (*ValidateSlugOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.View.ValidateSlug(ctx, input.Body.Slug, input.Body.ExcludeViewID); err != nil {
		return nil, err
	}

	return &ValidateSlugOutput{Body: ValidateSlugResponse{Available: true}}, nil
}

func (s *Server) handleCreateViewFromLegacy(ctx context.Context, input *LegacyViewInput) (*ViewOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	// The legacy identifier resolves against the user's full roster,
	// hiatused characters included.
	characters, err := s.services.Character.ListCharacters(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	legacy := &domain.LegacyPublicView{
		Name:                   input.Body.Name,
		Slug:                   input.Body.Slug,
		Columns:                input.Body.Columns,
		CharacterURLIdentifier: input.Body.CharacterURLIdentifier,
		Tags:                   input.Body.Tags,
		SortKey:                input.Body.SortKey,
		SortDescending:         input.Body.SortDescending,
		TurnFilter:             turnFilterFromDTO(input.Body.TurnFilter),
	}

	view, err := s.services.View.CreateView(ctx, userID, s.services.View.ViewFromLegacy(legacy, characters))
	if err != nil {
		return nil, err
	}

	return &ViewOutput{Body: mapViewResponse(view)}, nil
}

// === Helpers ===

func turnFilterFromDTO(dto TurnFilterDTO) domain.TurnFilter {
	return domain.TurnFilter{
		IncludeMyTurn:    dto.IncludeMyTurn,
		IncludeTheirTurn: dto.IncludeTheirTurn,
		IncludeQueued:    dto.IncludeQueued,
		IncludeArchived:  dto.IncludeArchived,
	}
}

func viewFromRequest(viewID string, req *ViewRequest) *domain.PublicView {
	return &domain.PublicView{
		ID:             viewID,
		Name:           req.Name,
		Slug:           req.Slug,
		Columns:        req.Columns,
		CharacterIDs:   req.CharacterIDs,
		Tags:           req.Tags,
		SortKey:        req.SortKey,
		SortDescending: req.SortDescending,
		TurnFilter:     turnFilterFromDTO(req.TurnFilter),
	}
}

func mapViewResponse(view *domain.PublicView) ViewResponse {
	return ViewResponse{
		ID:             view.ID,
		Name:           view.Name,
		Slug:           view.Slug,
		Columns:        view.Columns,
		CharacterIDs:   view.CharacterIDs,
		Tags:           view.Tags,
		SortKey:        view.SortKey,
		SortDescending: view.SortDescending,
		TurnFilter: TurnFilterDTO{
			IncludeMyTurn:    view.TurnFilter.IncludeMyTurn,
			IncludeTheirTurn: view.TurnFilter.IncludeTheirTurn,
			IncludeQueued:    view.TurnFilter.IncludeQueued,
			IncludeArchived:  view.TurnFilter.IncludeArchived,
		},
	}
}
