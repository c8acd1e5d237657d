package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadkeep/threadkeep-server/internal/domain"
)

func (s *Server) registerThreadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listThreads",
		Method:      http.MethodGet,
		Path:        "/api/v1/threads",
		Summary:     "List threads",
		Description: "Returns the current user's threads in flat mode, split by the archived flag. Threads of hiatused characters are always excluded here.",
		Tags:        []string{"Threads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListThreads)

	huma.Register(s.api, huma.Operation{
		OperationID: "listThreadsByCharacter",
		Method:      http.MethodGet,
		Path:        "/api/v1/threads/by-character",
		Summary:     "List threads grouped by character",
		Description: "Returns threads grouped by owning character. Characters with no matching threads are absent.",
		Tags:        []string{"Threads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListThreadsByCharacter)

	huma.Register(s.api, huma.Operation{
		OperationID: "createThread",
		Method:      http.MethodPost,
		Path:        "/api/v1/threads",
		Summary:     "Create thread",
		Description: "Creates a thread under one of the current user's characters",
		Tags:        []string{"Threads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateThread)

	huma.Register(s.api, huma.Operation{
		OperationID: "getThread",
		Method:      http.MethodGet,
		Path:        "/api/v1/threads/{id}",
		Summary:     "Get thread",
		Description: "Returns a thread by ID",
		Tags:        []string{"Threads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetThread)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateThread",
		Method:      http.MethodPut,
		Path:        "/api/v1/threads/{id}",
		Summary:     "Update thread",
		Description: "Replaces a thread's fields, including its full tag set",
		Tags:        []string{"Threads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateThread)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteThread",
		Method:      http.MethodDelete,
		Path:        "/api/v1/threads/{id}",
		Summary:     "Delete thread",
		Description: "Deletes a thread and its tags",
		Tags:        []string{"Threads"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteThread)
}

// === DTOs ===

// ThreadTagResponse contains one tag row of a thread.
type ThreadTagResponse struct {
	ID   string `json:"id" doc:"Tag row ID"`
	Text string `json:"text" doc:"Tag text, original casing"`
}

// ThreadResponse contains thread data in API responses.
type ThreadResponse struct {
	ID                   int64               `json:"id" doc:"Thread ID"`
	CharacterID          int64               `json:"character_id" doc:"Owning character ID"`
	PartnerURLIdentifier string              `json:"partner_url_identifier,omitempty" doc:"Partner blog URL identifier"`
	PostID               string              `json:"post_id,omitempty" doc:"Platform post ID"`
	UserTitle            string              `json:"user_title" doc:"User-assigned title"`
	Archived             bool                `json:"archived" doc:"Whether the thread is archived"`
	DateMarkedQueued     *time.Time          `json:"date_marked_queued,omitempty" doc:"When the thread was marked queued"`
	CreatedAt            time.Time           `json:"created_at" doc:"Creation time"`
	UpdatedAt            time.Time           `json:"updated_at" doc:"Last update time"`
	Tags                 []ThreadTagResponse `json:"tags" doc:"Thread tags"`
}

// ListThreadsInput contains parameters for flat-mode listing.
type ListThreadsInput struct {
	Authorization string `header:"Authorization"`
	Archived      bool   `query:"archived" doc:"Return archived instead of active threads"`
}

// ListThreadsResponse contains a flat list of threads.
type ListThreadsResponse struct {
	Threads []ThreadResponse `json:"threads" doc:"List of threads"`
}

// ListThreadsOutput wraps the flat list response for Huma.
type ListThreadsOutput struct {
	Body ListThreadsResponse
}

// ListThreadsByCharacterInput contains parameters for grouped-mode listing.
type ListThreadsByCharacterInput struct {
	Authorization   string `header:"Authorization"`
	IncludeArchived bool   `query:"include_archived" doc:"Also include archived threads"`
	IncludeHiatused bool   `query:"include_hiatused" doc:"Also include threads of hiatused characters"`
}

// ListThreadsByCharacterResponse maps character IDs to their threads.
type ListThreadsByCharacterResponse struct {
	Groups map[string][]ThreadResponse `json:"groups" doc:"Threads keyed by character ID"`
}

// ListThreadsByCharacterOutput wraps the grouped response for Huma.
type ListThreadsByCharacterOutput struct {
	Body ListThreadsByCharacterResponse
}

// ThreadRequest is the request body for creating or updating a thread.
type ThreadRequest struct {
	CharacterID          int64      `json:"character_id" validate:"required" doc:"Owning character ID"`
	PartnerURLIdentifier string     `json:"partner_url_identifier,omitempty" validate:"omitempty,max=200" doc:"Partner blog URL identifier"`
	PostID               string     `json:"post_id,omitempty" validate:"omitempty,max=200" doc:"Platform post ID"`
	UserTitle            string     `json:"user_title" validate:"required,min=1,max=300" doc:"User-assigned title"`
	Archived             bool       `json:"archived" doc:"Whether the thread is archived"`
	DateMarkedQueued     *time.Time `json:"date_marked_queued,omitempty" doc:"When the thread was marked queued"`
	Tags                 []string   `json:"tags,omitempty" validate:"dive,min=1,max=100" doc:"Tag texts, original casing"`
}

// CreateThreadInput wraps the create thread request for Huma.
type CreateThreadInput struct {
	Authorization string `header:"Authorization"`
	Body          ThreadRequest
}

// ThreadOutput wraps the thread response for Huma.
type ThreadOutput struct {
	Body ThreadResponse
}

// GetThreadInput contains parameters for getting a thread.
type GetThreadInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Thread ID"`
}

// UpdateThreadInput wraps the update thread request for Huma.
type UpdateThreadInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Thread ID"`
	Body          ThreadRequest
}

// DeleteThreadInput contains parameters for deleting a thread.
type DeleteThreadInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Thread ID"`
}

// === Handlers ===

func (s *Server) handleListThreads(ctx context.Context, input *ListThreadsInput) (*ListThreadsOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	threads, err := s.services.Thread.GetThreads(ctx, userID, input.Archived)
	if err != nil {
		return nil, err
	}

	return &ListThreadsOutput{Body: ListThreadsResponse{Threads: mapThreadResponses(threads)}}, nil
}

func (s *Server) handleListThreadsByCharacter(ctx context.Context, input *ListThreadsByCharacterInput) (*ListThreadsByCharacterOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	grouped, err := s.services.Thread.GetThreadsByCharacter(ctx, userID, input.IncludeArchived, input.IncludeHiatused)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]ThreadResponse, len(grouped))
	for characterID, threads := range grouped {
		groups[strconv.FormatInt(characterID, 10)] = mapThreadResponses(threads)
	}

	return &ListThreadsByCharacterOutput{Body: ListThreadsByCharacterResponse{Groups: groups}}, nil
}

func (s *Server) handleCreateThread(ctx context.Context, input *CreateThreadInput) (*ThreadOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	th, err := s.services.Thread.CreateThread(ctx, userID, threadFromRequest(0, &input.Body))
	if err != nil {
		return nil, err
	}

	return &ThreadOutput{Body: mapThreadResponse(th)}, nil
}

func (s *Server) handleGetThread(ctx context.Context, input *GetThreadInput) (*ThreadOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	th, err := s.services.Thread.GetThread(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &ThreadOutput{Body: mapThreadResponse(th)}, nil
}

func (s *Server) handleUpdateThread(ctx context.Context, input *UpdateThreadInput) (*ThreadOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	th, err := s.services.Thread.UpdateThread(ctx, userID, threadFromRequest(input.ID, &input.Body))
	if err != nil {
		return nil, err
	}

	return &ThreadOutput{Body: mapThreadResponse(th)}, nil
}

func (s *Server) handleDeleteThread(ctx context.Context, input *DeleteThreadInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Thread.DeleteThread(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Thread deleted"}}, nil
}

// === Helpers ===

func threadFromRequest(threadID int64, req *ThreadRequest) *domain.Thread {
	th := &domain.Thread{
		ID:                   threadID,
		CharacterID:          req.CharacterID,
		PartnerURLIdentifier: req.PartnerURLIdentifier,
		PostID:               req.PostID,
		UserTitle:            req.UserTitle,
		Archived:             req.Archived,
		DateMarkedQueued:     req.DateMarkedQueued,
	}
	for _, text := range req.Tags {
		th.Tags = append(th.Tags, domain.ThreadTag{Text: text})
	}
	return th
}

func mapThreadResponse(th *domain.Thread) ThreadResponse {
	tags := make([]ThreadTagResponse, len(th.Tags))
	for i, tag := range th.Tags {
		tags[i] = ThreadTagResponse{ID: tag.ID, Text: tag.Text}
	}

	return ThreadResponse{
		ID:                   th.ID,
		CharacterID:          th.CharacterID,
		PartnerURLIdentifier: th.PartnerURLIdentifier,
		PostID:               th.PostID,
		UserTitle:            th.UserTitle,
		Archived:             th.Archived,
		DateMarkedQueued:     th.DateMarkedQueued,
		CreatedAt:            th.CreatedAt,
		UpdatedAt:            th.UpdatedAt,
		Tags:                 tags,
	}
}

func mapThreadResponses(threads []*domain.Thread) []ThreadResponse {
	resp := make([]ThreadResponse, len(threads))
	for i, th := range threads {
		resp[i] = mapThreadResponse(th)
	}
	return resp
}
