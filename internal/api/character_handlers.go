package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadkeep/threadkeep-server/internal/domain"
)

func (s *Server) registerCharacterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCharacters",
		Method:      http.MethodGet,
		Path:        "/api/v1/characters",
		Summary:     "List characters",
		Description: "Returns the current user's characters, optionally including hiatused ones",
		Tags:        []string{"Characters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCharacters)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCharacter",
		Method:      http.MethodPost,
		Path:        "/api/v1/characters",
		Summary:     "Create character",
		Description: "Creates a new character for the current user",
		Tags:        []string{"Characters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCharacter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCharacter",
		Method:      http.MethodGet,
		Path:        "/api/v1/characters/{id}",
		Summary:     "Get character",
		Description: "Returns a character by ID",
		Tags:        []string{"Characters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCharacter)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCharacter",
		Method:      http.MethodPut,
		Path:        "/api/v1/characters/{id}",
		Summary:     "Update character",
		Description: "Replaces a character's fields",
		Tags:        []string{"Characters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCharacter)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCharacter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/characters/{id}",
		Summary:     "Delete character",
		Description: "Deletes a character and all of its threads",
		Tags:        []string{"Characters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCharacter)
}

// === DTOs ===

// CharacterResponse contains character data in API responses.
type CharacterResponse struct {
	ID            int64     `json:"id" doc:"Character ID"`
	Name          string    `json:"name" doc:"Character name"`
	URLIdentifier string    `json:"url_identifier" doc:"Blog URL identifier"`
	OnHiatus      bool      `json:"on_hiatus" doc:"Whether the character is on hiatus"`
	Platform      string    `json:"platform" doc:"Blogging platform"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update time"`
}

// ListCharactersInput contains parameters for listing characters.
type ListCharactersInput struct {
	Authorization   string `header:"Authorization"`
	IncludeHiatused bool   `query:"include_hiatused" doc:"Include characters on hiatus"`
}

// ListCharactersResponse contains a list of characters.
type ListCharactersResponse struct {
	Characters []CharacterResponse `json:"characters" doc:"List of characters"`
}

// ListCharactersOutput wraps the list characters response for Huma.
type ListCharactersOutput struct {
	Body ListCharactersResponse
}

// CharacterRequest is the request body for creating or updating a character.
type CharacterRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100" doc:"Character name"`
	URLIdentifier string `json:"url_identifier" validate:"required,min=1,max=200" doc:"Blog URL identifier"`
	OnHiatus      bool   `json:"on_hiatus" doc:"Whether the character is on hiatus"`
	Platform      string `json:"platform" validate:"required,platform" doc:"Blogging platform (tumblr, dreamwidth)"`
}

// CreateCharacterInput wraps the create character request for Huma.
type CreateCharacterInput struct {
	Authorization string `header:"Authorization"`
	Body          CharacterRequest
}

// CharacterOutput wraps the character response for Huma.
type CharacterOutput struct {
	Body CharacterResponse
}

// GetCharacterInput contains parameters for getting a character.
type GetCharacterInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Character ID"`
}

// UpdateCharacterInput wraps the update character request for Huma.
type UpdateCharacterInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Character ID"`
	Body          CharacterRequest
}

// DeleteCharacterInput contains parameters for deleting a character.
type DeleteCharacterInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Character ID"`
}

// === Handlers ===

func (s *Server) handleListCharacters(ctx context.Context, input *ListCharactersInput) (*ListCharactersOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	characters, err := s.services.Character.ListCharacters(ctx, userID, input.IncludeHiatused)
	if err != nil {
		return nil, err
	}

	resp := make([]CharacterResponse, len(characters))
	for i, c := range characters {
		resp[i] = mapCharacterResponse(c)
	}

	return &ListCharactersOutput{Body: ListCharactersResponse{Characters: resp}}, nil
}

func (s *Server) handleCreateCharacter(ctx context.Context, input *CreateCharacterInput) (*CharacterOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	c, err := s.services.Character.CreateCharacter(ctx, userID, &domain.Character{
		Name:          input.Body.Name,
		URLIdentifier: input.Body.URLIdentifier,
		OnHiatus:      input.Body.OnHiatus,
		Platform:      domain.Platform(input.Body.Platform),
	})
	if err != nil {
		return nil, err
	}

	return &CharacterOutput{Body: mapCharacterResponse(c)}, nil
}

func (s *Server) handleGetCharacter(ctx context.Context, input *GetCharacterInput) (*CharacterOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	c, err := s.services.Character.GetCharacter(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &CharacterOutput{Body: mapCharacterResponse(c)}, nil
}

func (s *Server) handleUpdateCharacter(ctx context.Context, input *UpdateCharacterInput) (*CharacterOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	c, err := s.services.Character.UpdateCharacter(ctx, userID, &domain.Character{
		ID:            input.ID,
		Name:          input.Body.Name,
		URLIdentifier: input.Body.URLIdentifier,
		OnHiatus:      input.Body.OnHiatus,
		Platform:      domain.Platform(input.Body.Platform),
	})
	if err != nil {
		return nil, err
	}

	return &CharacterOutput{Body: mapCharacterResponse(c)}, nil
}

func (s *Server) handleDeleteCharacter(ctx context.Context, input *DeleteCharacterInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Character.DeleteCharacter(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Character deleted"}}, nil
}

func mapCharacterResponse(c *domain.Character) CharacterResponse {
	return CharacterResponse{
		ID:            c.ID,
		Name:          c.Name,
		URLIdentifier: c.URLIdentifier,
		OnHiatus:      c.OnHiatus,
		Platform:      string(c.Platform),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
