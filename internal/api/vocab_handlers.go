package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerVocabularyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tag vocabulary",
		Description: "Returns one representative per case-insensitive tag group across the user's whole thread corpus",
		Tags:        []string{"Vocabulary"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/tags",
		Summary:     "Replace tag",
		Description: "Rewrites every case-insensitive match of the current text to the replacement, verbatim",
		Tags:        []string{"Vocabulary"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags",
		Summary:     "Delete tag",
		Description: "Removes every case-insensitive match of the text from the user's threads",
		Tags:        []string{"Vocabulary"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPartners",
		Method:      http.MethodGet,
		Path:        "/api/v1/partners",
		Summary:     "List partner vocabulary",
		Description: "Returns one representative per case-insensitive partner URL identifier group",
		Tags:        []string{"Vocabulary"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPartners)

	huma.Register(s.api, huma.Operation{
		OperationID: "replacePartner",
		Method:      http.MethodPut,
		Path:        "/api/v1/partners",
		Summary:     "Replace partner",
		Description: "Rewrites every case-insensitive match of the current partner identifier to the replacement, verbatim",
		Tags:        []string{"Vocabulary"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplacePartner)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePartner",
		Method:      http.MethodDelete,
		Path:        "/api/v1/partners",
		Summary:     "Delete partner",
		Description: "Clears every case-insensitive match of the partner identifier from the user's threads",
		Tags:        []string{"Vocabulary"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePartner)
}

// === DTOs ===

// ListVocabularyInput contains parameters for vocabulary listing.
type ListVocabularyInput struct {
	Authorization string `header:"Authorization"`
}

// VocabularyResponse contains a deduplicated vocabulary list.
type VocabularyResponse struct {
	Entries []string `json:"entries" doc:"Vocabulary entries, sorted case-insensitively"`
}

// VocabularyOutput wraps the vocabulary response for Huma.
type VocabularyOutput struct {
	Body VocabularyResponse
}

// ReplaceVocabularyRequest is the request body for bulk replace operations.
type ReplaceVocabularyRequest struct {
	Current     string `json:"current" validate:"required,min=1,max=100" doc:"Text to match, case-insensitively"`
	Replacement string `json:"replacement" validate:"required,min=1,max=100" doc:"Replacement text, written verbatim"`
}

// ReplaceVocabularyInput wraps the replace request for Huma.
type ReplaceVocabularyInput struct {
	Authorization string `header:"Authorization"`
	Body          ReplaceVocabularyRequest
}

// DeleteVocabularyInput contains parameters for bulk delete operations.
// The text rides in a query parameter so arbitrary characters survive.
type DeleteVocabularyInput struct {
	Authorization string `header:"Authorization"`
	Text          string `query:"text" required:"true" doc:"Text to match, case-insensitively"`
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListVocabularyInput) (*VocabularyOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tag.AllTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &VocabularyOutput{Body: VocabularyResponse{Entries: tags}}, nil
}

func (s *Server) handleReplaceTag(ctx context.Context, input *ReplaceVocabularyInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.services.Tag.ReplaceTag(ctx, userID, input.Body.Current, input.Body.Replacement); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag replaced"}}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteVocabularyInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeleteTag(ctx, userID, input.Text); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}

func (s *Server) handleListPartners(ctx context.Context, input *ListVocabularyInput) (*VocabularyOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	partners, err := s.services.Tag.AllPartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &VocabularyOutput{Body: VocabularyResponse{Entries: partners}}, nil
}

func (s *Server) handleReplacePartner(ctx context.Context, input *ReplaceVocabularyInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.services.Tag.ReplacePartner(ctx, userID, input.Body.Current, input.Body.Replacement); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Partner replaced"}}, nil
}

func (s *Server) handleDeletePartner(ctx context.Context, input *DeleteVocabularyInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tag.DeletePartner(ctx, userID, input.Text); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Partner deleted"}}, nil
}
