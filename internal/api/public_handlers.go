package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/threadkeep/threadkeep-server/internal/domain"
)

func (s *Server) registerPublicRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicView",
		Method:      http.MethodGet,
		Path:        "/api/v1/p/{slug}",
		Summary:     "Render public view",
		Description: "Resolves a shared view by slug and returns its configured columns and thread rows. No authentication.",
		Tags:        []string{"Public"},
	}, s.handleGetPublicView)
}

// === DTOs ===

// PublicViewInput contains the slug of the shared view.
type PublicViewInput struct {
	Slug string `path:"slug" doc:"View slug"`
}

// PublicViewResponse is the rendered shared view.
type PublicViewResponse struct {
	Name    string     `json:"name" doc:"View display name"`
	Columns []string   `json:"columns" doc:"Column names, in render order"`
	Rows    [][]string `json:"rows" doc:"One row per thread, cells in column order"`
}

// PublicViewOutput wraps the rendered view for Huma.
type PublicViewOutput struct {
	Body PublicViewResponse
}

// === Handlers ===

func (s *Server) handleGetPublicView(ctx context.Context, input *PublicViewInput) (*PublicViewOutput, error) {
	view, err := s.services.View.GetViewBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	threads, err := s.services.Thread.GetThreadsForView(ctx, view)
	if err != nil {
		return nil, err
	}

	// The engine returns an unordered set; ordering is applied here.
	if view.SortKey != "" {
		sortThreadsByColumn(threads, view.SortKey, view.SortDescending)
	}

	rows := make([][]string, len(threads))
	for i, th := range threads {
		row := make([]string, len(view.Columns))
		for j, column := range view.Columns {
			row[j] = viewCell(th, column)
		}
		rows[i] = row
	}

	return &PublicViewOutput{
		Body: PublicViewResponse{
			Name:    view.Name,
			Columns: view.Columns,
			Rows:    rows,
		},
	}, nil
}

// === Helpers ===

func sortThreadsByColumn(threads []*domain.Thread, column string, descending bool) {
	sort.SliceStable(threads, func(i, j int) bool {
		a := strings.ToLower(viewCell(threads[i], column))
		b := strings.ToLower(viewCell(threads[j], column))
		if descending {
			return a > b
		}
		return a < b
	})
}

func viewCell(th *domain.Thread, column string) string {
	switch column {
	case "title":
		return th.UserTitle
	case "character":
		if th.Character != nil {
			return th.Character.Name
		}
		return ""
	case "partner":
		return th.PartnerURLIdentifier
	case "post":
		return th.PostID
	case "queued":
		if th.DateMarkedQueued != nil {
			return th.DateMarkedQueued.Format(time.DateOnly)
		}
		return ""
	case "archived":
		return strconv.FormatBool(th.Archived)
	case "tags":
		texts := make([]string, len(th.Tags))
		for i, tag := range th.Tags {
			texts[i] = tag.Text
		}
		return strings.Join(texts, ", ")
	default:
		return ""
	}
}
