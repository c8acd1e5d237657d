package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
)

// exportHeader is the fixed column header row on every sheet.
var exportHeader = []any{"Title", "Partner", "Post", "Queued", "Archived", "Tags"}

// ExportService renders the grouped engine output into an xlsx workbook:
// one sheet per character, header row first, one row per thread.
type ExportService struct {
	threads    *ThreadService
	characters *CharacterService
	logger     *slog.Logger
}

// NewExportService creates an export service.
func NewExportService(threads *ThreadService, characters *CharacterService, logger *slog.Logger) *ExportService {
	return &ExportService{
		threads:    threads,
		characters: characters,
		logger:     logger,
	}
}

// ExportThreads builds the workbook and returns its bytes. The thread
// selection follows grouped mode exactly; characters with no matching
// threads get no sheet.
func (s *ExportService) ExportThreads(ctx context.Context, userID string, includeArchived, includeHiatused bool) ([]byte, error) {
	grouped, err := s.threads.GetThreadsByCharacter(ctx, userID, includeArchived, includeHiatused)
	if err != nil {
		return nil, err
	}

	characters, err := s.characters.ListCharacters(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(characters))
	for _, c := range characters {
		names[c.ID] = c.Name
	}

	// Stable sheet order: by character ID.
	characterIDs := make([]int64, 0, len(grouped))
	for characterID := range grouped {
		characterIDs = append(characterIDs, characterID)
	}
	sort.Slice(characterIDs, func(i, j int) bool { return characterIDs[i] < characterIDs[j] })

	f := excelize.NewFile()
	defer f.Close()

	for _, characterID := range characterIDs {
		name := names[characterID]
		if name == "" {
			name = fmt.Sprintf("character %d", characterID)
		}

		sheet := sheetName(name)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "create sheet")
		}

		if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "write header row")
		}

		for i, th := range grouped[characterID] {
			cell := fmt.Sprintf("A%d", i+2)
			row := threadRow(th)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "write thread row")
			}
		}
	}

	// Drop the default sheet once real sheets exist.
	if len(characterIDs) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "delete default sheet")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "write workbook")
	}

	s.logger.Info("threads exported",
		"user_id", userID,
		"sheets", len(characterIDs),
	)
	return buf.Bytes(), nil
}

func threadRow(th *domain.Thread) []any {
	queued := ""
	if th.DateMarkedQueued != nil {
		queued = th.DateMarkedQueued.Format(time.DateOnly)
	}

	tagTexts := make([]string, len(th.Tags))
	for i, tag := range th.Tags {
		tagTexts[i] = tag.Text
	}

	return []any{
		th.UserTitle,
		th.PartnerURLIdentifier,
		th.PostID,
		queued,
		th.Archived,
		strings.Join(tagTexts, ", "),
	}
}

// sheetName makes a character name safe for use as an xlsx sheet name:
// the format forbids []:*?/\ and caps names at 31 characters.
func sheetName(name string) string {
	replacer := strings.NewReplacer("[", "(", "]", ")", ":", "-", "*", "-", "?", "-", "/", "-", "\\", "-")
	safe := replacer.Replace(name)
	if len(safe) > 31 {
		safe = safe[:31]
	}
	if safe == "" {
		safe = "unnamed"
	}
	return safe
}
