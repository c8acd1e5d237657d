package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
	"github.com/threadkeep/threadkeep-server/internal/store"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
)

// TagService is the tag/partner vocabulary manager. Vocabulary identity is
// the case-folded text: "Angst" and "angst" are one entry. Replacement and
// deletion match case-insensitively but write the replacement verbatim.
//
// Bulk operations write row by row with no surrounding transaction: a
// failure partway through leaves earlier rows changed and later ones not.
// That is the documented behavior, not an oversight.
type TagService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewTagService creates a tag service.
func NewTagService(store *sqlite.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// AllTags returns one representative per case-insensitive tag group across
// every thread the user owns, archived and hiatused included. The
// representative is the lexicographically smallest original-cased variant in
// the group, and the result is sorted case-insensitively, so the listing is
// deterministic regardless of store iteration order.
func (s *TagService) AllTags(ctx context.Context, userID string) ([]string, error) {
	tags, err := s.store.ListThreadTags(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list thread tags")
	}

	return collapseVocabulary(tagTexts(tags)), nil
}

// ReplaceTag overwrites every tag row whose case-folded text matches current
// with replacement, verbatim. Each row is written individually.
func (s *TagService) ReplaceTag(ctx context.Context, userID, current, replacement string) error {
	tags, err := s.store.ListThreadTags(ctx, userID)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "list thread tags")
	}

	folded := domain.FoldTag(current)
	replaced := 0
	for _, tag := range tags {
		if domain.FoldTag(tag.Text) != folded {
			continue
		}
		if err := s.store.UpdateThreadTagText(ctx, tag.ID, replacement); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "update tag row")
		}
		replaced++
	}

	s.logger.Info("tag replaced",
		"current", current,
		"replacement", replacement,
		"rows", replaced,
		"user_id", userID,
	)
	return nil
}

// DeleteTag removes every tag row whose case-folded text matches text.
func (s *TagService) DeleteTag(ctx context.Context, userID, text string) error {
	tags, err := s.store.ListThreadTags(ctx, userID)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "list thread tags")
	}

	folded := domain.FoldTag(text)
	deleted := 0
	for _, tag := range tags {
		if domain.FoldTag(tag.Text) != folded {
			continue
		}
		if err := s.store.DeleteThreadTag(ctx, tag.ID); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "delete tag row")
		}
		deleted++
	}

	s.logger.Info("tag deleted", "text", text, "rows", deleted, "user_id", userID)
	return nil
}

// AllPartners returns the partner vocabulary: one representative per
// case-insensitive partner identifier across all the user's threads, under
// the same representative and ordering rules as AllTags.
func (s *TagService) AllPartners(ctx context.Context, userID string) ([]string, error) {
	threads, err := s.listAllThreads(ctx, userID)
	if err != nil {
		return nil, err
	}

	var partners []string
	for _, th := range threads {
		if th.PartnerURLIdentifier != "" {
			partners = append(partners, th.PartnerURLIdentifier)
		}
	}
	return collapseVocabulary(partners), nil
}

// ReplacePartner overwrites the partner identifier on every thread whose
// current partner matches case-insensitively, verbatim, row by row.
func (s *TagService) ReplacePartner(ctx context.Context, userID, current, replacement string) error {
	threads, err := s.listAllThreads(ctx, userID)
	if err != nil {
		return err
	}

	folded := domain.FoldTag(current)
	replaced := 0
	for _, th := range threads {
		if th.PartnerURLIdentifier == "" || domain.FoldTag(th.PartnerURLIdentifier) != folded {
			continue
		}
		if err := s.store.UpdateThreadPartner(ctx, th.ID, replacement); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "update thread partner")
		}
		replaced++
	}

	s.logger.Info("partner replaced",
		"current", current,
		"replacement", replacement,
		"rows", replaced,
		"user_id", userID,
	)
	return nil
}

// DeletePartner clears the partner identifier on every matching thread.
func (s *TagService) DeletePartner(ctx context.Context, userID, text string) error {
	threads, err := s.listAllThreads(ctx, userID)
	if err != nil {
		return err
	}

	folded := domain.FoldTag(text)
	cleared := 0
	for _, th := range threads {
		if th.PartnerURLIdentifier == "" || domain.FoldTag(th.PartnerURLIdentifier) != folded {
			continue
		}
		if err := s.store.UpdateThreadPartner(ctx, th.ID, ""); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "clear thread partner")
		}
		cleared++
	}

	s.logger.Info("partner deleted", "text", text, "rows", cleared, "user_id", userID)
	return nil
}

// listAllThreads fetches the user's entire thread corpus: both archive
// states, hiatused characters included. Vocabulary never narrows.
func (s *TagService) listAllThreads(ctx context.Context, userID string) ([]*domain.Thread, error) {
	threads, err := s.store.ListThreads(ctx, userID, store.ThreadQuery{IncludeHiatused: true})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list threads")
	}
	return threads, nil
}

// collapseVocabulary groups texts case-insensitively, keeps the
// lexicographically smallest original-cased variant of each group, and sorts
// the result case-insensitively.
func collapseVocabulary(texts []string) []string {
	representative := make(map[string]string)
	for _, text := range texts {
		folded := domain.FoldTag(text)
		if current, ok := representative[folded]; !ok || text < current {
			representative[folded] = text
		}
	}

	result := make([]string, 0, len(representative))
	for _, text := range representative {
		result = append(result, text)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i]), strings.ToLower(result[j])
		if a == b {
			return result[i] < result[j]
		}
		return a < b
	})
	return result
}

func tagTexts(tags []domain.ThreadTag) []string {
	texts := make([]string, len(tags))
	for i, tag := range tags {
		texts[i] = tag.Text
	}
	return texts
}
