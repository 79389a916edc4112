// Package services holds the HR workflows. Services never read the wall clock
// directly and never talk to gorm; both arrive through constructors.
package services

import (
	"errors"
	"sort"
	"time"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/store"
	"dayflow-backend/internal/utils"
)

const msgNoPermission = "You do not have permission to perform this action"

// notFound turns a missing row into a caller-facing NotFound and passes anything else through.
func notFound(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return err
}

func conflictOnDuplicate(err error, message string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Conflict(message)
	}
	return err
}

func today(clk clock.Clock) time.Time {
	return clock.StartOfDay(clk.Now())
}

func page(p, limit, defaultLimit int) store.Page {
	if p < 1 {
		p = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > utils.MaxPageLimit {
		limit = utils.MaxPageLimit
	}
	return store.Page{Page: p, Limit: limit}
}

func pagination(total int64, p store.Page) utils.Pagination {
	return utils.NewPagination(total, p.Page, p.Limit)
}

type countedKey struct {
	key   string
	count int
}

// sortedCounts orders a tally by count descending, then key ascending.
func sortedCounts(tally map[string]int) []countedKey {
	out := make([]countedKey, 0, len(tally))
	for key, count := range tally {
		out = append(out, countedKey{key: key, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}
