package numbering

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
)

// casAttempts bounds the compare-and-swap retry loop. Losing the race just
// means re-reading a fresh counter, so a handful of attempts is plenty.
const casAttempts = 16

// GormStore persists ranges and sequence counters with GORM. The counter
// advance is a conditional UPDATE guarded on the previously read value, which
// is atomic on both Postgres and SQLite; the loser of a race retries against
// the fresh row and simply gets the next number.
type GormStore struct {
	db   *gorm.DB
	pool []Range
}

// NewGormStore builds a store over the default five-range pool.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, pool: DefaultPool}
}

// NewGormStoreWithPool builds a store over a custom pool, for tests.
func NewGormStoreWithPool(db *gorm.DB, pool []Range) *GormStore {
	return &GormStore{db: db, pool: pool}
}

// AssignRange returns the analyst's band, binding the next unused pool range
// in order on first use. Idempotent; a concurrent first use loses the insert
// to a unique-index violation and re-reads the winner's row.
func (s *GormStore) AssignRange(userID uint) (Range, error) {
	rng, found, err := s.lookupRange(userID)
	if err != nil {
		return Range{}, err
	}
	if found {
		return rng, nil
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		var taken []models.UserRange
		if err := s.db.Order("range_start").Find(&taken).Error; err != nil {
			return Range{}, err
		}
		used := make(map[int]bool, len(taken))
		for _, t := range taken {
			used[t.RangeStart] = true
		}
		var pick *Range
		for i := range s.pool {
			if !used[s.pool[i].Start] {
				pick = &s.pool[i]
				break
			}
		}
		if pick == nil {
			return Range{}, ErrNoRangesLeft
		}
		err := s.db.Create(&models.UserRange{
			UserID:     userID,
			RangeStart: pick.Start,
			RangeEnd:   pick.End,
		}).Error
		if err == nil {
			return *pick, nil
		}
		// Unique-index violation: either another request bound this user,
		// or the picked range was taken meanwhile. Re-read and retry.
		rng, found, lerr := s.lookupRange(userID)
		if lerr != nil {
			return Range{}, lerr
		}
		if found {
			return rng, nil
		}
	}
	return Range{}, fmt.Errorf("assign_range: retries exhausted for user %d", userID)
}

func (s *GormStore) lookupRange(userID uint) (Range, bool, error) {
	var ur models.UserRange
	err := s.db.Where("user_id = ?", userID).First(&ur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Range{}, false, nil
	}
	if err != nil {
		return Range{}, false, err
	}
	return Range{Start: ur.RangeStart, End: ur.RangeEnd}, true, nil
}

// NextNumber reserves the next number for (user, year). First number of the
// year is the range start; after that the counter moves forward one at a
// time, by conditional update, and fails once it would leave the band.
func (s *GormStore) NextNumber(userID uint, year int) (int, error) {
	rng, err := s.AssignRange(userID)
	if err != nil {
		return 0, err
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		var seq models.QuoteSequence
		err := s.db.Where("user_id = ? AND year = ?", userID, year).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created := models.QuoteSequence{UserID: userID, Year: year, LastIssued: rng.Start}
			if cerr := s.db.Create(&created).Error; cerr != nil {
				// Concurrent first quote of the year: the row exists
				// now, loop and advance it instead.
				continue
			}
			return rng.Start, nil
		}
		if err != nil {
			return 0, err
		}

		next := seq.LastIssued + 1
		if next > rng.End {
			return 0, ErrRangeExhausted
		}
		res := s.db.Model(&models.QuoteSequence{}).
			Where("user_id = ? AND year = ? AND last_issued = ?", userID, year, seq.LastIssued).
			Update("last_issued", next)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return next, nil
		}
		// Raced with another allocation; re-read and try the next value.
	}
	return 0, fmt.Errorf("next_number: retries exhausted for user %d year %d", userID, year)
}

// PeekNumber derives the number NextNumber would return without reserving it.
func (s *GormStore) PeekNumber(userID uint, year int) (int, error) {
	rng, err := s.AssignRange(userID)
	if err != nil {
		return 0, err
	}
	var seq models.QuoteSequence
	err = s.db.Where("user_id = ? AND year = ?", userID, year).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rng.Start, nil
	}
	if err != nil {
		return 0, err
	}
	next := seq.LastIssued + 1
	if next > rng.End {
		return 0, ErrRangeExhausted
	}
	return next, nil
}
