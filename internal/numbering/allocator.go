// Package numbering issues per-analyst, per-year quote numbers from fixed,
// disjoint numeric ranges. Numbers are sequential inside a range and never
// wrap into another analyst's band; an exhausted range is an operational
// limit that needs administrative action, not a retry.
package numbering

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoRangesLeft means every range of the pool is already bound to a
	// user, so a new analyst cannot be assigned one.
	ErrNoRangesLeft = errors.New("range_pool_exhausted")

	// ErrRangeExhausted means the analyst consumed their entire band for
	// the current year.
	ErrRangeExhausted = errors.New("allocation_exhausted")
)

// Range is one exclusive quote-number band.
type Range struct {
	Start int
	End   int
}

// Contains reports whether n falls inside the band.
func (r Range) Contains(n int) bool { return n >= r.Start && n <= r.End }

// DefaultPool is the fixed ordered pool: five disjoint bands, so at most five
// analysts can ever hold one under this policy.
var DefaultPool = []Range{
	{30000, 39999},
	{40000, 49999},
	{50000, 59999},
	{60000, 69999},
	{70000, 79999},
}

// SequenceStore is the persisted side of the allocator. NextNumber must treat
// the read-modify-write of the (user, year) counter as one atomic unit: two
// concurrent calls for the same user never observe the same last-issued value.
// PeekNumber derives the same number without reserving it.
type SequenceStore interface {
	AssignRange(userID uint) (Range, error)
	NextNumber(userID uint, year int) (int, error)
	PeekNumber(userID uint, year int) (int, error)
}

// Allocator formats quote numbers on top of a SequenceStore.
type Allocator struct {
	store SequenceStore
	now   func() time.Time
}

// New builds an allocator using the wall clock.
func New(store SequenceStore) *Allocator {
	return &Allocator{store: store, now: time.Now}
}

// NewWithClock builds an allocator with an injected clock, for tests and
// year-boundary scenarios.
func NewWithClock(store SequenceStore, now func() time.Time) *Allocator {
	return &Allocator{store: store, now: now}
}

// Format renders the canonical quote number: {year}-{sequence:05d}-{initial}.
func Format(year, number int, initial string) string {
	return fmt.Sprintf("%d-%05d-%s", year, number, initial)
}

// Generate reserves and returns the next quote number for the analyst,
// assigning a range on first use. The underlying counter advance is atomic;
// the returned number is issued exactly once.
func (a *Allocator) Generate(userID uint, initial string) (string, error) {
	year := a.now().Year()
	n, err := a.store.NextNumber(userID, year)
	if err != nil {
		return "", err
	}
	return Format(year, n, initial), nil
}

// Preview derives the number Generate would currently return, without
// reserving it. A concurrent Generate between preview and commit makes the
// preview stale; callers must re-derive on commit rather than trust it.
func (a *Allocator) Preview(userID uint, initial string) (string, error) {
	year := a.now().Year()
	n, err := a.store.PeekNumber(userID, year)
	if err != nil {
		return "", err
	}
	return Format(year, n, initial), nil
}
