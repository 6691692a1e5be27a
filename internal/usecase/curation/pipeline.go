package curation

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/domain/entry"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

// Ranked pairs a record with its computed rank.
type Ranked struct {
	Record record.Record
	Rank   float64
}

// Dropped is a record excluded during ranking.
type Dropped struct {
	ID     string
	Reason error
}

// Stats counts records surviving each stage.
type Stats struct {
	Input     int
	Eligible  int
	Permitted int
	Ranked    int
	Returned  int
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	Entries []entry.Entry
	Dropped []Dropped
	Stats   Stats
}

// TieBreak orders two records of equal rank. It must define a strict total order.
type TieBreak func(a, b record.Record) int

// ByIDAscending breaks ties by identifier, byte-wise ascending.
func ByIDAscending(a, b record.Record) int {
	return cmp.Compare(a.ID(), b.ID())
}

// SelectEligible returns the records the predicate holds for, in input order.
// A nil predicate keeps every record.
func SelectEligible(records []record.Record, eligible criteria.Predicate) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if eligible == nil || eligible(r) {
			out = append(out, r)
		}
	}
	return out
}

// RestrictByPermission keeps records whose level satisfies required under dom.
func RestrictByPermission(
	records []record.Record, dom permission.Domain, required permission.Level,
) ([]record.Record, error) {
	if !dom.Contains(required) {
		return nil, fmt.Errorf("%w: required level %d outside permission domain [%d, %d]",
			domain.ErrInvalidCriteria, required, dom.Min(), dom.Max())
	}
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if dom.Satisfies(permission.Level(r.Level()), required) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ComputeRank applies fn to r. A missing, NaN or infinite value yields a
// *domain.RankingUndefinedError.
func ComputeRank(r record.Record, fn criteria.RankFunc) (float64, error) {
	if fn == nil {
		return 0, domain.NewRankingUndefined(r.ID(), "no ranking function")
	}
	v, ok := fn(r)
	switch {
	case !ok:
		return 0, domain.NewRankingUndefined(r.ID(), "no value")
	case math.IsNaN(v):
		return 0, domain.NewRankingUndefined(r.ID(), "NaN")
	case math.IsInf(v, 0):
		return 0, domain.NewRankingUndefined(r.ID(), "infinite")
	}
	return v, nil
}

// RankAll ranks every record, excluding those whose rank is undefined.
func RankAll(records []record.Record, fn criteria.RankFunc) ([]Ranked, []Dropped) {
	ranked := make([]Ranked, 0, len(records))
	var dropped []Dropped
	for _, r := range records {
		v, err := ComputeRank(r, fn)
		if err != nil {
			dropped = append(dropped, Dropped{ID: r.ID(), Reason: err})
			continue
		}
		ranked = append(ranked, Ranked{Record: r, Rank: v})
	}
	return ranked, dropped
}

// Order sorts by rank descending, breaking ties with tie (ByIDAscending when nil).
// The input slice is left untouched.
func Order(ranked []Ranked, tie TieBreak) []Ranked {
	if tie == nil {
		tie = ByIDAscending
	}
	out := slices.Clone(ranked)
	if out == nil {
		out = []Ranked{}
	}
	slices.SortStableFunc(out, func(a, b Ranked) int {
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		return tie(a.Record, b.Record)
	})
	return out
}

// Limit returns the first maxCount items with capacity clipped, so appending to the
// result never writes into seq. maxCount <= 0 yields an empty slice.
func Limit[T any](seq []T, maxCount int) []T {
	if maxCount <= 0 {
		return []T{}
	}
	if len(seq) > maxCount {
		return slices.Clip(seq[:maxCount])
	}
	return slices.Clip(seq)
}

// Project maps a ranked record to its display entry at a 1-based position.
func Project(r Ranked, position int) entry.Entry {
	return entry.New(r.Record, position, r.Rank)
}

// ProjectAll projects an ordered sequence, numbering positions from 1.
func ProjectAll(ranked []Ranked) []entry.Entry {
	out := make([]entry.Entry, len(ranked))
	for i, r := range ranked {
		out[i] = Project(r, i+1)
	}
	return out
}

// Run executes the full pipeline:
// eligibility -> permission -> rank -> order -> limit -> project.
// Configuration and input errors are returned before any stage runs; per-record
// ranking failures are reported in Outcome.Dropped.
func Run(records []record.Record, c criteria.Criteria) (Outcome, error) {
	if c.Rank() == nil {
		return Outcome{}, fmt.Errorf("%w: ranking function is required", domain.ErrInvalidCriteria)
	}
	if !c.Domain().Contains(c.Required()) {
		return Outcome{}, fmt.Errorf("%w: required level %d outside permission domain",
			domain.ErrInvalidCriteria, c.Required())
	}
	if err := record.CheckUnique(records); err != nil {
		return Outcome{}, err
	}

	stats := Stats{Input: len(records)}

	eligible := SelectEligible(records, c.Eligible())
	stats.Eligible = len(eligible)

	permitted, err := RestrictByPermission(eligible, c.Domain(), c.Required())
	if err != nil {
		return Outcome{}, err
	}
	stats.Permitted = len(permitted)

	ranked, dropped := RankAll(permitted, c.Rank())
	stats.Ranked = len(ranked)

	top := Limit(Order(ranked, nil), c.MaxCount())
	entries := ProjectAll(top)
	stats.Returned = len(entries)

	return Outcome{Entries: entries, Dropped: dropped, Stats: stats}, nil
}
