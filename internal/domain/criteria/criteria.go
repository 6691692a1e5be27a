package criteria

import (
	"fmt"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

// Predicate decides whether a record is a curation candidate. It must be side-effect free.
type Predicate func(r record.Record) bool

// RankFunc computes a record's rank. ok=false means the rank is undefined for the record.
// It must be side-effect free.
type RankFunc func(r record.Record) (rank float64, ok bool)

// Criteria is the validated configuration of one curation run.
type Criteria struct {
	eligible Predicate
	domain   permission.Domain
	required permission.Level
	rank     RankFunc
	maxCount int
}

// New validates and creates Criteria.
// A nil predicate keeps every record. A negative maxCount is clamped to 0.
func New(
	eligible Predicate,
	dom permission.Domain,
	required permission.Level,
	rank RankFunc,
	maxCount int,
) (Criteria, error) {
	if rank == nil {
		return Criteria{}, fmt.Errorf("%w: ranking function is required", domain.ErrInvalidCriteria)
	}
	if !dom.Contains(required) {
		return Criteria{}, fmt.Errorf("%w: required level %d outside permission domain [%d, %d]",
			domain.ErrInvalidCriteria, required, dom.Min(), dom.Max())
	}
	if eligible == nil {
		eligible = All
	}
	if maxCount < 0 {
		maxCount = 0
	}
	return Criteria{
		eligible: eligible,
		domain:   dom,
		required: required,
		rank:     rank,
		maxCount: maxCount,
	}, nil
}

// All is the predicate that keeps every record.
func All(record.Record) bool { return true }

// Eligible returns the eligibility predicate.
func (c Criteria) Eligible() Predicate { return c.eligible }

// Domain returns the permission domain.
func (c Criteria) Domain() permission.Domain { return c.domain }

// Required returns the minimum permission level.
func (c Criteria) Required() permission.Level { return c.required }

// Rank returns the ranking function.
func (c Criteria) Rank() RankFunc { return c.rank }

// MaxCount returns the maximum number of entries to return.
func (c Criteria) MaxCount() int { return c.maxCount }

// WithMaxCount returns a copy with a different result bound (negative clamps to 0).
func (c Criteria) WithMaxCount(n int) Criteria {
	if n < 0 {
		n = 0
	}
	c.maxCount = n
	return c
}
