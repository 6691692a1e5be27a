package query

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/rule"
)

// Result count limits.
const (
	DefaultMaxCount = 20
	MaxCountCap     = 100
)

// Limits bounds the requested result count.
type Limits struct {
	DefaultMaxCount int
	MaxCountCap     int
}

// DefaultLimits returns the built-in result count limits.
func DefaultLimits() Limits {
	return Limits{DefaultMaxCount: DefaultMaxCount, MaxCountCap: MaxCountCap}
}

// Clamp normalizes a requested result count:
// nil -> DefaultMaxCount, negative -> 0, above cap -> MaxCountCap.
// Unset limits fall back to the built-in ones.
func (l Limits) Clamp(n *int) int {
	def, capped := l.DefaultMaxCount, l.MaxCountCap
	if def <= 0 {
		def = DefaultMaxCount
	}
	if capped <= 0 {
		capped = MaxCountCap
	}
	v := def
	if n != nil {
		v = *n
	}
	return min(max(v, 0), capped)
}

// Query is a validated curation request.
type Query struct {
	eligibility   rule.EligibilitySpec
	requiredLevel string
	ranking       rule.RankingSpec
	maxCount      int
	asOf          time.Time
}

// New validates and normalizes curation parameters.
// maxCount: nil -> limits.DefaultMaxCount, negative -> 0, above cap -> cap.
// An empty requiredLevel means the lowest level of the domain. A zero asOf means now.
func New(
	eligibility rule.EligibilitySpec,
	requiredLevel string,
	ranking rule.RankingSpec,
	maxCount *int,
	asOf time.Time,
	limits Limits,
) (Query, error) {
	if err := eligibility.Validate(); err != nil {
		return Query{}, err
	}
	if ranking.Rule == "" {
		ranking.Rule = rule.RuleScore
	}
	if !rule.IsKnown(ranking.Rule) {
		return Query{}, fmt.Errorf("%w: unknown ranking rule %q", domain.ErrInvalidCriteria, ranking.Rule)
	}
	n := limits.Clamp(maxCount)

	if asOf.IsZero() {
		asOf = time.Now()
	}

	return Query{
		eligibility:   eligibility,
		requiredLevel: requiredLevel,
		ranking:       ranking,
		maxCount:      n,
		asOf:          asOf.UTC(),
	}, nil
}

// Eligibility returns the eligibility spec.
func (q *Query) Eligibility() rule.EligibilitySpec { return q.eligibility }

// RequiredLevel returns the raw required level (number or name).
func (q *Query) RequiredLevel() string { return q.requiredLevel }

// Ranking returns the ranking spec.
func (q *Query) Ranking() rule.RankingSpec { return q.ranking }

// MaxCount returns the normalized result bound.
func (q *Query) MaxCount() int { return q.maxCount }

// AsOf returns the reference time for time-dependent rules.
func (q *Query) AsOf() time.Time { return q.asOf }

// Criteria resolves the query against a permission domain.
func (q *Query) Criteria(dom permission.Domain) (criteria.Criteria, error) {
	required := dom.Min()
	if q.requiredLevel != "" {
		lvl, err := dom.Parse(q.requiredLevel)
		if err != nil {
			return criteria.Criteria{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
		}
		required = lvl
	}

	rank, err := q.ranking.Build(q.asOf)
	if err != nil {
		return criteria.Criteria{}, err
	}

	c, err := criteria.New(q.eligibility.Predicate(), dom, required, rank, q.maxCount)
	if err != nil {
		return criteria.Criteria{}, fmt.Errorf("build criteria: %w", err)
	}
	return c, nil
}
