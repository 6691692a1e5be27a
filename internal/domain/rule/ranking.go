package rule

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

// Ranking rule names.
const (
	RuleScore           = "score"
	RuleNumeric         = "numeric"
	RuleRecency         = "recency"
	RuleComposite       = "composite"
	RuleInterestOverlap = "interest_overlap"
)

// ScoreField is the numeric attribute read by the score rule.
const ScoreField = "score"

// DefaultHalfLife is the recency half life used when none is given.
const DefaultHalfLife = 7 * 24 * time.Hour

// maxRecencyBonus keeps the interest_overlap recency bonus below one matching tag.
const maxRecencyBonus = 0.5

// Weights are the composite rule coefficients.
type Weights struct {
	Score   float64
	Level   float64
	Recency float64
}

// DefaultWeights returns the composite weights used when a request sets none.
func DefaultWeights() Weights {
	return Weights{Score: 1, Level: 10, Recency: 5}
}

// IsZero reports whether no weight is set.
func (w Weights) IsZero() bool {
	return w.Score == 0 && w.Level == 0 && w.Recency == 0
}

// RankingSpec names a ranking rule and its parameters.
type RankingSpec struct {
	Rule      string
	Field     string
	Weights   Weights
	HalfLife  time.Duration
	Interests []string
}

// Names lists the supported ranking rules.
func Names() []string {
	return []string{RuleComposite, RuleInterestOverlap, RuleNumeric, RuleRecency, RuleScore}
}

// IsKnown reports whether name is a supported ranking rule.
func IsKnown(name string) bool {
	return slices.Contains(Names(), name)
}

// Build validates the ranking parameters and returns the ranking function. asOf anchors every
// time-dependent rule so repeated runs with the same parameters rank identically.
func (s RankingSpec) Build(asOf time.Time) (criteria.RankFunc, error) {
	if s.HalfLife < 0 {
		return nil, fmt.Errorf("%w: half life must not be negative", domain.ErrInvalidCriteria)
	}
	halfLife := s.HalfLife
	if halfLife == 0 {
		halfLife = DefaultHalfLife
	}

	switch s.Rule {
	case RuleScore:
		return ByNumeric(ScoreField), nil
	case RuleNumeric:
		if s.Field == "" {
			return nil, fmt.Errorf("%w: numeric rule requires a field", domain.ErrInvalidCriteria)
		}
		return ByNumeric(s.Field), nil
	case RuleRecency:
		return ByRecency(), nil
	case RuleComposite:
		w := s.Weights
		if w.IsZero() {
			w = DefaultWeights()
		}
		if !finite(w.Score) || !finite(w.Level) || !finite(w.Recency) {
			return nil, fmt.Errorf("%w: weights must be finite", domain.ErrInvalidCriteria)
		}
		return Composite(w, halfLife, asOf), nil
	case RuleInterestOverlap:
		if len(s.Interests) == 0 {
			return nil, fmt.Errorf("%w: interest_overlap rule requires interests", domain.ErrInvalidCriteria)
		}
		if len(s.Interests) > MaxSpecValues {
			return nil, fmt.Errorf("%w: too many interests (max %d)", domain.ErrInvalidCriteria, MaxSpecValues)
		}
		return InterestOverlap(s.Interests, halfLife, asOf), nil
	case "":
		return nil, fmt.Errorf("%w: ranking rule is required", domain.ErrInvalidCriteria)
	default:
		return nil, fmt.Errorf("%w: unknown ranking rule %q", domain.ErrInvalidCriteria, s.Rule)
	}
}

// ByNumeric ranks by a numeric attribute; undefined when it is absent.
func ByNumeric(field string) criteria.RankFunc {
	return func(r record.Record) (float64, bool) {
		return r.Numeric(field)
	}
}

// ByRecency ranks newer records higher; undefined without a creation time.
func ByRecency() criteria.RankFunc {
	return func(r record.Record) (float64, bool) {
		if r.CreatedAt().IsZero() {
			return 0, false
		}
		return float64(r.CreatedAt().UnixMilli()) / 1e3, true
	}
}

// Composite blends score, permission level and recency:
// w.Score*score + w.Level*level + w.Recency*2^(-age/halfLife).
// Undefined without a score, or without a creation time when w.Recency is set.
func Composite(w Weights, halfLife time.Duration, asOf time.Time) criteria.RankFunc {
	return func(r record.Record) (float64, bool) {
		score, ok := r.Numeric(ScoreField)
		if !ok {
			return 0, false
		}
		rank := w.Score*score + w.Level*float64(r.Level())
		if w.Recency != 0 {
			if r.CreatedAt().IsZero() {
				return 0, false
			}
			rank += w.Recency * decay(r.CreatedAt(), asOf, halfLife)
		}
		return rank, true
	}
}

// InterestOverlap ranks by the number of tags shared with interests, plus a recency
// bonus in [0, 0.5] so fresher records win among equal overlaps.
func InterestOverlap(interests []string, halfLife time.Duration, asOf time.Time) criteria.RankFunc {
	set := toSet(interests)
	return func(r record.Record) (float64, bool) {
		if len(set) == 0 {
			return 0, false
		}
		overlap := float64(r.CountTags(set))
		if !r.CreatedAt().IsZero() {
			overlap += maxRecencyBonus * decay(r.CreatedAt(), asOf, halfLife)
		}
		return overlap, true
	}
}

// decay returns 2^(-age/halfLife) in (0, 1]; records newer than asOf count as age 0.
func decay(created, asOf time.Time, halfLife time.Duration) float64 {
	age := asOf.Sub(created)
	if age < 0 {
		age = 0
	}
	return math.Exp2(-float64(age) / float64(halfLife))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
