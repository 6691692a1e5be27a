package curator

import (
	"time"

	"github.com/kailas-cloud/curator/internal/domain/rule"
)

// Kind is the entity a record represents.
type Kind string

// Record kinds.
const (
	KindUser Kind = "user"
	KindPost Kind = "post"
)

// Record is an input item. Kind defaults to user, Label to ID.
type Record struct {
	ID         string
	Kind       Kind
	Label      string
	Status     string
	Level      int
	Tags       []string
	CreatedAt  time.Time
	Numerics   map[string]float64
	Attributes map[string]string
}

// Entry is a curated record at its 1-based position.
type Entry struct {
	Position   int
	ID         string
	Label      string
	Kind       Kind
	Status     string
	Level      int
	Rank       float64
	Tags       []string
	CreatedAt  time.Time
	Numerics   map[string]float64
	Attributes map[string]string
}

// Dropped is a record left out because its rank was undefined.
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

// Result is the outcome of a curation run. Entries is never nil.
type Result struct {
	Entries []Entry
	Dropped []Dropped
	Stats   Stats
}

// Ranking rule names.
const (
	RuleScore           = rule.RuleScore
	RuleNumeric         = rule.RuleNumeric
	RuleRecency         = rule.RuleRecency
	RuleComposite       = rule.RuleComposite
	RuleInterestOverlap = rule.RuleInterestOverlap
)

// Weights are the composite rule coefficients.
type Weights struct {
	Score   float64
	Level   float64
	Recency float64
}

// Ranking selects a ranking rule and its parameters.
type Ranking struct {
	Rule      string
	Field     string
	Weights   Weights
	HalfLife  time.Duration
	Interests []string
}

// ByScore ranks by the "score" numeric.
func ByScore() Ranking { return Ranking{Rule: RuleScore} }

// ByNumeric ranks by the named numeric.
func ByNumeric(field string) Ranking { return Ranking{Rule: RuleNumeric, Field: field} }

// ByRecency ranks newer records first.
func ByRecency() Ranking { return Ranking{Rule: RuleRecency} }

// Composite blends score, level and recency. Zero weights select the defaults.
func Composite(w Weights, halfLife time.Duration) Ranking {
	return Ranking{Rule: RuleComposite, Weights: w, HalfLife: halfLife}
}

// InterestOverlap ranks by the number of tags shared with interests.
func InterestOverlap(halfLife time.Duration, interests ...string) Ranking {
	return Ranking{Rule: RuleInterestOverlap, HalfLife: halfLife, Interests: interests}
}

// Predicate reports whether a record is eligible. It must not depend on state
// outside the record.
type Predicate func(r Record) bool

// RankFunc ranks a record, higher first. ok=false marks the rank undefined and the
// record is reported in Result.Dropped.
type RankFunc func(r Record) (rank float64, ok bool)

// Criteria configures a curation run. Empty filters keep every record.
// An empty RequiredLevel means the lowest level of the domain; a nil MaxCount
// uses the configured default. A zero AsOf means now.
//
// Eligible is combined with the named filters; a record must pass both. RankBy,
// when set, replaces Rank.
type Criteria struct {
	Statuses      []string
	Kinds         []Kind
	Interests     []string
	ExcludeIDs    []string
	Eligible      Predicate
	RequiredLevel string
	Rank          Ranking
	RankBy        RankFunc
	MaxCount      *int
	AsOf          time.Time
}

// Count returns a pointer to n for Criteria.MaxCount.
func Count(n int) *int { return &n }
