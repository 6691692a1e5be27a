package rule

import (
	"fmt"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

// MaxSpecValues bounds every list in a rule spec.
const MaxSpecValues = 256

// EligibilitySpec selects candidate records. All non-empty conditions must hold;
// an empty spec keeps every record.
type EligibilitySpec struct {
	Statuses   []string
	Kinds      []record.Kind
	Interests  []string
	ExcludeIDs []string
}

// Validate checks list sizes and kinds.
func (s EligibilitySpec) Validate() error {
	lists := map[string]int{
		"statuses":    len(s.Statuses),
		"kinds":       len(s.Kinds),
		"interests":   len(s.Interests),
		"exclude_ids": len(s.ExcludeIDs),
	}
	for name, n := range lists {
		if n > MaxSpecValues {
			return fmt.Errorf("%w: too many %s (max %d)", domain.ErrInvalidCriteria, name, MaxSpecValues)
		}
	}
	for _, k := range s.Kinds {
		if !k.IsValid() {
			return fmt.Errorf("%w: invalid kind %q", domain.ErrInvalidCriteria, k)
		}
	}
	return nil
}

// Predicate builds the eligibility predicate.
func (s EligibilitySpec) Predicate() criteria.Predicate {
	var preds []criteria.Predicate
	switch {
	case len(s.Statuses) == 1 && s.Statuses[0] == record.StatusActive:
		preds = append(preds, ActiveOnly())
	case len(s.Statuses) > 0:
		preds = append(preds, StatusIn(s.Statuses...))
	}
	if len(s.Kinds) > 0 {
		preds = append(preds, KindIn(s.Kinds...))
	}
	if len(s.Interests) > 0 {
		preds = append(preds, MatchesInterests(s.Interests...))
	}
	if len(s.ExcludeIDs) > 0 {
		preds = append(preds, ExcludeIDs(s.ExcludeIDs...))
	}
	return And(preds...)
}

// ActiveOnly keeps records with the active status.
func ActiveOnly() criteria.Predicate {
	return func(r record.Record) bool { return r.IsActive() }
}

// StatusIn keeps records whose status is one of statuses.
func StatusIn(statuses ...string) criteria.Predicate {
	set := toSet(statuses)
	return func(r record.Record) bool {
		_, ok := set[r.Status()]
		return ok
	}
}

// KindIn keeps records of the given kinds.
func KindIn(kinds ...record.Kind) criteria.Predicate {
	set := make(map[record.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return func(r record.Record) bool {
		_, ok := set[r.Kind()]
		return ok
	}
}

// MatchesInterests keeps records sharing at least one tag with interests.
func MatchesInterests(interests ...string) criteria.Predicate {
	set := toSet(interests)
	return func(r record.Record) bool { return r.HasAnyTag(set) }
}

// ExcludeIDs drops the listed records.
func ExcludeIDs(ids ...string) criteria.Predicate {
	set := toSet(ids)
	return func(r record.Record) bool {
		_, excluded := set[r.ID()]
		return !excluded
	}
}

// And keeps records every predicate holds for. With no predicates it keeps all.
func And(preds ...criteria.Predicate) criteria.Predicate {
	switch len(preds) {
	case 0:
		return criteria.All
	case 1:
		return preds[0]
	}
	return func(r record.Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
