package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/entry"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/query"
	"github.com/kailas-cloud/curator/internal/domain/record"
	"github.com/kailas-cloud/curator/internal/domain/rule"
	"github.com/kailas-cloud/curator/internal/usecase/curation"
)

// ResolveRecordLevel maps a record level to a number. Numbers are taken as is,
// even outside the domain, so such records simply never pass the permission stage.
// Names must belong to the domain.
func ResolveRecordLevel(dom permission.Domain, ref LevelRef) (int, error) {
	s := strings.TrimSpace(string(ref))
	if s == "" {
		return int(dom.Min()), nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	lvl, err := dom.Parse(s)
	if err != nil {
		return 0, err
	}
	return int(lvl), nil
}

// ToRecord validates a wire record.
func (r Record) ToRecord(dom permission.Domain) (record.Record, error) {
	lvl, err := ResolveRecordLevel(dom, r.Level)
	if err != nil {
		return record.Record{}, err
	}
	f := record.Fields{
		ID:         r.ID,
		Kind:       record.Kind(r.Kind),
		Label:      r.Label,
		Status:     r.Status,
		Level:      lvl,
		Tags:       r.Tags,
		Numerics:   r.Numerics,
		Attributes: r.Attributes,
	}
	if r.CreatedAt != nil {
		f.CreatedAt = *r.CreatedAt
	}
	return record.New(f)
}

// ToRecords validates wire records, reporting the index of the first bad one.
func ToRecords(dom permission.Domain, in []Record) ([]record.Record, error) {
	out := make([]record.Record, 0, len(in))
	for i, r := range in {
		rec, err := r.ToRecord(dom)
		if err != nil {
			return nil, fmt.Errorf("%w: records[%d]: %w", domain.ErrInvalidRecord, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// FromRecord converts a domain record to its wire form.
func FromRecord(dom permission.Domain, r record.Record) Record {
	out := Record{
		ID:         r.ID(),
		Kind:       string(r.Kind()),
		Label:      r.Label(),
		Status:     r.Status(),
		Level:      LevelRef(dom.Name(permission.Level(r.Level()))),
		Tags:       r.Tags(),
		Numerics:   r.Numerics(),
		Attributes: r.Attributes(),
	}
	if t := r.CreatedAt(); !t.IsZero() {
		out.CreatedAt = &t
	}
	return out
}

// FromRecords converts domain records to their wire form.
func FromRecords(dom permission.Domain, in []record.Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = FromRecord(dom, r)
	}
	return out
}

// ToQuery validates wire criteria against the result count limits.
func (q Query) ToQuery(limits query.Limits) (query.Query, error) {
	elig := rule.EligibilitySpec{
		Statuses:   q.Statuses,
		Interests:  q.Interests,
		ExcludeIDs: q.ExcludeIDs,
	}
	for _, k := range q.Kinds {
		elig.Kinds = append(elig.Kinds, record.Kind(k))
	}

	var ranking rule.RankingSpec
	if q.Rank != nil {
		ranking = rule.RankingSpec{
			Rule:      q.Rank.Rule,
			Field:     q.Rank.Field,
			Interests: q.Rank.Interests,
		}
		if q.Rank.Weights != nil {
			ranking.Weights = rule.Weights(*q.Rank.Weights)
		}
		if q.Rank.HalfLife != "" {
			d, err := time.ParseDuration(q.Rank.HalfLife)
			if err != nil {
				return query.Query{}, fmt.Errorf("%w: half_life: %w", domain.ErrInvalidCriteria, err)
			}
			ranking.HalfLife = d
		}
	}

	var asOf time.Time
	if q.AsOf != nil {
		asOf = *q.AsOf
	}
	return query.New(elig, string(q.RequiredLevel), ranking, q.MaxCount, asOf, limits)
}

// FromEntry converts a curated entry to its wire form.
func FromEntry(dom permission.Domain, e entry.Entry) Entry {
	out := Entry{
		Position:   e.Position(),
		ID:         e.ID(),
		Label:      e.Label(),
		Kind:       string(e.Kind()),
		Status:     e.Status(),
		Level:      LevelRef(dom.Name(permission.Level(e.Level()))),
		Rank:       e.Rank(),
		Tags:       e.Tags(),
		Numerics:   e.Numerics(),
		Attributes: e.Attributes(),
	}
	if t := e.CreatedAt(); !t.IsZero() {
		out.CreatedAt = &t
	}
	return out
}

// FromOutcome converts a pipeline outcome. Slices are never nil so empty
// results encode as [].
func FromOutcome(dom permission.Domain, out curation.Outcome, asOf time.Time) CurateResponse {
	items := make([]Entry, len(out.Entries))
	for i, e := range out.Entries {
		items[i] = FromEntry(dom, e)
	}
	dropped := make([]Dropped, len(out.Dropped))
	for i, d := range out.Dropped {
		dropped[i] = Dropped{ID: d.ID, Reason: d.Reason.Error()}
	}
	return CurateResponse{
		Items:   items,
		Dropped: dropped,
		Stats:   Stats(out.Stats),
		AsOf:    asOf,
	}
}

// FromDomain describes a permission domain.
func FromDomain(dom permission.Domain) Permission {
	return Permission{Min: int(dom.Min()), Max: int(dom.Max()), Names: dom.Names()}
}
