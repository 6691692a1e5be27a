package curator

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/domain/entry"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/query"
	"github.com/kailas-cloud/curator/internal/domain/record"
	"github.com/kailas-cloud/curator/internal/domain/rule"
	curationuc "github.com/kailas-cloud/curator/internal/usecase/curation"
)

// curationUseCase is the pipeline entry point, swappable in tests.
type curationUseCase interface {
	Curate(ctx context.Context, records []record.Record, c criteria.Criteria) (curationuc.Outcome, error)
}

// Client runs curation in-process.
type Client struct {
	svc    curationUseCase
	domain permission.Domain
	limits query.Limits
	obs    *observer
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		permMin:         permission.DefaultMin,
		permMax:         permission.DefaultMax,
		maxRecords:      curationuc.DefaultMaxRecords,
		defaultMaxCount: query.DefaultMaxCount,
		maxCountCap:     query.MaxCountCap,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	dom, err := buildDomain(cfg)
	if err != nil {
		return nil, fmt.Errorf("curator: %w", err)
	}
	if cfg.defaultMaxCount > cfg.maxCountCap {
		return nil, fmt.Errorf("curator: default max count %d exceeds cap %d", cfg.defaultMaxCount, cfg.maxCountCap)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		svc:    curationuc.New(nil).WithMaxRecords(cfg.maxRecords),
		domain: dom,
		limits: query.Limits{DefaultMaxCount: cfg.defaultMaxCount, MaxCountCap: cfg.maxCountCap},
		obs:    obs,
	}, nil
}

func buildDomain(cfg *clientConfig) (permission.Domain, error) {
	if len(cfg.permNames) > 0 {
		return permission.NewNamed(cfg.permNames...)
	}
	return permission.NewRange(cfg.permMin, cfg.permMax)
}

// Rules lists the supported ranking rule names.
func (c *Client) Rules() []string { return rule.Names() }

// Curate runs the pipeline over records. Records whose rank is undefined are
// reported in Result.Dropped; every other failure aborts the run.
func (c *Client) Curate(ctx context.Context, records []Record, cr Criteria) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("curate", start, len(res.Entries), err) }()

	recs, err := toDomainRecords(records)
	if err != nil {
		return Result{}, err
	}
	crit, err := c.criteria(cr)
	if err != nil {
		return Result{}, err
	}

	out, err := c.svc.Curate(ctx, recs, crit)
	if err != nil {
		return Result{}, fmt.Errorf("curator: %w", err)
	}
	return fromOutcome(out), nil
}

func (c *Client) criteria(cr Criteria) (criteria.Criteria, error) {
	elig := rule.EligibilitySpec{
		Statuses:   cr.Statuses,
		Interests:  cr.Interests,
		ExcludeIDs: cr.ExcludeIDs,
	}
	for _, k := range cr.Kinds {
		elig.Kinds = append(elig.Kinds, record.Kind(k))
	}
	ranking := rule.RankingSpec{
		Rule:      cr.Rank.Rule,
		Field:     cr.Rank.Field,
		Weights:   rule.Weights(cr.Rank.Weights),
		HalfLife:  cr.Rank.HalfLife,
		Interests: cr.Rank.Interests,
	}
	if cr.RankBy != nil {
		ranking = rule.RankingSpec{Rule: rule.RuleScore}
	}

	q, err := query.New(elig, cr.RequiredLevel, ranking, cr.MaxCount, cr.AsOf, c.limits)
	if err != nil {
		return criteria.Criteria{}, fmt.Errorf("curator: %w", err)
	}
	crit, err := q.Criteria(c.domain)
	if err != nil {
		return criteria.Criteria{}, fmt.Errorf("curator: %w", err)
	}
	if cr.Eligible == nil && cr.RankBy == nil {
		return crit, nil
	}

	eligible := crit.Eligible()
	if cr.Eligible != nil {
		custom := cr.Eligible
		eligible = rule.And(eligible, func(r record.Record) bool { return custom(fromDomainRecord(r)) })
	}
	rank := crit.Rank()
	if cr.RankBy != nil {
		custom := cr.RankBy
		rank = func(r record.Record) (float64, bool) { return custom(fromDomainRecord(r)) }
	}
	crit, err = criteria.New(eligible, crit.Domain(), crit.Required(), rank, crit.MaxCount())
	if err != nil {
		return criteria.Criteria{}, fmt.Errorf("curator: %w", err)
	}
	return crit, nil
}

// fromDomainRecord hands caller strategies a copy they are free to modify.
func fromDomainRecord(r record.Record) Record {
	f := r.Fields()
	return Record{
		ID:         f.ID,
		Kind:       Kind(f.Kind),
		Label:      f.Label,
		Status:     f.Status,
		Level:      f.Level,
		Tags:       f.Tags,
		CreatedAt:  f.CreatedAt,
		Numerics:   f.Numerics,
		Attributes: f.Attributes,
	}
}

func toDomainRecords(in []Record) ([]record.Record, error) {
	out := make([]record.Record, 0, len(in))
	for i, r := range in {
		rec, err := record.New(record.Fields{
			ID:         r.ID,
			Kind:       record.Kind(r.Kind),
			Label:      r.Label,
			Status:     r.Status,
			Level:      r.Level,
			Tags:       r.Tags,
			CreatedAt:  r.CreatedAt,
			Numerics:   r.Numerics,
			Attributes: r.Attributes,
		})
		if err != nil {
			return nil, fmt.Errorf("curator: %w: records[%d]: %w", domain.ErrInvalidRecord, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func fromOutcome(out curationuc.Outcome) Result {
	res := Result{
		Entries: make([]Entry, len(out.Entries)),
		Dropped: make([]Dropped, len(out.Dropped)),
		Stats:   Stats(out.Stats),
	}
	for i := range out.Entries {
		res.Entries[i] = fromEntry(&out.Entries[i])
	}
	for i, d := range out.Dropped {
		res.Dropped[i] = Dropped{ID: d.ID, Reason: d.Reason}
	}
	return res
}

func fromEntry(e *entry.Entry) Entry {
	return Entry{
		Position:   e.Position(),
		ID:         e.ID(),
		Label:      e.Label(),
		Kind:       Kind(e.Kind()),
		Status:     e.Status(),
		Level:      e.Level(),
		Rank:       e.Rank(),
		Tags:       e.Tags(),
		CreatedAt:  e.CreatedAt(),
		Numerics:   e.Numerics(),
		Attributes: e.Attributes(),
	}
}
