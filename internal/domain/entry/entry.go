package entry

import (
	"time"

	"github.com/kailas-cloud/curator/internal/domain/record"
)

// Entry is a curated record in display shape.
type Entry struct {
	id         string
	label      string
	position   int
	rank       float64
	kind       record.Kind
	status     string
	level      int
	tags       []string
	createdAt  time.Time
	numerics   map[string]float64
	attributes map[string]string
}

// New projects a record at the given 1-based position. The entry owns copies of all
// record attributes.
func New(r record.Record, position int, rank float64) Entry {
	f := r.Fields()
	return Entry{
		id:         f.ID,
		label:      f.Label,
		position:   position,
		rank:       rank,
		kind:       f.Kind,
		status:     f.Status,
		level:      f.Level,
		tags:       f.Tags,
		createdAt:  f.CreatedAt,
		numerics:   f.Numerics,
		attributes: f.Attributes,
	}
}

// ID returns the record identifier.
func (e *Entry) ID() string { return e.id }

// Label returns the display label.
func (e *Entry) Label() string { return e.label }

// Position returns the 1-based position in the curated list.
func (e *Entry) Position() int { return e.position }

// Rank returns the computed rank.
func (e *Entry) Rank() float64 { return e.rank }

// Kind returns the entity kind.
func (e *Entry) Kind() record.Kind { return e.kind }

// Status returns the record status.
func (e *Entry) Status() string { return e.status }

// Level returns the record permission level.
func (e *Entry) Level() int { return e.level }

// Tags returns the record tags.
func (e *Entry) Tags() []string { return e.tags }

// CreatedAt returns the record creation time.
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// Numerics returns the record numeric attributes.
func (e *Entry) Numerics() map[string]float64 { return e.numerics }

// Attributes returns the record string attributes.
func (e *Entry) Attributes() map[string]string { return e.attributes }

// IDs extracts identifiers in order.
func IDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i := range entries {
		ids[i] = entries[i].id
	}
	return ids
}
