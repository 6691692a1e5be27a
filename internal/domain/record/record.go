package record

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:@-]+$`)

// Record limits.
const (
	MaxIDLength    = 256
	MaxLabelLength = 1024
	MaxTags        = 64
)

// StatusActive is the status of a record that takes part in curation by default.
const StatusActive = "active"

// Kind is the domain entity a record represents.
type Kind string

// Record kinds.
const (
	User Kind = "user"
	Post Kind = "post"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == User || k == Post
}

// Fields carries the raw attributes of a record before validation.
type Fields struct {
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

// Record is a curated entity (immutable value object).
type Record struct {
	id         string
	kind       Kind
	label      string
	status     string
	level      int
	tags       []string
	createdAt  time.Time
	numerics   map[string]float64
	attributes map[string]string
}

// New validates and creates a Record.
// ID: ^[a-zA-Z0-9_.:@-]+$, 1-256 chars. Kind defaults to user. Label defaults to the ID.
func New(f Fields) (Record, error) {
	if f.ID == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if len(f.ID) > MaxIDLength {
		return Record{}, fmt.Errorf("record ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(f.ID) {
		return Record{}, fmt.Errorf("record ID %q contains invalid characters", f.ID)
	}
	if f.Kind == "" {
		f.Kind = User
	}
	if !f.Kind.IsValid() {
		return Record{}, fmt.Errorf("invalid record kind: %q", f.Kind)
	}
	if len(f.Label) > MaxLabelLength {
		return Record{}, fmt.Errorf("label too long (max %d)", MaxLabelLength)
	}
	if len(f.Tags) > MaxTags {
		return Record{}, fmt.Errorf("too many tags (max %d)", MaxTags)
	}
	if f.Label == "" {
		f.Label = f.ID
	}

	return Reconstruct(f), nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(f Fields) Record {
	var createdAt time.Time
	if !f.CreatedAt.IsZero() {
		createdAt = f.CreatedAt.UTC()
	}
	return Record{
		id:         f.ID,
		kind:       f.Kind,
		label:      f.Label,
		status:     f.Status,
		level:      f.Level,
		tags:       cloneStrings(f.Tags),
		createdAt:  createdAt,
		numerics:   cloneFloat64Map(f.Numerics),
		attributes: cloneStringMap(f.Attributes),
	}
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Kind returns the entity kind.
func (r Record) Kind() Kind { return r.kind }

// Label returns the display label.
func (r Record) Label() string { return r.label }

// Status returns the lifecycle status.
func (r Record) Status() string { return r.status }

// Level returns the permission level.
func (r Record) Level() int { return r.level }

// Tags returns a copy of the interest tags.
func (r Record) Tags() []string { return cloneStrings(r.tags) }

// CreatedAt returns the creation time (zero if unknown).
func (r Record) CreatedAt() time.Time { return r.createdAt }

// Numerics returns a copy of the numeric attributes.
func (r Record) Numerics() map[string]float64 { return cloneFloat64Map(r.numerics) }

// Attributes returns a copy of the free-form string attributes.
func (r Record) Attributes() map[string]string { return cloneStringMap(r.attributes) }

// Attribute returns a named string attribute.
func (r Record) Attribute(name string) (string, bool) {
	v, ok := r.attributes[name]
	return v, ok
}

// Numeric returns a named numeric attribute.
func (r Record) Numeric(name string) (float64, bool) {
	v, ok := r.numerics[name]
	return v, ok
}

// IsActive reports whether the record has the active status.
func (r Record) IsActive() bool { return r.status == StatusActive }

// HasAnyTag reports whether at least one record tag is in the set.
func (r Record) HasAnyTag(set map[string]struct{}) bool {
	for _, t := range r.tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// CountTags returns how many record tags are in the set.
func (r Record) CountTags(set map[string]struct{}) int {
	n := 0
	for _, t := range r.tags {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// Fields returns a deep copy of the record attributes.
func (r Record) Fields() Fields {
	return Fields{
		ID:         r.id,
		Kind:       r.kind,
		Label:      r.label,
		Status:     r.status,
		Level:      r.level,
		Tags:       cloneStrings(r.tags),
		CreatedAt:  r.createdAt,
		Numerics:   cloneFloat64Map(r.numerics),
		Attributes: cloneStringMap(r.attributes),
	}
}

// CheckUnique rejects inputs that repeat an identifier.
func CheckUnique(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.id]; dup {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateRecord, r.id)
		}
		seen[r.id] = struct{}{}
	}
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneFloat64Map(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
