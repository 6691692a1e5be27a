package feed

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxNameLength bounds feed names.
const MaxNameLength = 64

// Feed is a named, stored set of records (immutable value object).
type Feed struct {
	name      string
	records   []record.Record
	updatedAt time.Time
}

// ValidateName checks a feed name: ^[a-zA-Z0-9_-]+$, 1-64 chars.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidFeed)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name too long (max %d)", domain.ErrInvalidFeed, MaxNameLength)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: name must be alphanumeric with underscores and hyphens", domain.ErrInvalidFeed)
	}
	return nil
}

// New validates and creates a Feed. Record identifiers must be unique.
func New(name string, records []record.Record, updatedAt time.Time) (Feed, error) {
	if err := ValidateName(name); err != nil {
		return Feed{}, err
	}
	if err := record.CheckUnique(records); err != nil {
		return Feed{}, fmt.Errorf("feed %s: %w", name, err)
	}
	return Reconstruct(name, records, updatedAt), nil
}

// Reconstruct restores a Feed from storage without validation.
func Reconstruct(name string, records []record.Record, updatedAt time.Time) Feed {
	if records == nil {
		records = []record.Record{}
	}
	return Feed{
		name:      name,
		records:   slices.Clone(records),
		updatedAt: updatedAt.UTC(),
	}
}

// Name returns the feed name.
func (f Feed) Name() string { return f.name }

// Records returns a copy of the stored records in insertion order.
func (f Feed) Records() []record.Record { return slices.Clone(f.records) }

// Len returns the number of records.
func (f Feed) Len() int { return len(f.records) }

// UpdatedAt returns the time of the last replacement.
func (f Feed) UpdatedAt() time.Time { return f.updatedAt }
