package record

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r, err := New(Fields{
		ID:        "u-1",
		Kind:      Post,
		Label:     "Hello",
		Status:    StatusActive,
		Level:     2,
		Tags:      []string{"go"},
		CreatedAt: created,
		Numerics:  map[string]float64{"score": 4.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "u-1" || r.Kind() != Post || r.Label() != "Hello" {
		t.Errorf("unexpected identity: %q %q %q", r.ID(), r.Kind(), r.Label())
	}
	if !r.IsActive() {
		t.Error("expected active record")
	}
	if r.Level() != 2 {
		t.Errorf("Level() = %d", r.Level())
	}
	if r.CreatedAt().Location() != time.UTC {
		t.Errorf("CreatedAt() not normalized to UTC: %v", r.CreatedAt())
	}
	if !r.CreatedAt().Equal(created) {
		t.Errorf("CreatedAt() = %v, want %v", r.CreatedAt(), created)
	}
	if v, ok := r.Numeric("score"); !ok || v != 4.5 {
		t.Errorf("Numeric(score) = %v, %v", v, ok)
	}
	if _, ok := r.Numeric("missing"); ok {
		t.Error("Numeric(missing) should report absent")
	}
}

func TestNew_Defaults(t *testing.T) {
	r, err := New(Fields{ID: "p-9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Kind() != User {
		t.Errorf("Kind() = %q, want user", r.Kind())
	}
	if r.Label() != "p-9" {
		t.Errorf("Label() = %q, want ID fallback", r.Label())
	}
	if !r.CreatedAt().IsZero() {
		t.Error("CreatedAt() should stay zero")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
	}{
		{"empty id", Fields{}},
		{"long id", Fields{ID: strings.Repeat("a", MaxIDLength+1)}},
		{"bad chars", Fields{ID: "a b"}},
		{"bad kind", Fields{ID: "a", Kind: "group"}},
		{"long label", Fields{ID: "a", Label: strings.Repeat("x", MaxLabelLength+1)}},
		{"too many tags", Fields{ID: "a", Tags: make([]string, MaxTags+1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.fields); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNew_ClonesInputs(t *testing.T) {
	tags := []string{"go"}
	nums := map[string]float64{"score": 1}
	attrs := map[string]string{"team": "core"}

	r, _ := New(Fields{ID: "a", Tags: tags, Numerics: nums, Attributes: attrs})

	tags[0] = "mutated"
	nums["score"] = 99
	attrs["team"] = "mutated"

	if r.Tags()[0] != "go" {
		t.Error("tags mutation leaked into record")
	}
	if r.Numerics()["score"] != 1 {
		t.Error("numerics mutation leaked into record")
	}
	if r.Attributes()["team"] != "core" {
		t.Error("attributes mutation leaked into record")
	}
}

func TestFields_DeepCopy(t *testing.T) {
	r, _ := New(Fields{ID: "a", Tags: []string{"go"}, Numerics: map[string]float64{"score": 1}})

	f := r.Fields()
	f.Tags[0] = "rust"
	f.Numerics["score"] = 2

	if r.Tags()[0] != "go" || r.Numerics()["score"] != 1 {
		t.Error("Fields() must return a copy")
	}
}

func TestAccessors_ReturnCopies(t *testing.T) {
	r, _ := New(Fields{
		ID:         "a",
		Tags:       []string{"go"},
		Numerics:   map[string]float64{"score": 1},
		Attributes: map[string]string{"city": "Oslo"},
	})

	r.Tags()[0] = "mutated"
	r.Numerics()["score"] += 100
	r.Attributes()["city"] = "Rome"

	if r.Tags()[0] != "go" {
		t.Errorf("Tags() leaked internal slice: %v", r.Tags())
	}
	if v, _ := r.Numeric("score"); v != 1 {
		t.Errorf("Numerics() leaked internal map: score = %f", v)
	}
	if v, _ := r.Attribute("city"); v != "Oslo" {
		t.Errorf("Attributes() leaked internal map: city = %q", v)
	}
}

func TestCountTags(t *testing.T) {
	r, _ := New(Fields{ID: "a", Tags: []string{"go", "db", "ml"}})

	if n := r.CountTags(map[string]struct{}{"go": {}, "ml": {}, "rust": {}}); n != 2 {
		t.Errorf("CountTags = %d, want 2", n)
	}
	if n := r.CountTags(nil); n != 0 {
		t.Errorf("CountTags(nil) = %d, want 0", n)
	}
}

func TestCheckUnique(t *testing.T) {
	a, _ := New(Fields{ID: "a"})
	b, _ := New(Fields{ID: "b"})

	if err := CheckUnique([]Record{a, b}); err != nil {
		t.Errorf("unique IDs rejected: %v", err)
	}
	if err := CheckUnique(nil); err != nil {
		t.Errorf("empty input rejected: %v", err)
	}
	err := CheckUnique([]Record{a, b, a})
	if !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
	if !strings.Contains(err.Error(), `"a"`) {
		t.Errorf("error should name the duplicate: %v", err)
	}
}

func TestHasAnyTag(t *testing.T) {
	r, _ := New(Fields{ID: "a", Tags: []string{"go", "db"}})

	if !r.HasAnyTag(map[string]struct{}{"db": {}}) {
		t.Error("expected overlap on db")
	}
	if r.HasAnyTag(map[string]struct{}{"ml": {}}) {
		t.Error("unexpected overlap")
	}
	if r.HasAnyTag(nil) {
		t.Error("nil set never overlaps")
	}
}
