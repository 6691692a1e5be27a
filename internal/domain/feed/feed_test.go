package feed

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

func rec(t *testing.T, id string) record.Record {
	t.Helper()
	r, err := record.New(record.Fields{ID: id})
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return r
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"simple", "home", false},
		{"with dash and underscore", "home_feed-2", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
		{"colon", "home:feed", true},
		{"space", "home feed", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.in)
			if tc.wantErr && !errors.Is(err, domain.ErrInvalidFeed) {
				t.Errorf("expected ErrInvalidFeed, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	f, err := New("home", []record.Record{rec(t, "a"), rec(t, "b")}, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name() != "home" || f.Len() != 2 {
		t.Errorf("unexpected feed: %s/%d", f.Name(), f.Len())
	}
	if f.UpdatedAt().Location() != time.UTC {
		t.Error("UpdatedAt should be UTC")
	}
}

func TestNew_Duplicate(t *testing.T) {
	_, err := New("home", []record.Record{rec(t, "a"), rec(t, "a")}, time.Now())
	if !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
}

func TestReconstruct_NilRecords(t *testing.T) {
	f := Reconstruct("empty", nil, time.Time{})
	if f.Records() == nil {
		t.Error("Records() should be non-nil")
	}
}

func TestReconstruct_DoesNotAliasInput(t *testing.T) {
	in := []record.Record{rec(t, "a")}
	f := Reconstruct("home", in, time.Now())
	in[0] = rec(t, "z")
	if f.Records()[0].ID() != "a" {
		t.Error("feed must not alias the input slice")
	}
}
