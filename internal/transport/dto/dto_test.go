package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/query"
)

func TestLevelRef_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want LevelRef
	}{
		{`{"level":2}`, "2"},
		{`{"level":"editor"}`, "editor"},
		{`{"level":null}`, ""},
		{`{}`, ""},
	}
	for _, tc := range tests {
		var r Record
		if err := json.Unmarshal([]byte(tc.in), &r); err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if r.Level != tc.want {
			t.Errorf("%s: level = %q, want %q", tc.in, r.Level, tc.want)
		}
	}

	var r Record
	if err := json.Unmarshal([]byte(`{"level":1.5}`), &r); err == nil {
		t.Error("fractional level must be rejected")
	}
}

func TestLevelRef_MarshalJSON(t *testing.T) {
	out, _ := json.Marshal(Entry{Level: "3"})
	var m map[string]any
	_ = json.Unmarshal(out, &m)
	if _, ok := m["level"].(float64); !ok {
		t.Errorf("numeric level encoded as %T", m["level"])
	}

	out, _ = json.Marshal(Entry{Level: "admin"})
	m = nil
	_ = json.Unmarshal(out, &m)
	if m["level"] != "admin" {
		t.Errorf("named level = %v", m["level"])
	}
}

func TestLevelRef_YAML(t *testing.T) {
	var recs []Record
	src := "- id: a\n  level: 2\n- id: b\n  level: admin\n"
	if err := yaml.Unmarshal([]byte(src), &recs); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if recs[0].Level != "2" || recs[1].Level != "admin" {
		t.Errorf("levels = %q, %q", recs[0].Level, recs[1].Level)
	}
}

func TestResolveRecordLevel(t *testing.T) {
	dom, _ := permission.NewNamed("viewer", "admin")

	if n, err := ResolveRecordLevel(dom, ""); err != nil || n != 1 {
		t.Errorf("empty: %d, %v", n, err)
	}
	if n, err := ResolveRecordLevel(dom, "admin"); err != nil || n != 2 {
		t.Errorf("admin: %d, %v", n, err)
	}
	if n, err := ResolveRecordLevel(dom, "42"); err != nil || n != 42 {
		t.Errorf("out of domain number must pass through: %d, %v", n, err)
	}
	if _, err := ResolveRecordLevel(dom, "root"); err == nil {
		t.Error("unknown name must fail")
	}
}

func TestToRecords_ReportsIndex(t *testing.T) {
	_, err := ToRecords(permission.Default(), []Record{{ID: "ok"}, {ID: ""}})
	if !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "records[1]") {
		t.Errorf("error %q should name the index", got)
	}
}

func TestFromRecord_RoundTrip(t *testing.T) {
	dom, _ := permission.NewNamed("viewer", "admin")
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := Record{
		ID: "p1", Kind: "post", Status: "active", Level: "admin",
		Tags: []string{"go"}, CreatedAt: &created,
		Numerics: map[string]float64{"score": 1},
	}
	rec, err := in.ToRecord(dom)
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	out := FromRecord(dom, rec)
	if out.Level != "admin" || out.Label != "p1" || !out.CreatedAt.Equal(created) {
		t.Errorf("round trip = %+v", out)
	}
}

func TestQuery_ToQuery(t *testing.T) {
	five := 5
	q := Query{
		Kinds:    []string{"post"},
		MaxCount: &five,
		Rank:     &Ranking{Rule: "recency", HalfLife: "72h"},
	}

	got, err := q.ToQuery(query.Limits{DefaultMaxCount: 3, MaxCountCap: 8})
	if err != nil {
		t.Fatalf("ToQuery: %v", err)
	}
	if got.MaxCount() != 5 || got.Ranking().HalfLife != 72*time.Hour {
		t.Errorf("query = max %d, half life %s", got.MaxCount(), got.Ranking().HalfLife)
	}

	q.MaxCount = nil
	got, err = q.ToQuery(query.Limits{DefaultMaxCount: 3, MaxCountCap: 8})
	if err != nil {
		t.Fatalf("ToQuery: %v", err)
	}
	if got.MaxCount() != 3 {
		t.Errorf("default max count = %d, want 3", got.MaxCount())
	}

	q.Rank.HalfLife = "later"
	if _, err := q.ToQuery(query.DefaultLimits()); !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Errorf("bad half life: got %v", err)
	}
}
