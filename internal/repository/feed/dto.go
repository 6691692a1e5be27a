package feed

import (
	"encoding/json"
	"fmt"
	"time"

	domfeed "github.com/kailas-cloud/curator/internal/domain/feed"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

// feedDoc is the JSON document stored under the feed key.
type feedDoc struct {
	Name      string      `json:"name"`
	UpdatedAt time.Time   `json:"updated_at"`
	Records   []recordRow `json:"records"`
}

// recordRow is the JSON-serializable representation of a record.
type recordRow struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Label      string             `json:"label,omitempty"`
	Status     string             `json:"status,omitempty"`
	Level      int                `json:"level"`
	Tags       []string           `json:"tags,omitempty"`
	CreatedAt  time.Time          `json:"created_at,omitzero"`
	Numerics   map[string]float64 `json:"numerics,omitempty"`
	Attributes map[string]string  `json:"attributes,omitempty"`
}

// feedToJSON converts a domain Feed to its stored form.
func feedToJSON(f domfeed.Feed) ([]byte, error) {
	doc := feedDoc{
		Name:      f.Name(),
		UpdatedAt: f.UpdatedAt(),
		Records:   make([]recordRow, len(f.Records())),
	}
	for i, r := range f.Records() {
		doc.Records[i] = recordRow{
			ID:         r.ID(),
			Kind:       string(r.Kind()),
			Label:      r.Label(),
			Status:     r.Status(),
			Level:      r.Level(),
			Tags:       r.Tags(),
			CreatedAt:  r.CreatedAt(),
			Numerics:   r.Numerics(),
			Attributes: r.Attributes(),
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return data, nil
}

// feedFromJSON hydrates a domain Feed from a stored document.
func feedFromJSON(data []byte) (domfeed.Feed, error) {
	var doc feedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domfeed.Feed{}, fmt.Errorf("unmarshal feed: %w", err)
	}
	records := make([]record.Record, len(doc.Records))
	for i, row := range doc.Records {
		records[i] = record.Reconstruct(record.Fields{
			ID:         row.ID,
			Kind:       record.Kind(row.Kind),
			Label:      row.Label,
			Status:     row.Status,
			Level:      row.Level,
			Tags:       row.Tags,
			CreatedAt:  row.CreatedAt,
			Numerics:   row.Numerics,
			Attributes: row.Attributes,
		})
	}
	return domfeed.Reconstruct(doc.Name, records, doc.UpdatedAt), nil
}
