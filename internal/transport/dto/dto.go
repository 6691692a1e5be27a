// Package dto holds the wire format shared by the HTTP API and curatectl.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrorCode is a machine-readable error category.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest      ErrorCode = "bad_request"
	ErrorCodeUnauthorized    ErrorCode = "unauthorized"
	ErrorCodeInvalidCriteria ErrorCode = "invalid_criteria"
	ErrorCodeInvalidRecord   ErrorCode = "invalid_record"
	ErrorCodeDuplicateRecord ErrorCode = "duplicate_record"
	ErrorCodeTooManyRecords  ErrorCode = "too_many_records"
	ErrorCodeBatchTooLarge   ErrorCode = "batch_too_large"
	ErrorCodeRequestTooLarge ErrorCode = "request_too_large"
	ErrorCodeInvalidFeed     ErrorCode = "invalid_feed"
	ErrorCodeFeedNotFound    ErrorCode = "feed_not_found"
	ErrorCodeStorageDisabled ErrorCode = "storage_disabled"
	ErrorCodeInternalError   ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// LevelRef is a permission level given as a number or a level name.
type LevelRef string

// UnmarshalJSON accepts both 2 and "editor".
func (l *LevelRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("level: %w", err)
		}
		*l = LevelRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("level must be a number or a name: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("level must be an integer, got %s", n)
	}
	*l = LevelRef(n.String())
	return nil
}

// MarshalJSON writes numeric levels as numbers and names as strings.
func (l LevelRef) MarshalJSON() ([]byte, error) {
	if n, err := strconv.Atoi(string(l)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(l))
}

// UnmarshalYAML accepts both 2 and editor.
func (l *LevelRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("level must be a scalar (line %d)", value.Line)
	}
	*l = LevelRef(strings.TrimSpace(value.Value))
	return nil
}

// Record is the wire form of a record.
type Record struct {
	ID         string             `json:"id" yaml:"id"`
	Kind       string             `json:"kind,omitempty" yaml:"kind,omitempty"`
	Label      string             `json:"label,omitempty" yaml:"label,omitempty"`
	Status     string             `json:"status,omitempty" yaml:"status,omitempty"`
	Level      LevelRef           `json:"level,omitempty" yaml:"level,omitempty"`
	Tags       []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt  *time.Time         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Numerics   map[string]float64 `json:"numerics,omitempty" yaml:"numerics,omitempty"`
	Attributes map[string]string  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Weights are the composite rule coefficients.
type Weights struct {
	Score   float64 `json:"score" yaml:"score"`
	Level   float64 `json:"level" yaml:"level"`
	Recency float64 `json:"recency" yaml:"recency"`
}

// Ranking selects the ranking rule.
type Ranking struct {
	Rule      string   `json:"rule,omitempty" yaml:"rule,omitempty"`
	Field     string   `json:"field,omitempty" yaml:"field,omitempty"`
	Weights   *Weights `json:"weights,omitempty" yaml:"weights,omitempty"`
	HalfLife  string   `json:"half_life,omitempty" yaml:"half_life,omitempty"` // Go duration, e.g. "72h"
	Interests []string `json:"interests,omitempty" yaml:"interests,omitempty"`
}

// Query is the wire form of curation criteria.
type Query struct {
	Statuses      []string   `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Kinds         []string   `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	Interests     []string   `json:"interests,omitempty" yaml:"interests,omitempty"`
	ExcludeIDs    []string   `json:"exclude_ids,omitempty" yaml:"exclude_ids,omitempty"`
	RequiredLevel LevelRef   `json:"required_level,omitempty" yaml:"required_level,omitempty"`
	Rank          *Ranking   `json:"rank,omitempty" yaml:"rank,omitempty"`
	MaxCount      *int       `json:"max_count,omitempty" yaml:"max_count,omitempty"`
	AsOf          *time.Time `json:"as_of,omitempty" yaml:"as_of,omitempty"`
}

// CurateRequest is the body of POST /curate and the curatectl input file.
type CurateRequest struct {
	Records []Record `json:"records" yaml:"records"`
	Query   Query    `json:"query" yaml:"query"`
}

// PutFeedRequest is the body of PUT /feeds/{feed}.
type PutFeedRequest struct {
	Records []Record `json:"records"`
}

// Feed is a stored feed.
type Feed struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Count     int       `json:"count"`
	Records   []Record  `json:"records,omitempty"`
}

// FeedList is the body of GET /feeds.
type FeedList struct {
	Items []string `json:"items"`
}

// Entry is one curated output entry.
type Entry struct {
	Position   int                `json:"position"`
	ID         string             `json:"id"`
	Label      string             `json:"label"`
	Kind       string             `json:"kind"`
	Status     string             `json:"status,omitempty"`
	Level      LevelRef           `json:"level"`
	Rank       float64            `json:"rank"`
	Tags       []string           `json:"tags,omitempty"`
	CreatedAt  *time.Time         `json:"created_at,omitempty"`
	Numerics   map[string]float64 `json:"numerics,omitempty"`
	Attributes map[string]string  `json:"attributes,omitempty"`
}

// Dropped names a record excluded because its rank was undefined.
type Dropped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Stats counts records after each stage.
type Stats struct {
	Input     int `json:"input"`
	Eligible  int `json:"eligible"`
	Permitted int `json:"permitted"`
	Ranked    int `json:"ranked"`
	Returned  int `json:"returned"`
}

// CurateResponse is the result of a curation run.
type CurateResponse struct {
	Items   []Entry   `json:"items"`
	Dropped []Dropped `json:"dropped"`
	Stats   Stats     `json:"stats"`
	AsOf    time.Time `json:"as_of"`
}

// BatchItem is one request inside POST /curate/batch.
type BatchItem struct {
	Feed  string `json:"feed"`
	Query Query  `json:"query"`
}

// BatchRequest is the body of POST /curate/batch.
type BatchRequest struct {
	Items []BatchItem `json:"items"`
}

// BatchResultItem is the per-item outcome of a batch.
type BatchResultItem struct {
	Feed   string          `json:"feed"`
	Status string          `json:"status"`
	Result *CurateResponse `json:"result,omitempty"`
	Error  *ErrorResponse  `json:"error,omitempty"`
}

// BatchResponse is the body returned by POST /curate/batch.
type BatchResponse struct {
	Items  []BatchResultItem `json:"items"`
	Failed int               `json:"failed"`
}

// Permission describes the configured permission domain.
type Permission struct {
	Min   int      `json:"min"`
	Max   int      `json:"max"`
	Names []string `json:"names,omitempty"`
}

// Rules is the body of GET /rules.
type Rules struct {
	Rules           []string   `json:"rules"`
	Permission      Permission `json:"permission"`
	DefaultMaxCount int        `json:"default_max_count"`
	MaxCountCap     int        `json:"max_count_cap"`
}

// Health is the body of GET /health.
type Health struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}
