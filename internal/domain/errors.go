package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCriteria signals a malformed curation configuration.
	ErrInvalidCriteria = errors.New("invalid criteria")
	// ErrRankingUndefined signals that a ranking function has no value for a record.
	ErrRankingUndefined = errors.New("ranking undefined")
	// ErrInvalidRecord signals a record that cannot enter the pipeline.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrDuplicateRecord signals a repeated record identifier in one input.
	ErrDuplicateRecord = errors.New("duplicate record")
	// ErrTooManyRecords signals that the input exceeds the configured bound.
	ErrTooManyRecords = errors.New("too many records")
	// ErrFeedNotFound signals a missing feed.
	ErrFeedNotFound = errors.New("feed not found")
	// ErrInvalidFeed signals an invalid feed name.
	ErrInvalidFeed = errors.New("invalid feed")
	// ErrBatchTooLarge signals a batch with more items than allowed.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrStorageDisabled signals a feed operation on a service without feed storage.
	ErrStorageDisabled = errors.New("feed storage disabled")
)

// RankingUndefinedError wraps ErrRankingUndefined with the offending record.
type RankingUndefinedError struct {
	RecordID string
	Reason   string
}

func (e *RankingUndefinedError) Error() string {
	return fmt.Sprintf("%s for record %q: %s", ErrRankingUndefined.Error(), e.RecordID, e.Reason)
}

func (e *RankingUndefinedError) Unwrap() error { return ErrRankingUndefined }

// NewRankingUndefined creates a per-record ranking error.
func NewRankingUndefined(recordID, reason string) error {
	return &RankingUndefinedError{RecordID: recordID, Reason: reason}
}
