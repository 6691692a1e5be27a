package curator

import "github.com/kailas-cloud/curator/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidCriteria  = domain.ErrInvalidCriteria
	ErrInvalidRecord    = domain.ErrInvalidRecord
	ErrDuplicateRecord  = domain.ErrDuplicateRecord
	ErrTooManyRecords   = domain.ErrTooManyRecords
	ErrRankingUndefined = domain.ErrRankingUndefined
)
