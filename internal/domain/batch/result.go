package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one item in a batch operation.
// Index is the item's position in the request; results keep request order.
type Result[T any] struct {
	index  int
	id     string
	status ItemStatus
	value  T
	err    error
}

// NewOK creates a successful batch result.
func NewOK[T any](index int, id string, value T) Result[T] {
	return Result[T]{index: index, id: id, status: StatusOK, value: value}
}

// NewError creates a failed batch result.
func NewError[T any](index int, id string, err error) Result[T] {
	return Result[T]{index: index, id: id, status: StatusError, err: err}
}

// Index returns the item position in the request.
func (r Result[T]) Index() int { return r.index }

// ID returns the item identifier.
func (r Result[T]) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result[T]) Status() ItemStatus { return r.status }

// Value returns the item output; zero when the item failed.
func (r Result[T]) Value() T { return r.value }

// Err returns the error, if any.
func (r Result[T]) Err() error { return r.err }

// Failed counts failed results.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.status == StatusError {
			n++
		}
	}
	return n
}
