package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK(2, "home", 42)
	if r.ID() != "home" || r.Index() != 2 {
		t.Errorf("ID/Index = %q/%d", r.ID(), r.Index())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Value() != 42 {
		t.Errorf("Value() = %d", r.Value())
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError[string](0, "trending", err)
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if r.Value() != "" {
		t.Errorf("Value() = %q, want zero", r.Value())
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestFailed(t *testing.T) {
	results := []Result[int]{
		NewOK(0, "a", 1),
		NewError[int](1, "b", errors.New("x")),
		NewError[int](2, "c", errors.New("y")),
	}
	if got := Failed(results); got != 2 {
		t.Errorf("Failed() = %d, want 2", got)
	}
	if Failed[int](nil) != 0 {
		t.Error("Failed(nil) should be 0")
	}
}
