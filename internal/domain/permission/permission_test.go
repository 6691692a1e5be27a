package permission

import "testing"

func TestNewRange(t *testing.T) {
	d, err := NewRange(0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Min() != 0 || d.Max() != 5 {
		t.Errorf("bounds = [%d, %d]", d.Min(), d.Max())
	}
	if _, err := NewRange(3, 1); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestNewNamed(t *testing.T) {
	d, err := NewNamed("Viewer", " editor ", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Min() != 1 || d.Max() != 3 {
		t.Errorf("bounds = [%d, %d]", d.Min(), d.Max())
	}
	if d.Name(2) != "editor" {
		t.Errorf("Name(2) = %q", d.Name(2))
	}

	bad := [][]string{
		nil,
		{"a", ""},
		{"a", "A"},
		{"a", "2"},
	}
	for _, names := range bad {
		if _, err := NewNamed(names...); err == nil {
			t.Errorf("NewNamed(%v) expected error", names)
		}
	}
}

func TestSatisfies(t *testing.T) {
	d := Default()
	tests := []struct {
		have, required Level
		want           bool
	}{
		{1, 1, true},
		{3, 2, true},
		{1, 2, false},
		{4, 2, false}, // holder outside the domain
		{2, 0, false}, // requirement outside the domain
	}
	for _, tc := range tests {
		if got := d.Satisfies(tc.have, tc.required); got != tc.want {
			t.Errorf("Satisfies(%d, %d) = %v, want %v", tc.have, tc.required, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	named, _ := NewNamed("viewer", "editor", "admin")

	tests := []struct {
		name    string
		domain  Domain
		in      string
		want    Level
		wantErr bool
	}{
		{"number", Default(), "2", 2, false},
		{"number out of range", Default(), "7", 0, true},
		{"empty", Default(), " ", 0, true},
		{"name", named, "Admin", 3, false},
		{"number in named", named, "1", 1, false},
		{"unknown name", named, "owner", 0, true},
		{"name in unnamed", Default(), "admin", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.domain.Parse(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestName_Unnamed(t *testing.T) {
	if got := Default().Name(2); got != "2" {
		t.Errorf("Name(2) = %q", got)
	}
}
