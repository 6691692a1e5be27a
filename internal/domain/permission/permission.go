package permission

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is a position in a permission ordering. Higher levels grant more access.
type Level int

// Domain bounds.
const (
	DefaultMin = 1
	DefaultMax = 3
	MaxNames   = 32
)

// Domain is a closed, ordered range of permission levels, optionally named.
type Domain struct {
	min   Level
	max   Level
	names []string
}

// NewRange creates an unnamed domain covering [min, max].
func NewRange(minLevel, maxLevel int) (Domain, error) {
	if minLevel > maxLevel {
		return Domain{}, fmt.Errorf("permission min %d is greater than max %d", minLevel, maxLevel)
	}
	return Domain{min: Level(minLevel), max: Level(maxLevel)}, nil
}

// NewNamed creates a domain from names in ascending order; the first name is level 1.
func NewNamed(names ...string) (Domain, error) {
	if len(names) == 0 {
		return Domain{}, fmt.Errorf("at least one permission name is required")
	}
	if len(names) > MaxNames {
		return Domain{}, fmt.Errorf("too many permission names (max %d)", MaxNames)
	}
	seen := make(map[string]struct{}, len(names))
	normalized := make([]string, len(names))
	for i, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			return Domain{}, fmt.Errorf("permission name at position %d is empty", i)
		}
		if _, dup := seen[n]; dup {
			return Domain{}, fmt.Errorf("duplicate permission name %q", n)
		}
		if _, err := strconv.Atoi(n); err == nil {
			return Domain{}, fmt.Errorf("permission name %q must not be numeric", n)
		}
		seen[n] = struct{}{}
		normalized[i] = n
	}
	return Domain{min: 1, max: Level(len(names)), names: normalized}, nil
}

// Default returns the unnamed [1, 3] domain.
func Default() Domain {
	return Domain{min: DefaultMin, max: DefaultMax}
}

// Min returns the lowest level.
func (d Domain) Min() Level { return d.min }

// Max returns the highest level.
func (d Domain) Max() Level { return d.max }

// Names returns level names in ascending order (nil for unnamed domains).
func (d Domain) Names() []string { return d.names }

// Contains reports whether l lies in the domain.
func (d Domain) Contains(l Level) bool {
	return l >= d.min && l <= d.max
}

// Satisfies reports whether a holder at level have meets the required level.
// Levels outside the domain never satisfy.
func (d Domain) Satisfies(have, required Level) bool {
	return d.Contains(have) && d.Contains(required) && have >= required
}

// Parse resolves a level from its number or name.
func (d Domain) Parse(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("permission level is empty")
	}
	if n, err := strconv.Atoi(s); err == nil {
		l := Level(n)
		if !d.Contains(l) {
			return 0, fmt.Errorf("permission level %d outside [%d, %d]", n, d.min, d.max)
		}
		return l, nil
	}
	for i, name := range d.names {
		if name == s {
			return d.min + Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown permission level %q", s)
}

// Name returns the name of l, or its number for unnamed domains.
func (d Domain) Name(l Level) string {
	idx := int(l - d.min)
	if d.Contains(l) && idx < len(d.names) {
		return d.names[idx]
	}
	return strconv.Itoa(int(l))
}
