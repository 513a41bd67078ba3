package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is the state of a single grid position.
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

// Pattern names a deterministic initial shape painted on the undivided grid.
type Pattern int

const (
	// PatternLine is a vertical line through the center column.
	PatternLine Pattern = iota
	// PatternTShape is PatternLine plus a full horizontal line across the top row.
	PatternTShape
	// PatternCross is a horizontal line through the center row plus a vertical line through the center column.
	PatternCross
)

var patternNames = map[Pattern]string{
	PatternLine:   "LINE",
	PatternTShape: "T_SHAPE",
	PatternCross:  "CROSS",
}

func (p Pattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Pattern(%d)", int(p))
}

// Valid reports whether p names a known pattern.
func (p Pattern) Valid() bool {
	_, ok := patternNames[p]
	return ok
}

// MarshalText implements encoding.TextMarshaler so patterns render by name in YAML/JSON.
func (p Pattern) MarshalText() ([]byte, error) {
	if _, ok := patternNames[p]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPattern, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pattern) UnmarshalText(text []byte) error {
	parsed, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePattern accepts a pattern name (case-insensitive, "-" or "_" separated) or one
// of the numeric codes 0, 1 and 2.
func ParsePattern(s string) (Pattern, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")

	if n, err := strconv.Atoi(norm); err == nil {
		p := Pattern(n)
		if _, ok := patternNames[p]; ok {
			return p, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, s)
	}

	switch norm {
	case "LINE":
		return PatternLine, nil
	case "T_SHAPE", "TSHAPE", "T":
		return PatternTShape, nil
	case "CROSS":
		return PatternCross, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, s)
}
