package simplify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownQuality is returned by ParseQuality for unrecognised names.
var ErrUnknownQuality = errors.New("unknown simplification quality")

// Quality is a coarse preset controlling how aggressively a path is reduced.
type Quality int

const (
	Low Quality = iota
	Medium
	High
)

// Epsilon returns the cross-track tolerance in meters for the preset.
// Lower quality means a larger tolerance and more points removed.
func (q Quality) Epsilon() float64 {
	switch q {
	case Low:
		return 8
	case High:
		return 2
	default:
		return 4
	}
}

func (q Quality) String() string {
	switch q {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// ParseQuality converts "low", "medium" or "high" (any case) into a Quality.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium", "":
		return Medium, nil
	case "high":
		return High, nil
	}
	return Medium, fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

// MarshalText implements encoding.TextMarshaler so the preset reads naturally in YAML/JSON.
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(b []byte) error {
	parsed, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
