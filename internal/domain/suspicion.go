package domain

import (
	"fmt"
	"strings"
)

// SuspicionLevel is an ordered severity classification.
// Good confirms protective configuration; High flags risky configuration.
type SuspicionLevel int

const (
	SuspicionGood SuspicionLevel = iota + 1
	SuspicionLow
	SuspicionMedium
	SuspicionHigh
)

var levelNames = map[SuspicionLevel]string{
	SuspicionGood:   "good",
	SuspicionLow:    "low",
	SuspicionMedium: "medium",
	SuspicionHigh:   "high",
}

// Levels returns every level from least to most severe
func Levels() []SuspicionLevel {
	return []SuspicionLevel{SuspicionGood, SuspicionLow, SuspicionMedium, SuspicionHigh}
}

// ParseSuspicionLevel converts a level name (case-insensitive) to a SuspicionLevel
func ParseSuspicionLevel(s string) (SuspicionLevel, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == want {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown suspicion level %q", s)
}

func (l SuspicionLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is a defined level
func (l SuspicionLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// IsRisk reports whether the level flags a problem rather than confirming protection
func (l SuspicionLevel) IsRisk() bool {
	return l > SuspicionGood
}

// AtLeast reports whether l is as severe as other or more
func (l SuspicionLevel) AtLeast(other SuspicionLevel) bool {
	return l >= other
}

// MarshalText implements encoding.TextMarshaler
func (l SuspicionLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid suspicion level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *SuspicionLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseSuspicionLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Suspicion is a single audit result
type Suspicion struct {
	Level       SuspicionLevel `json:"level" yaml:"level"`
	Description string         `json:"description" yaml:"description"`
}

// Finding is a Suspicion together with the setting that produced it
type Finding struct {
	Namespace Namespace `json:"namespace" yaml:"namespace"`
	Key       string    `json:"key" yaml:"key"`
	Value     string    `json:"value" yaml:"value"`
	Suspicion `yaml:",inline"`
}
