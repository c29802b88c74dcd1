// Package audit evaluates device settings against a table of heuristic rules
// and reports suspicions.
//
// Rules are data: each one names a setting key, a condition on the value, and
// the level and description of the suspicion it raises. Adding a rule never
// touches the evaluation code. Keys without rules are ignored, so settings
// the engine does not know about never produce findings.
package audit

import (
	"fmt"

	"devtriage/internal/domain"
)

// Op is a condition operator
type Op string

const (
	OpEquals    Op = "equals"
	OpNotEquals Op = "not_equals"
	OpAny       Op = "any"
)

// Condition is a predicate over a setting value
type Condition struct {
	Op    Op
	Value string
}

// Equals matches values equal to v
func Equals(v string) Condition { return Condition{Op: OpEquals, Value: v} }

// NotEquals matches values different from v
func NotEquals(v string) Condition { return Condition{Op: OpNotEquals, Value: v} }

// Always matches every value
func Always() Condition { return Condition{Op: OpAny} }

// Match reports whether value satisfies the condition
func (c Condition) Match(value string) bool {
	switch c.Op {
	case OpEquals:
		return value == c.Value
	case OpNotEquals:
		return value != c.Value
	case OpAny:
		return true
	default:
		return false
	}
}

func (c Condition) String() string {
	switch c.Op {
	case OpEquals:
		return fmt.Sprintf("== %q", c.Value)
	case OpNotEquals:
		return fmt.Sprintf("!= %q", c.Value)
	case OpAny:
		return "any"
	default:
		return string(c.Op)
	}
}

// Rule raises a suspicion when a setting's value matches its condition
type Rule struct {
	Key         string
	When        Condition
	Level       domain.SuspicionLevel
	Description string
}

// Validate checks that the rule is complete
func (r Rule) Validate() error {
	if r.Key == "" {
		return fmt.Errorf("rule without key")
	}
	switch r.When.Op {
	case OpEquals, OpNotEquals, OpAny:
	default:
		return fmt.Errorf("rule %s: unknown condition %q", r.Key, r.When.Op)
	}
	if !r.Level.Valid() {
		return fmt.Errorf("rule %s: invalid level", r.Key)
	}
	if r.Description == "" {
		return fmt.Errorf("rule %s: empty description", r.Key)
	}
	return nil
}

// Suspicion returns the suspicion the rule raises
func (r Rule) Suspicion() domain.Suspicion {
	return domain.Suspicion{Level: r.Level, Description: r.Description}
}

// DefaultRules returns the built-in rule set
func DefaultRules() []Rule {
	return []Rule{
		{
			Key:         "package_verifier_enable",
			When:        NotEquals("1"),
			Level:       domain.SuspicionHigh,
			Description: "Google Play Protect is turned off",
		},
		{
			Key:         "package_verifier_user_consent",
			When:        Equals("1"),
			Level:       domain.SuspicionGood,
			Description: "Scanning apps with Google Play Protect is enabled",
		},
		{
			Key:         "package_verifier_user_consent",
			When:        NotEquals("1"),
			Level:       domain.SuspicionHigh,
			Description: "Scanning apps with Google Play Protect is disabled",
		},
		{
			Key:         "upload_apk_enable",
			When:        NotEquals("1"),
			Level:       domain.SuspicionHigh,
			Description: "Automatic upload of suspicious apps to Google Play has been disabled",
		},
	}
}

// table indexes rules by key, preserving declaration order within a key
type table map[string][]Rule

func newTable(rules []Rule) (table, error) {
	t := make(table)
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		t[r.Key] = append(t[r.Key], r)
	}
	return t, nil
}

// match returns the first rule for key whose condition accepts value
func (t table) match(key, value string) (Rule, bool) {
	for _, r := range t[key] {
		if r.When.Match(value) {
			return r, true
		}
	}
	return Rule{}, false
}
