package audit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"devtriage/internal/domain"
)

// ruleFile is the on-disk rule format
type ruleFile struct {
	Rules []fileRule `yaml:"rules"`
}

type fileRule struct {
	Key         string                `yaml:"key"`
	When        fileCondition         `yaml:"when"`
	Level       domain.SuspicionLevel `yaml:"level"`
	Description string                `yaml:"description"`
}

// fileCondition sets exactly one of its fields
type fileCondition struct {
	Equals    *string `yaml:"equals,omitempty"`
	NotEquals *string `yaml:"not_equals,omitempty"`
	Any       bool    `yaml:"any,omitempty"`
}

func (c fileCondition) condition() (Condition, error) {
	set := 0
	var cond Condition
	if c.Equals != nil {
		set++
		cond = Equals(*c.Equals)
	}
	if c.NotEquals != nil {
		set++
		cond = NotEquals(*c.NotEquals)
	}
	if c.Any {
		set++
		cond = Always()
	}
	if set != 1 {
		return Condition{}, fmt.Errorf("condition must set exactly one of equals, not_equals, any")
	}
	return cond, nil
}

// ParseRules parses a YAML rule document
func ParseRules(data []byte) ([]Rule, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, fr := range rf.Rules {
		cond, err := fr.When.condition()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, fr.Key, err)
		}
		r := Rule{Key: fr.Key, When: cond, Level: fr.Level, Description: fr.Description}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadRules reads a rule file
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// LoadRuleSet returns the built-in rules followed by the rules in path.
// An empty path yields the built-in rules alone.
func LoadRuleSet(path string) ([]Rule, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	extra, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return append(rules, extra...), nil
}
