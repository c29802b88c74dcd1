package audit

import (
	"log"
	"sync"

	"devtriage/internal/domain"
)

// Engine evaluates settings against a rule table.
// It is safe for concurrent use; SetRules swaps the table atomically.
type Engine struct {
	mu    sync.RWMutex
	rules []Rule
	table table
}

// NewEngine creates an engine with the given rules
func NewEngine(rules []Rule) (*Engine, error) {
	e := &Engine{}
	if err := e.SetRules(rules); err != nil {
		return nil, err
	}
	return e, nil
}

// Default returns an engine loaded with DefaultRules
func Default() *Engine {
	e, err := NewEngine(DefaultRules())
	if err != nil {
		panic(err)
	}
	return e
}

// SetRules replaces the rule set. The current rules are kept if any rule is invalid.
func (e *Engine) SetRules(rules []Rule) error {
	t, err := newTable(rules)
	if err != nil {
		return err
	}

	own := make([]Rule, len(rules))
	copy(own, rules)

	e.mu.Lock()
	e.rules = own
	e.table = t
	e.mu.Unlock()
	return nil
}

// Rules returns the active rules in declaration order
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Audit evaluates every setting once and returns the suspicions raised, in
// key order
func (e *Engine) Audit(settings domain.Settings) []domain.Suspicion {
	findings := e.evaluate("", settings)
	out := make([]domain.Suspicion, len(findings))
	for i, f := range findings {
		out[i] = f.Suspicion
	}
	return out
}

// AuditNamespace is Audit with findings tagged by namespace and key
func (e *Engine) AuditNamespace(ns domain.Namespace, settings domain.Settings) []domain.Finding {
	return e.evaluate(ns, settings)
}

// AuditSnapshot audits each namespace of a snapshot in dump order
func (e *Engine) AuditSnapshot(snapshot domain.Snapshot) []domain.Finding {
	var out []domain.Finding
	for _, ns := range snapshot.Namespaces() {
		out = append(out, e.AuditNamespace(ns, snapshot[ns])...)
	}
	return out
}

func (e *Engine) evaluate(ns domain.Namespace, settings domain.Settings) []domain.Finding {
	e.mu.RLock()
	t := e.table
	e.mu.RUnlock()

	findings := []domain.Finding{}
	for _, key := range settings.Keys() {
		value := settings[key]
		rule, ok := t.match(key, value)
		if !ok {
			continue
		}

		if rule.Level.IsRisk() {
			log.Printf("Audit: Warning: [%s] %s (%s=%q)", rule.Level, rule.Description, key, value)
		} else {
			log.Printf("Audit: [%s] %s", rule.Level, rule.Description)
		}

		findings = append(findings, domain.Finding{
			Namespace: ns,
			Key:       key,
			Value:     value,
			Suspicion: rule.Suspicion(),
		})
	}
	return findings
}

var defaultEngine = Default()

// Audit evaluates settings against the built-in rules
func Audit(settings domain.Settings) []domain.Suspicion {
	return defaultEngine.Audit(settings)
}
