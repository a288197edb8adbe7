// Package bindings resolves value-element binding keys to preview content.
// Bindings are declared in a YAML rules file mapping valueId patterns (with
// `*` wildcards) to sample values, so a bound slot shows representative
// content in the preview instead of an empty string.
package bindings

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Binding maps a valueId pattern to the value substituted during preview.
type Binding struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Value   string `json:"value" yaml:"value"`
}

// Rules is the full binding rule set.
type Rules struct {
	DefaultValue string    `json:"defaultValue" yaml:"default_value"`
	Bindings     []Binding `json:"bindings" yaml:"bindings"`
}

// Resolve returns the value for a binding key. First matching pattern wins;
// unmatched keys resolve to the default value.
func (r *Rules) Resolve(valueID string) string {
	for _, b := range r.Bindings {
		if matchPattern(b.Pattern, valueID) {
			return b.Value
		}
	}
	return r.DefaultValue
}

func matchPattern(pattern, s string) bool {
	if !strings.ContainsRune(pattern, '*') {
		return pattern == s
	}
	ok, err := path.Match(pattern, s)
	return err == nil && ok
}

// ParseRules parses a YAML binding rules file.
func ParseRules(filePath string) (*Rules, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseRulesFromReader(file)
}

// ParseRulesFromReader parses binding rules from an io.Reader.
func ParseRulesFromReader(r io.Reader) (*Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}

	return &rules, nil
}

// Store holds the active binding rules with optional file persistence.
// A missing rules file is normal on first run and yields empty rules.
type Store struct {
	mu       sync.RWMutex
	rules    Rules
	filePath string
}

// NewStore loads rules from filePath if it exists.
func NewStore(filePath string) (*Store, error) {
	s := &Store{filePath: filePath}
	if filePath == "" {
		return s, nil
	}
	rules, err := ParseRules(filePath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading binding rules: %w", err)
	}
	s.rules = *rules
	return s, nil
}

// Rules returns a copy of the active rule set.
func (s *Store) Rules() Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.rules
	out.Bindings = append([]Binding(nil), s.rules.Bindings...)
	return out
}

// Resolve resolves a binding key against the active rules.
func (s *Store) Resolve(valueID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.Resolve(valueID)
}

// Update replaces the active rules and writes them back to the rules file.
func (s *Store) Update(rules Rules) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules

	if s.filePath == "" {
		return nil
	}
	data, err := yaml.Marshal(&rules)
	if err != nil {
		return fmt.Errorf("marshaling binding rules: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("writing binding rules: %w", err)
	}
	return nil
}
