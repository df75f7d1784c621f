// Package rules implements the symbolic layer: an ordered keyword table that
// maps surface keywords in a case narrative to candidate case type ids.
//
// Matching is case-insensitive substring containment with no stemming and no
// negation handling. Table order is significant: when several keywords map to
// the same case type id, the first keyword in table order that matches the
// text is recorded as the trigger for that id.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps one keyword to the case type ids it triggers.
type Rule struct {
	Keyword     string   `yaml:"keyword"`
	CaseTypeIDs []string `yaml:"case_types"`
}

// Match records one keyword trigger: which keyword fired, which case type id
// it produced, and a human-readable rendering of the rule.
type Match struct {
	Keyword    string `json:"keyword"`
	CaseTypeID string `json:"matched_case_type"`
	Rule       string `json:"rule"`
}

// Table is an immutable, ordered rule table. The zero value matches nothing.
type Table struct {
	rules []Rule
}

// NewTable builds a table from rules, preserving their order. Keywords are
// normalized to lower case; the input slice is copied.
func NewTable(rules []Rule) Table {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{
			Keyword:     strings.ToLower(r.Keyword),
			CaseTypeIDs: append([]string(nil), r.CaseTypeIDs...),
		}
	}
	return Table{rules: out}
}

// Len returns the number of rules in the table.
func (t Table) Len() int {
	return len(t.rules)
}

// Extract runs every rule against text in table order and returns the
// deduplicated case type ids plus one Match per id for the first keyword that
// triggered it. Pure: never fails, empty text yields empty results.
func (t Table) Extract(text string) ([]string, []Match) {
	lower := strings.ToLower(text)

	var ids []string
	var matches []Match
	seen := make(map[string]bool)

	for _, r := range t.rules {
		if r.Keyword == "" || !strings.Contains(lower, r.Keyword) {
			continue
		}
		for _, id := range r.CaseTypeIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			matches = append(matches, Match{
				Keyword:    r.Keyword,
				CaseTypeID: id,
				Rule:       fmt.Sprintf("Symbolic rule: '%s' -> %s", r.Keyword, id),
			})
		}
	}

	return ids, matches
}

// LoadTable reads an ordered rule table from a YAML file of the form:
//
//	rules:
//	  - keyword: theft
//	    case_types: [THEFT_01]
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read rules file: %w", err)
	}

	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Table{}, fmt.Errorf("parse rules file: %w", err)
	}
	if len(doc.Rules) == 0 {
		return Table{}, fmt.Errorf("rules file %s contains no rules", path)
	}
	for i, r := range doc.Rules {
		if strings.TrimSpace(r.Keyword) == "" {
			return Table{}, fmt.Errorf("rule %d: keyword is empty", i)
		}
		if len(r.CaseTypeIDs) == 0 {
			return Table{}, fmt.Errorf("rule %d (%s): no case types", i, r.Keyword)
		}
	}

	return NewTable(doc.Rules), nil
}

// DefaultTable returns the built-in keyword table for Indian Penal Code case
// types. Order matters and is preserved.
func DefaultTable() Table {
	return NewTable([]Rule{
		{Keyword: "cheating", CaseTypeIDs: []string{"CHEATING_01", "CHEATING_02"}},
		{Keyword: "fraud", CaseTypeIDs: []string{"CHEATING_01", "CHEATING_02"}},
		{Keyword: "stolen", CaseTypeIDs: []string{"THEFT_01"}},
		{Keyword: "theft", CaseTypeIDs: []string{"THEFT_01"}},
		{Keyword: "assault", CaseTypeIDs: []string{"ASSAULT_01"}},
		{Keyword: "beat", CaseTypeIDs: []string{"ASSAULT_01"}},
		{Keyword: "murder", CaseTypeIDs: []string{"MURDER_01"}},
		{Keyword: "kill", CaseTypeIDs: []string{"MURDER_01"}},
		{Keyword: "defamation", CaseTypeIDs: []string{"DEFAMATION_01"}},
		{Keyword: "reputation", CaseTypeIDs: []string{"DEFAMATION_01"}},
		{Keyword: "harassment", CaseTypeIDs: []string{"HARASSMENT_01", "ASSAULT_01"}},
		{Keyword: "kidnap", CaseTypeIDs: []string{"KIDNAPPING_01"}},
		{Keyword: "abduct", CaseTypeIDs: []string{"KIDNAPPING_01"}},
		{Keyword: "dowry", CaseTypeIDs: []string{"DOWRY_01"}},
		{Keyword: "bribe", CaseTypeIDs: []string{"CORRUPTION_01"}},
		{Keyword: "trust", CaseTypeIDs: []string{"CRIMINAL_BREACH_TRUST_01"}},
		{Keyword: "misappropriat", CaseTypeIDs: []string{"CRIMINAL_BREACH_TRUST_01"}},
		{Keyword: "extort", CaseTypeIDs: []string{"EXTORTION_01"}},
		{Keyword: "blackmail", CaseTypeIDs: []string{"EXTORTION_01"}},
		{Keyword: "trespass", CaseTypeIDs: []string{"TRESPASS_01"}},
		{Keyword: "bigamy", CaseTypeIDs: []string{"BIGAMY_01"}},
		{Keyword: "cohabitat", CaseTypeIDs: []string{"COHABITATION_01"}},
		{Keyword: "forgery", CaseTypeIDs: []string{"FORGERY_01"}},
	})
}
