// Package planner decomposes natural-language commands into ordered tasks
// and tracks which task is current.
package planner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step is one subtask template inside a rule.
type Step struct {
	// Description is the human-readable label for the generated task.
	Description string `yaml:"description"`
	// Type classifies the work so the backend can select behavior.
	Type string `yaml:"type"`
	// Target names what the step operates on.
	Target string `yaml:"target"`
}

// Rule maps a command pattern to a fixed subtask template. Match holds
// groups of alternative keywords: a rule matches when every group has at
// least one keyword contained in the lowercased command.
type Rule struct {
	// Name identifies the rule in logs and tests.
	Name string `yaml:"name"`
	// Match is the keyword groups, all of which must hit.
	Match [][]string `yaml:"match"`
	// Steps are the subtasks generated when the rule matches, in order.
	Steps []Step `yaml:"steps"`
}

// Matches reports whether every keyword group has at least one hit in the
// command. Matching is done on the lowercased command; the rule keywords
// are expected to be lowercase already.
func (r Rule) Matches(command string) bool {
	lower := strings.ToLower(command)
	for _, group := range r.Match {
		hit := false
		for _, kw := range group {
			if strings.Contains(lower, kw) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return len(r.Match) > 0
}

// DefaultRules is the built-in rule table. Rules are evaluated top-down and
// the first match wins; commands that match no rule degrade to a single
// generic task.
var DefaultRules = []Rule{
	{
		Name:  "login_layout",
		Match: [][]string{{"login"}, {"layout", "style"}},
		Steps: []Step{
			{Description: "Locate login page files", Type: "file_discovery", Target: "login_files"},
			{Description: "Analyze current layout structure", Type: "code_analysis", Target: "login_component"},
			{Description: "Update CSS for modern styling", Type: "code_modification", Target: "login_styles"},
			{Description: "Ensure responsive design", Type: "code_modification", Target: "responsive_design"},
			{Description: "Test across different screen sizes", Type: "testing", Target: "responsive_testing"},
		},
	},
	{
		Name:  "api_endpoint",
		Match: [][]string{{"api"}, {"add", "create"}},
		Steps: []Step{
			{Description: "Identify API endpoint requirements", Type: "analysis", Target: "api_requirements"},
			{Description: "Create API endpoint implementation", Type: "code_creation", Target: "api_implementation"},
			{Description: "Add input validation", Type: "code_modification", Target: "input_validation"},
			{Description: "Write unit tests", Type: "testing", Target: "unit_tests"},
		},
	},
}

// rulesFile is the YAML layout of an external rule table.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rule table from a YAML file. The loaded rules replace
// the defaults entirely, so a project can reorder or extend the table
// without touching planner logic.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	for i, r := range f.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: missing name", i)
		}
		if len(r.Match) == 0 {
			return nil, fmt.Errorf("rule %q: no match groups", r.Name)
		}
		if len(r.Steps) == 0 {
			return nil, fmt.Errorf("rule %q: no steps", r.Name)
		}
	}

	return f.Rules, nil
}

// complexityKeywords maps effort estimates to trigger words, scanned in
// order from low to high.
var complexityKeywords = []struct {
	level string
	words []string
}{
	{"low", []string{"simple", "add", "update", "fix"}},
	{"medium", []string{"implement", "create", "refactor"}},
	{"high", []string{"rewrite", "migrate", "redesign"}},
}

// EstimateComplexity guesses task effort from keywords in the description.
// Returns "unknown" when nothing matches.
func EstimateComplexity(description string) string {
	lower := strings.ToLower(description)
	for _, c := range complexityKeywords {
		for _, w := range c.words {
			if strings.Contains(lower, w) {
				return c.level
			}
		}
	}
	return "unknown"
}
