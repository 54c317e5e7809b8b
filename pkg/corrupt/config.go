package corrupt

import (
	"fmt"
	"sort"
	"strings"
)

// Rule names, in default application order.
const (
	Freshness    = "freshness"
	Completeness = "completeness"
	Duplicates   = "duplicates"
	Invalidity   = "invalidity"
	Consistency  = "consistency"
	Accuracy     = "accuracy"
)

// DefaultPercent is the intensity every rule gets unless configured.
const DefaultPercent = 10

// RuleNames lists the recognized rules in default order.
func RuleNames() []string {
	return []string{Freshness, Completeness, Duplicates, Invalidity, Consistency, Accuracy}
}

// Setting is one rule and its intensity as a percentage of current rows.
type Setting struct {
	Rule    string
	Percent int
}

// Config is an ordered list of settings; rules run in this order.
type Config []Setting

// DefaultConfig returns every rule at DefaultPercent.
func DefaultConfig() Config {
	names := RuleNames()
	c := make(Config, len(names))
	for i, n := range names {
		c[i] = Setting{Rule: n, Percent: DefaultPercent}
	}
	return c
}

// Get returns the configured percentage for rule.
func (c Config) Get(rule string) (int, bool) {
	for _, s := range c {
		if s.Rule == rule {
			return s.Percent, true
		}
	}
	return 0, false
}

// With returns a copy of c with rule set to pct. Existing rules keep their
// position; new ones are appended. Unknown rules yield ErrUnknownRule.
func (c Config) With(rule string, pct int) (Config, error) {
	if _, err := Lookup(rule); err != nil {
		return c, err
	}
	out := make(Config, len(c), len(c)+1)
	copy(out, c)
	for i := range out {
		if out[i].Rule == rule {
			out[i].Percent = pct
			return out, nil
		}
	}
	return append(out, Setting{Rule: rule, Percent: pct}), nil
}

// Override applies values onto c, ignoring and returning unknown keys.
// Keys are matched case-insensitively. Rules new to c are appended in
// RuleNames order; when two keys name the same rule the one sorting last
// wins.
func (c Config) Override(values map[string]int) (Config, []string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var ignored []string
	byRule := make(map[string]int, len(keys))
	for _, k := range keys {
		rule := strings.ToLower(strings.TrimSpace(k))
		if _, err := Lookup(rule); err != nil {
			ignored = append(ignored, k)
			continue
		}
		byRule[rule] = values[k]
	}
	out := c
	for _, rule := range RuleNames() {
		if v, ok := byRule[rule]; ok {
			out, _ = out.With(rule, v)
		}
	}
	return out, ignored
}

// Validate rejects negative percentages. Upper bounds depend on the row
// count and are checked when each rule runs.
func (c Config) Validate() error {
	for _, s := range c {
		if s.Percent < 0 {
			return fmt.Errorf("%w: %s=%d", ErrOutOfRange, s.Rule, s.Percent)
		}
	}
	return nil
}

func (c Config) String() string {
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = fmt.Sprintf("%s=%d", s.Rule, s.Percent)
	}
	return strings.Join(parts, ",")
}
