// Package lint flags target subtrees whose structure diverges from their
// origin counterpart or from the shape most common in the target tree.
package lint

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/distance"
	"github.com/phobologic/astdistance/internal/model"
)

// Rule identifiers.
const (
	RuleFunctionDivergence = "function-divergence"
	RuleTypeDivergence     = "type-divergence"
	RuleMissingFunction    = "missing-function"
	RuleMissingType        = "missing-type"
	RuleStaleHeader        = "stale-source-header"
	RuleFunctionShape      = "function-shape"
	RuleTypeShape          = "type-shape"
	RuleOpaqueDensity      = "opaque-density"
)

// Rule configures one check. Threshold is unused by rules that do not score.
type Rule struct {
	Threshold float64
	Severity  model.Severity
	Enabled   bool
}

// DefaultRules returns every rule with its default threshold and severity.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		RuleFunctionDivergence: {Threshold: 0.5, Severity: model.SeverityWarning, Enabled: true},
		RuleTypeDivergence:     {Threshold: 0.5, Severity: model.SeverityWarning, Enabled: true},
		RuleMissingFunction:    {Severity: model.SeverityError, Enabled: true},
		RuleMissingType:        {Severity: model.SeverityError, Enabled: true},
		RuleStaleHeader:        {Severity: model.SeverityWarning, Enabled: true},
		RuleFunctionShape:      {Threshold: 0.6, Severity: model.SeverityInfo, Enabled: true},
		RuleTypeShape:          {Threshold: 0.6, Severity: model.SeverityInfo, Enabled: true},
		RuleOpaqueDensity:      {Threshold: 0.25, Severity: model.SeverityWarning, Enabled: true},
	}
}

// RuleIDs returns the known rule identifiers, sorted.
func RuleIDs() []string {
	rules := DefaultRules()
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Defaults for Config.
const (
	DefaultSkeletonDepth = 3
	// DefaultMinSamples is the fewest subtrees of a kind needed before a
	// baseline shape is learned.
	DefaultMinSamples = 5
	// minOpaqueNodes keeps tiny files out of the opaque-density rule.
	minOpaqueNodes = 20
)

// Config controls a lint run.
type Config struct {
	Rules         map[string]Rule
	SkeletonDepth int
	MinSamples    int
	Distance      distance.Config
	Logger        *zap.Logger
}

// DefaultConfig returns the lint defaults.
func DefaultConfig() Config {
	return Config{
		Rules:         DefaultRules(),
		SkeletonDepth: DefaultSkeletonDepth,
		MinSamples:    DefaultMinSamples,
		Distance:      distance.DefaultConfig(),
	}
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Config) rule(id string) (Rule, bool) {
	r, ok := c.Rules[id]
	if !ok || !r.Enabled {
		return Rule{}, false
	}
	return r, true
}

// pairThreshold is the highest score at which two differently named units
// still count as the same unit. It follows the rule's threshold even when
// the rule itself is disabled.
func (c *Config) pairThreshold(id string) float64 {
	if r, ok := c.Rules[id]; ok {
		return r.Threshold
	}
	return DefaultRules()[id].Threshold
}

type collector struct {
	cfg      *Config
	findings []model.LintFinding
}

func (c *collector) add(id, path string, span ast.Span, format string, args ...any) {
	r, ok := c.cfg.rule(id)
	if !ok {
		return
	}
	c.findings = append(c.findings, model.LintFinding{
		Path:     path,
		Rule:     id,
		Severity: r.Severity,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *collector) result() []model.LintFinding {
	model.SortFindings(c.findings)
	return c.findings
}

// opaqueDensity flags files where constructs without a canonical mapping
// make up too much of the tree.
func (c *collector) opaqueDensity(files []*model.SourceFile) {
	r, ok := c.cfg.rule(RuleOpaqueDensity)
	if !ok {
		return
	}
	for _, f := range files {
		total := f.Tree.Len()
		if total < minOpaqueNodes {
			continue
		}
		share := float64(f.Tree.Count(ast.Opaque)) / float64(total)
		if share > r.Threshold {
			c.add(RuleOpaqueDensity, f.Path, f.Tree.Node(f.Tree.Root).Span,
				"%.0f%% of %d nodes are opaque (limit %.0f%%)", share*100, total, r.Threshold*100)
		}
	}
}

var (
	functionRoles = map[string]bool{"function": true, "method": true, "constructor": true, "macro": true, "signature": true}
	typeRoles     = map[string]bool{"class": true, "struct": true, "enum": true, "interface": true, "object": true}
)

// isDeclaredFunction reports whether n declares a named unit of behavior,
// as opposed to a lambda or accessor.
func isDeclaredFunction(n *ast.Node) bool {
	return n.Kind == ast.Function && functionRoles[n.Role]
}

// isDeclaredType reports whether n declares a type rather than referring
// to one.
func isDeclaredType(n *ast.Node) bool {
	return n.Kind == ast.Type && typeRoles[n.Role]
}

func describe(n *ast.Node) string {
	if n.Name != "" {
		return fmt.Sprintf("%s %s", n.Role, n.Name)
	}
	return n.Role
}

func fileSpan(t *ast.Tree) ast.Span {
	return ast.Span{Start: ast.Point{Line: 1, Column: 1}, End: t.Node(t.Root).Span.End}
}
