package lint

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/distance"
	"github.com/phobologic/astdistance/internal/match"
	"github.com/phobologic/astdistance/internal/model"
)

// Result is the output of a lint run.
type Result struct {
	Findings  []model.LintFinding
	Truncated bool
}

// Counterpart pairs the functions and types of every matched file pair in
// rep and scores each pair, reporting divergent and missing ones. It also flags
// port headers naming origin files that do not exist.
func Counterpart(ctx context.Context, origin, target *model.SourceTree, rep *model.MatchingReport, cfg Config) (Result, error) {
	log := cfg.logger()
	c := &collector{cfg: &cfg}
	res := Result{Truncated: rep.Truncated}

	for _, m := range rep.Matched {
		if ctx.Err() != nil {
			res.Truncated = true
			break
		}
		o, t := origin.File(m.Origin), target.File(m.Target)
		if o == nil || t == nil || !o.OK() || !t.OK() {
			continue
		}
		if err := c.comparePair(o, t); err != nil {
			return Result{}, err
		}
		log.Debug("compared pair", zap.String("origin", o.Path), zap.String("target", t.Path))
	}

	loaded := target.Loaded()
	for _, t := range loaded {
		ref := t.Tree.SourceRef
		if ref == "" {
			continue
		}
		if match.ResolveHeader(origin.Files, ref) == nil {
			c.add(RuleStaleHeader, t.Path, fileSpan(t.Tree), "port header names %s, which is not in the origin tree", ref)
		}
	}
	c.opaqueDensity(loaded)

	res.Findings = c.result()
	return res, nil
}

// unit is a declared function or type inside one file.
type unit struct {
	id   ast.NodeID
	kind ast.Kind
	key  string
}

// declaredUnits returns the declared functions and types of t in preorder.
func declaredUnits(t *ast.Tree) []unit {
	var out []unit
	t.Walk(t.Root, func(id ast.NodeID, _ int) bool {
		n := t.Node(id)
		if isDeclaredFunction(n) || isDeclaredType(n) {
			out = append(out, unit{id: id, kind: n.Kind, key: nameKey(n.Name)})
		}
		return true
	})
	return out
}

// nameKey folds naming conventions so push_back and pushBack agree.
func nameKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

type unitPair struct {
	o, t  int
	score float64
}

// comparePair pairs the declared units of a matched file pair, first by
// kind and name, then by structure for the units left over, and reports
// divergent pairs and origin units without a counterpart.
func (c *collector) comparePair(o, t *model.SourceFile) error {
	dcfg := c.cfg.Distance
	ou, tu := declaredUnits(o.Tree), declaredUnits(t.Tree)
	oPaired := make([]bool, len(ou))
	tPaired := make([]bool, len(tu))
	var pairs []unitPair

	byName := make(map[string][]int)
	for j, u := range tu {
		if u.key != "" {
			k := u.kind.String() + "/" + u.key
			byName[k] = append(byName[k], j)
		}
	}
	for i, u := range ou {
		if u.key == "" {
			continue
		}
		k := u.kind.String() + "/" + u.key
		if cands := byName[k]; len(cands) > 0 {
			byName[k] = cands[1:]
			oPaired[i], tPaired[cands[0]] = true, true
			pairs = append(pairs, unitPair{o: i, t: cands[0], score: -1})
		}
	}

	// Renamed units pair by structure, and only when they would not be
	// reported as divergent anyway.
	var cands []unitPair
	for i, a := range ou {
		if oPaired[i] {
			continue
		}
		for j, b := range tu {
			if tPaired[j] || a.kind != b.kind {
				continue
			}
			sub, err := distance.Subtrees(o.Tree, a.id, t.Tree, b.id, dcfg)
			if err != nil {
				return err
			}
			if sub.Score <= c.cfg.pairThreshold(divergenceRule(a.kind)) {
				cands = append(cands, unitPair{o: i, t: j, score: sub.Score})
			}
		}
	}
	sort.SliceStable(cands, func(x, y int) bool {
		if cands[x].score != cands[y].score {
			return cands[x].score < cands[y].score
		}
		if cands[x].o != cands[y].o {
			return cands[x].o < cands[y].o
		}
		return cands[x].t < cands[y].t
	})
	for _, p := range cands {
		if oPaired[p.o] || tPaired[p.t] {
			continue
		}
		oPaired[p.o], tPaired[p.t] = true, true
		pairs = append(pairs, p)
	}

	for _, p := range pairs {
		a, b := o.Tree.Node(ou[p.o].id), t.Tree.Node(tu[p.t].id)
		id := divergenceRule(a.Kind)
		r, ok := c.cfg.rule(id)
		if !ok {
			continue
		}
		score := p.score
		if score < 0 {
			sub, err := distance.Subtrees(o.Tree, ou[p.o].id, t.Tree, tu[p.t].id, dcfg)
			if err != nil {
				return err
			}
			score = sub.Score
		}
		if score > r.Threshold {
			c.add(id, t.Path, b.Span, "%s diverges from %s in %s:%d (score %.2f > %.2f)",
				describe(b), describe(a), o.Path, a.Span.Start.Line, score, r.Threshold)
		}
	}

	for i, u := range ou {
		if oPaired[i] {
			continue
		}
		a := o.Tree.Node(u.id)
		id := RuleMissingFunction
		if u.kind == ast.Type {
			id = RuleMissingType
		}
		c.add(id, t.Path, fileSpan(t.Tree), "%s from %s:%d has no counterpart",
			describe(a), o.Path, a.Span.Start.Line)
	}
	return nil
}

func divergenceRule(k ast.Kind) string {
	if k == ast.Type {
		return RuleTypeDivergence
	}
	return RuleFunctionDivergence
}
