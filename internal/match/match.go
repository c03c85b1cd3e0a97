// Package match pairs origin files with their target counterparts.
//
// Pairing runs in passes. Explicit port headers win, then normalized path
// equality, then structural similarity scored with the distance engine
// inside directory groups and assigned greedily from the lowest score up.
package match

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/phobologic/astdistance/internal/distance"
	"github.com/phobologic/astdistance/internal/model"
)

// Config controls matching.
type Config struct {
	// Threshold is the score below which a structural pair is accepted.
	Threshold float64
	// GroupDepth is the number of leading directory components that must
	// agree for two files to be compared structurally.
	GroupDepth int
	Workers    int
	// ScorePathMatches scores header and path pairs for display.
	ScorePathMatches bool
	Distance         distance.Config
	Logger           *zap.Logger
}

// Defaults used by DefaultConfig.
const (
	DefaultThreshold  = 0.45
	DefaultGroupDepth = 1
	DefaultMaxNodes   = 400
)

// DefaultConfig returns the matcher defaults.
func DefaultConfig() Config {
	d := distance.DefaultConfig()
	d.MaxNodes = DefaultMaxNodes
	return Config{
		Threshold:  DefaultThreshold,
		GroupDepth: DefaultGroupDepth,
		Workers:    4,
		Distance:   d,
	}
}

// NormalizePath strips the extension, lowercases and drops '_' and '-' so
// that foo_bar.rs and FooBar.kt compare equal.
func NormalizePath(p string) string {
	p = strings.TrimSuffix(p, path.Ext(p))
	p = strings.ToLower(p)
	return strings.NewReplacer("_", "", "-", "").Replace(p)
}

func groupKey(p string, depth int) string {
	dir := path.Dir(NormalizePath(p))
	if dir == "." || depth <= 0 {
		return ""
	}
	parts := strings.Split(dir, "/")
	if len(parts) > depth {
		parts = parts[:depth]
	}
	return strings.Join(parts, "/")
}

type candidate struct {
	origin, target *model.SourceFile
	score          float64
	skipped        bool
}

type matcher struct {
	cfg     Config
	log     *zap.Logger
	origins []*model.SourceFile
	targets []*model.SourceFile
	byPath  map[string]*model.SourceFile
	tByPath map[string]*model.SourceFile
	freeO   map[string]bool
	freeT   map[string]bool
	weights map[*model.SourceFile]int
	matched []model.Match
	trunc   bool
}

// Match pairs the loaded files of origin with the loaded files of target.
// Files that failed to load take no part. The returned report lists every
// loaded origin file exactly once, either matched or unmatched.
func Match(ctx context.Context, origin, target *model.SourceTree, cfg Config) (*model.MatchingReport, error) {
	m := &matcher{
		cfg:     cfg,
		log:     cfg.Logger,
		origins: origin.Loaded(),
		targets: target.Loaded(),
		byPath:  make(map[string]*model.SourceFile),
		tByPath: make(map[string]*model.SourceFile),
		freeO:   make(map[string]bool),
		freeT:   make(map[string]bool),
		weights: make(map[*model.SourceFile]int),
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.cfg.Workers <= 0 {
		m.cfg.Workers = 1
	}
	for _, f := range m.origins {
		m.byPath[f.Path] = f
		m.freeO[f.Path] = true
		m.weights[f] = distance.Weight(f.Tree, f.Tree.Root, cfg.Distance)
	}
	for _, f := range m.targets {
		m.tByPath[f.Path] = f
		m.freeT[f.Path] = true
		m.weights[f] = distance.Weight(f.Tree, f.Tree.Root, cfg.Distance)
	}

	m.headerPass()
	m.pathPass()
	if err := m.scoreAccepted(ctx); err != nil {
		return nil, err
	}
	if err := m.structurePass(ctx); err != nil {
		return nil, err
	}

	rep := &model.MatchingReport{
		Matched:   m.matched,
		Truncated: m.trunc || origin.Truncated || target.Truncated,
	}
	sort.Slice(rep.Matched, func(i, j int) bool {
		return rep.Matched[i].Origin < rep.Matched[j].Origin
	})
	for _, f := range m.origins {
		if m.freeO[f.Path] {
			rep.UnmatchedOrigin = append(rep.UnmatchedOrigin, f.Path)
		}
	}
	for _, f := range m.targets {
		if m.freeT[f.Path] {
			rep.UnmatchedTarget = append(rep.UnmatchedTarget, f.Path)
		}
	}
	m.log.Debug("matching done",
		zap.Int("matched", len(rep.Matched)),
		zap.Int("unmatched_origin", len(rep.UnmatchedOrigin)),
		zap.Int("unmatched_target", len(rep.UnmatchedTarget)),
		zap.Bool("truncated", rep.Truncated))
	return rep, nil
}

func (m *matcher) accept(o, t *model.SourceFile, method model.MatchMethod, score float64, scored bool) {
	m.freeO[o.Path] = false
	m.freeT[t.Path] = false
	m.matched = append(m.matched, model.Match{
		Origin: o.Path,
		Target: t.Path,
		Score:  score,
		Scored: scored,
		Method: method,
	})
	m.log.Debug("matched", zap.String("origin", o.Path), zap.String("target", t.Path), zap.String("method", string(method)))
}

// ResolveHeader finds the origin file a port header names. The header may
// carry extra leading directories, so a unique suffix match is accepted.
func ResolveHeader(files []*model.SourceFile, ref string) *model.SourceFile {
	ref = strings.TrimPrefix(path.Clean(strings.ReplaceAll(ref, "\\", "/")), "./")
	for _, f := range files {
		if f.Path == ref {
			return f
		}
	}
	var found *model.SourceFile
	for _, f := range files {
		if strings.HasSuffix(ref, "/"+f.Path) {
			if found != nil {
				return nil
			}
			found = f
		}
	}
	return found
}

func (m *matcher) headerPass() {
	for _, t := range m.targets {
		ref := t.Tree.SourceRef
		if ref == "" {
			continue
		}
		o := ResolveHeader(m.origins, ref)
		if o == nil {
			m.log.Debug("port header names unknown origin", zap.String("target", t.Path), zap.String("source", ref))
			continue
		}
		if !m.freeO[o.Path] {
			continue
		}
		m.accept(o, t, model.MethodHeader, 0, false)
	}
}

func (m *matcher) pathPass() {
	byKey := make(map[string][]*model.SourceFile)
	for _, o := range m.origins {
		if m.freeO[o.Path] {
			k := NormalizePath(o.Path)
			byKey[k] = append(byKey[k], o)
		}
	}
	for _, t := range m.targets {
		if !m.freeT[t.Path] {
			continue
		}
		for _, o := range byKey[NormalizePath(t.Path)] {
			if m.freeO[o.Path] {
				m.accept(o, t, model.MethodPath, 0, false)
				break
			}
		}
	}
}

// scoreAccepted fills in display scores for header and path pairs.
func (m *matcher) scoreAccepted(ctx context.Context) error {
	if !m.cfg.ScorePathMatches || len(m.matched) == 0 {
		return nil
	}
	pairs := make([]candidate, len(m.matched))
	for i, mt := range m.matched {
		pairs[i] = candidate{origin: m.byPath[mt.Origin], target: m.tByPath[mt.Target]}
	}
	scored, err := m.score(ctx, pairs)
	if err != nil {
		return err
	}
	index := make(map[[2]string]candidate, len(scored))
	for _, c := range scored {
		index[[2]string{c.origin.Path, c.target.Path}] = c
	}
	for i := range m.matched {
		c, ok := index[[2]string{m.matched[i].Origin, m.matched[i].Target}]
		if !ok || c.skipped {
			continue
		}
		m.matched[i].Score = c.score
		m.matched[i].Scored = true
	}
	return nil
}

func (m *matcher) structurePass(ctx context.Context) error {
	type group struct {
		origins, targets []*model.SourceFile
	}
	groups := make(map[string]*group)
	var keys []string
	get := func(k string) *group {
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			keys = append(keys, k)
		}
		return g
	}
	for _, o := range m.origins {
		if m.freeO[o.Path] {
			g := get(groupKey(o.Path, m.cfg.GroupDepth))
			g.origins = append(g.origins, o)
		}
	}
	for _, t := range m.targets {
		if m.freeT[t.Path] {
			g := get(groupKey(t.Path, m.cfg.GroupDepth))
			g.targets = append(g.targets, t)
		}
	}
	sort.Strings(keys)

	var pairs []candidate
	for _, k := range keys {
		g := groups[k]
		for _, o := range g.origins {
			for _, t := range g.targets {
				if distance.LowerBound(m.weights[o], m.weights[t], m.cfg.Distance.Costs) >= m.cfg.Threshold {
					continue
				}
				pairs = append(pairs, candidate{origin: o, target: t})
			}
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	m.log.Debug("scoring candidate pairs", zap.Int("pairs", len(pairs)), zap.Int("groups", len(keys)))

	scored, err := m.score(ctx, pairs)
	if err != nil {
		return err
	}
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score < b.score
		}
		if a.origin.Path != b.origin.Path {
			return a.origin.Path < b.origin.Path
		}
		return a.target.Path < b.target.Path
	})
	for _, c := range scored {
		if c.skipped || c.score >= m.cfg.Threshold {
			continue
		}
		if m.freeO[c.origin.Path] && m.freeT[c.target.Path] {
			m.accept(c.origin, c.target, model.MethodStructure, c.score, true)
		}
	}
	return nil
}

// score runs the distance engine over pairs on a bounded pool. Pairs not
// started before ctx ends come back marked skipped and truncate the report.
func (m *matcher) score(ctx context.Context, pairs []candidate) ([]candidate, error) {
	p := pool.NewWithResults[candidate]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(m.cfg.Workers)
	for _, c := range pairs {
		p.Go(func(ctx context.Context) (candidate, error) {
			if ctx.Err() != nil {
				c.skipped = true
				return c, nil
			}
			res, err := distance.Trees(c.origin.Tree, c.target.Tree, m.cfg.Distance)
			if err != nil {
				return c, fmt.Errorf("scoring %s against %s: %w", c.origin.Path, c.target.Path, err)
			}
			c.score = res.Score
			return c, nil
		})
	}
	out, err := p.Wait()
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		if c.skipped {
			m.trunc = true
			break
		}
	}
	return out, nil
}
