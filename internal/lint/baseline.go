package lint

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/distance"
	"github.com/phobologic/astdistance/internal/model"
)

// maxMedoidCandidates bounds the quadratic medoid search to the most
// frequent skeletons.
const maxMedoidCandidates = 200

// Skeleton copies the subtree at id down to depth levels below it, dropping
// names and comments. Depth 0 keeps only the root.
func Skeleton(t *ast.Tree, id ast.NodeID, depth int) *ast.Tree {
	b := ast.NewBuilder()
	var copyNode func(id ast.NodeID, level int) ast.NodeID
	copyNode = func(id ast.NodeID, level int) ast.NodeID {
		n := t.Node(id)
		var kids []ast.NodeID
		if level < depth {
			for _, c := range n.Children {
				if t.Node(c).Kind == ast.Comment {
					continue
				}
				kids = append(kids, copyNode(c, level+1))
			}
		}
		// Kinds come from a valid tree, so Add cannot fail.
		out, _ := b.Add(n.Kind, n.Role, "", n.Span, kids)
		return out
	}
	return b.Finish(copyNode(id, 0))
}

type sample struct {
	file *model.SourceFile
	id   ast.NodeID
	sig  ast.Signature
}

type shape struct {
	tree  *ast.Tree
	count int
}

// Baseline learns the typical function and type shape of the target tree
// and flags subtrees far from it. The typical shape is the medoid of the
// depth-limited skeletons of all declared functions (resp. types).
func Baseline(ctx context.Context, target *model.SourceTree, cfg Config) (Result, error) {
	log := cfg.logger()
	c := &collector{cfg: &cfg}
	res := Result{Truncated: target.Truncated}
	loaded := target.Loaded()

	kinds := []struct {
		rule    string
		declare func(*ast.Node) bool
	}{
		{RuleFunctionShape, isDeclaredFunction},
		{RuleTypeShape, isDeclaredType},
	}
	for _, k := range kinds {
		r, ok := cfg.rule(k.rule)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			res.Truncated = true
			break
		}

		samples, shapes := collect(loaded, k.declare, cfg.SkeletonDepth)
		minSamples := cfg.MinSamples
		if minSamples <= 0 {
			minSamples = DefaultMinSamples
		}
		if len(samples) < minSamples {
			log.Debug("too few samples for baseline", zap.String("rule", k.rule), zap.Int("samples", len(samples)))
			continue
		}

		medoid, dist, err := findMedoid(ctx, shapes, cfg.Distance)
		if err != nil {
			return Result{}, err
		}
		if medoid == nil {
			res.Truncated = true
			break
		}
		log.Debug("learned baseline", zap.String("rule", k.rule), zap.String("shape", medoid.String()), zap.Int("samples", len(samples)))

		for _, s := range samples {
			score, ok := dist[s.sig]
			if !ok || score <= r.Threshold {
				continue
			}
			n := s.file.Tree.Node(s.id)
			c.add(k.rule, s.file.Path, n.Span, "%s is far from the usual shape (score %.2f > %.2f)",
				describe(n), score, r.Threshold)
		}
	}
	c.opaqueDensity(loaded)

	res.Findings = c.result()
	return res, nil
}

func collect(files []*model.SourceFile, declare func(*ast.Node) bool, depth int) ([]sample, map[ast.Signature]*shape) {
	var samples []sample
	shapes := make(map[ast.Signature]*shape)
	for _, f := range files {
		t := f.Tree
		t.Walk(t.Root, func(id ast.NodeID, _ int) bool {
			if !declare(t.Node(id)) {
				return true
			}
			sk := Skeleton(t, id, depth)
			sig := sk.Node(sk.Root).Sig
			if s, ok := shapes[sig]; ok {
				s.count++
			} else {
				shapes[sig] = &shape{tree: sk, count: 1}
			}
			samples = append(samples, sample{file: f, id: id, sig: sig})
			return true
		})
	}
	return samples, shapes
}

// findMedoid returns the skeleton minimizing the count-weighted distance to
// all others, and the distance of every skeleton to it. It returns a nil
// tree when ctx ends first.
func findMedoid(ctx context.Context, shapes map[ast.Signature]*shape, cfg distance.Config) (*ast.Tree, map[ast.Signature]float64, error) {
	sigs := make([]ast.Signature, 0, len(shapes))
	for sig := range shapes {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool {
		a, b := shapes[sigs[i]], shapes[sigs[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return sigs[i] < sigs[j]
	})
	candidates := sigs
	if len(candidates) > maxMedoidCandidates {
		candidates = candidates[:maxMedoidCandidates]
	}

	var (
		best     ast.Signature
		bestCost = -1.0
		bestDist map[ast.Signature]float64
	)
	for _, cand := range candidates {
		if ctx.Err() != nil {
			return nil, nil, nil
		}
		dist := make(map[ast.Signature]float64, len(sigs))
		var cost float64
		for _, sig := range sigs {
			if sig == cand {
				dist[sig] = 0
				continue
			}
			res, err := distance.Trees(shapes[sig].tree, shapes[cand].tree, cfg)
			if err != nil {
				return nil, nil, err
			}
			dist[sig] = res.Score
			cost += res.Score * float64(shapes[sig].count)
		}
		if bestCost < 0 || cost < bestCost {
			best, bestCost, bestDist = cand, cost, dist
		}
	}
	return shapes[best].tree, bestDist, nil
}
