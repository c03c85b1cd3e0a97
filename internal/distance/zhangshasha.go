package distance

import (
	"fmt"
	"math"

	"github.com/phobologic/astdistance/internal/ast"
)

// Trees compares two whole trees.
func Trees(a, b *ast.Tree, cfg Config) (Result, error) {
	return Subtrees(a, rootOf(a), b, rootOf(b), cfg)
}

// Subtrees compares the subtree of a rooted at ai with the subtree of b
// rooted at bi. ast.None selects an empty side.
func Subtrees(a *ast.Tree, ai ast.NodeID, b *ast.Tree, bi ast.NodeID, cfg Config) (Result, error) {
	va, err := newView(a, ai, cfg)
	if err != nil {
		return Result{}, err
	}
	vb, err := newView(b, bi, cfg)
	if err != nil {
		return Result{}, err
	}

	res := Result{WeightA: va.weight, WeightB: vb.weight}
	switch {
	case va.weight == 0 && vb.weight == 0:
		return res, nil
	case va.weight == 0 || vb.weight == 0:
		for i := range va.nodes {
			c := cfg.Costs.Delete * float64(va.nodes[i].weight)
			res.Ops = append(res.Ops, Op{Kind: OpDelete, A: va.nodes[i].id, B: ast.None, Cost: c})
			res.Raw += c
		}
		for j := range vb.nodes {
			c := cfg.Costs.Insert * float64(vb.nodes[j].weight)
			res.Ops = append(res.Ops, Op{Kind: OpInsert, A: ast.None, B: vb.nodes[j].id, Cost: c})
			res.Raw += c
		}
		res.Score = 1
		return res, nil
	}

	e := newEngine(va, vb, cfg.Costs)
	e.run()
	res.Raw = e.td[len(e.td)-1]
	res.Ops = e.align()
	res.Score = Normalize(res.Raw, va.weight, vb.weight, cfg.Costs)
	return res, nil
}

// Weight returns the number of nodes of the subtree at id that take part in
// a comparison under cfg.
func Weight(t *ast.Tree, id ast.NodeID, cfg Config) int {
	if t == nil || id == ast.None {
		return 0
	}
	n := t.Node(id)
	if cfg.IgnoreComments && n.Kind == ast.Comment {
		return 0
	}
	w := 1
	for _, c := range n.Children {
		w += Weight(t, c, cfg)
	}
	return w
}

func rootOf(t *ast.Tree) ast.NodeID {
	if t == nil {
		return ast.None
	}
	return t.Root
}

type vnode struct {
	id      ast.NodeID
	kind    ast.Kind
	role    string
	name    string
	sig     ast.Signature
	weight  int
	summary bool
}

// view is a postorder rendition of a subtree with leftmost-leaf indices and
// keyroots.
type view struct {
	nodes    []vnode
	lml      []int
	keyroots []int
	weight   int
}

func newView(t *ast.Tree, root ast.NodeID, cfg Config) (*view, error) {
	v := &view{}
	if t == nil || root == ast.None {
		return v, nil
	}
	keep := func(id ast.NodeID) bool {
		return !(cfg.IgnoreComments && t.Nodes[id].Kind == ast.Comment)
	}
	if !keep(root) {
		return v, nil
	}

	weights := make(map[ast.NodeID]int)
	var levels []int
	var measure func(id ast.NodeID, depth int) (int, error)
	measure = func(id ast.NodeID, depth int) (int, error) {
		n := &t.Nodes[id]
		if !n.Kind.Valid() {
			return 0, fmt.Errorf("%w: node %d has kind %d", ErrInvalidKind, id, uint8(n.Kind))
		}
		if depth == len(levels) {
			levels = append(levels, 0)
		}
		levels[depth]++
		w := 1
		for _, c := range n.Children {
			if !keep(c) {
				continue
			}
			cw, err := measure(c, depth+1)
			if err != nil {
				return 0, err
			}
			w += cw
		}
		weights[id] = w
		return w, nil
	}
	total, err := measure(root, 0)
	if err != nil {
		return nil, err
	}
	v.weight = total

	cut := -1
	if cfg.MaxNodes > 0 && total > cfg.MaxNodes {
		sum := 0
		for d, count := range levels {
			if sum+count > cfg.MaxNodes {
				break
			}
			sum += count
			cut = d
		}
		if cut < 0 {
			cut = 0
		}
	}

	var emit func(id ast.NodeID, depth int) int
	emit = func(id ast.NodeID, depth int) int {
		n := &t.Nodes[id]
		summary := depth == cut && weights[id] > 1
		first := -1
		if !summary {
			for _, c := range n.Children {
				if !keep(c) {
					continue
				}
				if l := emit(c, depth+1); first < 0 {
					first = l
				}
			}
		}
		idx := len(v.nodes)
		if first < 0 {
			first = idx
		}
		w := 1
		if summary {
			w = weights[id]
		}
		v.nodes = append(v.nodes, vnode{
			id:      id,
			kind:    n.Kind,
			role:    n.Role,
			name:    n.Name,
			sig:     n.Sig,
			weight:  w,
			summary: summary,
		})
		v.lml = append(v.lml, first)
		return first
	}
	emit(root, 0)

	seen := make(map[int]bool, len(v.nodes))
	for i := len(v.nodes) - 1; i >= 0; i-- {
		if !seen[v.lml[i]] {
			seen[v.lml[i]] = true
			v.keyroots = append(v.keyroots, i)
		}
	}
	for l, r := 0, len(v.keyroots)-1; l < r; l, r = l+1, r-1 {
		v.keyroots[l], v.keyroots[r] = v.keyroots[r], v.keyroots[l]
	}
	return v, nil
}

type engine struct {
	a, b   *view
	costs  Costs
	m      int
	td     []float64
	fd     []float64
	stride int
}

func newEngine(a, b *view, costs Costs) *engine {
	n, m := len(a.nodes), len(b.nodes)
	return &engine{
		a:      a,
		b:      b,
		costs:  costs,
		m:      m,
		td:     make([]float64, n*m),
		fd:     make([]float64, (n+1)*(m+1)),
		stride: m + 1,
	}
}

func (e *engine) del(i int) float64 { return e.costs.Delete * float64(e.a.nodes[i].weight) }
func (e *engine) ins(j int) float64 { return e.costs.Insert * float64(e.b.nodes[j].weight) }

func (e *engine) rel(i, j int) float64 {
	a, b := &e.a.nodes[i], &e.b.nodes[j]
	if (a.summary || b.summary) && a.sig == b.sig && a.weight == b.weight {
		return 0
	}
	c := labelCost(a, b, e.costs)
	if a.weight == 1 && b.weight == 1 {
		return c
	}
	// A summary stands for a whole subtree. Shared size pays the opaque rate,
	// the difference pays insert or delete.
	shared := min(a.weight, b.weight)
	c += e.costs.Opaque * float64(shared-1)
	if a.weight > b.weight {
		c += e.costs.Delete * float64(a.weight-b.weight)
	} else {
		c += e.costs.Insert * float64(b.weight-a.weight)
	}
	return c
}

func labelCost(a, b *vnode, c Costs) float64 {
	switch {
	case a.kind != b.kind:
		return c.RelabelKind
	case a.kind == ast.Opaque:
		if a.sig == b.sig {
			return 0
		}
		return c.Opaque
	case a.role != b.role:
		return c.RelabelRole
	case a.name != b.name:
		return c.Name
	}
	return 0
}

func (e *engine) run() {
	for _, i := range e.a.keyroots {
		for _, j := range e.b.keyroots {
			e.forest(i, j)
		}
	}
}

// forest fills the forest-distance table for the subtrees rooted at i and j
// and records tree distances for pairs on their leftmost paths.
func (e *engine) forest(i, j int) {
	li, lj := e.a.lml[i], e.b.lml[j]
	f, w := e.fd, e.stride

	f[0] = 0
	for x := li; x <= i; x++ {
		f[(x-li+1)*w] = f[(x-li)*w] + e.del(x)
	}
	for y := lj; y <= j; y++ {
		f[y-lj+1] = f[y-lj] + e.ins(y)
	}
	for x := li; x <= i; x++ {
		r := x - li + 1
		for y := lj; y <= j; y++ {
			c := y - lj + 1
			best := math.Min(f[(r-1)*w+c]+e.del(x), f[r*w+c-1]+e.ins(y))
			lx, ly := e.a.lml[x], e.b.lml[y]
			if lx == li && ly == lj {
				best = math.Min(best, f[(r-1)*w+c-1]+e.rel(x, y))
				e.td[x*e.m+y] = best
			} else {
				best = math.Min(best, f[(lx-li)*w+(ly-lj)]+e.td[x*e.m+y])
			}
			f[r*w+c] = best
		}
	}
}

// align backtracks the forest tables into an edit script. At each cell it
// prefers a map, then a jump over a pair of whole subtrees, then a delete,
// then an insert.
func (e *engine) align() []Op {
	var ops []Op
	stack := [][2]int{{len(e.a.nodes) - 1, len(e.b.nodes) - 1}}
	f, w := e.fd, e.stride

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i, j := p[0], p[1]
		e.forest(i, j)
		li, lj := e.a.lml[i], e.b.lml[j]

		x, y := i, j
		for x >= li || y >= lj {
			r, c := x-li+1, y-lj+1
			cur := f[r*w+c]
			if x >= li && y >= lj {
				lx, ly := e.a.lml[x], e.b.lml[y]
				if lx == li && ly == lj {
					if cost := e.rel(x, y); approx(cur, f[(r-1)*w+c-1]+cost) {
						kind := OpRelabel
						if cost == 0 {
							kind = OpMatch
						}
						ops = append(ops, Op{Kind: kind, A: e.a.nodes[x].id, B: e.b.nodes[y].id, Cost: cost})
						x, y = x-1, y-1
						continue
					}
				} else if approx(cur, f[(lx-li)*w+(ly-lj)]+e.td[x*e.m+y]) {
					stack = append(stack, [2]int{x, y})
					x, y = lx-1, ly-1
					continue
				}
			}
			if x >= li && (y < lj || approx(cur, f[(r-1)*w+c]+e.del(x))) {
				ops = append(ops, Op{Kind: OpDelete, A: e.a.nodes[x].id, B: ast.None, Cost: e.del(x)})
				x--
				continue
			}
			ops = append(ops, Op{Kind: OpInsert, A: ast.None, B: e.b.nodes[y].id, Cost: e.ins(y)})
			y--
		}
	}
	return ops
}
