// Package distance computes ordered tree edit distance between canonical
// ASTs and recovers the edit script.
package distance

import (
	"errors"
	"fmt"
	"math"

	"github.com/phobologic/astdistance/internal/ast"
)

// ErrInvalidKind is returned when a tree contains a node whose kind is
// outside the canonical vocabulary.
var ErrInvalidKind = errors.New("invalid node kind")

// Costs weights the edit operations.
type Costs struct {
	Insert      float64 `yaml:"insert" json:"insert"`
	Delete      float64 `yaml:"delete" json:"delete"`
	RelabelRole float64 `yaml:"relabel_role" json:"relabel_role"`
	RelabelKind float64 `yaml:"relabel_kind" json:"relabel_kind"`
	Opaque      float64 `yaml:"opaque" json:"opaque"`
	Name        float64 `yaml:"name" json:"name"`
}

// DefaultCosts returns the cost model used when none is configured.
func DefaultCosts() Costs {
	return Costs{
		Insert:      1,
		Delete:      1,
		RelabelRole: 0.3,
		RelabelKind: 1,
		Opaque:      0.9,
		Name:        0,
	}
}

// Validate rejects negative costs and a model where nothing costs anything.
func (c Costs) Validate() error {
	for name, v := range map[string]float64{
		"insert": c.Insert, "delete": c.Delete, "relabel_role": c.RelabelRole,
		"relabel_kind": c.RelabelKind, "opaque": c.Opaque, "name": c.Name,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("cost %s must be non-negative, got %v", name, v)
		}
	}
	if c.Insert == 0 && c.Delete == 0 {
		return errors.New("insert and delete costs cannot both be zero")
	}
	return nil
}

// Config controls a distance computation.
type Config struct {
	Costs Costs
	// MaxNodes bounds the number of nodes per side. Larger trees are cut at
	// the deepest level that fits and the subtrees below become weighted
	// summary nodes. Zero disables collapsing.
	MaxNodes int
	// IgnoreComments drops Comment nodes from both trees.
	IgnoreComments bool
}

// DefaultMaxNodes is the collapse bound used by DefaultConfig.
const DefaultMaxNodes = 1200

// DefaultConfig returns the default cost model, collapse bound and comment
// handling.
func DefaultConfig() Config {
	return Config{
		Costs:          DefaultCosts(),
		MaxNodes:       DefaultMaxNodes,
		IgnoreComments: true,
	}
}

// OpKind is the type of an alignment step.
type OpKind uint8

const (
	OpMatch OpKind = iota
	OpRelabel
	OpInsert
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpMatch:
		return "match"
	case OpRelabel:
		return "relabel"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// Op is one alignment step. A is the node in the first tree and B the node
// in the second; the side an insert or delete does not touch is ast.None.
type Op struct {
	Kind OpKind
	A    ast.NodeID
	B    ast.NodeID
	Cost float64
}

// Result is the outcome of comparing two trees.
type Result struct {
	// Score is Raw normalized into [0,1].
	Score float64
	// Raw is the total edit cost; it equals the sum of the Ops costs.
	Raw float64
	// WeightA and WeightB are the node counts compared on each side.
	WeightA int
	WeightB int
	Ops     []Op
}

// Normalize maps a raw cost to [0,1] relative to the larger tree.
func Normalize(raw float64, wa, wb int, c Costs) float64 {
	denom := math.Max(c.Insert, c.Delete) * float64(max(wa, wb))
	if denom <= 0 {
		return 0
	}
	return clamp(raw / denom)
}

// LowerBound returns a score no pair of trees with the given weights can
// beat: the size difference alone must be paid by inserts or deletes.
func LowerBound(wa, wb int, c Costs) float64 {
	if wa == 0 && wb == 0 {
		return 0
	}
	if wa == 0 || wb == 0 {
		return 1
	}
	var raw float64
	if wa > wb {
		raw = float64(wa-wb) * c.Delete
	} else {
		raw = float64(wb-wa) * c.Insert
	}
	return Normalize(raw, wa, wb, c)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= epsilon*math.Max(1, math.Abs(a))
}
