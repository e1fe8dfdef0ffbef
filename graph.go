// Package gograd provides a minimal reverse-mode automatic differentiation
// engine for scalar functions of one variable.
//
// Design goals:
//   - Arena-backed expression graph, nodes addressed by index
//   - Gradients are themselves graph nodes, so a gradient can be
//     differentiated again to obtain higher-order derivatives
//   - Fixed set of elementary operations: + * pow sin cos exp
//   - AI/LLM friendly: JSON, HCL expression text, and MCP-ready APIs
package gograd

import (
	"fmt"
	"math"
)

// ============================================================
// Operators
// ============================================================

// Op tags the rule that produced a node. It is used by the backward pass to
// select the local derivative rule and by String for display.
type Op uint8

const (
	OpConst Op = iota
	OpVar
	OpAdd
	OpMul
	OpPow
	OpSin
	OpCos
	OpExp
)

var opNames = [...]string{
	OpConst: "const",
	OpVar:   "var",
	OpAdd:   "+",
	OpMul:   "*",
	OpPow:   "**",
	OpSin:   "sin",
	OpCos:   "cos",
	OpExp:   "exp",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// IsLeaf reports whether nodes with this tag have no children.
func (o Op) IsLeaf() bool { return o == OpConst || o == OpVar }

// ============================================================
// Graph — node arena
// ============================================================

// noGrad marks the additive identity in the grad slot of a node.
const noGrad = -1

type node struct {
	value    float64
	op       Op
	children [2]int32
	arity    uint8
	grad     int32
	name     string
}

// Graph owns every node of one computation. Nodes are appended and never
// removed, so an index stays valid for the lifetime of the graph and a
// node's children always have smaller indices than the node itself.
//
// A Graph is not safe for concurrent use. Evaluate independent points on
// independent graphs.
type Graph struct {
	nodes []node
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make([]node, 0, 64)}
}

// Len returns the number of nodes allocated so far.
func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) push(n node) Node {
	n.grad = noGrad
	g.nodes = append(g.nodes, n)
	return Node{g: g, id: int32(len(g.nodes) - 1)}
}

// Constant returns a new constant leaf.
func (g *Graph) Constant(c float64) Node {
	return g.push(node{value: c, op: OpConst})
}

// Variable returns a new variable leaf. The name is only used for display.
func (g *Graph) Variable(name string, x float64) Node {
	return g.push(node{value: x, op: OpVar, name: name})
}

func (g *Graph) unary(op Op, value float64, a Node) Node {
	return g.push(node{value: value, op: op, children: [2]int32{a.id, 0}, arity: 1})
}

func (g *Graph) binary(op Op, value float64, a, b Node) Node {
	return g.push(node{value: value, op: op, children: [2]int32{a.id, b.id}, arity: 2})
}

// ============================================================
// Node — handle into a graph
// ============================================================

// Node is a handle to one expression node. The zero Node is invalid.
// Nodes are cheap to copy and compare; two handles are equal when they
// refer to the same node of the same graph.
type Node struct {
	g  *Graph
	id int32
}

// Operand is anything a binary operation accepts: a Node or a Const.
type Operand interface {
	nodeIn(g *Graph) Node
}

// Const is a plain number used as an operand. It is promoted to a constant
// leaf of the receiver's graph before the operation is built.
type Const float64

func (c Const) nodeIn(g *Graph) Node { return g.Constant(float64(c)) }

func (n Node) nodeIn(g *Graph) Node {
	if n.g != g {
		panic("gograd: " + ErrForeignNode.Error())
	}
	return n
}

func (n Node) ref() *node {
	if n.g == nil {
		panic("gograd: use of zero Node")
	}
	return &n.g.nodes[n.id]
}

// Graph returns the graph the node belongs to.
func (n Node) Graph() *Graph { return n.g }

// ID returns the arena index of the node.
func (n Node) ID() int { return int(n.id) }

// Valid reports whether n refers to a node.
func (n Node) Valid() bool { return n.g != nil }

// Value returns the forward-evaluated value.
func (n Node) Value() float64 { return n.ref().value }

// Op returns the operator tag.
func (n Node) Op() Op { return n.ref().op }

// Name returns the display name of a variable, or "" for any other node.
func (n Node) Name() string { return n.ref().name }

// Children returns the operands of n in order.
func (n Node) Children() []Node {
	r := n.ref()
	out := make([]Node, r.arity)
	for i := range out {
		out[i] = Node{g: n.g, id: r.children[i]}
	}
	return out
}

// Grad returns the gradient accumulated in n by the last backward pass.
func (n Node) Grad() Grad {
	r := n.ref()
	if r.grad == noGrad {
		return Grad{}
	}
	return Grad{node: Node{g: n.g, id: r.grad}}
}

// Add returns n + o.
func (n Node) Add(o Operand) Node {
	b := o.nodeIn(n.g)
	return n.g.binary(OpAdd, n.Value()+b.Value(), n, b)
}

// Mul returns n * o.
func (n Node) Mul(o Operand) Node {
	b := o.nodeIn(n.g)
	return n.g.binary(OpMul, n.Value()*b.Value(), n, b)
}

// Pow returns n ** p. The exponent is a plain number; differentiating with
// respect to the exponent is not supported.
func (n Node) Pow(p float64) Node {
	e := n.g.Constant(p)
	return n.g.binary(OpPow, math.Pow(n.Value(), p), n, e)
}

// Sin returns sin(n).
func (n Node) Sin() Node { return n.g.unary(OpSin, math.Sin(n.Value()), n) }

// Cos returns cos(n).
func (n Node) Cos() Node { return n.g.unary(OpCos, math.Cos(n.Value()), n) }

// Exp returns e**n.
func (n Node) Exp() Node { return n.g.unary(OpExp, math.Exp(n.Value()), n) }

// Neg returns n * -1.
func (n Node) Neg() Node { return n.Mul(Const(-1)) }

// Sub returns n + (-o).
func (n Node) Sub(o Operand) Node { return n.Add(o.nodeIn(n.g).Neg()) }

// Div returns n * o**-1.
func (n Node) Div(o Operand) Node { return n.Mul(o.nodeIn(n.g).Pow(-1)) }

// ============================================================
// Grad — {Zero | Node}
// ============================================================

// Grad is the content of a node's gradient slot: either the additive
// identity or an expression node of the same graph.
type Grad struct {
	node Node
}

// IsZero reports whether the gradient is still the additive identity.
func (d Grad) IsZero() bool { return !d.node.Valid() }

// Node returns the gradient expression, if any.
func (d Grad) Node() (Node, bool) { return d.node, d.node.Valid() }

// Value returns the numeric value of the gradient, 0 for the identity.
func (d Grad) Value() float64 {
	if d.IsZero() {
		return 0
	}
	return d.node.Value()
}

func (d Grad) String() string {
	if d.IsZero() {
		return "0"
	}
	return d.node.String()
}
