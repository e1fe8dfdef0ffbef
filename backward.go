package gograd

// ============================================================
// Backward pass
// ============================================================

// Topo returns every node reachable from n in topological order: each node
// appears after all of its children. The traversal is a depth-first
// post-order walk with a visited set, so shared sub-expressions appear once.
func (n Node) Topo() []Node {
	ids := n.g.topo(n.id)
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{g: n.g, id: id}
	}
	return out
}

type frame struct {
	id   int32
	next uint8
}

func (g *Graph) topo(root int32) []int32 {
	visited := make([]bool, root+1)
	order := make([]int32, 0, root+1)
	stack := []frame{{id: root}}
	visited[root] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		nd := &g.nodes[top.id]
		if top.next < nd.arity {
			c := nd.children[top.next]
			top.next++
			if !visited[c] {
				visited[c] = true
				stack = append(stack, frame{id: c})
			}
			continue
		}
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}
	return order
}

// Backward seeds n's gradient with the constant node 1 and propagates
// gradients to every node n depends on, in reverse topological order.
// Afterwards each reachable node's Grad holds d(n)/d(node) as an expression
// of the same graph.
//
// Gradients accumulate: call ResetGrad first when the nodes have already
// taken part in a backward pass.
func (n Node) Backward() {
	g := n.g
	order := g.topo(n.id)
	seed := g.Constant(1)
	g.nodes[n.id].grad = seed.id
	for i := len(order) - 1; i >= 0; i-- {
		g.propagate(order[i])
	}
}

// accumulate adds contrib into the gradient slot of id. The slot holds an
// expression, so the sum is another graph node.
func (g *Graph) accumulate(id int32, contrib Node) {
	cur := g.nodes[id].grad
	if cur == noGrad {
		g.nodes[id].grad = contrib.id
		return
	}
	sum := Node{g: g, id: cur}.Add(contrib)
	g.nodes[id].grad = sum.id
}

// propagate applies the local derivative rule of one node. New nodes are
// appended while this runs, so nd is copied rather than held by pointer.
func (g *Graph) propagate(id int32) {
	nd := g.nodes[id]
	if nd.grad == noGrad || nd.op.IsLeaf() {
		return
	}
	out := Node{g: g, id: nd.grad}
	a := Node{g: g, id: nd.children[0]}
	b := Node{g: g, id: nd.children[1]}

	switch nd.op {
	case OpAdd:
		g.accumulate(a.id, out)
		g.accumulate(b.id, out)
	case OpMul:
		g.accumulate(a.id, b.Mul(out))
		g.accumulate(b.id, a.Mul(out))
	case OpPow:
		p := b.Value()
		if p == 0 {
			// a**0 is constant; its rule would divide by a at a=0.
			return
		}
		g.accumulate(a.id, b.Mul(a.Pow(p-1)).Mul(out))
	case OpSin:
		g.accumulate(a.id, out.Mul(a.Cos()))
	case OpCos:
		g.accumulate(a.id, out.Mul(a.Sin().Neg()))
	case OpExp:
		g.accumulate(a.id, out.Mul(a.Exp()))
	default:
		panic("gograd: no derivative rule for " + nd.op.String())
	}
}

// ResetGrad sets the gradient of n and of every node reachable from it back
// to the additive identity. Shared nodes are visited once.
func (n Node) ResetGrad() {
	g := n.g
	for _, id := range g.topo(n.id) {
		g.nodes[id].grad = noGrad
	}
}
