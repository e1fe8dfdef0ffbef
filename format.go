package gograd

import (
	"strconv"
	"strings"
)

// ============================================================
// Display
// ============================================================

// String renders the expression rooted at n in infix form. Shared
// sub-expressions are printed once per use.
func (n Node) String() string {
	if !n.Valid() {
		return "<nil>"
	}
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (n Node) write(sb *strings.Builder) {
	r := n.ref()
	switch r.op {
	case OpConst:
		sb.WriteString(formatFloat(r.value))
	case OpVar:
		sb.WriteString(r.name)
	case OpSin, OpCos, OpExp:
		sb.WriteString(r.op.String())
		sb.WriteByte('(')
		Node{g: n.g, id: r.children[0]}.write(sb)
		sb.WriteByte(')')
	default:
		sb.WriteByte('(')
		Node{g: n.g, id: r.children[0]}.write(sb)
		sb.WriteByte(' ')
		sb.WriteString(r.op.String())
		sb.WriteByte(' ')
		Node{g: n.g, id: r.children[1]}.write(sb)
		sb.WriteByte(')')
	}
}
