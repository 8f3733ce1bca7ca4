package ast

import (
	"fmt"

	"github.com/strager/cminus/sexy"
)

type sexprStyle struct {
	lines bool
	types bool
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *Node) string {
	return encode(node, sexprStyle{}).String()
}

// ToSExprWithLines is like ToSExpr but keeps every node's line as
// ^{line: N} metadata, so the result decodes back to the same tree.
func ToSExprWithLines(node *Node) string {
	return encode(node, sexprStyle{lines: true}).String()
}

// ToTypedSExpr is like ToSExpr but annotates every expression with the type
// semantic analysis gave it, e.g. (id ^{type: int-array} "a").
func ToTypedSExpr(node *Node) string {
	return encode(node, sexprStyle{types: true}).String()
}

func encode(n *Node, style sexprStyle) *sexy.Node {
	list := sexy.NewList(sexy.NewSymbol(string(n.Kind)))
	add := func(items ...*sexy.Node) {
		list.Items = append(list.Items, items...)
	}
	encodeAll := func(nodes []*Node) []*sexy.Node {
		out := make([]*sexy.Node, 0, len(nodes))
		for _, child := range nodes {
			out = append(out, encode(child, style))
		}
		return out
	}

	switch n.Kind {
	case NodeVar, NodeParam, NodeArrayParam:
		add(sexy.NewString(n.Name), sexy.NewSymbol(n.Decl.String()))
	case NodeArrayVar:
		add(sexy.NewString(n.Name), sexy.NewSymbol(n.Decl.String()), sexy.NewInteger(n.Value))
	case NodeFunc:
		add(sexy.NewString(n.Name), sexy.NewSymbol(n.Decl.String()), sexy.NewArray(encodeAll(n.Params)...))
		if n.Body != nil {
			add(encode(n.Body, style))
		}
	case NodeCompound:
		split := 0
		for split < len(n.Children) && n.Children[split].IsDecl() {
			split++
		}
		add(sexy.NewArray(encodeAll(n.Children[:split])...), sexy.NewArray(encodeAll(n.Children[split:])...))
	case NodeCall, NodeId:
		add(sexy.NewString(n.Name))
		add(encodeAll(n.Children)...)
	case NodeOp:
		add(sexy.NewString(n.Op))
		add(encodeAll(n.Children)...)
	case NodeConst:
		add(sexy.NewInteger(n.Value))
	default:
		add(encodeAll(n.Children)...)
	}

	if style.lines && n.Kind != NodeProgram {
		list.WithMeta("line", sexy.NewInteger(int64(n.Line)))
	}
	if style.types && isExpr(n.Kind) {
		list.WithMeta("type", sexy.NewSymbol(TypeName(n.Type, n.IsArray)))
	}
	return list
}

func isExpr(kind NodeKind) bool {
	switch kind {
	case NodeAssign, NodeCall, NodeOp, NodeConst, NodeId:
		return true
	}
	return false
}

func isStmt(kind NodeKind) bool {
	switch kind {
	case NodeCompound, NodeIf, NodeWhile, NodeReturn:
		return true
	}
	return isExpr(kind)
}

// FromSExpr builds a tree from its S-expression form. A list without
// ^{line: N} metadata takes its parent's line.
func FromSExpr(datum *sexy.Node) (*Node, error) {
	return decode(datum, 0)
}

// ParseSExpr reads and decodes an S-expression program.
func ParseSExpr(input string) (*Node, error) {
	datum, err := sexy.Parse(input)
	if err != nil {
		return nil, err
	}
	return FromSExpr(datum)
}

func decode(d *sexy.Node, parentLine int) (*Node, error) {
	if d.Type == sexy.NodeInteger {
		v, err := d.Int()
		if err != nil {
			return nil, err
		}
		return NewConst(parentLine, v), nil
	}
	if d.Type != sexy.NodeList || d.Head() == "" {
		return nil, fmt.Errorf("line %d: expected a node but got %s", d.Line, d)
	}

	line := parentLine
	if meta := d.Meta("line"); meta != nil {
		v, err := meta.Int()
		if err != nil {
			return nil, err
		}
		line = int(v)
	}

	r := &reader{items: d.Items[1:], line: line, srcLine: d.Line}
	n := &Node{Kind: NodeKind(d.Head()), Line: line}

	switch n.Kind {
	case NodeProgram:
		n.Children = r.nodes(r.rest())
	case NodeVar, NodeParam, NodeArrayParam:
		n.Name = r.str()
		n.Decl = r.typ()
	case NodeArrayVar:
		n.Name = r.str()
		n.Decl = r.typ()
		n.Value = r.integer()
	case NodeFunc:
		n.Name = r.str()
		n.Decl = r.typ()
		n.Params = r.nodes(r.array())
		n.Body = r.node()
	case NodeCompound:
		var decls, stmts []*sexy.Node
		if !r.done() {
			decls = r.array()
		}
		if !r.done() {
			stmts = r.array()
		}
		n.Children = append(r.nodes(decls), r.nodes(stmts)...)
	case NodeCall:
		name := r.str()
		*n = *NewCall(line, name, r.nodes(r.rest())...)
	case NodeId:
		n.Name = r.str()
		n.Children = r.nodes(r.rest())
	case NodeOp:
		n.Op = r.str()
		n.Children = r.nodes(r.rest())
	case NodeConst:
		n.Value = r.integer()
	case NodeIf, NodeWhile, NodeReturn, NodeAssign:
		n.Children = r.nodes(r.rest())
	default:
		return nil, fmt.Errorf("line %d: unknown node kind %q", d.Line, d.Head())
	}

	if r.err == nil && !r.done() {
		r.fail("unexpected %s", r.items[0])
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := n.checkShape(); err != nil {
		return nil, err
	}
	return n, nil
}

// reader consumes the operands of one list, remembering the first error.
type reader struct {
	items   []*sexy.Node
	line    int
	srcLine int
	err     error
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("line %d: %s", r.srcLine, fmt.Sprintf(format, args...))
	}
}

func (r *reader) done() bool {
	return len(r.items) == 0
}

func (r *reader) next(want sexy.NodeType) *sexy.Node {
	if r.err != nil {
		return nil
	}
	if r.done() {
		r.fail("missing %s operand", want)
		return nil
	}
	item := r.items[0]
	r.items = r.items[1:]
	if item.Type != want {
		r.fail("expected %s but got %s", want, item)
		return nil
	}
	return item
}

func (r *reader) str() string {
	if item := r.next(sexy.NodeString); item != nil {
		return item.Text
	}
	return ""
}

func (r *reader) typ() Type {
	item := r.next(sexy.NodeSymbol)
	if item == nil {
		return Void
	}
	t, err := ParseType(item.Text)
	if err != nil {
		r.fail("%v", err)
	}
	return t
}

func (r *reader) integer() int64 {
	item := r.next(sexy.NodeInteger)
	if item == nil {
		return 0
	}
	v, err := item.Int()
	if err != nil && r.err == nil {
		r.err = err
	}
	return v
}

func (r *reader) array() []*sexy.Node {
	if item := r.next(sexy.NodeArray); item != nil {
		return item.Items
	}
	return nil
}

func (r *reader) rest() []*sexy.Node {
	items := r.items
	r.items = nil
	return items
}

func (r *reader) node() *Node {
	if r.err != nil {
		return nil
	}
	if r.done() {
		r.fail("missing node operand")
		return nil
	}
	item := r.items[0]
	r.items = r.items[1:]
	n, err := decode(item, r.line)
	if err != nil {
		r.err = err
	}
	return n
}

func (r *reader) nodes(items []*sexy.Node) []*Node {
	var out []*Node
	for _, item := range items {
		if r.err != nil {
			return nil
		}
		n, err := decode(item, r.line)
		if err != nil {
			r.err = err
			return nil
		}
		out = append(out, n)
	}
	return out
}
