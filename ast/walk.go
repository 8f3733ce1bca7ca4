package ast

// Visitor receives every node twice during Walk: once before its kids and
// once after.
type Visitor interface {
	Enter(n *Node)
	Exit(n *Node)
}

// VisitorFuncs adapts a pair of functions to Visitor. Either may be nil.
type VisitorFuncs struct {
	EnterFunc func(n *Node)
	ExitFunc  func(n *Node)
}

func (v VisitorFuncs) Enter(n *Node) {
	if v.EnterFunc != nil {
		v.EnterFunc(n)
	}
}

func (v VisitorFuncs) Exit(n *Node) {
	if v.ExitFunc != nil {
		v.ExitFunc(n)
	}
}

// Walk traverses the tree rooted at root depth-first. Kids are visited in
// the order returned by Kids. The walk keeps its own stack so tree depth is
// bounded by memory only.
func Walk(root *Node, v Visitor) {
	if root == nil {
		return
	}
	type frame struct {
		node    *Node
		exiting bool
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.exiting {
			v.Exit(top.node)
			continue
		}
		v.Enter(top.node)
		stack = append(stack, frame{node: top.node, exiting: true})
		kids := top.node.Kids()
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] != nil {
				stack = append(stack, frame{node: kids[i]})
			}
		}
	}
}

// Postorder calls fn on every node after all of its kids.
func Postorder(root *Node, fn func(n *Node)) {
	Walk(root, VisitorFuncs{ExitFunc: fn})
}
