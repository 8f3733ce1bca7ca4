package ast

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlNode is the on-disk shape of one node in the YAML form. A missing
// line means the parent's line; an explicit 0 is kept.
type yamlNode struct {
	Kind     string      `yaml:"kind"`
	Line     *int        `yaml:"line,omitempty"`
	Name     string      `yaml:"name,omitempty"`
	Type     string      `yaml:"type,omitempty"`
	Value    int64       `yaml:"value,omitempty"`
	Op       string      `yaml:"op,omitempty"`
	Params   []*yamlNode `yaml:"params,omitempty"`
	Body     *yamlNode   `yaml:"body,omitempty"`
	Children []*yamlNode `yaml:"children,omitempty"`
}

// DecodeYAML reads one program in the YAML form. Unknown keys are errors.
func DecodeYAML(r io.Reader) (*Node, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw yamlNode
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}
	if raw.Kind != string(NodeProgram) {
		line := 0
		if raw.Line != nil {
			line = *raw.Line
		}
		return nil, fmt.Errorf("line %d: root must be a program, got %q", line, raw.Kind)
	}
	return raw.toNode(0)
}

func (y *yamlNode) toNode(parentLine int) (*Node, error) {
	line := parentLine
	if y.Line != nil {
		line = *y.Line
	}
	n := &Node{
		Kind:  NodeKind(y.Kind),
		Line:  line,
		Name:  y.Name,
		Value: y.Value,
		Op:    y.Op,
	}
	if y.Type != "" {
		t, err := ParseType(y.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		n.Decl = t
	} else if n.Kind == NodeVar || n.Kind == NodeArrayVar || n.Kind == NodeParam || n.Kind == NodeArrayParam || n.Kind == NodeFunc {
		return nil, fmt.Errorf("line %d: %s %q has no type", line, n.Kind, n.Name)
	}

	convert := func(in []*yamlNode) ([]*Node, error) {
		var out []*Node
		for _, child := range in {
			c, err := child.toNode(line)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	var err error
	if n.Params, err = convert(y.Params); err != nil {
		return nil, err
	}
	if n.Children, err = convert(y.Children); err != nil {
		return nil, err
	}
	if y.Body != nil {
		if n.Body, err = y.Body.toNode(line); err != nil {
			return nil, err
		}
	}
	if n.Kind == NodeCall {
		for _, arg := range n.Children {
			arg.IsArgument = true
		}
	}
	if err := n.checkShape(); err != nil {
		return nil, err
	}
	return n, nil
}

// ToYAML renders a tree in the form DecodeYAML reads.
func ToYAML(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fromNode(n, 0)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fromNode writes a line only where it differs from parentLine.
func fromNode(n *Node, parentLine int) *yamlNode {
	y := &yamlNode{Kind: string(n.Kind), Name: n.Name, Op: n.Op}
	if n.Line != parentLine {
		line := n.Line
		y.Line = &line
	}
	switch n.Kind {
	case NodeVar, NodeParam, NodeArrayParam, NodeFunc:
		y.Type = n.Decl.String()
	case NodeArrayVar:
		y.Type = n.Decl.String()
		y.Value = n.Value
	case NodeConst:
		y.Value = n.Value
	}
	for _, p := range n.Params {
		y.Params = append(y.Params, fromNode(p, n.Line))
	}
	if n.Body != nil {
		y.Body = fromNode(n.Body, n.Line)
	}
	for _, c := range n.Children {
		y.Children = append(y.Children, fromNode(c, n.Line))
	}
	return y
}
