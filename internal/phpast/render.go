package phpast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// maxRendered bounds any single rendered expression.
const maxRendered = 200

// renderer turns expression nodes into short readable strings.
type renderer struct {
	src []byte
}

func (r renderer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(r.src)
}

// render pretty-prints n. Unknown shapes fall back to the node's name or
// value field, then to short source text, then to a bracketed kind tag.
func (r renderer) render(n *sitter.Node) string {
	return clip(r.renderNode(n), maxRendered)
}

func (r renderer) renderNode(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "variable_name", "name", "qualified_name", "namespace_name",
		"integer", "float", "string", "encapsed_string", "heredoc", "nowdoc",
		"named_type", "primitive_type", "cast_type":
		return r.text(n)
	case "boolean", "null":
		return strings.ToLower(r.text(n))

	case "parenthesized_expression":
		return "(" + r.renderNode(firstNamed(n)) + ")"

	case "binary_expression":
		return r.renderNode(n.ChildByFieldName("left")) + " " +
			r.text(n.ChildByFieldName("operator")) + " " +
			r.renderNode(n.ChildByFieldName("right"))

	case "unary_op_expression", "update_expression", "error_suppression_expression":
		return r.joinChildren(n, "")

	case "cast_expression":
		return "(" + strings.TrimSpace(r.text(n.ChildByFieldName("type"))) + ")" +
			r.renderNode(n.ChildByFieldName("value"))

	case "assignment_expression", "reference_assignment_expression":
		return r.renderNode(n.ChildByFieldName("left")) + " = " + r.renderNode(n.ChildByFieldName("right"))

	case "augmented_assignment_expression":
		return r.renderNode(n.ChildByFieldName("left")) + " " +
			r.text(n.ChildByFieldName("operator")) + " " +
			r.renderNode(n.ChildByFieldName("right"))

	case "conditional_expression":
		body := r.renderNode(n.ChildByFieldName("body"))
		cond := r.renderNode(n.ChildByFieldName("condition"))
		alt := r.renderNode(n.ChildByFieldName("alternative"))
		if body == "" {
			return cond + " ?: " + alt
		}
		return cond + " ? " + body + " : " + alt

	case "function_call_expression", "member_call_expression",
		"nullsafe_member_call_expression", "scoped_call_expression":
		return r.callee(n) + "(" + strings.Join(r.arguments(n), ", ") + ")"

	case "object_creation_expression":
		var class string
		var args []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "arguments" {
				args = r.argumentList(c)
				continue
			}
			if class == "" {
				class = r.renderNode(c)
			}
		}
		return "new " + class + "(" + strings.Join(args, ", ") + ")"

	case "member_access_expression":
		return r.renderNode(n.ChildByFieldName("object")) + "->" + r.renderNode(n.ChildByFieldName("name"))
	case "nullsafe_member_access_expression":
		return r.renderNode(n.ChildByFieldName("object")) + "?->" + r.renderNode(n.ChildByFieldName("name"))

	case "subscript_expression":
		if n.NamedChildCount() < 2 {
			return r.renderNode(firstNamed(n)) + "[]"
		}
		return r.renderNode(n.NamedChild(0)) + "[" + r.renderNode(n.NamedChild(1)) + "]"

	case "scoped_property_access_expression":
		return r.renderNode(n.ChildByFieldName("scope")) + "::" + r.renderNode(n.ChildByFieldName("name"))
	case "class_constant_access_expression":
		if n.NamedChildCount() < 2 {
			return r.text(n)
		}
		return r.renderNode(n.NamedChild(0)) + "::" + r.renderNode(n.NamedChild(1))

	case "array_creation_expression":
		var items []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			items = append(items, r.renderNode(n.NamedChild(i)))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case "array_element_initializer":
		if n.NamedChildCount() == 2 {
			return r.renderNode(n.NamedChild(0)) + " => " + r.renderNode(n.NamedChild(1))
		}
		return r.joinChildren(n, "")

	case "throw_expression":
		return "throw " + r.renderNode(firstNamed(n))
	}

	if f := n.ChildByFieldName("name"); f != nil {
		return r.renderNode(f)
	}
	if f := n.ChildByFieldName("value"); f != nil {
		return r.renderNode(f)
	}
	if n.ChildCount() == 0 {
		return r.text(n)
	}
	if t := r.text(n); len(t) <= 60 && !strings.Contains(t, "\n") {
		return t
	}
	return "[" + n.Type() + "]"
}

// joinChildren renders every child in order: named children recursively,
// tokens verbatim.
func (r renderer) joinChildren(n *sitter.Node, sep string) string {
	parts := make([]string, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			parts = append(parts, r.renderNode(c))
		} else {
			parts = append(parts, r.text(c))
		}
	}
	return strings.Join(parts, sep)
}

// callee renders the called name of a call node.
func (r renderer) callee(n *sitter.Node) string {
	switch n.Type() {
	case "member_call_expression":
		return r.renderNode(n.ChildByFieldName("object")) + "->" + r.renderNode(n.ChildByFieldName("name"))
	case "nullsafe_member_call_expression":
		return r.renderNode(n.ChildByFieldName("object")) + "?->" + r.renderNode(n.ChildByFieldName("name"))
	case "scoped_call_expression":
		return r.renderNode(n.ChildByFieldName("scope")) + "::" + r.renderNode(n.ChildByFieldName("name"))
	}
	return r.renderNode(n.ChildByFieldName("function"))
}

// arguments renders the argument list of a call node.
func (r renderer) arguments(n *sitter.Node) []string {
	return r.argumentList(n.ChildByFieldName("arguments"))
}

func (r renderer) argumentList(args *sitter.Node) []string {
	out := []string{}
	if args == nil {
		return out
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		a := args.NamedChild(i)
		if a.Type() == "comment" {
			continue
		}
		out = append(out, clip(r.argument(a), maxRendered))
	}
	return out
}

func (r renderer) argument(a *sitter.Node) string {
	if a.Type() != "argument" {
		return r.renderNode(a)
	}
	count := int(a.NamedChildCount())
	if count == 0 {
		return r.text(a)
	}
	value := r.renderNode(a.NamedChild(count - 1))
	if name := a.ChildByFieldName("name"); name != nil && count > 1 {
		return r.text(name) + ": " + value
	}
	if strings.HasPrefix(r.text(a), "...") {
		return "..." + value
	}
	return value
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
