// Package phpast classifies the statements of a PHP source file using a
// tree-sitter syntax tree: validations (if/switch), calculations, error
// handling, state transitions, function calls and variable assignments.
//
// Analysis never fails. Source that does not parse cleanly yields a report
// with empty lists and ParseError set.
package phpast

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// maxDigestStatements is how many statements of a block are summarized.
const maxDigestStatements = 5

var (
	stateField   = regexp.MustCompile(`(?i)estado|status|state|workflow|etapa|fase|stage|phase`)
	mathFunction = regexp.MustCompile(`(?i)^(?:array_)?(?:round|floor|ceil|abs|pow|sqrt|sum|avg|count|max|min|intdiv|fmod|number_format)$`)
)

var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true, "**": true}

// Analyze parses src as PHP and classifies its nodes. Source without an
// opening tag is treated as PHP code, keeping line numbers intact.
func Analyze(ctx context.Context, src []byte) model.StructureReport {
	if !bytes.Contains(src, []byte("<?")) {
		src = append([]byte("<?php "), src...)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(php.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return failed(err.Error())
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return failed(fmt.Sprintf("syntax error near line %d", errorLine(root)))
	}

	a := &analyzer{r: renderer{src: src}, report: model.EmptyStructureReport()}
	a.walk(root)
	return a.report
}

func failed(msg string) model.StructureReport {
	rep := model.EmptyStructureReport()
	rep.ParseError = msg
	return rep
}

// errorLine returns the 1-based line of the first ERROR or MISSING node.
func errorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return line(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.HasError() || c.IsMissing() || c.Type() == "ERROR" {
			return errorLine(c)
		}
	}
	return line(n)
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

type analyzer struct {
	r      renderer
	report model.StructureReport
}

// walk visits every named node depth-first, skipping comments.
func (a *analyzer) walk(n *sitter.Node) {
	if n == nil || n.Type() == "comment" {
		return
	}
	a.visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		a.walk(n.NamedChild(i))
	}
}

func (a *analyzer) visit(n *sitter.Node) {
	switch n.Type() {
	case "if_statement", "else_if_clause":
		a.ifValidation(n)
	case "switch_statement":
		a.switchValidation(n)
	case "try_statement":
		a.tryBlock(n)
	case "throw_expression", "throw_statement":
		a.report.ErrorHandling = append(a.report.ErrorHandling, model.ErrorHandling{
			Kind:      model.ErrorThrow,
			Line:      line(n),
			Exception: a.r.render(firstNamed(n)),
		})
	case "assignment_expression", "reference_assignment_expression":
		a.assignment(n, "=")
	case "augmented_assignment_expression":
		a.assignment(n, a.r.text(n.ChildByFieldName("operator")))
	case "function_call_expression", "member_call_expression",
		"nullsafe_member_call_expression", "scoped_call_expression":
		a.report.FunctionCalls = append(a.report.FunctionCalls, model.FunctionCall{
			Line:      line(n),
			Function:  clip(a.r.callee(n), maxRendered),
			Arguments: a.r.arguments(n),
		})
	}
}

// --- Validations ---

func (a *analyzer) ifValidation(n *sitter.Node) {
	cond := n.ChildByFieldName("condition")
	v := model.Validation{
		Kind:       model.ValidationIf,
		Line:       line(n),
		Condition:  a.r.render(unwrap(cond)),
		Then:       a.digest(blockStatements(n.ChildByFieldName("body"))),
		Complexity: logicalComplexity(cond, a.r),
	}
	if n.Type() == "if_statement" {
		if alt := firstAlternative(n); alt != nil {
			if alt.Type() == "else_if_clause" {
				v.Else = "elseif " + a.r.render(unwrap(alt.ChildByFieldName("condition")))
			} else {
				v.Else = a.digest(blockStatements(alt.ChildByFieldName("body")))
			}
		}
	}
	a.report.Validations = append(a.report.Validations, v)
}

func firstAlternative(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "else_clause" || c.Type() == "else_if_clause" {
			return c
		}
	}
	return nil
}

func (a *analyzer) switchValidation(n *sitter.Node) {
	v := model.Validation{
		Kind:      model.ValidationSwitch,
		Line:      line(n),
		Condition: a.r.render(unwrap(n.ChildByFieldName("condition"))),
		Cases:     []model.SwitchCase{},
	}
	body := n.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			c := body.NamedChild(i)
			switch c.Type() {
			case "case_statement":
				value := c.ChildByFieldName("value")
				v.Cases = append(v.Cases, model.SwitchCase{
					Value:  a.r.render(value),
					Action: a.digest(caseStatements(c, value)),
				})
			case "default_statement":
				v.Cases = append(v.Cases, model.SwitchCase{
					Value:  "default",
					Action: a.digest(caseStatements(c, nil)),
				})
			}
		}
	}
	a.report.Validations = append(a.report.Validations, v)
}

// logicalComplexity counts &&, ||, and, or operators inside n.
func logicalComplexity(n *sitter.Node, r renderer) int {
	count := 0
	visitAll(n, func(c *sitter.Node) {
		if c.Type() != "binary_expression" {
			return
		}
		switch strings.ToLower(r.text(c.ChildByFieldName("operator"))) {
		case "&&", "||", "and", "or":
			count++
		}
	})
	return count
}

// --- Error handling ---

func (a *analyzer) tryBlock(n *sitter.Node) {
	eh := model.ErrorHandling{
		Kind:     model.ErrorTryCatch,
		Line:     line(n),
		TryBlock: a.digest(blockStatements(n.ChildByFieldName("body"))),
		Catches:  []model.CatchClause{},
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "catch_clause":
			exType := strings.TrimSpace(a.r.text(c.ChildByFieldName("type")))
			if exType == "" {
				exType = "Exception"
			}
			eh.Catches = append(eh.Catches, model.CatchClause{
				ExceptionType: exType,
				Variable:      a.r.text(c.ChildByFieldName("name")),
				Handler:       a.digest(blockStatements(c.ChildByFieldName("body"))),
			})
		case "finally_clause":
			eh.Finally = a.digest(blockStatements(c.ChildByFieldName("body")))
		}
	}
	a.report.ErrorHandling = append(a.report.ErrorHandling, eh)
}

// --- Assignments ---

func (a *analyzer) assignment(n *sitter.Node, op string) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	variable := a.r.render(left)
	value := a.r.render(right)

	a.report.VariableAssignments = append(a.report.VariableAssignments, model.VariableAssignment{
		Line:     line(n),
		Variable: variable,
		Value:    value,
		Operator: op,
	})

	if stateField.MatchString(variable) {
		a.report.StateTransitions = append(a.report.StateTransitions, model.StateTransition{
			Line:     line(n),
			Field:    variable,
			NewValue: value,
		})
	}

	compound := strings.TrimSuffix(op, "=")
	switch {
	case op != "=" && arithmeticOps[compound]:
		ops := append([]string{compound}, a.operations(right)...)
		a.report.Calculations = append(a.report.Calculations, model.Calculation{
			Line:       line(n),
			Variable:   variable,
			Formula:    clip(variable+" "+compound+" "+value, maxRendered),
			Operations: distinct(ops),
		})
	case op == "=" && a.isCalculation(right):
		a.report.Calculations = append(a.report.Calculations, model.Calculation{
			Line:       line(n),
			Variable:   variable,
			Formula:    value,
			Operations: a.operations(right),
		})
	}
}

// isCalculation reports whether n is arithmetic or a call to a known
// math/aggregate function.
func (a *analyzer) isCalculation(n *sitter.Node) bool {
	n = unwrap(n)
	if n == nil {
		return false
	}
	switch n.Type() {
	case "binary_expression":
		return arithmeticOps[a.r.text(n.ChildByFieldName("operator"))]
	case "function_call_expression":
		name := a.r.text(n.ChildByFieldName("function"))
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return mathFunction.MatchString(name)
	case "member_call_expression", "scoped_call_expression":
		return mathFunction.MatchString(a.r.text(n.ChildByFieldName("name")))
	}
	return false
}

// operations lists the distinct arithmetic operators under n in order.
func (a *analyzer) operations(n *sitter.Node) []string {
	var ops []string
	visitAll(n, func(c *sitter.Node) {
		if c.Type() != "binary_expression" {
			return
		}
		if op := a.r.text(c.ChildByFieldName("operator")); arithmeticOps[op] {
			ops = append(ops, op)
		}
	})
	return distinct(ops)
}

// --- Block digests ---

// blockStatements returns the statements of a body node: the children of
// a compound or colon block, or the node itself for a bare statement.
func blockStatements(body *sitter.Node) []*sitter.Node {
	if body == nil {
		return nil
	}
	switch body.Type() {
	case "compound_statement", "colon_block":
		return namedStatements(body, nil)
	}
	return []*sitter.Node{body}
}

// caseStatements returns the statements of a case or default branch,
// excluding the case value itself.
func caseStatements(c, value *sitter.Node) []*sitter.Node {
	return namedStatements(c, value)
}

func namedStatements(n, skip *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "comment" || sameNode(c, skip) {
			continue
		}
		if c.Type() == "compound_statement" {
			out = append(out, namedStatements(c, nil)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// digest summarizes the first statements of a block: returns, calls,
// assignments and throws, joined with "; ".
func (a *analyzer) digest(stmts []*sitter.Node) string {
	var parts []string
	for i, s := range stmts {
		if i == maxDigestStatements {
			break
		}
		if d := a.statementDigest(s); d != "" {
			parts = append(parts, d)
		}
	}
	if len(stmts) > maxDigestStatements {
		parts = append(parts, fmt.Sprintf("... (%d more statements)", len(stmts)-maxDigestStatements))
	}
	return strings.Join(parts, "; ")
}

func (a *analyzer) statementDigest(s *sitter.Node) string {
	switch s.Type() {
	case "return_statement":
		if e := firstNamed(s); e != nil {
			return "return " + a.r.render(e)
		}
		return "return"
	case "throw_statement":
		return "throw " + a.r.render(firstNamed(s))
	case "expression_statement":
		e := firstNamed(s)
		if e == nil {
			return ""
		}
		switch e.Type() {
		case "assignment_expression", "reference_assignment_expression", "augmented_assignment_expression",
			"function_call_expression", "member_call_expression",
			"nullsafe_member_call_expression", "scoped_call_expression", "throw_expression":
			return a.r.render(e)
		}
	}
	return ""
}

// --- Helpers ---

// unwrap strips enclosing parentheses.
func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	return n
}

// visitAll applies fn to n and every named descendant.
func visitAll(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		visitAll(n.NamedChild(i), fn)
	}
}

func distinct(list []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
