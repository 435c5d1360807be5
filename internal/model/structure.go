package model

// StructureReport is the result of a tree-based analysis of one source file.
// Records in different lists may refer to the same line: every assignment
// is a VariableAssignment and may also be a Calculation or StateTransition.
type StructureReport struct {
	Validations         []Validation         `json:"validations"`
	Calculations        []Calculation        `json:"calculations"`
	ErrorHandling       []ErrorHandling      `json:"error_handling"`
	StateTransitions    []StateTransition    `json:"state_transitions"`
	FunctionCalls       []FunctionCall       `json:"function_calls"`
	VariableAssignments []VariableAssignment `json:"variable_assignments"`
	ParseError          string               `json:"parse_error,omitempty"`
}

// EmptyStructureReport returns a report with all lists empty.
func EmptyStructureReport() StructureReport {
	return StructureReport{
		Validations:         []Validation{},
		Calculations:        []Calculation{},
		ErrorHandling:       []ErrorHandling{},
		StateTransitions:    []StateTransition{},
		FunctionCalls:       []FunctionCall{},
		VariableAssignments: []VariableAssignment{},
	}
}

// Len returns the total number of records across all lists.
func (r StructureReport) Len() int {
	return len(r.Validations) + len(r.Calculations) + len(r.ErrorHandling) +
		len(r.StateTransitions) + len(r.FunctionCalls) + len(r.VariableAssignments)
}

// Capped returns r with every list truncated to at most n entries.
func (r StructureReport) Capped(n int) StructureReport {
	if len(r.Validations) > n {
		r.Validations = r.Validations[:n]
	}
	if len(r.Calculations) > n {
		r.Calculations = r.Calculations[:n]
	}
	if len(r.ErrorHandling) > n {
		r.ErrorHandling = r.ErrorHandling[:n]
	}
	if len(r.StateTransitions) > n {
		r.StateTransitions = r.StateTransitions[:n]
	}
	if len(r.FunctionCalls) > n {
		r.FunctionCalls = r.FunctionCalls[:n]
	}
	if len(r.VariableAssignments) > n {
		r.VariableAssignments = r.VariableAssignments[:n]
	}
	return r
}

// Validation kinds.
const (
	ValidationIf     = "if"
	ValidationSwitch = "switch"
)

// Validation is a conditional or multi-branch statement.
type Validation struct {
	Kind       string       `json:"type"`
	Line       int          `json:"line"`
	Condition  string       `json:"condition,omitempty"`
	Then       string       `json:"then,omitempty"`
	Else       string       `json:"else,omitempty"`
	Complexity int          `json:"complexity,omitempty"`
	Cases      []SwitchCase `json:"cases,omitempty"`
}

// SwitchCase is one branch of a switch.
type SwitchCase struct {
	Value  string `json:"value"`
	Action string `json:"action"`
}

// Calculation is an assignment whose right-hand side computes a value.
type Calculation struct {
	Line       int      `json:"line"`
	Variable   string   `json:"variable"`
	Formula    string   `json:"formula"`
	Operations []string `json:"operations"`
}

// Error-handling kinds.
const (
	ErrorTryCatch = "try_catch"
	ErrorThrow    = "throw"
)

// ErrorHandling is a try block or a throw.
type ErrorHandling struct {
	Kind      string        `json:"type"`
	Line      int           `json:"line"`
	TryBlock  string        `json:"try_block,omitempty"`
	Catches   []CatchClause `json:"catches,omitempty"`
	Finally   string        `json:"finally,omitempty"`
	Exception string        `json:"exception,omitempty"`
}

// CatchClause is one handler of a try block.
type CatchClause struct {
	ExceptionType string `json:"exception_type"`
	Variable      string `json:"variable"`
	Handler       string `json:"handler"`
}

// StateTransition is an assignment to a status-like field.
type StateTransition struct {
	Line     int    `json:"line"`
	Field    string `json:"field"`
	NewValue string `json:"new_value"`
}

// FunctionCall is any call expression.
type FunctionCall struct {
	Line      int      `json:"line"`
	Function  string   `json:"function"`
	Arguments []string `json:"arguments"`
}

// VariableAssignment is any assignment.
type VariableAssignment struct {
	Line     int    `json:"line"`
	Variable string `json:"variable"`
	Value    string `json:"value"`
	Operator string `json:"operator,omitempty"`
}
