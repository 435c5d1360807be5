package phpast

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

func analyze(t *testing.T, src string) model.StructureReport {
	t.Helper()
	rep := Analyze(context.Background(), []byte(src))
	if rep.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", rep.ParseError)
	}
	return rep
}

func TestAnalyze_IfValidation(t *testing.T) {
	rep := analyze(t, `<?php
if ($total > 100 && $cliente->vip || $forzar) {
    $descuento = 10;
    aplicar($descuento);
} else {
    return false;
}
`)
	if len(rep.Validations) != 1 {
		t.Fatalf("validations = %d, want 1", len(rep.Validations))
	}
	v := rep.Validations[0]
	if v.Kind != model.ValidationIf {
		t.Errorf("kind = %q, want if", v.Kind)
	}
	if v.Line != 2 {
		t.Errorf("line = %d, want 2", v.Line)
	}
	if v.Complexity != 2 {
		t.Errorf("complexity = %d, want 2", v.Complexity)
	}
	if !strings.Contains(v.Condition, "$total > 100") {
		t.Errorf("condition = %q", v.Condition)
	}
	if v.Then != "$descuento = 10; aplicar($descuento)" {
		t.Errorf("then = %q", v.Then)
	}
	if v.Else != "return false" {
		t.Errorf("else = %q, want %q", v.Else, "return false")
	}
}

func TestAnalyze_ElseIfChain(t *testing.T) {
	rep := analyze(t, `<?php
if ($a) {
    x();
} elseif ($b) {
    y();
}
`)
	if len(rep.Validations) != 2 {
		t.Fatalf("validations = %d, want 2", len(rep.Validations))
	}
	if rep.Validations[0].Else != "elseif $b" {
		t.Errorf("else = %q, want %q", rep.Validations[0].Else, "elseif $b")
	}
	if rep.Validations[1].Condition != "$b" || rep.Validations[1].Then != "y()" {
		t.Errorf("elseif validation = %+v", rep.Validations[1])
	}
}

func TestAnalyze_Switch(t *testing.T) {
	rep := analyze(t, `<?php
switch ($tipo) {
    case 'A':
        $tasa = 1;
        break;
    case 'B':
        return calcular($tipo);
    default:
        throw new Exception('tipo');
}
`)
	var sw *model.Validation
	for i := range rep.Validations {
		if rep.Validations[i].Kind == model.ValidationSwitch {
			sw = &rep.Validations[i]
		}
	}
	if sw == nil {
		t.Fatal("no switch validation found")
	}
	if sw.Condition != "$tipo" {
		t.Errorf("condition = %q", sw.Condition)
	}
	if len(sw.Cases) != 3 {
		t.Fatalf("cases = %d, want 3", len(sw.Cases))
	}
	if sw.Cases[0].Value != "'A'" || sw.Cases[0].Action != "$tasa = 1" {
		t.Errorf("case 0 = %+v", sw.Cases[0])
	}
	if sw.Cases[1].Action != "return calcular($tipo)" {
		t.Errorf("case 1 action = %q", sw.Cases[1].Action)
	}
	if sw.Cases[2].Value != "default" || !strings.HasPrefix(sw.Cases[2].Action, "throw new Exception(") {
		t.Errorf("default case = %+v", sw.Cases[2])
	}
}

func TestAnalyze_TryCatchFinally(t *testing.T) {
	rep := analyze(t, `<?php
try {
    $db->guardar($pedido);
} catch (PDOException $e) {
    log_error($e);
} finally {
    $db->cerrar();
}
`)
	var tc *model.ErrorHandling
	for i := range rep.ErrorHandling {
		if rep.ErrorHandling[i].Kind == model.ErrorTryCatch {
			tc = &rep.ErrorHandling[i]
		}
	}
	if tc == nil {
		t.Fatal("no try_catch entry found")
	}
	if tc.TryBlock != "$db->guardar($pedido)" {
		t.Errorf("try block = %q", tc.TryBlock)
	}
	if len(tc.Catches) != 1 {
		t.Fatalf("catches = %d, want 1", len(tc.Catches))
	}
	c := tc.Catches[0]
	if c.ExceptionType != "PDOException" || c.Variable != "$e" || c.Handler != "log_error($e)" {
		t.Errorf("catch = %+v", c)
	}
	if tc.Finally != "$db->cerrar()" {
		t.Errorf("finally = %q", tc.Finally)
	}
}

func TestAnalyze_Throw(t *testing.T) {
	rep := analyze(t, `<?php
function check($x) {
    if (!$x) {
        throw new InvalidArgumentException("x requerido");
    }
}
`)
	var found bool
	for _, eh := range rep.ErrorHandling {
		if eh.Kind == model.ErrorThrow {
			found = true
			if !strings.HasPrefix(eh.Exception, "new InvalidArgumentException(") {
				t.Errorf("exception = %q", eh.Exception)
			}
			if eh.Line != 4 {
				t.Errorf("line = %d, want 4", eh.Line)
			}
		}
	}
	if !found {
		t.Fatal("no throw entry found")
	}
}

func TestAnalyze_StateTransition(t *testing.T) {
	rep := analyze(t, `<?php
$pedido->estado = 'enviado';
$nombre = 'x';
`)
	if len(rep.StateTransitions) != 1 {
		t.Fatalf("state transitions = %d, want 1", len(rep.StateTransitions))
	}
	st := rep.StateTransitions[0]
	if st.Field != "$pedido->estado" || st.NewValue != "'enviado'" || st.Line != 2 {
		t.Errorf("transition = %+v", st)
	}
	if len(rep.VariableAssignments) != 2 {
		t.Errorf("assignments = %d, want 2", len(rep.VariableAssignments))
	}
}

func TestAnalyze_Calculations(t *testing.T) {
	rep := analyze(t, `<?php
$total = $precio * $cantidad + $envio;
$redondeo = round($total);
$saldo -= $pago;
$etiqueta = "total";
`)
	if len(rep.Calculations) != 3 {
		t.Fatalf("calculations = %d, want 3: %+v", len(rep.Calculations), rep.Calculations)
	}
	first := rep.Calculations[0]
	if first.Variable != "$total" || first.Formula != "$precio * $cantidad + $envio" {
		t.Errorf("first = %+v", first)
	}
	if !reflect.DeepEqual(first.Operations, []string{"+", "*"}) {
		t.Errorf("operations = %v, want [+ *]", first.Operations)
	}
	if rep.Calculations[1].Variable != "$redondeo" {
		t.Errorf("second = %+v", rep.Calculations[1])
	}
	third := rep.Calculations[2]
	if third.Variable != "$saldo" || !reflect.DeepEqual(third.Operations, []string{"-"}) {
		t.Errorf("third = %+v", third)
	}

	var augmented *model.VariableAssignment
	for i := range rep.VariableAssignments {
		if rep.VariableAssignments[i].Variable == "$saldo" {
			augmented = &rep.VariableAssignments[i]
		}
	}
	if augmented == nil || augmented.Operator != "-=" {
		t.Errorf("augmented assignment = %+v", augmented)
	}
}

func TestAnalyze_FunctionCalls(t *testing.T) {
	rep := analyze(t, `<?php
enviar_correo($cliente, "Bienvenido");
$repo->buscar(42);
Pedido::crear();
`)
	if len(rep.FunctionCalls) != 3 {
		t.Fatalf("calls = %d, want 3", len(rep.FunctionCalls))
	}
	want := []model.FunctionCall{
		{Line: 2, Function: "enviar_correo", Arguments: []string{"$cliente", `"Bienvenido"`}},
		{Line: 3, Function: "$repo->buscar", Arguments: []string{"42"}},
		{Line: 4, Function: "Pedido::crear", Arguments: []string{}},
	}
	if !reflect.DeepEqual(rep.FunctionCalls, want) {
		t.Errorf("calls =\n%+v\nwant\n%+v", rep.FunctionCalls, want)
	}
}

func TestAnalyze_DigestTruncates(t *testing.T) {
	rep := analyze(t, `<?php
if ($x) {
    a();
    b();
    c();
    d();
    e();
    f();
    g();
}
`)
	want := "a(); b(); c(); d(); e(); ... (2 more statements)"
	if got := rep.Validations[0].Then; got != want {
		t.Errorf("then = %q, want %q", got, want)
	}
}

func TestAnalyze_WithoutOpenTag(t *testing.T) {
	rep := analyze(t, "$a = 1;\nif ($a) { hacer(); }\n")
	if len(rep.Validations) != 1 {
		t.Fatalf("validations = %d, want 1", len(rep.Validations))
	}
	if rep.Validations[0].Line != 2 {
		t.Errorf("line = %d, want 2", rep.Validations[0].Line)
	}
}

func TestAnalyze_SyntaxError(t *testing.T) {
	rep := Analyze(context.Background(), []byte("<?php\nif ($a {\n  foo(;\n"))
	if rep.ParseError == "" {
		t.Fatal("expected a parse error")
	}
	if !strings.HasPrefix(rep.ParseError, "syntax error near line ") {
		t.Errorf("parse error = %q", rep.ParseError)
	}
	if len(rep.Validations) != 0 || len(rep.Calculations) != 0 || len(rep.FunctionCalls) != 0 ||
		len(rep.ErrorHandling) != 0 || len(rep.StateTransitions) != 0 || len(rep.VariableAssignments) != 0 {
		t.Errorf("expected empty lists, got %+v", rep)
	}
	if rep.Validations == nil {
		t.Error("lists must be non-nil")
	}
}

func TestAnalyze_CommentsIgnored(t *testing.T) {
	rep := analyze(t, `<?php
// if ($x) { y(); }
/* $total = $a * $b; */
`)
	if len(rep.Validations) != 0 || len(rep.Calculations) != 0 {
		t.Errorf("comments produced entries: %+v", rep)
	}
}
