package extract

import (
	"reflect"
	"testing"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

func TestPHPParams(t *testing.T) {
	src := `<?php
$desde = $_GET['fecha_desde'];
$id = $_GET["id_cliente"];
$name = $_POST['nombre'];
$f = $_FILES['archivo'];
$u = $_SESSION['usuario'];
$x = filter_input(INPUT_POST, 'cantidad');
$again = $_GET['id_cliente'];
`
	got := PHPParams(src, map[string]string{"id_cliente": "Customer id"})
	if !got.Structured {
		t.Fatal("PHP inputs should be structured")
	}

	wantHTTP := []model.Input{
		{Name: "fecha_desde", Type: "date", Source: "GET"},
		{Name: "id_cliente", Type: "integer", Source: "GET", Description: "Customer id"},
	}
	wantForm := []model.Input{
		{Name: "nombre", Type: "string", Source: "POST"},
		{Name: "archivo", Type: "file", Source: "FILES"},
		{Name: "cantidad", Type: "integer", Source: "POST"},
	}
	wantOther := []model.Input{
		{Name: "usuario", Type: "string", Source: "SESSION"},
	}
	if !reflect.DeepEqual(got.HTTPParams, wantHTTP) {
		t.Errorf("HTTPParams = %+v, want %+v", got.HTTPParams, wantHTTP)
	}
	if !reflect.DeepEqual(got.FormFields, wantForm) {
		t.Errorf("FormFields = %+v, want %+v", got.FormFields, wantForm)
	}
	if !reflect.DeepEqual(got.OtherSources, wantOther) {
		t.Errorf("OtherSources = %+v, want %+v", got.OtherSources, wantOther)
	}
}

func TestPHPParams_RequestHelper(t *testing.T) {
	src := `$q = $request->query('page'); $p = $request->post('email'); $d = $request->input('notes');`
	got := PHPParams(src, nil)
	if len(got.HTTPParams) != 2 || got.HTTPParams[0].Source != "GET" || got.HTTPParams[1].Source != "REQUEST" {
		t.Errorf("HTTPParams = %+v", got.HTTPParams)
	}
	if len(got.FormFields) != 1 || got.FormFields[0].Name != "email" {
		t.Errorf("FormFields = %+v", got.FormFields)
	}
}

func TestParamType(t *testing.T) {
	tests := []struct {
		source, name, want string
	}{
		{"GET", "fecha_inicio", "date"},
		{"GET", "hasta", "date"},
		{"GET", "id", "integer"},
		{"GET", "idCliente", "integer"},
		{"POST", "cliente_id", "integer"},
		{"POST", "numPedido", "integer"},
		{"GET", "idioma", "string"},
		{"GET", "nombre", "string"},
		{"FILES", "fecha", "file"},
	}
	for _, tt := range tests {
		if got := paramType(tt.source, tt.name); got != tt.want {
			t.Errorf("paramType(%q, %q) = %q, want %q", tt.source, tt.name, got, tt.want)
		}
	}
}

func TestClassifyOutput(t *testing.T) {
	t.Run("pdf", func(t *testing.T) {
		src := `$pdf = new FPDF(); $pdf->Cell(40, 10, 'Reporte de ventas'); $pdf->Output();`
		got := ClassifyOutput(src)
		if got.Type != OutputPDF {
			t.Fatalf("Type = %q, want PDF", got.Type)
		}
		if !reflect.DeepEqual(got.Structure, []string{"Reporte de ventas"}) {
			t.Errorf("Structure = %q", got.Structure)
		}
	})

	t.Run("json", func(t *testing.T) {
		src := `echo json_encode(['ok' => true, 'total' => $t]);`
		got := ClassifyOutput(src)
		if got.Type != OutputJSON {
			t.Fatalf("Type = %q, want JSON", got.Type)
		}
		if !reflect.DeepEqual(got.Structure, []string{"ok", "total"}) {
			t.Errorf("Structure = %q", got.Structure)
		}
	})

	t.Run("html table", func(t *testing.T) {
		src := `<table><tr><th>Cliente</th><th> Total </th></tr></table>`
		got := ClassifyOutput(src)
		if got.Type != OutputHTML || !reflect.DeepEqual(got.Structure, []string{"Cliente", "Total"}) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("no signals", func(t *testing.T) {
		got := ClassifyOutput(`$a = 1;`)
		if got.Type != OutputHTML || got.Description != "HTML page (no explicit output signals)" {
			t.Errorf("got %+v", got)
		}
		if got.Structure == nil {
			t.Error("Structure should be an empty list, not nil")
		}
	})
}

func sampleBlocks() []model.CatalogBlock {
	infos := []model.QueryInfo{
		{Tables: []string{"dbo.clientes"}},
		{Tables: []string{"pedidos", "detalle"}},
		{Tables: []string{}},
		{Tables: []string{"log"}},
		{Tables: []string{"clientes"}},
	}
	return GroupQueryBlocks(infos, map[string]string{"Clientes": "Customer master", "pedidos": "Orders"})
}

func TestGroupQueryBlocks(t *testing.T) {
	got := sampleBlocks()
	want := []model.CatalogBlock{
		{Block: "Customer master", Description: "Customer master", Tables: []string{"dbo.clientes", "clientes"}, Queries: 2},
		{Block: "Orders", Description: "Orders", Tables: []string{"pedidos", "detalle"}, Queries: 1},
		{Block: OtherBlock, Description: "Queries on tables without a configured business block", Tables: []string{"log"}, Queries: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupQueryBlocks =\n%+v\nwant\n%+v", got, want)
	}
}

func TestProcessFlow(t *testing.T) {
	src := `<?php
// 1. Validate the filters
// 2. Load customers
mail($to, $subject, $body);
header("Location: done.php");
`
	got := ProcessFlow(src, sampleBlocks(), model.Output{Type: OutputPDF})
	want := []string{
		"1. Validate the filters",
		"2. Load customers",
		"3. Customer master (2 queries on dbo.clientes, clientes)",
		"4. Orders (1 query on pedidos, detalle)",
		"5. Other data operations (1 query on log)",
		"6. Generate PDF document",
		"7. Send email notification",
		"8. Redirect the user",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProcessFlow =\n%q\nwant\n%q", got, want)
	}
}

func TestInferPurpose(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		purposes map[string]string
		want     string
	}{
		{
			name:     "configured purpose wins",
			content:  "// Something else entirely here",
			purposes: map[string]string{"php-page-ventas": "Monthly sales"},
			want:     "Monthly sales",
		},
		{
			name: "doc block without annotations",
			content: `<?php
/**
 * Generates the monthly sales report for each branch.
 * @author someone
 */
`,
			want: "Generates the monthly sales report for each branch.",
		},
		{
			name:    "short comments skipped",
			content: "<?php\n// short\n$x = 1;\n// Lists every open invoice for the branch\n",
			want:    "Lists every open invoice for the branch",
		},
		{
			name:    "nothing usable",
			content: "<?php\n$x = 1;\n",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferPurpose("php-page-ventas", tt.content, tt.purposes); got != tt.want {
				t.Errorf("InferPurpose = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInferActors(t *testing.T) {
	if got := InferActors("admin panel for the vendedor"); !reflect.DeepEqual(got, []string{"Administrator", "Salesperson"}) {
		t.Errorf("InferActors = %q", got)
	}
	if got := InferActors(""); !reflect.DeepEqual(got, []string{"User"}) {
		t.Errorf("InferActors(empty) = %q", got)
	}
}

func TestEntryPoints(t *testing.T) {
	src := `<form action="save.php" method="post"></form><form action='a.php'></form><form action="<?= $url ?>">`
	got := EntryPoints([]string{"a.php"}, src)
	if !reflect.DeepEqual(got, []string{"a.php", "save.php"}) {
		t.Errorf("EntryPoints = %q", got)
	}
}

func TestExampleScenarios(t *testing.T) {
	in := model.Inputs{
		Structured: true,
		HTTPParams: []model.Input{{Name: "id", Type: "integer"}},
		FormFields: []model.Input{{Name: "fecha", Type: "date"}},
	}
	got := ExampleScenarios(in, model.Output{Type: OutputPDF}, []string{"ventas"}, 1)
	if len(got) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(got))
	}
	if !reflect.DeepEqual(got[0].Inputs, map[string]string{"id": "1", "fecha": "2024-01-31"}) {
		t.Errorf("Inputs = %v", got[0].Inputs)
	}
	if got[0].Expected != "Produces PDF output built from ventas" {
		t.Errorf("Expected = %q", got[0].Expected)
	}

	if got := ExampleScenarios(model.Inputs{}, model.Output{Type: OutputHTML}, nil, 3); len(got) != 1 {
		t.Errorf("without parameters only the happy path is generated, got %d", len(got))
	}
}
