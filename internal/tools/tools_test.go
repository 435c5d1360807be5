package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/catalog"
	"github.com/HendryAvila/feature-replicator/internal/config"
	"github.com/HendryAvila/feature-replicator/internal/feature"
	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/templates"
)

// --- Test helpers ---

// isErrorResult checks if a CallToolResult is an error result.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func writeTestFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

func newService() *feature.Service {
	return feature.NewService(config.Default(), nil, nil)
}

func newCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.New(catalog.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newRenderer(t *testing.T) templates.Renderer {
	t.Helper()
	r, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

const ordersController = `public class OrdersController : Controller
{
    public ActionResult Index()
    {
        var sql = "SELECT * FROM Orders o JOIN Customers c ON o.CustomerId = c.Id";
        return View();
    }

    public JsonResult Close(int id)
    {
        var upd = "UPDATE dbo.Orders SET Status = 'closed' WHERE Id = @id";
        return Json(true);
    }
}
`

func csharpRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTestFile(t, root, "Controllers/OrdersController.cs", ordersController)
	return root
}

// --- Argument helpers ---

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    int
		wantErr bool
	}{
		{"missing uses default", map[string]any{}, 300, false},
		{"float64", map[string]any{"n": float64(10)}, 10, false},
		{"int", map[string]any{"n": 5000}, 5000, false},
		{"below range", map[string]any{"n": float64(0)}, 0, true},
		{"above range", map[string]any{"n": float64(5001)}, 0, true},
		{"fraction", map[string]any{"n": 2.5}, 0, true},
		{"string", map[string]any{"n": "10"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intArg(tt.args, "n", 300, 1, 5000)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStringListArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{"any slice", []any{"a.cs", "b.cs"}, 2, false},
		{"string slice", []string{"a.cs"}, 1, false},
		{"missing", nil, 0, true},
		{"empty", []any{}, 0, true},
		{"not an array", "a.cs", 0, true},
		{"non-string item", []any{"a.cs", 3.0}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.value != nil {
				args["files"] = tt.value
			}
			got, err := stringListArg(args, "files")
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestTechStackArg(t *testing.T) {
	ts, err := techStackArg(map[string]any{
		"tech_stack": map[string]any{
			"language":  "php",
			"databases": []any{"mysql", map[string]any{"engine": "sqlserver", "name": "Ventas"}},
		},
	})
	if err != nil {
		t.Fatalf("techStackArg: %v", err)
	}
	if ts == nil || ts.Language != "php" || len(ts.Databases) != 2 {
		t.Fatalf("tech stack = %+v", ts)
	}
	if ts.Databases[1].Name != "Ventas" {
		t.Errorf("database name = %q, want Ventas", ts.Databases[1].Name)
	}

	if ts, err := techStackArg(map[string]any{}); err != nil || ts != nil {
		t.Errorf("missing tech_stack = %+v, %v", ts, err)
	}
	if _, err := techStackArg(map[string]any{"tech_stack": "php"}); err == nil {
		t.Error("expected an error for a non-object tech_stack")
	}
}

// --- list_features ---

func TestListFeatures_Definition(t *testing.T) {
	def := NewListFeaturesTool(newService()).Definition()
	if def.Name != "list_features" {
		t.Errorf("name = %q", def.Name)
	}
	if _, ok := def.InputSchema.Properties["max_files"]; !ok {
		t.Error("max_files property missing")
	}
}

func TestListFeatures_CSharp(t *testing.T) {
	root := csharpRepo(t)
	tool := NewListFeaturesTool(newService())

	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"path":       root,
		"tech_stack": map[string]any{"language": "csharp"},
		"max_files":  float64(50),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}

	var got feature.ListResult
	if err := json.Unmarshal([]byte(getResultText(result)), &got); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if got.TotalFilesScanned != 1 {
		t.Errorf("total files = %d, want 1", got.TotalFilesScanned)
	}
	if len(got.Features) != 1 || got.Features[0].ID != "LEGACY-F-001" {
		t.Errorf("features = %+v", got.Features)
	}
}

func TestListFeatures_InvalidArguments(t *testing.T) {
	root := t.TempDir()
	tool := NewListFeaturesTool(newService())

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"max_files too low", map[string]any{"path": root, "max_files": float64(0)}, "max_files"},
		{"max_files too high", map[string]any{"path": root, "max_files": float64(5001)}, "max_files"},
		{"max_files not a number", map[string]any{"path": root, "max_files": "many"}, "max_files"},
		{"path not a string", map[string]any{"path": 42.0}, "path"},
		{"tech_stack not an object", map[string]any{"path": root, "tech_stack": "csharp"}, "tech_stack"},
		{"missing path", map[string]any{"path": filepath.Join(root, "nope")}, "does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), newRequest(tt.args))
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if !isErrorResult(result) {
				t.Fatalf("expected error result, got %s", getResultText(result))
			}
			if !strings.Contains(getResultText(result), tt.want) {
				t.Errorf("error %q should mention %q", getResultText(result), tt.want)
			}
		})
	}
}

// --- scan_feature ---

func TestScanFeature_CSharp(t *testing.T) {
	root := csharpRepo(t)
	tool := NewScanFeatureTool(newService())

	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"feature_id":  "LEGACY-F-001",
		"entry_files": []any{"Controllers/OrdersController.cs"},
		"path":        root,
		"tech_stack":  map[string]any{"language": "csharp", "databases": []any{"sqlserver"}},
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}

	var spec model.FeatureSpec
	if err := json.Unmarshal([]byte(getResultText(result)), &spec); err != nil {
		t.Fatalf("decoding spec: %v", err)
	}
	if spec.FeatureID != "LEGACY-F-001" {
		t.Errorf("feature id = %q", spec.FeatureID)
	}
	if len(spec.DataSources) != 3 {
		t.Fatalf("data sources = %d, want 3", len(spec.DataSources))
	}
	if spec.DataSources[0].Engine != "sqlserver" {
		t.Errorf("engine = %q, want sqlserver", spec.DataSources[0].Engine)
	}
	if spec.DataSources[2].Schema != "dbo" || spec.DataSources[2].Table != "Orders" {
		t.Errorf("third source = %+v", spec.DataSources[2])
	}
}

func TestScanFeature_NoEntryFiles(t *testing.T) {
	tool := NewScanFeatureTool(newService())
	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"feature_id":  "F",
		"entry_files": []any{"missing.cs"},
		"path":        t.TempDir(),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatalf("expected error result, got %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "no valid entry files") {
		t.Errorf("error = %q", getResultText(result))
	}
}

func TestScanFeature_AllEntryFilesUnreadable(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "Broken.cs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	tool := NewScanFeatureTool(newService())
	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"feature_id":  "F",
		"entry_files": []any{"Broken.cs"},
		"path":        root,
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatalf("expected error result, got %s", getResultText(result))
	}
}

func TestScanFeature_InvalidArguments(t *testing.T) {
	root := csharpRepo(t)
	valid := func() map[string]any {
		return map[string]any{
			"feature_id":  "F",
			"entry_files": []any{"Controllers/OrdersController.cs"},
			"path":        root,
		}
	}
	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"missing feature_id", func(a map[string]any) { delete(a, "feature_id") }, "feature_id"},
		{"empty entry_files", func(a map[string]any) { a["entry_files"] = []any{} }, "entry_files"},
		{"entry_files not an array", func(a map[string]any) { a["entry_files"] = "x.cs" }, "entry_files"},
		{"missing path", func(a map[string]any) { delete(a, "path") }, "path"},
		{"max_depth too high", func(a map[string]any) { a["max_depth"] = float64(11) }, "max_depth"},
		{"max_depth too low", func(a map[string]any) { a["max_depth"] = float64(0) }, "max_depth"},
	}
	tool := NewScanFeatureTool(newService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := valid()
			tt.mutate(args)
			result, err := tool.Handle(context.Background(), newRequest(args))
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if !isErrorResult(result) {
				t.Fatalf("expected error result, got %s", getResultText(result))
			}
			if !strings.Contains(getResultText(result), tt.want) {
				t.Errorf("error %q should mention %q", getResultText(result), tt.want)
			}
		})
	}
}

// --- export_feature_markdown / list_exported_features ---

func sampleSpecArg() map[string]any {
	return map[string]any{
		"feature_id":     "LEGACY-F-001",
		"name":           "Orders Controller",
		"domain_purpose": "Manage orders.",
		"inputs":         []any{map[string]any{"name": "id", "type": "int", "description": "order id"}},
		"outputs":        []any{map[string]any{"type": "ActionResult", "description": "view"}},
		"data_sources": []any{
			map[string]any{"kind": "database", "engine": "sqlserver", "schema": "dbo", "table": "Orders"},
		},
		"tech_stack": map[string]any{"language": "csharp"},
	}
}

func TestExportFeature_WritesMarkdownAndRecords(t *testing.T) {
	store := newCatalog(t)
	out := filepath.Join(t.TempDir(), "specs", "nested")
	tool := NewExportFeatureTool(newRenderer(t), store, nil)

	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"feature_spec": sampleSpecArg(),
		"output_path":  out,
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}

	var got feature.ExportResult
	if err := json.Unmarshal([]byte(getResultText(result)), &got); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if !got.Success || got.FileName != "LEGACY-F-001_Orders_Controller.md" {
		t.Errorf("result = %+v", got)
	}
	data, err := os.ReadFile(got.FilePath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "# Orders Controller") {
		t.Errorf("markdown missing title:\n%s", data)
	}

	entries, err := store.List("LEGACY-F-001", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].FilePath != got.FilePath {
		t.Errorf("catalog entries = %+v", entries)
	}
}

func TestExportFeature_WithoutCatalog(t *testing.T) {
	tool := NewExportFeatureTool(newRenderer(t), nil, nil)
	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"feature_spec": sampleSpecArg(),
		"output_path":  t.TempDir(),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}
}

func TestExportFeature_InvalidArguments(t *testing.T) {
	tool := NewExportFeatureTool(newRenderer(t), nil, nil)
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing feature_spec", map[string]any{"output_path": t.TempDir()}, "feature_spec"},
		{"feature_spec not an object", map[string]any{"feature_spec": "{}", "output_path": t.TempDir()}, "feature_spec"},
		{"missing output_path", map[string]any{"feature_spec": sampleSpecArg()}, "output_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), newRequest(tt.args))
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if !isErrorResult(result) {
				t.Fatalf("expected error result, got %s", getResultText(result))
			}
			if !strings.Contains(getResultText(result), tt.want) {
				t.Errorf("error %q should mention %q", getResultText(result), tt.want)
			}
		})
	}
}

func TestListExported(t *testing.T) {
	store := newCatalog(t)
	for _, id := range []string{"F-1", "F-2", "F-3"} {
		spec := &model.FeatureSpec{
			FeatureID:   id,
			Name:        "Feature " + id,
			DataSources: []model.DataSource{{Table: "Orders"}},
		}
		if _, err := store.Record(spec, "/out/"+id+".md"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	tool := NewListExportedTool(store)

	t.Run("standard", func(t *testing.T) {
		result, err := tool.Handle(context.Background(), newRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		text := getResultText(result)
		for _, want := range []string{"Exported features (3)", "**F-1**", "File: /out/F-2.md", "Tables: Orders"} {
			if !strings.Contains(text, want) {
				t.Errorf("output missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("limit adds navigation hint", func(t *testing.T) {
		result, err := tool.Handle(context.Background(), newRequest(map[string]any{
			"limit":        float64(2),
			"detail_level": "summary",
		}))
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		text := getResultText(result)
		if !strings.Contains(text, "Showing 2 of 3") {
			t.Errorf("missing navigation hint:\n%s", text)
		}
		if strings.Contains(text, "File:") {
			t.Errorf("summary should omit files:\n%s", text)
		}
	})

	t.Run("full is JSON", func(t *testing.T) {
		result, err := tool.Handle(context.Background(), newRequest(map[string]any{
			"feature_id":   "F-2",
			"detail_level": "full",
		}))
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		text := getResultText(result)
		if !strings.HasPrefix(text, "[") || !strings.Contains(text, `"feature_id": "F-2"`) {
			t.Errorf("unexpected full output:\n%s", text)
		}
	})

	t.Run("unknown feature", func(t *testing.T) {
		result, err := tool.Handle(context.Background(), newRequest(map[string]any{"feature_id": "nope"}))
		if err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if !strings.Contains(getResultText(result), "No exports recorded") {
			t.Errorf("output = %q", getResultText(result))
		}
	})
}

func TestListExported_NoCatalog(t *testing.T) {
	result, err := NewListExportedTool(nil).Handle(context.Background(), newRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected error result without a catalog")
	}
}

// --- analyze_code_structure ---

const pricingCode = `<?php
if ($total > 100 && $cliente) {
    $descuento = $total * 0.1;
}
$pedido->estado = 'pagado';
`

func TestAnalyzeStructure_Code(t *testing.T) {
	tool := NewAnalyzeStructureTool(0)
	result, err := tool.Handle(context.Background(), newRequest(map[string]any{"code": pricingCode}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected error: %s", getResultText(result))
	}
	text := getResultText(result)
	jsonPart := text[:strings.LastIndex(text, "\n~")]

	var report model.StructureReport
	if err := json.Unmarshal([]byte(jsonPart), &report); err != nil {
		t.Fatalf("decoding report: %v\n%s", err, text)
	}
	if len(report.Validations) != 1 || len(report.Calculations) != 1 || len(report.StateTransitions) != 1 {
		t.Errorf("report = %+v", report)
	}
	if !strings.Contains(text, "tokens") {
		t.Error("missing token footer")
	}
}

func TestAnalyzeStructure_Summary(t *testing.T) {
	tool := NewAnalyzeStructureTool(0)
	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"code":         pricingCode,
		"detail_level": "summary",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	for _, want := range []string{"inline code", "- Validations: 1", "- Calculations: 1", "- Variable assignments: 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestAnalyzeStructure_File(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "pages/ventas.php", pricingCode)
	tool := NewAnalyzeStructureTool(0)

	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"file":         "pages/ventas.php",
		"path":         root,
		"detail_level": "summary",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "pages/ventas.php") {
		t.Errorf("summary should name the file:\n%s", getResultText(result))
	}
}

func TestAnalyzeStructure_SyntaxError(t *testing.T) {
	tool := NewAnalyzeStructureTool(0)
	result, err := tool.Handle(context.Background(), newRequest(map[string]any{
		"code":         "<?php if ($a { ",
		"detail_level": "summary",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatal("a parse failure is a successful call carrying parse_error")
	}
	if !strings.Contains(getResultText(result), "Parse error") {
		t.Errorf("output = %q", getResultText(result))
	}
}

func TestAnalyzeStructure_InvalidArguments(t *testing.T) {
	tool := NewAnalyzeStructureTool(0)
	tests := []struct {
		name string
		args map[string]any
	}{
		{"neither code nor file", map[string]any{}},
		{"missing file", map[string]any{"file": "nope.php", "path": t.TempDir()}},
		{"code not a string", map[string]any{"code": 12.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), newRequest(tt.args))
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if !isErrorResult(result) {
				t.Fatalf("expected error result, got %s", getResultText(result))
			}
		})
	}
}

// --- detail level ---

func TestParseDetailLevel(t *testing.T) {
	tests := map[string]string{
		"":        DetailStandard,
		"summary": DetailSummary,
		"full":    DetailFull,
		"FULL":    DetailStandard,
		"verbose": DetailStandard,
	}
	for in, want := range tests {
		if got := ParseDetailLevel(in); got != want {
			t.Errorf("ParseDetailLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNavigationHint(t *testing.T) {
	if got := NavigationHint(5, 5, "x"); got != "" {
		t.Errorf("all shown: %q", got)
	}
	if got := NavigationHint(0, 0, ""); got != "" {
		t.Errorf("empty: %q", got)
	}
	if got := NavigationHint(2, 7, "More."); got != "\nShowing 2 of 7. More." {
		t.Errorf("capped: %q", got)
	}
}

func TestTokenFooter(t *testing.T) {
	if got := TokenFooter(12345); got != "\n~12,345 tokens" {
		t.Errorf("TokenFooter = %q", got)
	}
	if EstimateTokens("") != 0 || EstimateTokens("ab") != 1 || EstimateTokens("abcdefgh") != 2 {
		t.Error("EstimateTokens mismatch")
	}
}
