package resources

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/catalog"
	"github.com/HendryAvila/feature-replicator/internal/config"
	"github.com/HendryAvila/feature-replicator/internal/lang"
)

type fakeLister struct {
	entries []catalog.Entry
	err     error
}

func (f fakeLister) List(string, int) ([]catalog.Entry, error) { return f.entries, f.err }

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func resourceText(t *testing.T, contents []mcp.ResourceContents) string {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	return tc.Text
}

func TestHandleLanguages(t *testing.T) {
	h := NewHandler(lang.NewRegistry(config.Default()), nil)

	contents, err := h.HandleLanguages(context.Background(), readRequest(LanguagesURI))
	if err != nil {
		t.Fatalf("HandleLanguages: %v", err)
	}
	var infos []LanguageInfo
	if err := json.Unmarshal([]byte(resourceText(t, contents)), &infos); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	byID := map[string]LanguageInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	php, ok := byID["php"]
	if !ok {
		t.Fatalf("php missing from %+v", infos)
	}
	if !php.Enriched {
		t.Error("php should be marked as enriched")
	}
	if _, ok := byID["csharp"]; !ok {
		t.Error("csharp missing")
	}
}

func TestHandleExports(t *testing.T) {
	h := NewHandler(lang.NewRegistry(config.Default()), fakeLister{
		entries: []catalog.Entry{{ID: "1", FeatureID: "F-1", Tables: []string{"Orders"}}},
	})
	contents, err := h.HandleExports(context.Background(), readRequest(ExportsURI))
	if err != nil {
		t.Fatalf("HandleExports: %v", err)
	}
	if !strings.Contains(resourceText(t, contents), `"feature_id": "F-1"`) {
		t.Errorf("unexpected text: %s", resourceText(t, contents))
	}
}

func TestHandleExports_NoCatalog(t *testing.T) {
	h := NewHandler(lang.NewRegistry(config.Default()), nil)
	contents, err := h.HandleExports(context.Background(), readRequest(ExportsURI))
	if err != nil {
		t.Fatalf("HandleExports: %v", err)
	}
	if !strings.HasPrefix(resourceText(t, contents), "Error:") {
		t.Errorf("expected an error resource")
	}
}

func TestHandleExports_ListError(t *testing.T) {
	h := NewHandler(lang.NewRegistry(config.Default()), fakeLister{err: errors.New("disk gone")})
	if _, err := h.HandleExports(context.Background(), readRequest(ExportsURI)); err == nil {
		t.Error("expected the list error to propagate")
	}
}
