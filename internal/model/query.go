package model

// Query statement kinds reported by the query analyzer.
const (
	QuerySelect     = "SELECT"
	QueryInsert     = "INSERT"
	QueryUpdate     = "UPDATE"
	QueryDelete     = "DELETE"
	QueryStoredProc = "STORED_PROC"
	QueryUnknown    = "unknown"
)

// QueryInfo is the normalized shape of one candidate SQL text.
type QueryInfo struct {
	Type    string   `json:"type"`
	Tables  []string `json:"tables"`
	Columns []string `json:"columns"`
	Filters string   `json:"filters"`
	Joins   string   `json:"joins"`
}

// DataSource is one (query, table) pairing.
type DataSource struct {
	Kind              string   `json:"kind"`
	Engine            string   `json:"engine"`
	Database          string   `json:"database"`
	Schema            string   `json:"schema"`
	Table             string   `json:"table"`
	Role              string   `json:"role,omitempty"`
	Columns           []string `json:"columns"`
	Filters           string   `json:"filters"`
	Joins             string   `json:"joins"`
	SourceCodeSnippet string   `json:"source_code_snippet"`
}

// File-system touch kinds and operations.
const (
	FSLocal        = "local"
	FSNetworkShare = "network_share"

	OpRead    = "read"
	OpWrite   = "write"
	OpUnknown = "unknown"
)

// FileSystemTouch is a literal file path the code reads or writes.
type FileSystemTouch struct {
	Kind        string `json:"kind"`
	PathPattern string `json:"path_pattern"`
	Operation   string `json:"operation"`
}

// Key is the dedup key of a file-system touch.
func (f FileSystemTouch) Key() string {
	return f.Kind + ":" + f.PathPattern
}

// ExternalServiceCall is an outbound HTTP URL found in source.
type ExternalServiceCall struct {
	Kind      string `json:"kind"`
	URLOrHost string `json:"url_or_host"`
	Method    string `json:"method"`
}
