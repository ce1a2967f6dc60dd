package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/draftline/ast-identity/internal/session"
	"github.com/draftline/ast-identity/internal/store"
)

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp      *mcp.Server
	store    *store.Store
	sessions *session.Manager
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(st *store.Store, sessions *session.Manager) *Server {
	srv := &Server{
		store:    st,
		sessions: sessions,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "ast-identity",
				Version: "0.1.0",
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	// 1. open_document
	s.mcp.AddTool(&mcp.Tool{
		Name:        "open_document",
		Description: "Open a document for identity tracking. Parses the text, reconciles stable identities against any persisted snapshot, and returns resolution stats. Language is inferred from the URI extension unless given.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {
					"type": "string",
					"description": "Document URI (file path)"
				},
				"language": {
					"type": "string",
					"description": "Hosted language: yaml, toml, hcl or sql. Inferred from the extension if omitted.",
					"enum": ["yaml", "toml", "hcl", "sql"]
				},
				"text": {
					"type": "string",
					"description": "Full document text"
				}
			},
			"required": ["uri", "text"]
		}`),
	}, s.handleOpenDocument)

	// 2. update_document
	s.mcp.AddTool(&mcp.Tool{
		Name:        "update_document",
		Description: "Reparse an open document after an edit and reconcile identities against the new tree. Returns how many nodes resolved by exact match, fuzzy match and fresh allocation.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {
					"type": "string",
					"description": "Document URI of an open session"
				},
				"text": {
					"type": "string",
					"description": "Full document text after the edit"
				}
			},
			"required": ["uri", "text"]
		}`),
	}, s.handleUpdateDocument)

	// 3. close_document
	s.mcp.AddTool(&mcp.Tool{
		Name:        "close_document",
		Description: "Close a document session, persisting its identity snapshot for the next session.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {
					"type": "string",
					"description": "Document URI of an open session"
				}
			},
			"required": ["uri"]
		}`),
	}, s.handleCloseDocument)

	// 4. resolve_identity
	s.mcp.AddTool(&mcp.Tool{
		Name:        "resolve_identity",
		Description: "Resolve a stable identity to its node in the current generation: type, name, containing property and source offset.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {
					"type": "string",
					"description": "Document URI of an open session"
				},
				"identity": {
					"type": "string",
					"description": "Stable identity to resolve"
				}
			},
			"required": ["uri", "identity"]
		}`),
	}, s.handleResolveIdentity)

	// 5. list_identities
	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_identities",
		Description: "List every identity of the current generation with its stored structural fingerprint.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {
					"type": "string",
					"description": "Document URI of an open session"
				}
			},
			"required": ["uri"]
		}`),
	}, s.handleListIdentities)

	// 6. set_layout
	s.mcp.AddTool(&mcp.Tool{
		Name:        "set_layout",
		Description: "Remember a diagram element's placement, keyed by its stable identity so it survives reparses.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {"type": "string", "description": "Document URI"},
				"identity": {"type": "string", "description": "Stable identity of the element"},
				"x": {"type": "number"},
				"y": {"type": "number"},
				"width": {"type": "number"},
				"height": {"type": "number"}
			},
			"required": ["uri", "identity", "x", "y"]
		}`),
	}, s.handleSetLayout)

	// 7. get_layout
	s.mcp.AddTool(&mcp.Tool{
		Name:        "get_layout",
		Description: "Fetch the remembered placement for an identity, if any.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {"type": "string", "description": "Document URI"},
				"identity": {"type": "string", "description": "Stable identity of the element"}
			},
			"required": ["uri", "identity"]
		}`),
	}, s.handleGetLayout)

	// 8. export_state
	s.mcp.AddTool(&mcp.Tool{
		Name:        "export_state",
		Description: "Export the registry's durable state (exact-match index plus per-identity fingerprints) for a document, in the cross-session persistence format.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {
					"type": "string",
					"description": "Document URI of an open session"
				}
			},
			"required": ["uri"]
		}`),
	}, s.handleExportState)

	// 9. migrate_legacy_layouts
	s.mcp.AddTool(&mcp.Tool{
		Name:        "migrate_legacy_layouts",
		Description: "One-time upgrade of a pre-identity layout database: maps each element's retired offset-hash id to its stable identity and copies the placements into the workspace store.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {
					"type": "string",
					"description": "Document URI of an open session"
				},
				"legacy_db_path": {
					"type": "string",
					"description": "Path to the legacy layout database file"
				}
			},
			"required": ["uri", "legacy_db_path"]
		}`),
	}, s.handleMigrateLegacyLayouts)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params.Arguments == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// getFloatArg extracts a numeric argument with a default value.
func getFloatArg(args map[string]any, key string, defaultVal float64) float64 {
	v, ok := args[key]
	if !ok {
		return defaultVal
	}
	f, ok := v.(float64) // JSON numbers decode as float64
	if !ok {
		return defaultVal
	}
	return f
}
