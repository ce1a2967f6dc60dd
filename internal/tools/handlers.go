package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/draftline/ast-identity/internal/identity"
	"github.com/draftline/ast-identity/internal/lang"
	"github.com/draftline/ast-identity/internal/store"
)

func (s *Server) handleOpenDocument(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	if uri == "" {
		return errResult("uri is required"), nil
	}
	text := getStringArg(args, "text")

	language := lang.Language(getStringArg(args, "language"))
	if language == "" {
		detected, ok := lang.LanguageForExtension(filepath.Ext(uri))
		if !ok {
			return errResult(fmt.Sprintf("cannot infer language from %s; pass language explicitly", uri)), nil
		}
		language = detected
	}

	sess, err := s.sessions.Open(uri, language, []byte(text))
	if err != nil {
		return errResult(fmt.Sprintf("open document: %v", err)), nil
	}

	rootID := ""
	if root := sess.Root(); root != nil {
		if id, ok := sess.Identity(root); ok {
			rootID = id
		}
	}
	return jsonResult(map[string]any{
		"uri":           uri,
		"language":      language,
		"root_identity": rootID,
		"identities":    len(sess.LiveIdentities()),
	}), nil
}

func (s *Server) handleUpdateDocument(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	sess := s.sessions.Get(uri)
	if sess == nil {
		return errResult(fmt.Sprintf("no open session: %s", uri)), nil
	}

	stats, err := sess.Update([]byte(getStringArg(args, "text")))
	if err != nil {
		return errResult(fmt.Sprintf("update: %v", err)), nil
	}

	// Placements of vanished identities go with them.
	if err := s.store.PruneLayouts(uri, sess.LiveIdentities()); err != nil {
		return errResult(fmt.Sprintf("prune layouts: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"uri":   uri,
		"nodes": stats.Total(),
		"exact": stats.Exact,
		"fuzzy": stats.Fuzzy,
		"fresh": stats.Fresh,
	}), nil
}

func (s *Server) handleCloseDocument(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	if err := s.sessions.Close(uri); err != nil {
		return errResult(fmt.Sprintf("close: %v", err)), nil
	}
	return jsonResult(map[string]any{"uri": uri, "closed": true}), nil
}

func (s *Server) handleResolveIdentity(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	sess := s.sessions.Get(uri)
	if sess == nil {
		return errResult(fmt.Sprintf("no open session: %s", uri)), nil
	}

	id := getStringArg(args, "identity")
	node, ok := sess.Node(id)
	if !ok {
		return errResult(fmt.Sprintf("identity not resolvable in current generation: %s", id)), nil
	}

	return jsonResult(map[string]any{
		"identity":    id,
		"ast_type":    node.Type(),
		"name":        node.Name(),
		"property":    node.Field(),
		"offset":      node.StartByte(),
		"child_count": len(node.Children()),
	}), nil
}

func (s *Server) handleListIdentities(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	sess := s.sessions.Get(uri)
	if sess == nil {
		return errResult(fmt.Sprintf("no open session: %s", uri)), nil
	}

	reg := sess.Registry()
	out := make(map[string]identity.Fingerprint)
	for id := range sess.LiveIdentities() {
		if fp, ok := reg.Fingerprint(id); ok {
			out[id] = fp
		}
	}
	return jsonResult(map[string]any{"uri": uri, "identities": out}), nil
}

func (s *Server) handleSetLayout(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	id := getStringArg(args, "identity")
	if uri == "" || id == "" {
		return errResult("uri and identity are required"), nil
	}

	l := store.Layout{
		URI:      uri,
		Identity: id,
		X:        getFloatArg(args, "x", 0),
		Y:        getFloatArg(args, "y", 0),
		Width:    getFloatArg(args, "width", 0),
		Height:   getFloatArg(args, "height", 0),
	}
	if err := s.store.SetLayout(l); err != nil {
		return errResult(fmt.Sprintf("set layout: %v", err)), nil
	}
	return jsonResult(map[string]any{"uri": uri, "identity": id, "stored": true}), nil
}

func (s *Server) handleGetLayout(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	id := getStringArg(args, "identity")
	l, err := s.store.GetLayout(uri, id)
	if err != nil {
		return errResult(fmt.Sprintf("get layout: %v", err)), nil
	}
	if l == nil {
		return errResult(fmt.Sprintf("no layout stored for %s", id)), nil
	}
	return jsonResult(l), nil
}

func (s *Server) handleExportState(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	sess := s.sessions.Get(uri)
	if sess == nil {
		return errResult(fmt.Sprintf("no open session: %s", uri)), nil
	}
	return jsonResult(sess.Registry().Export()), nil
}

func (s *Server) handleMigrateLegacyLayouts(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	uri := getStringArg(args, "uri")
	legacyPath := getStringArg(args, "legacy_db_path")
	if legacyPath == "" {
		return errResult("legacy_db_path is required"), nil
	}

	sess := s.sessions.Get(uri)
	if sess == nil {
		return errResult(fmt.Sprintf("no open session: %s", uri)), nil
	}
	root := sess.Root()
	if root == nil {
		return errResult("document has not been reconciled yet"), nil
	}

	mapping := sess.Registry().BuildLegacyIDMapping(root, identity.OffsetLegacyID)
	migrated, err := s.store.MigrateLegacyLayouts(legacyPath, uri, mapping)
	if err != nil {
		return errResult(fmt.Sprintf("migrate: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"uri":      uri,
		"mapped":   len(mapping),
		"migrated": migrated,
	}), nil
}
