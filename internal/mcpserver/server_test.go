package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/testutil"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zettel"
)

func testServer(t *testing.T) (*Server, *zettel.Service) {
	t.Helper()
	zettelSvc, searchSvc, _ := testutil.TestServices(t)
	return New(zettelSvc, searchSvc), zettelSvc
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// extractID pulls the note id out of a create result.
func extractID(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(t, r)
	idx := strings.LastIndex(text, ": ")
	if idx < 0 {
		t.Fatalf("no id in result %q", text)
	}
	return text[idx+2:]
}

func createTestNote(t *testing.T, srv *Server, title string) string {
	t.Helper()
	r, err := srv.createNote(context.Background(), toolRequest("zk_create_note", map[string]any{
		"title":   title,
		"content": "content of " + title,
	}))
	if err != nil {
		t.Fatalf("createNote: %v", err)
	}
	if r.IsError {
		t.Fatalf("createNote result: %s", resultText(t, r))
	}
	return extractID(t, r)
}

func TestCreateAndGetNote(t *testing.T) {
	srv, _ := testServer(t)
	ctx := context.Background()

	r, err := srv.createNote(ctx, toolRequest("zk_create_note", map[string]any{
		"title":     "Atomic Notes",
		"content":   "One idea per note.",
		"note_type": "permanent",
		"tags":      "zettelkasten, method",
	}))
	if err != nil {
		t.Fatalf("createNote: %v", err)
	}
	id := extractID(t, r)

	r, err = srv.getNote(ctx, toolRequest("zk_get_note", map[string]any{"identifier": id}))
	if err != nil {
		t.Fatalf("getNote: %v", err)
	}
	text := resultText(t, r)
	for _, want := range []string{"# Atomic Notes", "ID: " + id, "Type: permanent", "Tags: zettelkasten, method", "One idea per note."} {
		if !strings.Contains(text, want) {
			t.Errorf("get result missing %q:\n%s", want, text)
		}
	}

	// Title lookup works through the same tool.
	r, _ = srv.getNote(ctx, toolRequest("zk_get_note", map[string]any{"identifier": "Atomic Notes"}))
	if !strings.Contains(resultText(t, r), "ID: "+id) {
		t.Errorf("title lookup failed: %s", resultText(t, r))
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r, err := srv.getNote(context.Background(), toolRequest("zk_get_note", map[string]any{"identifier": "20240115T103000"}))
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsError {
		t.Errorf("expected error result, got %s", resultText(t, r))
	}
}

func TestCreateNoteInvalidType(t *testing.T) {
	srv, _ := testServer(t)
	r, err := srv.createNote(context.Background(), toolRequest("zk_create_note", map[string]any{
		"title": "T", "content": "c", "note_type": "banana",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsError {
		t.Error("expected error result for invalid note type")
	}
}

func TestUpdateNote(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	id := createTestNote(t, srv, "Before")

	r, err := srv.updateNote(ctx, toolRequest("zk_update_note", map[string]any{
		"note_id": id,
		"title":   "After",
		"tags":    "fresh",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if r.IsError {
		t.Fatalf("update failed: %s", resultText(t, r))
	}

	note, _ := svc.GetNote(ctx, id)
	if note.Title != "After" {
		t.Errorf("title = %q", note.Title)
	}
	if len(note.Tags) != 1 || note.Tags[0].Name != "fresh" {
		t.Errorf("tags = %v", note.Tags)
	}
	if note.Content != "content of Before" {
		t.Errorf("content changed: %q", note.Content)
	}
}

func TestDeleteNote(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	id := createTestNote(t, srv, "Doomed")

	r, err := srv.deleteNote(ctx, toolRequest("zk_delete_note", map[string]any{"note_id": id}))
	if err != nil {
		t.Fatal(err)
	}
	if r.IsError {
		t.Fatalf("delete failed: %s", resultText(t, r))
	}
	if note, _ := svc.GetNote(ctx, id); note != nil {
		t.Error("note still present")
	}
}

func TestLinkTools(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	a := createTestNote(t, srv, "A")
	b := createTestNote(t, srv, "B")

	r, err := srv.createLink(ctx, toolRequest("zk_create_link", map[string]any{
		"source_id": a, "target_id": b, "link_type": "extends", "bidirectional": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if r.IsError {
		t.Fatalf("createLink failed: %s", resultText(t, r))
	}

	noteA, _ := svc.GetNote(ctx, a)
	noteB, _ := svc.GetNote(ctx, b)
	if !noteA.HasLink(b, models.LinkTypeExtends) || !noteB.HasLink(a, models.LinkTypeExtends) {
		t.Error("links not mirrored")
	}

	// Duplicate is surfaced as a tool error, not a Go error.
	r, err = srv.createLink(ctx, toolRequest("zk_create_link", map[string]any{
		"source_id": a, "target_id": b, "link_type": "extends",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsError {
		t.Error("expected conflict error result")
	}

	r, err = srv.getLinkedNotes(ctx, toolRequest("zk_get_linked_notes", map[string]any{"note_id": a}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, r), "ID: "+b) {
		t.Errorf("linked notes missing target: %s", resultText(t, r))
	}

	r, err = srv.removeLink(ctx, toolRequest("zk_remove_link", map[string]any{
		"source_id": a, "target_id": b, "bidirectional": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if r.IsError {
		t.Fatalf("removeLink failed: %s", resultText(t, r))
	}
	noteA, _ = svc.GetNote(ctx, a)
	if len(noteA.Links) != 0 {
		t.Errorf("links remain: %v", noteA.Links)
	}
}

func TestSearchNotesTool(t *testing.T) {
	srv, _ := testServer(t)
	ctx := context.Background()
	createTestNote(t, srv, "Concurrency Patterns")
	createTestNote(t, srv, "Bread Baking")

	r, err := srv.searchNotes(ctx, toolRequest("zk_search_notes", map[string]any{"query": "concurrency"}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, r)
	if !strings.Contains(text, "Concurrency Patterns") {
		t.Errorf("search missing hit: %s", text)
	}
	if strings.Contains(text, "Bread Baking") {
		t.Errorf("search over-matched: %s", text)
	}

	r, _ = srv.searchNotes(ctx, toolRequest("zk_search_notes", map[string]any{"query": "nonexistent"}))
	if resultText(t, r) != "No matching notes found." {
		t.Errorf("empty search = %q", resultText(t, r))
	}
}

func TestAnalyticsTools(t *testing.T) {
	srv, _ := testServer(t)
	ctx := context.Background()
	a := createTestNote(t, srv, "A")
	b := createTestNote(t, srv, "B")
	createTestNote(t, srv, "Orphan")
	_, _ = srv.createLink(ctx, toolRequest("zk_create_link", map[string]any{"source_id": a, "target_id": b}))

	r, err := srv.findCentralNotes(ctx, toolRequest("zk_find_central_notes", map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, r), "Connections: 1") {
		t.Errorf("central = %s", resultText(t, r))
	}

	r, err = srv.findOrphanedNotes(ctx, toolRequest("zk_find_orphaned_notes", map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, r), "Orphan") {
		t.Errorf("orphans = %s", resultText(t, r))
	}

	r, err = srv.listNotesByDate(ctx, toolRequest("zk_list_notes_by_date", map[string]any{"start_date": "2000-01-01"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, r), "showing 3 results") {
		t.Errorf("by date = %s", resultText(t, r))
	}

	r, _ = srv.listNotesByDate(ctx, toolRequest("zk_list_notes_by_date", map[string]any{"start_date": "junk"}))
	if !r.IsError {
		t.Error("expected error for bad date")
	}
}

func TestGetAllTagsTool(t *testing.T) {
	srv, _ := testServer(t)
	ctx := context.Background()

	r, err := srv.getAllTags(ctx, toolRequest("zk_get_all_tags", map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if resultText(t, r) != "No tags found in the Zettelkasten." {
		t.Errorf("empty tags = %q", resultText(t, r))
	}

	_, _ = srv.createNote(ctx, toolRequest("zk_create_note", map[string]any{
		"title": "Tagged", "content": "c", "tags": "beta, alpha",
	}))
	r, _ = srv.getAllTags(ctx, toolRequest("zk_get_all_tags", map[string]any{}))
	text := resultText(t, r)
	if !strings.Contains(text, "alpha") || !strings.Contains(text, "beta") {
		t.Errorf("tags = %s", text)
	}
	if strings.Index(text, "alpha") > strings.Index(text, "beta") {
		t.Errorf("tags not sorted: %s", text)
	}
}

func TestFindSimilarNotesTool(t *testing.T) {
	srv, _ := testServer(t)
	ctx := context.Background()

	ref, _ := srv.createNote(ctx, toolRequest("zk_create_note", map[string]any{
		"title": "Goroutines", "content": "goroutines channels select scheduling",
	}))
	refID := extractID(t, ref)
	_, _ = srv.createNote(ctx, toolRequest("zk_create_note", map[string]any{
		"title": "Channels", "content": "channels select goroutines buffering",
	}))

	r, err := srv.findSimilarNotes(ctx, toolRequest("zk_find_similar_notes", map[string]any{"note_id": refID}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, r)
	if !strings.Contains(text, "Channels") || !strings.Contains(text, "Similarity:") {
		t.Errorf("similar = %s", text)
	}
}

func TestRebuildIndexTool(t *testing.T) {
	srv, _ := testServer(t)
	ctx := context.Background()
	createTestNote(t, srv, "Persisted")

	r, err := srv.rebuildIndex(ctx, toolRequest("zk_rebuild_index", map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, r)
	if !strings.Contains(text, "Notes processed: 1") {
		t.Errorf("rebuild = %s", text)
	}
}

func TestResources(t *testing.T) {
	srv, _ := testServer(t)
	ctx := context.Background()
	id := createTestNote(t, srv, "Resourceful")

	readReq := mcp.ReadResourceRequest{}
	readReq.Params.URI = "zettelkasten://notes/all"
	contents, err := srv.readAllNotesResource(ctx, readReq)
	if err != nil {
		t.Fatal(err)
	}
	all := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(all, "Resourceful") {
		t.Errorf("all notes = %s", all)
	}

	readReq.Params.URI = "zettelkasten://notes/" + id
	contents, err = srv.readNoteResource(ctx, readReq)
	if err != nil {
		t.Fatal(err)
	}
	one := contents[0].(mcp.TextResourceContents).Text
	if !strings.Contains(one, "# Resourceful") {
		t.Errorf("note resource = %s", one)
	}
}

func TestRequiredArgumentMissing(t *testing.T) {
	srv, _ := testServer(t)
	r, err := srv.createNote(context.Background(), toolRequest("zk_create_note", map[string]any{"title": "only"}))
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsError {
		t.Error("expected error result for missing content")
	}
}
