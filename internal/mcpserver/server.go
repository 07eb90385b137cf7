// Package mcpserver exposes the Zettelkasten over the Model Context
// Protocol: tools for note and link operations, resources for browsing,
// and prompts guiding knowledge work.
package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/search"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zettel"
)

const serverVersion = "1.2.1"

// Server wraps the MCP server with the Zettelkasten tools.
type Server struct {
	mcp    *server.MCPServer
	zettel *zettel.Service
	search *search.Service
}

// New creates an MCP server with all tools, resources, and prompts
// registered.
func New(zettelSvc *zettel.Service, searchSvc *search.Service) *Server {
	s := &Server{zettel: zettelSvc, search: searchSvc}

	s.mcp = server.NewMCPServer(
		"zettelkasten-mcp",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("zk_create_note",
		mcp.WithDescription("Create a new atomic Zettelkasten note with a unique ID, content, and optional tags."),
		mcp.WithString("title", mcp.Required(), mcp.Description("The title of the note")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The main content of the note in markdown format")),
		mcp.WithString("note_type", mcp.Description("Type of note - one of: fleeting, literature, permanent, structure, hub (default: permanent)")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated list of tags for categorization")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("zk_get_note",
		mcp.WithDescription("Retrieve the full content and metadata of a note by its unique ID or title."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("The unique ID or exact title of the note to retrieve")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("zk_update_note",
		mcp.WithDescription("Update the title, content, type, or tags of an existing note."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("The unique ID of the note to update")),
		mcp.WithString("title", mcp.Description("New title for the note (optional)")),
		mcp.WithString("content", mcp.Description("New markdown content for the note (optional)")),
		mcp.WithString("note_type", mcp.Description("New note type - one of: fleeting, literature, permanent, structure, hub (optional)")),
		mcp.WithString("tags", mcp.Description("New comma-separated list of tags, or empty string to clear tags (optional)")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("zk_delete_note",
		mcp.WithDescription("Permanently delete a note and all its associated links from the Zettelkasten."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("The unique ID of the note to permanently delete")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("zk_create_link",
		mcp.WithDescription("Create a semantic link between two notes to build knowledge connections."),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("The unique ID of the source note")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("The unique ID of the target note")),
		mcp.WithString("link_type", mcp.Description("Type of semantic relationship - one of: reference, extends, refines, contradicts, questions, supports, related (default: reference)")),
		mcp.WithString("description", mcp.Description("Optional text describing the nature of this specific link")),
		mcp.WithBoolean("bidirectional", mcp.Description("If true, creates links in both directions")),
	), s.createLink)

	s.mcp.AddTool(mcp.NewTool("zk_remove_link",
		mcp.WithDescription("Remove an existing link between two notes."),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("The unique ID of the source note")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("The unique ID of the target note")),
		mcp.WithBoolean("bidirectional", mcp.Description("If true, removes links in both directions")),
	), s.removeLink)

	s.mcp.AddTool(mcp.NewTool("zk_search_notes",
		mcp.WithDescription("Search for notes using text queries, tags, or note type filters."),
		mcp.WithString("query", mcp.Description("Text to search for in note titles and content (optional)")),
		mcp.WithString("tags", mcp.Description("Comma-separated list of tags to filter results (optional)")),
		mcp.WithString("note_type", mcp.Description("Filter by note type - one of: fleeting, literature, permanent, structure, hub (optional)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results to return (default: 10)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("zk_get_linked_notes",
		mcp.WithDescription("Find all notes connected to a specific note through links."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("The unique ID of the note to find connections for")),
		mcp.WithString("direction", mcp.Description("Link direction to explore - one of: outgoing, incoming, both (default: both)")),
	), s.getLinkedNotes)

	s.mcp.AddTool(mcp.NewTool("zk_get_all_tags",
		mcp.WithDescription("Retrieve a complete list of all tags used across the Zettelkasten."),
	), s.getAllTags)

	s.mcp.AddTool(mcp.NewTool("zk_find_similar_notes",
		mcp.WithDescription("Discover notes with similar content using word-overlap similarity."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("The unique ID of the reference note to compare against")),
		mcp.WithNumber("threshold", mcp.Description("Minimum similarity score from 0.0 to 1.0 (default: 0.3)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of similar notes to return (default: 5)")),
	), s.findSimilarNotes)

	s.mcp.AddTool(mcp.NewTool("zk_find_central_notes",
		mcp.WithDescription("Identify the most connected notes that serve as knowledge hubs."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of central notes to return (default: 10)")),
	), s.findCentralNotes)

	s.mcp.AddTool(mcp.NewTool("zk_find_orphaned_notes",
		mcp.WithDescription("Find isolated notes that have no links to or from other notes."),
	), s.findOrphanedNotes)

	s.mcp.AddTool(mcp.NewTool("zk_list_notes_by_date",
		mcp.WithDescription("List notes created or modified within a specific date range."),
		mcp.WithString("start_date", mcp.Description("Start of date range in ISO format YYYY-MM-DD (optional)")),
		mcp.WithString("end_date", mcp.Description("End of date range in ISO format YYYY-MM-DD (optional)")),
		mcp.WithBoolean("use_updated", mcp.Description("If true, filter by modification date instead of creation date")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results to return (default: 10)")),
	), s.listNotesByDate)

	s.mcp.AddTool(mcp.NewTool("zk_rebuild_index",
		mcp.WithDescription("Rebuild the database index from markdown files after manual file edits."),
	), s.rebuildIndex)
}

// splitTags parses a comma-separated tag argument.
func splitTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func optString(req mcp.CallToolRequest, key string) (string, bool) {
	args := req.GetArguments()
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func optBool(req mcp.CallToolRequest, key string) bool {
	args := req.GetArguments()
	v, ok := args[key].(bool)
	return ok && v
}

func optFloat(req mcp.CallToolRequest, key string, def float64) float64 {
	args := req.GetArguments()
	if v, ok := args[key].(float64); ok {
		return v
	}
	return def
}

func optInt(req mcp.CallToolRequest, key string, def int) int {
	args := req.GetArguments()
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

// notePreview returns the first n characters of content on one line.
func notePreview(content string, n int) string {
	preview := strings.ReplaceAll(content, "\n", " ")
	if len(preview) > n {
		preview = preview[:n] + "..."
	}
	return preview
}

func tagNames(tags []models.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	noteTypeArg, ok := optString(req, "note_type")
	if !ok || noteTypeArg == "" {
		noteTypeArg = string(models.NoteTypePermanent)
	}
	noteType, err := models.ParseNoteType(noteTypeArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	if raw, ok := optString(req, "tags"); ok {
		tags = splitTags(raw)
	}

	note, err := s.zettel.CreateNote(ctx, title, content, noteType, tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note created successfully with ID: %s", note.ID)), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	note, err := s.zettel.GetNote(ctx, identifier)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if note == nil {
		note, err = s.zettel.GetNoteByTitle(ctx, identifier)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if note == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Note not found: %s", identifier)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", note.Title)
	fmt.Fprintf(&b, "ID: %s\n", note.ID)
	fmt.Fprintf(&b, "Type: %s\n", note.NoteType)
	fmt.Fprintf(&b, "Created: %s\n", note.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Updated: %s\n", note.UpdatedAt.Format(time.RFC3339))
	if len(note.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", tagNames(note.Tags))
	}
	fmt.Fprintf(&b, "\n%s\n", note.Content)
	if len(note.Links) > 0 {
		b.WriteString("\nLinks:\n")
		for _, l := range note.Links {
			fmt.Fprintf(&b, "- %s -> %s", l.LinkType, l.TargetID)
			if l.Description != "" {
				fmt.Fprintf(&b, " (%s)", l.Description)
			}
			b.WriteString("\n")
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var params zettel.UpdateNoteParams
	if v, ok := optString(req, "title"); ok && v != "" {
		params.Title = &v
	}
	if v, ok := optString(req, "content"); ok && v != "" {
		params.Content = &v
	}
	if v, ok := optString(req, "note_type"); ok && v != "" {
		noteType, err := models.ParseNoteType(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		params.NoteType = &noteType
	}
	// An explicit empty tags string clears the tag set.
	if v, ok := optString(req, "tags"); ok {
		tags := splitTags(v)
		params.Tags = &tags
	}

	note, err := s.zettel.UpdateNote(ctx, noteID, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note updated successfully: %s", note.ID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.zettel.DeleteNote(ctx, noteID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note deleted successfully: %s", noteID)), nil
}

func (s *Server) createLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	linkTypeArg, ok := optString(req, "link_type")
	if !ok || linkTypeArg == "" {
		linkTypeArg = string(models.LinkTypeReference)
	}
	linkType, err := models.ParseLinkType(linkTypeArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, _ := optString(req, "description")
	bidirectional := optBool(req, "bidirectional")

	if _, _, err := s.zettel.CreateLink(ctx, sourceID, targetID, linkType, description, bidirectional); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if bidirectional {
		return mcp.NewToolResultText(fmt.Sprintf("Bidirectional link created between %s and %s", sourceID, targetID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Link created from %s to %s", sourceID, targetID)), nil
}

func (s *Server) removeLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bidirectional := optBool(req, "bidirectional")

	if _, _, err := s.zettel.RemoveLink(ctx, sourceID, targetID, bidirectional); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if bidirectional {
		return mcp.NewToolResultText(fmt.Sprintf("Bidirectional link removed between %s and %s", sourceID, targetID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Link removed from %s to %s", sourceID, targetID)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := optString(req, "query")
	var tags []string
	if raw, ok := optString(req, "tags"); ok {
		tags = splitTags(raw)
	}

	var noteType models.NoteType
	if raw, ok := optString(req, "note_type"); ok && raw != "" {
		nt, err := models.ParseNoteType(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		noteType = nt
	}
	limit := optInt(req, "limit", 10)

	results, err := s.search.SearchCombined(ctx, query, tags, noteType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching notes found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matching notes:\n\n", len(results))
	for i, res := range results {
		note := res.Note
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, note.Title, note.ID)
		if len(note.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", tagNames(note.Tags))
		}
		fmt.Fprintf(&b, "   Created: %s\n", note.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "   Preview: %s\n\n", notePreview(note.Content, 150))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getLinkedNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dirArg, ok := optString(req, "direction")
	if !ok || dirArg == "" {
		dirArg = string(models.DirectionBoth)
	}
	direction, err := models.ParseLinkDirection(dirArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	linked, err := s.zettel.GetLinkedNotes(ctx, noteID, direction)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(linked) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s links found for note %s.", direction, noteID)), nil
	}

	source, err := s.zettel.GetNote(ctx, noteID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s linked notes for %s:\n\n", len(linked), direction, noteID)
	for i, note := range linked {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, note.Title, note.ID)
		if len(note.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", tagNames(note.Tags))
		}
		if source != nil {
			for _, l := range source.Links {
				if l.TargetID == note.ID {
					fmt.Fprintf(&b, "   Link type: %s\n", l.LinkType)
					if l.Description != "" {
						fmt.Fprintf(&b, "   Description: %s\n", l.Description)
					}
					break
				}
			}
		}
		for _, l := range note.Links {
			if l.TargetID == noteID {
				fmt.Fprintf(&b, "   Incoming link type: %s\n", l.LinkType)
				if l.Description != "" {
					fmt.Fprintf(&b, "   Description: %s\n", l.Description)
				}
				break
			}
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getAllTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.zettel.GetAllTags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("No tags found in the Zettelkasten."), nil
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d tags:\n\n", len(tags))
	for i, tag := range tags {
		fmt.Fprintf(&b, "%d. %s\n", i+1, tag.Name)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) findSimilarNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	threshold := optFloat(req, "threshold", 0.3)
	limit := optInt(req, "limit", 5)

	similar, err := s.zettel.FindSimilarNotes(ctx, noteID, threshold)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(similar) > limit {
		similar = similar[:limit]
	}
	if len(similar) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No similar notes found for %s with threshold %.2f.", noteID, threshold)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d similar notes for %s:\n\n", len(similar), noteID)
	for i, sn := range similar {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, sn.Note.Title, sn.Note.ID)
		fmt.Fprintf(&b, "   Similarity: %.2f\n", sn.Score)
		if len(sn.Note.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", tagNames(sn.Note.Tags))
		}
		fmt.Fprintf(&b, "   Preview: %s\n\n", notePreview(sn.Note.Content, 100))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) findCentralNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := optInt(req, "limit", 10)

	central, err := s.search.FindCentralNotes(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(central) == 0 {
		return mcp.NewToolResultText("No notes found with connections."), nil
	}

	var b strings.Builder
	b.WriteString("Central notes in the Zettelkasten (most connected):\n\n")
	for i, rn := range central {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, rn.Note.Title, rn.Note.ID)
		fmt.Fprintf(&b, "   Connections: %d\n", rn.Degree)
		if len(rn.Note.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", tagNames(rn.Note.Tags))
		}
		fmt.Fprintf(&b, "   Preview: %s\n\n", notePreview(rn.Note.Content, 100))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) findOrphanedNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orphans, err := s.search.FindOrphanedNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(orphans) == 0 {
		return mcp.NewToolResultText("No orphaned notes found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d orphaned notes:\n\n", len(orphans))
	for i, note := range orphans {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, note.Title, note.ID)
		if len(note.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", tagNames(note.Tags))
		}
		fmt.Fprintf(&b, "   Preview: %s\n\n", notePreview(note.Content, 100))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listNotesByDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var start, end *time.Time
	if raw, ok := optString(req, "start_date"); ok && raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error parsing date: %v", err)), nil
		}
		start = &t
	}
	if raw, ok := optString(req, "end_date"); ok && raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error parsing date: %v", err)), nil
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	useUpdated := optBool(req, "use_updated")
	limit := optInt(req, "limit", 10)

	notes, err := s.search.FindNotesByDateRange(ctx, start, end, useUpdated)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) > limit {
		notes = notes[:limit]
	}

	dateType, dateLabel := "created", "Created"
	if useUpdated {
		dateType, dateLabel = "updated", "Updated"
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No notes found %s in the given range.", dateType)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Notes %s (showing %d results):\n\n", dateType, len(notes))
	for i, note := range notes {
		date := note.CreatedAt
		if useUpdated {
			date = note.UpdatedAt
		}
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, note.Title, note.ID)
		fmt.Fprintf(&b, "   %s: %s\n", dateLabel, date.Format("2006-01-02 15:04"))
		if len(note.Tags) > 0 {
			fmt.Fprintf(&b, "   Tags: %s\n", tagNames(note.Tags))
		}
		fmt.Fprintf(&b, "   Preview: %s\n\n", notePreview(note.Content, 100))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) rebuildIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	before, err := s.zettel.GetAllNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.zettel.RebuildIndex(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	after, err := s.zettel.GetAllNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Database index rebuilt successfully.\nNotes processed: %d\nChange in note count: %+d",
		len(after), len(after)-len(before))), nil
}
