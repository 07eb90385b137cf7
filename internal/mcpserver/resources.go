package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(
		mcp.NewResource("zettelkasten://notes/all", "All Notes",
			mcp.WithResourceDescription("Complete list of all notes in the Zettelkasten with basic metadata."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readAllNotesResource,
	)

	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate("zettelkasten://notes/{note_id}", "Note Content",
			mcp.WithTemplateDescription("Full content and metadata of a specific note."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.readNoteResource,
	)

	s.mcp.AddResource(
		mcp.NewResource("zettelkasten://tags", "Tag Index",
			mcp.WithResourceDescription("Complete list of all tags used in the Zettelkasten."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTagsResource,
	)
}

func (s *Server) readAllNotesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	notes, err := s.zettel.GetAllNotes(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if len(notes) == 0 {
		b.WriteString("No notes found in the Zettelkasten.")
	} else {
		fmt.Fprintf(&b, "# All Notes in Zettelkasten (%d total)\n\n", len(notes))
		for _, note := range notes {
			fmt.Fprintf(&b, "## %s\n", note.Title)
			fmt.Fprintf(&b, "- **ID**: %s\n", note.ID)
			fmt.Fprintf(&b, "- **Type**: %s\n", note.NoteType)
			fmt.Fprintf(&b, "- **Created**: %s\n", note.CreatedAt.Format("2006-01-02 15:04"))
			if len(note.Tags) > 0 {
				fmt.Fprintf(&b, "- **Tags**: %s\n", tagNames(note.Tags))
			}
			if len(note.Links) > 0 {
				fmt.Fprintf(&b, "- **Links**: %d outgoing\n", len(note.Links))
			}
			b.WriteString("\n")
		}
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		},
	}, nil
}

func (s *Server) readNoteResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	noteID := strings.TrimPrefix(req.Params.URI, "zettelkasten://notes/")

	note, err := s.zettel.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if note == nil {
		fmt.Fprintf(&b, "Note not found: %s", noteID)
	} else {
		fmt.Fprintf(&b, "# %s\n\n", note.Title)
		fmt.Fprintf(&b, "**ID**: %s  \n", note.ID)
		fmt.Fprintf(&b, "**Type**: %s  \n", note.NoteType)
		fmt.Fprintf(&b, "**Created**: %s  \n", note.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "**Updated**: %s  \n", note.UpdatedAt.Format(time.RFC3339))
		if len(note.Tags) > 0 {
			fmt.Fprintf(&b, "**Tags**: %s  \n", tagNames(note.Tags))
		}
		fmt.Fprintf(&b, "\n---\n\n%s\n", note.Content)
		if len(note.Links) > 0 {
			fmt.Fprintf(&b, "\n## Links (%d)\n\n", len(note.Links))
			for _, l := range note.Links {
				targetTitle := "Unknown"
				if target, err := s.zettel.GetNote(ctx, l.TargetID); err == nil && target != nil {
					targetTitle = target.Title
				}
				fmt.Fprintf(&b, "- **%s** -> [%s](zettelkasten://notes/%s)\n", l.LinkType, targetTitle, l.TargetID)
				if l.Description != "" {
					fmt.Fprintf(&b, "  - %s\n", l.Description)
				}
			}
		}
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		},
	}, nil
}

func (s *Server) readTagsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tags, err := s.zettel.GetAllTags(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if len(tags) == 0 {
		b.WriteString("No tags found in the Zettelkasten.")
	} else {
		sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
		fmt.Fprintf(&b, "# Tags in Zettelkasten (%d total)\n\n", len(tags))
		for _, tag := range tags {
			fmt.Fprintf(&b, "- %s\n", tag.Name)
		}
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		},
	}, nil
}
