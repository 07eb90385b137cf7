// Package codec maps notes to and from their canonical Markdown file form.
//
// The canonical layout is a title heading, a Metadata section, a Content
// section, and a Links section:
//
//	# Title
//
//	## Metadata
//	- Created: 2024-01-15T10:30:00Z
//	- Type: permanent
//	- Tags: zettelkasten, method
//
//	## Content
//
//	Body text in Markdown.
//
//	## Links
//
//	- extends [[20240115T103000]] optional description
package codec

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/apperr"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zid"
)

const (
	headingMetadata = "## Metadata"
	headingContent  = "## Content"
	headingLinks    = "## Links"
)

var linkLineRe = regexp.MustCompile(`^- ([a-z]+) \[\[([^\]]+)\]\](?: (.*))?$`)

// Result is the outcome of decoding a note file. The note's ID and
// UpdatedAt are not part of the file content; callers derive them from the
// filename and modification time.
type Result struct {
	Note *models.Note
	// Warnings records link lines that were skipped because they did not
	// match the link-line shape. Decoding continues past them so a rebuild
	// survives partial manual edits.
	Warnings []string
}

// Encode renders a note into its canonical file form.
func Encode(n *models.Note) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", n.Title)

	b.WriteString(headingMetadata + "\n")
	fmt.Fprintf(&b, "- Created: %s\n", n.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Type: %s\n", n.NoteType)
	names := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		names[i] = t.Name
	}
	fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(names, ", "))
	for k, v := range n.Metadata {
		fmt.Fprintf(&b, "- %s: %s\n", k, v)
	}

	b.WriteString("\n" + headingContent + "\n\n")
	b.WriteString(strings.TrimRight(n.Content, "\n"))
	b.WriteString("\n\n" + headingLinks + "\n")
	for _, l := range n.Links {
		if l.Description != "" {
			fmt.Fprintf(&b, "- %s [[%s]] %s\n", l.LinkType, l.TargetID, l.Description)
		} else {
			fmt.Fprintf(&b, "- %s [[%s]]\n", l.LinkType, l.TargetID)
		}
	}

	return []byte(b.String())
}

// Decode parses canonical file content back into a note. Hand-edited files
// are tolerated: a missing Links section means no links, a missing Tags line
// means no tags, and unparseable link lines are skipped with a warning. A
// link line whose type is not a known enum value is a hard decode failure.
func Decode(data []byte) (*Result, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	n := &models.Note{NoteType: models.NoteTypePermanent}
	res := &Result{Note: n}

	// Section tracking: 0 preamble, 1 metadata, 2 content, 3 links.
	section := 0
	var content []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == headingMetadata:
			section = 1
			continue
		case trimmed == headingContent:
			section = 2
			continue
		case trimmed == headingLinks:
			section = 3
			continue
		}

		switch section {
		case 0:
			if n.Title == "" && strings.HasPrefix(trimmed, "# ") {
				n.Title = strings.TrimSpace(trimmed[2:])
			}
		case 1:
			if err := decodeMetadataLine(n, trimmed); err != nil {
				return nil, err
			}
		case 2:
			content = append(content, line)
		case 3:
			if trimmed == "" {
				continue
			}
			link, ok, err := decodeLinkLine(trimmed)
			if err != nil {
				return nil, err
			}
			if !ok {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("skipped malformed link line: %q", trimmed))
				continue
			}
			n.Links = append(n.Links, link)
		}
	}

	n.Content = strings.Trim(strings.Join(content, "\n"), "\n")
	return res, nil
}

// decodeMetadataLine handles one "- Key: value" line of the Metadata section.
// Unknown keys land in the note's open metadata map.
func decodeMetadataLine(n *models.Note, line string) error {
	if !strings.HasPrefix(line, "- ") {
		return nil
	}
	key, value, found := strings.Cut(line[2:], ":")
	if !found {
		return nil
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "Created":
		// The value itself contains colons, so re-cut from the raw line.
		raw := strings.TrimSpace(strings.TrimPrefix(line[2:], "Created:"))
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			n.CreatedAt = ts
		}
	case "Type":
		nt, err := models.ParseNoteType(value)
		if err != nil {
			return fmt.Errorf("%w: note type %q in metadata", apperr.ErrStorage, value)
		}
		n.NoteType = nt
	case "Tags":
		if value != "" {
			n.Tags = models.NewTags(strings.Split(value, ","))
		}
	default:
		if n.Metadata == nil {
			n.Metadata = make(map[string]string)
		}
		n.Metadata[key] = value
	}
	return nil
}

// decodeLinkLine parses "- link_type [[target]] description". The second
// return value is false when the line does not match the shape at all; an
// unknown link type on a matching line is an error.
func decodeLinkLine(line string) (models.Link, bool, error) {
	m := linkLineRe.FindStringSubmatch(line)
	if m == nil {
		return models.Link{}, false, nil
	}
	lt, err := models.ParseLinkType(m[1])
	if err != nil {
		return models.Link{}, false,
			fmt.Errorf("%w: unknown link type %q", apperr.ErrStorage, m[1])
	}
	target := strings.TrimSpace(m[2])
	if !zid.Valid(target) {
		return models.Link{}, false, nil
	}
	return models.Link{
		TargetID:    target,
		LinkType:    lt,
		Description: strings.TrimSpace(m[3]),
	}, true, nil
}
