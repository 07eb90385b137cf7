package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
)

// utc normalizes a timestamp before binding. SQLite compares DATETIME text
// lexically and the driver preserves zone offsets, so mixed-offset rows
// would misorder; every bound time must carry the same offset.
func utc(t time.Time) time.Time {
	return t.UTC()
}

// insertNote writes a note row plus its tags and outgoing links inside tx.
// Existing rows for the same id must already be gone.
func insertNote(tx *sql.Tx, n *models.Note) error {
	meta := "{}"
	if len(n.Metadata) > 0 {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("index: marshal metadata: %w", err)
		}
		meta = string(raw)
	}

	_, err := tx.Exec(`
		INSERT INTO notes (id, title, content, note_type, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, string(n.NoteType), meta, utc(n.CreatedAt), utc(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("index: insert note: %w", err)
	}

	for _, t := range n.Tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO note_tags (note_id, tag) VALUES (?, ?)`,
			n.ID, t.Name); err != nil {
			return fmt.Errorf("index: insert tag: %w", err)
		}
	}

	for _, l := range n.Links {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO links (source_id, target_id, link_type, description, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, n.ID, l.TargetID, string(l.LinkType), l.Description, utc(l.CreatedAt)); err != nil {
			return fmt.Errorf("index: insert link: %w", err)
		}
	}
	return nil
}

// deleteNoteRows removes a note's row, tags, and outgoing links inside tx.
func deleteNoteRows(tx *sql.Tx, id string) error {
	for _, q := range []string{
		`DELETE FROM links WHERE source_id = ?`,
		`DELETE FROM note_tags WHERE note_id = ?`,
		`DELETE FROM notes WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("index: delete note rows: %w", err)
		}
	}
	return nil
}

// UpsertNote replaces a note's row, tags, and outgoing links in one
// transaction.
func (db *DB) UpsertNote(n *models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := deleteNoteRows(tx, n.ID); err != nil {
		return err
	}
	if err := insertNote(tx, n); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a note and its tags and outgoing links.
func (db *DB) DeleteNote(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteNoteRows(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceAll wipes the index and repopulates it with exactly the given
// notes in one transaction. This backs the rebuild operation and is the
// only way file/index divergence is resolved.
func (db *DB) ReplaceAll(notes []*models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, q := range []string{
		`DELETE FROM links`,
		`DELETE FROM note_tags`,
		`DELETE FROM notes`,
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("index: wipe: %w", err)
		}
	}
	for _, n := range notes {
		if err := insertNote(tx, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetNote returns a note by id, or nil when absent.
func (db *DB) GetNote(id string) (*models.Note, error) {
	notes, err := db.queryNotes(`WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, nil
	}
	return notes[0], nil
}

// GetByTitle returns the note with the exact title, or nil when absent.
// When several notes share a title the oldest (lowest id) wins.
func (db *DB) GetByTitle(title string) (*models.Note, error) {
	notes, err := db.queryNotes(`WHERE title = ? ORDER BY id LIMIT 1`, title)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, nil
	}
	return notes[0], nil
}

// AllNotes returns every indexed note ordered by id.
func (db *DB) AllNotes() ([]*models.Note, error) {
	return db.queryNotes(`ORDER BY id`)
}

// FindByTag returns every note carrying the tag, ordered by id.
func (db *DB) FindByTag(tag string) ([]*models.Note, error) {
	return db.queryNotes(
		`WHERE id IN (SELECT note_id FROM note_tags WHERE tag = ?) ORDER BY id`,
		models.NormalizeTag(tag))
}

// Search evaluates the structured criteria against the index. All set
// fields combine with AND; results are ordered by id.
func (db *DB) Search(c models.SearchCriteria) ([]*models.Note, error) {
	var conds []string
	var args []any

	if c.Title != "" {
		conds = append(conds, `LOWER(title) LIKE ?`)
		args = append(args, "%"+strings.ToLower(c.Title)+"%")
	}
	if c.Content != "" {
		conds = append(conds, `LOWER(content) LIKE ?`)
		args = append(args, "%"+strings.ToLower(c.Content)+"%")
	}
	if c.NoteType != "" {
		conds = append(conds, `note_type = ?`)
		args = append(args, string(c.NoteType))
	}
	for _, tag := range c.Tags {
		conds = append(conds, `id IN (SELECT note_id FROM note_tags WHERE tag = ?)`)
		args = append(args, models.NormalizeTag(tag))
	}
	if c.CreatedAfter != nil {
		conds = append(conds, `created_at >= ?`)
		args = append(args, utc(*c.CreatedAfter))
	}
	if c.CreatedBefore != nil {
		conds = append(conds, `created_at <= ?`)
		args = append(args, utc(*c.CreatedBefore))
	}
	if c.UpdatedAfter != nil {
		conds = append(conds, `updated_at >= ?`)
		args = append(args, utc(*c.UpdatedAfter))
	}
	if c.UpdatedBefore != nil {
		conds = append(conds, `updated_at <= ?`)
		args = append(args, utc(*c.UpdatedBefore))
	}
	if c.LinkedTo != "" {
		conds = append(conds, `id IN (SELECT source_id FROM links WHERE target_id = ?)`)
		args = append(args, c.LinkedTo)
	}
	if c.LinkedFrom != "" {
		conds = append(conds, `id IN (SELECT target_id FROM links WHERE source_id = ?)`)
		args = append(args, c.LinkedFrom)
	}

	clause := ""
	if len(conds) > 0 {
		clause = "WHERE " + strings.Join(conds, " AND ")
	}
	return db.queryNotes(clause+` ORDER BY id`, args...)
}

// Backlinks returns the ids of notes holding a link targeting targetID.
func (db *DB) Backlinks(targetID string) ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT DISTINCT source_id FROM links WHERE target_id = ? ORDER BY source_id`, targetID)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AllTags returns every distinct tag in use. Sorting is a caller concern.
func (db *DB) AllTags() ([]models.Tag, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT tag FROM note_tags`)
	if err != nil {
		return nil, fmt.Errorf("index: all tags: %w", err)
	}
	defer rows.Close()

	var out []models.Tag
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, models.Tag{Name: name})
	}
	return out, rows.Err()
}

// queryNotes runs a SELECT over the notes table with the given tail clause
// and hydrates tags and links for every hit.
func (db *DB) queryNotes(clause string, args ...any) ([]*models.Note, error) {
	q := `SELECT id, title, content, note_type, metadata, created_at, updated_at FROM notes ` + clause
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		var n models.Note
		var noteType, meta string
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &noteType, &meta,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("index: scan note: %w", err)
		}
		n.NoteType = models.NoteType(noteType)
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
				return nil, fmt.Errorf("index: unmarshal metadata: %w", err)
			}
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := db.attachTags(notes); err != nil {
		return nil, err
	}
	if err := db.attachLinks(notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (db *DB) attachTags(notes []*models.Note) error {
	if len(notes) == 0 {
		return nil
	}
	byID := make(map[string]*models.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}
	rows, err := db.conn.Query(`SELECT note_id, tag FROM note_tags ORDER BY tag`)
	if err != nil {
		return fmt.Errorf("index: load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return err
		}
		if n, ok := byID[id]; ok {
			n.Tags = append(n.Tags, models.Tag{Name: tag})
		}
	}
	return rows.Err()
}

func (db *DB) attachLinks(notes []*models.Note) error {
	if len(notes) == 0 {
		return nil
	}
	byID := make(map[string]*models.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}
	rows, err := db.conn.Query(
		`SELECT source_id, target_id, link_type, description, created_at FROM links ORDER BY target_id`)
	if err != nil {
		return fmt.Errorf("index: load links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Link
		var linkType string
		var created time.Time
		if err := rows.Scan(&l.SourceID, &l.TargetID, &linkType, &l.Description, &created); err != nil {
			return err
		}
		l.LinkType = models.LinkType(linkType)
		l.CreatedAt = created
		if n, ok := byID[l.SourceID]; ok {
			n.Links = append(n.Links, l)
		}
	}
	return rows.Err()
}
