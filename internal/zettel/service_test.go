package zettel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal/apperr"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/models"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/testutil"
	"github.com/Liam-Deacon/zettelkasten-mcp/internal/zettel"
)

func testService(t *testing.T) *zettel.Service {
	t.Helper()
	svc, _, _ := testutil.TestServices(t)
	return svc
}

func create(t *testing.T, svc *zettel.Service, title string, tags ...string) *models.Note {
	t.Helper()
	n, err := svc.CreateNote(context.Background(), title, "content of "+title, models.NoteTypePermanent, tags)
	if err != nil {
		t.Fatalf("CreateNote(%q): %v", title, err)
	}
	return n
}

func TestCreateNoteValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "", "body", models.NoteTypePermanent, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty title err = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateNote(ctx, "T", "body", models.NoteType("banana"), nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad type err = %v, want ErrValidation", err)
	}
}

func TestCreateNoteNormalizesTags(t *testing.T) {
	svc := testService(t)
	n := create(t, svc, "Tagged", " Go ", "go", "GO", "Method", "")

	if len(n.Tags) != 2 {
		t.Fatalf("tags = %v", n.Tags)
	}
	if n.Tags[0].Name != "go" || n.Tags[1].Name != "method" {
		t.Errorf("tags = %v", n.Tags)
	}
}

func TestUpdateNotePartial(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	n := create(t, svc, "Original", "keep-tag")

	newContent := "rewritten"
	updated, err := svc.UpdateNote(ctx, n.ID, zettel.UpdateNoteParams{Content: &newContent})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Content != "rewritten" {
		t.Errorf("content = %q", updated.Content)
	}
	if updated.Title != "Original" {
		t.Errorf("title changed: %q", updated.Title)
	}
	if len(updated.Tags) != 1 {
		t.Errorf("tags changed: %v", updated.Tags)
	}

	// An explicit empty tag slice clears tags.
	empty := []string{}
	updated, err = svc.UpdateNote(ctx, n.ID, zettel.UpdateNoteParams{Tags: &empty})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want cleared", updated.Tags)
	}
}

func TestUpdateNoteMissing(t *testing.T) {
	svc := testService(t)
	title := "x"
	_, err := svc.UpdateNote(context.Background(), "20240115T103000", zettel.UpdateNoteParams{Title: &title})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateLink(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "A")
	b := create(t, svc, "B")

	source, _, err := svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeExtends, "builds on", false)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if !source.HasLink(b.ID, models.LinkTypeExtends) {
		t.Error("link missing on source")
	}

	// Same (source, target, type) again is a conflict.
	_, _, err = svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeExtends, "", false)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate link err = %v, want ErrConflict", err)
	}

	// A different type between the same notes is fine.
	if _, _, err = svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeQuestions, "", false); err != nil {
		t.Errorf("different type err = %v", err)
	}
}

func TestCreateLinkMissingNotes(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "A")

	if _, _, err := svc.CreateLink(ctx, a.ID, "20000101T000000", models.LinkTypeReference, "", false); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing target err = %v, want ErrNotFound", err)
	}
	if _, _, err := svc.CreateLink(ctx, "20000101T000000", a.ID, models.LinkTypeReference, "", false); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing source err = %v, want ErrNotFound", err)
	}
}

func TestCreateLinkBidirectional(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "A")
	b := create(t, svc, "B")

	source, target, err := svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeRelated, "", true)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if !source.HasLink(b.ID, models.LinkTypeRelated) {
		t.Error("forward link missing")
	}
	if !target.HasLink(a.ID, models.LinkTypeRelated) {
		t.Error("mirrored link missing")
	}
}

func TestCreateSelfLinkBidirectional(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "Self")

	source, _, err := svc.CreateLink(ctx, a.ID, a.ID, models.LinkTypeRelated, "", true)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if len(source.Links) != 1 {
		t.Errorf("links = %v, want a single self edge", source.Links)
	}
}

func TestRemoveLinkIdempotent(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "A")
	b := create(t, svc, "B")

	if _, _, err := svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeReference, "", true); err != nil {
		t.Fatal(err)
	}

	source, target, err := svc.RemoveLink(ctx, a.ID, b.ID, true)
	if err != nil {
		t.Fatalf("RemoveLink: %v", err)
	}
	if len(source.Links) != 0 || len(target.Links) != 0 {
		t.Errorf("links remain: source %v target %v", source.Links, target.Links)
	}

	// Removing again is not an error.
	if _, _, err := svc.RemoveLink(ctx, a.ID, b.ID, true); err != nil {
		t.Errorf("second remove err = %v", err)
	}
}

func TestRemoveLinkDropsAllTypes(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "A")
	b := create(t, svc, "B")

	_, _, _ = svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeReference, "", false)
	_, _, _ = svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeExtends, "", false)

	source, _, err := svc.RemoveLink(ctx, a.ID, b.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(source.Links) != 0 {
		t.Errorf("links = %v, want all edges to target gone", source.Links)
	}
}

func TestDeleteNoteCascadesInboundLinks(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "A")
	b := create(t, svc, "B")
	c := create(t, svc, "C")

	// b -> a and c -> a both target the doomed note; b -> c survives.
	_, _, _ = svc.CreateLink(ctx, b.ID, a.ID, models.LinkTypeReference, "", false)
	_, _, _ = svc.CreateLink(ctx, c.ID, a.ID, models.LinkTypeExtends, "", false)
	_, _, _ = svc.CreateLink(ctx, b.ID, c.ID, models.LinkTypeRelated, "", false)

	if err := svc.DeleteNote(ctx, a.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}

	if got, _ := svc.GetNote(ctx, a.ID); got != nil {
		t.Error("note still present")
	}
	gotB, _ := svc.GetNote(ctx, b.ID)
	if gotB.HasLink(a.ID, models.LinkTypeReference) {
		t.Error("dangling link on b")
	}
	if !gotB.HasLink(c.ID, models.LinkTypeRelated) {
		t.Error("unrelated link on b was lost")
	}
	gotC, _ := svc.GetNote(ctx, c.ID)
	if len(gotC.Links) != 0 {
		t.Errorf("dangling links on c: %v", gotC.Links)
	}
}

func TestDeleteNoteMissing(t *testing.T) {
	svc := testService(t)
	if err := svc.DeleteNote(context.Background(), "20240115T103000"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFindSimilarNotes(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	ref, err := svc.CreateNote(ctx, "Goroutines", "goroutines channels select scheduling", models.NoteTypePermanent, nil)
	if err != nil {
		t.Fatal(err)
	}
	near, err := svc.CreateNote(ctx, "Channels", "channels select goroutines buffering", models.NoteTypePermanent, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "Gardening", "tomatoes compost watering soil", models.NoteTypePermanent, nil); err != nil {
		t.Fatal(err)
	}

	similar, err := svc.FindSimilarNotes(ctx, ref.ID, 0.3)
	if err != nil {
		t.Fatalf("FindSimilarNotes: %v", err)
	}
	if len(similar) != 1 {
		t.Fatalf("similar = %d results, want 1", len(similar))
	}
	if similar[0].Note.ID != near.ID {
		t.Errorf("similar[0] = %s", similar[0].Note.ID)
	}
	if similar[0].Score <= 0 || similar[0].Score > 1 {
		t.Errorf("score = %v", similar[0].Score)
	}

	// The reference note itself is never returned.
	for _, sn := range similar {
		if sn.Note.ID == ref.ID {
			t.Error("reference note in results")
		}
	}
}

func TestFindSimilarNotesMissingReference(t *testing.T) {
	svc := testService(t)
	_, err := svc.FindSimilarNotes(context.Background(), "20240115T103000", 0.3)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetNoteByTitle(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	n := create(t, svc, "Unique Title")

	got, err := svc.GetNoteByTitle(ctx, "Unique Title")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != n.ID {
		t.Errorf("got = %+v", got)
	}

	absent, err := svc.GetNoteByTitle(ctx, "No Such Title")
	if err != nil {
		t.Fatal(err)
	}
	if absent != nil {
		t.Errorf("absent = %+v, want nil", absent)
	}
}

func TestRebuildIndexRoundTrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	a := create(t, svc, "A", "alpha")
	b := create(t, svc, "B")
	if _, _, err := svc.CreateLink(ctx, a.ID, b.ID, models.LinkTypeSupports, "evidence", false); err != nil {
		t.Fatal(err)
	}

	if err := svc.RebuildIndex(ctx); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}

	got, _ := svc.GetNote(ctx, a.ID)
	if got == nil || !got.HasLink(b.ID, models.LinkTypeSupports) {
		t.Errorf("rebuilt note = %+v", got)
	}
	if !got.HasTag("alpha") {
		t.Errorf("rebuilt tags = %v", got.Tags)
	}
}
