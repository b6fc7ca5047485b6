package noteservice

import (
	"context"
	"errors"
	"testing"

	"github.com/mvoss/kasten/internal/apperr"
	"github.com/mvoss/kasten/internal/kasten"
	"github.com/mvoss/kasten/internal/storage"
)

func testService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return NewService(store, kasten.New(store, nil))
}

func TestCreateAndGet(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "hello.md", []byte("+++\ntitle = \"Hello\"\n+++\nWorld [b](b.md)\n"))
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if created.Title != "Hello" {
		t.Errorf("title = %q", created.Title)
	}
	if len(created.Links) != 1 || created.Links[0] != "b.md" {
		t.Errorf("links = %v", created.Links)
	}

	got, err := svc.GetNote(ctx, "hello.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Checksum != created.Checksum {
		t.Errorf("checksum drift: create %q vs get %q", created.Checksum, got.Checksum)
	}
	if got.Body != "World [b](b.md)\n" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestCreateDuplicate(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "dup.md", []byte("a")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateNote(ctx, "dup.md", []byte("b"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateNormalizesIdentity(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "a//b.md", []byte("one"))
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if created.ID != "a/b.md" {
		t.Errorf("id = %q, want the canonical path", created.ID)
	}

	// The alternate spelling is the same note.
	if _, err := svc.CreateNote(ctx, "a/./b.md", []byte("two")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
	if _, err := svc.GetNote(ctx, "a/b.md"); err != nil {
		t.Errorf("GetNote canonical: %v", err)
	}
}

// faultyProvider fails every read with a non-NotExist error.
type faultyProvider struct {
	storage.Provider
	readErr error
}

func (f *faultyProvider) Read(string) ([]byte, error) { return nil, f.readErr }

func TestUpdateReadErrorIsNotNotFound(t *testing.T) {
	readErr := errors.New("read: permission denied")
	store := &faultyProvider{readErr: readErr}
	svc := NewService(store, kasten.New(store, nil))

	_, err := svc.UpdateNote(context.Background(), "n.md", []byte("x"), "")
	if errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, a failing read must not report not-found", err)
	}
	if !errors.Is(err, readErr) {
		t.Errorf("err = %v, want the read error propagated", err)
	}
}

func TestUpdateOptimisticConcurrency(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "lock.md", []byte("v1"))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateNote(ctx, "lock.md", []byte("v2"), created.Checksum)
	if err != nil {
		t.Fatalf("update with fresh checksum: %v", err)
	}

	// Stale checksum must conflict.
	_, err = svc.UpdateNote(ctx, "lock.md", []byte("v3"), created.Checksum)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}

	// No If-Match means last writer wins.
	if _, err := svc.UpdateNote(ctx, "lock.md", []byte("v3"), ""); err != nil {
		t.Errorf("update without If-Match: %v", err)
	}
	_ = updated
}

func TestUpdateMissing(t *testing.T) {
	svc := testService(t)
	_, err := svc.UpdateNote(context.Background(), "ghost.md", []byte("x"), "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "bye.md", []byte("gone")); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteNote(ctx, "bye.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := svc.GetNote(ctx, "bye.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestListSkipsBrokenNotes(t *testing.T) {
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, kasten.New(store, nil))
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "ok.md", []byte("+++\ntitle = \"OK\"\n+++\n")); err != nil {
		t.Fatal(err)
	}
	// Write a malformed note behind the service's back.
	if err := store.Write("broken.md", []byte("+++\nnever closed\n")); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListNotes(ctx)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(list.Notes) != 1 || list.Notes[0].ID != "ok.md" {
		t.Errorf("notes = %v", list.Notes)
	}
	if len(list.Skipped) != 1 || list.Skipped[0] != "broken.md" {
		t.Errorf("skipped = %v", list.Skipped)
	}
}

func TestBacklinksThroughService(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "a.md", []byte("links to [b](b.md)")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "b.md", []byte("target")); err != nil {
		t.Fatal(err)
	}

	bl, err := svc.Backlinks(ctx, "b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 1 || bl[0] != "a.md" {
		t.Errorf("backlinks = %v", bl)
	}

	got, err := svc.GetNote(ctx, "b.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Backlinks) != 1 || got.Backlinks[0] != "a.md" {
		t.Errorf("detail backlinks = %v", got.Backlinks)
	}
}

func TestSearchTitlePartialFailure(t *testing.T) {
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, kasten.New(store, nil))
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "one.md", []byte("+++\ntitle = \"Second Brain\"\n+++\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("bad.md", []byte("+++\nbroken\n")); err != nil {
		t.Fatal(err)
	}

	ids, err := svc.SearchTitle(ctx, "brain")
	if len(ids) != 1 || ids[0] != "one.md" {
		t.Errorf("ids = %v", ids)
	}
	var se *kasten.SearchError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SearchError", err)
	}
}
