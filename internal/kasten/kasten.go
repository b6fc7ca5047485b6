// Package kasten implements the slip-box: the directory-backed repository of
// notes and the authority for derived link-graph queries. The backlink index
// is an in-memory value owned exclusively by the Kasten, built from a full
// scan on first use and patched in place on every save; the text on disk
// stays the only source of truth.
package kasten

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/mvoss/kasten/internal/apperr"
	"github.com/mvoss/kasten/internal/storage"
	"github.com/mvoss/kasten/internal/zettel"
)

// Kasten is the slip-box rooted at a single directory. It holds no state
// between calls other than the derived link index. It performs no internal
// locking; concurrent callers serialize access themselves.
type Kasten struct {
	store  storage.Provider
	logger *slog.Logger
	idx    *linkIndex
}

// New creates a Kasten over the given storage provider. The logger is used
// for warn-and-continue reporting during index scans; nil means
// slog.Default().
func New(store storage.Provider, logger *slog.Logger) *Kasten {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kasten{store: store, logger: logger, idx: newLinkIndex()}
}

// NoteError ties a per-note failure to the identity it came from, so batch
// operations can report which notes they skipped.
type NoteError struct {
	ID  string
	Err error
}

func (e *NoteError) Error() string { return fmt.Sprintf("kasten: note %s: %v", e.ID, e.Err) }

func (e *NoteError) Unwrap() error { return e.Err }

// SearchError reports a title scan that completed with some notes
// unreadable. The partial result is still returned alongside it.
type SearchError struct {
	Skipped []string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("kasten: search skipped %d unreadable notes", len(e.Skipped))
}

// NormalizeID cleans an identity into the canonical slash-relative form used
// as the graph key. Identities that try to escape the root are rejected.
// Every operation normalizes on entry, so equivalent spellings of a path
// (a//b.md, ./a/b.md) always hit the same note and the same index entry.
func NormalizeID(id string) (string, error) {
	cleaned := path.Clean(strings.TrimSpace(id))
	if cleaned == "" || cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
		return "", fmt.Errorf("kasten: invalid identity %q", id)
	}
	return cleaned, nil
}

// Iterate returns a lazy sequence over every note in the slip-box, one
// element per .md file in traversal order. The directory enumeration happens
// up front; each file is opened only when its element is produced. A single
// unreadable or malformed file yields an error element (a *NoteError)
// without aborting the rest of the sequence. Each call re-walks the
// directory.
func (k *Kasten) Iterate() iter.Seq2[*zettel.Zettel, error] {
	return func(yield func(*zettel.Zettel, error) bool) {
		ids, err := k.store.List("")
		if err != nil {
			yield(nil, err)
			return
		}
		for _, id := range ids {
			z, err := k.Load(id)
			if err != nil {
				if !yield(nil, &NoteError{ID: id, Err: err}) {
					return
				}
				continue
			}
			if !yield(z, nil) {
				return
			}
		}
	}
}

// Load reads and decodes exactly one note by identity. Missing files report
// apperr.ErrNotFound; header errors propagate from the codec.
func (k *Kasten) Load(id string) (*zettel.Zettel, error) {
	nid, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}
	raw, err := k.store.Read(nid)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("kasten: load %s: %w", nid, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("kasten: load %s: %w", nid, err)
	}
	return zettel.Parse(nid, raw)
}

// Save encodes the note and writes it back to its identity's path, creating
// parent directories for new notes. On success the note's contribution to
// the backlink index is patched in place (when the index has been built) and
// the dirty flag is cleared.
func (k *Kasten) Save(z *zettel.Zettel) error {
	nid, err := NormalizeID(z.ID())
	if err != nil {
		return err
	}
	raw, err := z.Encode()
	if err != nil {
		return err
	}
	if err := k.store.Write(nid, raw); err != nil {
		return fmt.Errorf("kasten: save %s: %w", nid, err)
	}
	if k.idx.built {
		k.idx.patch(nid, z.Title(), z.Links())
	}
	z.MarkSaved()
	return nil
}

// Delete removes the note's file and retracts its edges from the index.
// Note values held by callers simply become orphans.
func (k *Kasten) Delete(id string) error {
	nid, err := NormalizeID(id)
	if err != nil {
		return err
	}
	if err := k.store.Delete(nid); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("kasten: delete %s: %w", nid, apperr.ErrNotFound)
		}
		return fmt.Errorf("kasten: delete %s: %w", nid, err)
	}
	if k.idx.built {
		k.idx.remove(nid)
	}
	return nil
}

// Move renames a note file and re-keys its index entry. Inbound links keep
// pointing at the old identity until their source notes are edited; the text
// on disk is the source of truth, not this index.
func (k *Kasten) Move(oldID, newID string) error {
	from, err := NormalizeID(oldID)
	if err != nil {
		return err
	}
	to, err := NormalizeID(newID)
	if err != nil {
		return err
	}
	if err := k.store.Move(from, to); err != nil {
		return fmt.Errorf("kasten: move %s to %s: %w", from, to, err)
	}
	if k.idx.built {
		title, links := k.idx.titles[from], k.idx.forward[from]
		k.idx.remove(from)
		k.idx.patch(to, title, links)
	}
	return nil
}

// NewNote constructs an empty, un-persisted note with a freshly generated
// identity not yet present on disk. Nothing is written until Save. Only a
// successful read counts as a collision; any other read failure means the
// slip-box itself is broken and retrying cannot help.
func (k *Kasten) NewNote() (*zettel.Zettel, error) {
	for {
		id := uuid.NewString() + ".md"
		_, err := k.store.Read(id)
		if errors.Is(err, os.ErrNotExist) {
			return zettel.New(id), nil
		}
		if err != nil {
			return nil, fmt.Errorf("kasten: new note: %w", err)
		}
	}
}

// SearchTitle returns the identities whose title contains query,
// case-insensitively. The whole slip-box is walked; notes that cannot be
// read are skipped and reported through a *SearchError returned alongside
// the partial result.
func (k *Kasten) SearchTitle(query string) ([]string, error) {
	needle := strings.ToLower(query)
	var matches []string
	var skipped []string
	for z, err := range k.Iterate() {
		if err != nil {
			var ne *NoteError
			if errors.As(err, &ne) {
				skipped = append(skipped, ne.ID)
				continue
			}
			return nil, err
		}
		if strings.Contains(strings.ToLower(z.Title()), needle) {
			matches = append(matches, z.ID())
		}
	}
	if len(skipped) > 0 {
		return matches, &SearchError{Skipped: skipped}
	}
	return matches, nil
}

// Backlinks returns the identities of notes whose links include id, building
// the index with a full scan on first use.
func (k *Kasten) Backlinks(id string) ([]string, error) {
	nid, err := NormalizeID(id)
	if err != nil {
		return nil, err
	}
	if err := k.ensureIndex(); err != nil {
		return nil, err
	}
	return k.idx.backlinks(nid), nil
}

// GraphNode is a note in the link graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GraphEdge is a directed link between two notes.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph returns every indexed note and every directed link, building the
// index if needed.
func (k *Kasten) Graph() ([]GraphNode, []GraphEdge, error) {
	if err := k.ensureIndex(); err != nil {
		return nil, nil, err
	}
	return k.idx.graph()
}

// RebuildIndex discards the current index and rebuilds it from a full scan.
func (k *Kasten) RebuildIndex() error {
	k.idx = newLinkIndex()
	return k.ensureIndex()
}

// ensureIndex builds the link index on first use. Unreadable notes are
// logged and skipped so one bad file never blocks graph queries; they are
// picked up on the next rebuild once fixed.
func (k *Kasten) ensureIndex() error {
	if k.idx.built {
		return nil
	}
	for z, err := range k.Iterate() {
		if err != nil {
			var ne *NoteError
			if errors.As(err, &ne) {
				k.logger.Warn("index: skipping unreadable note",
					slog.String("id", ne.ID), slog.String("error", ne.Err.Error()))
				continue
			}
			return err
		}
		k.idx.patch(z.ID(), z.Title(), z.Links())
	}
	k.idx.built = true
	return nil
}
