// Package zettel defines the in-memory representation of a single note.
package zettel

import (
	"maps"

	"github.com/mvoss/kasten/internal/frontmatter"
	"github.com/mvoss/kasten/internal/links"
)

// Zettel is one note: a stable identity, its front-matter metadata, and the
// free-form body. The identity is immutable for the life of the value; title,
// body, and metadata change only through setters that mark the note dirty.
type Zettel struct {
	id   string
	meta frontmatter.Meta
	body string

	dirty bool

	// linkSet is derived from body and recomputed lazily after SetBody.
	linkSet []string
	linksOK bool
}

// Parse decodes raw file bytes into a Zettel with the given identity.
// The identity is the note's slash-normalized path relative to the
// slip-box root; callers (the slip-box) are responsible for normalizing it.
func Parse(id string, raw []byte) (*Zettel, error) {
	meta, body, err := frontmatter.Decode(raw)
	if err != nil {
		return nil, err
	}
	return &Zettel{id: id, meta: meta, body: body}, nil
}

// New constructs an empty, un-persisted note. It is dirty from birth so a
// save is never skipped for it.
func New(id string) *Zettel {
	return &Zettel{id: id, meta: frontmatter.Meta{}, dirty: true}
}

// ID returns the note's identity.
func (z *Zettel) ID() string { return z.id }

// Title returns the front-matter title, or "" when none is set.
func (z *Zettel) Title() string { return z.meta.Title() }

// Body returns the note's body text.
func (z *Zettel) Body() string { return z.body }

// Meta returns a copy of the front-matter payload. Keys the engine does not
// interpret are preserved and written back on save. The copy keeps the note's
// state reachable only through its setters; writes to the returned map are
// discarded.
func (z *Zettel) Meta() frontmatter.Meta { return maps.Clone(z.meta) }

// Dirty reports whether the note has unsaved changes.
func (z *Zettel) Dirty() bool { return z.dirty }

// SetTitle replaces the title and marks the note dirty.
func (z *Zettel) SetTitle(title string) {
	z.meta.SetTitle(title)
	z.dirty = true
}

// SetBody replaces the body, marks the note dirty, and invalidates the
// cached link set so it can never drift from the text.
func (z *Zettel) SetBody(body string) {
	z.body = body
	z.dirty = true
	z.linksOK = false
	z.linkSet = nil
}

// Links returns the identities referenced from the body. The set is computed
// on first access after a body change and cached until the next SetBody.
func (z *Zettel) Links() []string {
	if !z.linksOK {
		z.linkSet = links.Extract(z.body)
		z.linksOK = true
	}
	return z.linkSet
}

// Encode serializes the note back into file bytes through the codec.
func (z *Zettel) Encode() ([]byte, error) {
	return frontmatter.Encode(z.meta, z.body)
}

// MarkSaved clears the dirty flag after a successful save.
func (z *Zettel) MarkSaved() { z.dirty = false }
