// Package noteservice coordinates the slip-box for the API and MCP surfaces.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/mvoss/kasten/internal/apperr"
	"github.com/mvoss/kasten/internal/checksum"
	"github.com/mvoss/kasten/internal/kasten"
	"github.com/mvoss/kasten/internal/storage"
	"github.com/mvoss/kasten/internal/zettel"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Content   string         `json:"content"`
	Checksum  string         `json:"checksum"`
	Meta      map[string]any `json:"meta,omitempty"`
	Links     []string       `json:"links"`
	Backlinks []string       `json:"backlinks"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NoteList is the result of enumerating the slip-box: the notes that could
// be read plus the identities that could not.
type NoteList struct {
	Notes   []NoteListItem `json:"notes"`
	Skipped []string       `json:"skipped,omitempty"`
}

// Service coordinates storage and slip-box operations. The slip-box itself
// does no locking, so the service serializes every call; HTTP handlers run
// concurrently.
type Service struct {
	mu    sync.Mutex
	store storage.Provider
	box   *kasten.Kasten
}

// NewService creates a new note service.
func NewService(store storage.Provider, box *kasten.Kasten) *Service {
	return &Service{store: store, box: box}
}

// GetNote loads a note by identity and enriches it with backlinks.
func (s *Service) GetNote(_ context.Context, id string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, err := s.box.Load(id)
	if err != nil {
		return nil, err
	}
	// Checksum the bytes as they are on disk, not a re-encoding, so If-Match
	// agrees with what UpdateNote will read.
	raw, err := s.store.Read(z.ID())
	if err != nil {
		return nil, err
	}
	return s.buildDetail(z, raw)
}

// CreateNote writes a new note from raw file content.
func (s *Service) CreateNote(_ context.Context, id string, content []byte) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Canonicalize before anything keys on the identity, so a//b.md and
	// a/b.md are the same note.
	nid, err := kasten.NormalizeID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Read(nid); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	z, err := zettel.Parse(nid, content)
	if err != nil {
		return nil, err
	}
	if err := s.box.Save(z); err != nil {
		return nil, err
	}
	return s.savedDetail(z)
}

// UpdateNote replaces a note's content with optimistic concurrency: when
// ifMatch is non-empty it must equal the checksum of the current file.
func (s *Service) UpdateNote(_ context.Context, id string, content []byte, ifMatch string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nid, err := kasten.NormalizeID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Read(nid)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	z, err := zettel.Parse(nid, content)
	if err != nil {
		return nil, err
	}
	if err := s.box.Save(z); err != nil {
		return nil, err
	}
	return s.savedDetail(z)
}

// DeleteNote removes a note and its index contribution.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.box.Delete(id)
}

// ListNotes walks the whole slip-box. Unreadable notes never abort the
// listing; their identities are reported in Skipped.
func (s *Service) ListNotes(_ context.Context) (*NoteList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := &NoteList{Notes: []NoteListItem{}}
	for z, err := range s.box.Iterate() {
		if err != nil {
			var ne *kasten.NoteError
			if errors.As(err, &ne) {
				list.Skipped = append(list.Skipped, ne.ID)
				continue
			}
			return nil, err
		}
		list.Notes = append(list.Notes, NoteListItem{ID: z.ID(), Title: z.Title()})
	}
	return list, nil
}

// SearchTitle returns the identities whose title contains query. A partial
// result with skipped notes is returned together with the *SearchError so
// callers can surface both.
func (s *Service) SearchTitle(_ context.Context, query string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.box.SearchTitle(query)
}

// Backlinks returns the identities of notes linking to id.
func (s *Service) Backlinks(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.box.Backlinks(id)
}

// Graph returns all nodes and directed links for graph visualization.
func (s *Service) Graph(_ context.Context) ([]kasten.GraphNode, []kasten.GraphEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.box.Graph()
}

// savedDetail assembles a NoteDetail for a note just written through Save;
// its encoding is what is on disk now.
func (s *Service) savedDetail(z *zettel.Zettel) (*NoteDetail, error) {
	raw, err := z.Encode()
	if err != nil {
		return nil, fmt.Errorf("noteservice: encode %s: %w", z.ID(), err)
	}
	return s.buildDetail(z, raw)
}

// buildDetail assembles a NoteDetail; the caller holds the lock.
func (s *Service) buildDetail(z *zettel.Zettel, raw []byte) (*NoteDetail, error) {
	bl, err := s.box.Backlinks(z.ID())
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		ID:        z.ID(),
		Title:     z.Title(),
		Body:      z.Body(),
		Content:   string(raw),
		Checksum:  checksum.Sum(raw),
		Meta:      z.Meta(),
		Links:     nonNilSlice(z.Links()),
		Backlinks: nonNilSlice(bl),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
