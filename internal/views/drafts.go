// Package views holds per-user screen state kept on the server between
// requests: proposal builder drafts, superseding fetches and access grants.
package views

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/builder"
)

var ErrNoDraft = errors.New("no draft for this proposal")

// DraftKey identifies a builder draft: one per profile and proposal.
type DraftKey struct {
	ProfileID  uuid.UUID
	ProposalID uuid.UUID
}

type draft struct {
	mu        sync.Mutex
	doc       *builder.Document
	touchedAt time.Time
}

// DraftStore keeps unsaved builder documents in memory until they are saved or
// discarded.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[DraftKey]*draft
	now    func() time.Time
}

func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[DraftKey]*draft),
		now:    time.Now,
	}
}

// Open returns the draft for key, creating it with load when missing.
func (s *DraftStore) Open(key DraftKey, load func() (*builder.Document, error)) (*builder.Document, error) {
	s.mu.Lock()
	d, ok := s.drafts[key]
	s.mu.Unlock()
	if ok {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.touchedAt = s.now()
		return snapshot(d.doc), nil
	}

	doc, err := load()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have opened it meanwhile; keep the first one.
	if d, ok := s.drafts[key]; ok {
		d.mu.Lock()
		defer d.mu.Unlock()
		return snapshot(d.doc), nil
	}
	s.drafts[key] = &draft{doc: doc, touchedAt: s.now()}
	return snapshot(doc), nil
}

// Update applies fn to the draft under its lock and returns the new state.
func (s *DraftStore) Update(key DraftKey, fn func(doc *builder.Document) error) (*builder.Document, error) {
	s.mu.Lock()
	d, ok := s.drafts[key]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoDraft
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(d.doc); err != nil {
		return nil, err
	}
	d.touchedAt = s.now()
	return snapshot(d.doc), nil
}

func (s *DraftStore) Get(key DraftKey) (*builder.Document, bool) {
	s.mu.Lock()
	d, ok := s.drafts[key]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return snapshot(d.doc), true
}

func (s *DraftStore) Discard(key DraftKey) {
	s.mu.Lock()
	delete(s.drafts, key)
	s.mu.Unlock()
}

// Prune drops drafts untouched for longer than maxIdle and returns how many
// were dropped.
func (s *DraftStore) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, d := range s.drafts {
		d.mu.Lock()
		stale := d.touchedAt.Before(cutoff)
		d.mu.Unlock()
		if stale {
			delete(s.drafts, key)
			n++
		}
	}
	return n
}

func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func snapshot(doc *builder.Document) *builder.Document {
	return builder.NewDocument(doc.ProposalID, doc.Library, doc.Content)
}
