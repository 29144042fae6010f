package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/builder"
	"github.com/propale/propale/internal/views"
)

// BuilderService edits proposal content through server-side drafts. A draft
// is opened from the stored proposal and the organisation library, edited in
// memory and written back in one replace on Save.
type BuilderService struct {
	proposals *ProposalService
	defaults  *DefaultContentService
	drafts    *views.DraftStore
}

func NewBuilderService(proposals *ProposalService, defaults *DefaultContentService, drafts *views.DraftStore) *BuilderService {
	return &BuilderService{proposals: proposals, defaults: defaults, drafts: drafts}
}

func (s *BuilderService) Open(ctx context.Context, key views.DraftKey) (*builder.Document, error) {
	return s.drafts.Open(key, func() (*builder.Document, error) {
		proposal, err := s.proposals.Get(ctx, key.ProposalID)
		if err != nil {
			return nil, err
		}
		desc, paragraphs, err := s.defaults.Library(ctx, proposal.ProspectID)
		if err != nil {
			return nil, err
		}
		return builder.NewDocument(
			proposal.ID,
			builder.LibraryFromDefaults(desc, paragraphs),
			builder.ContentFromProposal(proposal),
		), nil
	})
}

// edit opens the draft if needed, then applies fn to it.
func (s *BuilderService) edit(ctx context.Context, key views.DraftKey, fn func(doc *builder.Document) error) (*builder.Document, error) {
	if _, err := s.Open(ctx, key); err != nil {
		return nil, err
	}
	return s.drafts.Update(key, fn)
}

func (s *BuilderService) Add(ctx context.Context, key views.DraftKey, item builder.Item) (*builder.Document, error) {
	return s.edit(ctx, key, func(doc *builder.Document) error {
		_, err := doc.Add(item)
		return err
	})
}

func (s *BuilderService) Insert(ctx context.Context, key views.DraftKey, libraryID uuid.UUID, index int) (*builder.Document, error) {
	return s.edit(ctx, key, func(doc *builder.Document) error {
		_, err := doc.Insert(libraryID, index)
		return err
	})
}

func (s *BuilderService) Edit(ctx context.Context, key views.DraftKey, item builder.Item) (*builder.Document, error) {
	return s.edit(ctx, key, func(doc *builder.Document) error {
		return doc.Edit(item)
	})
}

func (s *BuilderService) Remove(ctx context.Context, key views.DraftKey, itemID uuid.UUID) (*builder.Document, error) {
	return s.edit(ctx, key, func(doc *builder.Document) error {
		return doc.Remove(itemID)
	})
}

func (s *BuilderService) Move(ctx context.Context, key views.DraftKey, from, to int) (*builder.Document, error) {
	return s.edit(ctx, key, func(doc *builder.Document) error {
		return doc.Move(from, to)
	})
}

// Save writes the draft content to the proposal and drops the draft.
func (s *BuilderService) Save(ctx context.Context, key views.DraftKey) (*builder.Document, error) {
	doc, ok := s.drafts.Get(key)
	if !ok {
		return nil, views.ErrNoDraft
	}
	proposal, err := s.proposals.ReplaceContent(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.drafts.Discard(key)
	return builder.NewDocument(proposal.ID, doc.Library, builder.ContentFromProposal(proposal)), nil
}

func (s *BuilderService) Discard(key views.DraftKey) {
	s.drafts.Discard(key)
}
