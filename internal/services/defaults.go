package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/store"
)

// DefaultContentService manages the reusable blocks offered in the proposal
// builder library.
type DefaultContentService struct {
	store *store.Store
}

func NewDefaultContentService(st *store.Store) *DefaultContentService {
	return &DefaultContentService{store: st}
}

func (s *DefaultContentService) Description(ctx context.Context, companyID uuid.UUID) (*models.DefaultDescription, error) {
	return s.store.GetDefaultDescription(ctx, companyID)
}

func (s *DefaultContentService) SaveDescription(ctx context.Context, companyID uuid.UUID, name, description string) (*models.DefaultDescription, error) {
	if _, err := s.store.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.store.UpsertDefaultDescription(ctx, &models.DefaultDescription{
		CompanyID:   companyID,
		Name:        name,
		Description: description,
	})
}

func (s *DefaultContentService) DeleteDescription(ctx context.Context, companyID uuid.UUID) error {
	return s.store.DeleteDefaultDescription(ctx, companyID)
}

func (s *DefaultContentService) Paragraphs(ctx context.Context, companyID uuid.UUID) ([]models.DefaultParagraph, error) {
	return s.store.ListDefaultParagraphs(ctx, companyID)
}

// SaveParagraph inserts p, or updates it when p.ID is already known for the
// company.
func (s *DefaultContentService) SaveParagraph(ctx context.Context, p *models.DefaultParagraph) (*models.DefaultParagraph, error) {
	if _, err := s.store.GetCompany(ctx, p.CompanyID); err != nil {
		return nil, err
	}
	if err := s.store.UpsertDefaultParagraph(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteParagraphs removes one paragraph, or all of them when paragraphID is
// nil.
func (s *DefaultContentService) DeleteParagraphs(ctx context.Context, companyID uuid.UUID, paragraphID *uuid.UUID) error {
	if paragraphID == nil {
		return s.store.DeleteDefaultParagraphs(ctx, companyID)
	}
	return s.store.DeleteDefaultParagraph(ctx, companyID, *paragraphID)
}

// Library is the builder library of the organisation governing companyID.
func (s *DefaultContentService) Library(ctx context.Context, companyID uuid.UUID) (*models.DefaultDescription, []models.DefaultParagraph, error) {
	root, err := rootOf(ctx, s.store, companyID)
	if err != nil {
		return nil, nil, err
	}
	desc, err := s.store.GetDefaultDescription(ctx, root.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}
	paragraphs, err := s.store.ListDefaultParagraphs(ctx, root.ID)
	if err != nil {
		return nil, nil, err
	}
	return desc, paragraphs, nil
}
