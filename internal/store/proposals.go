package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
	"gorm.io/gorm"
)

func (s *Store) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	if err := s.conn(ctx).Omit("Needs", "Paragraphs").Create(proposal).Error; err != nil {
		return fmt.Errorf("creating proposal: %w", err)
	}
	return nil
}

// GetProposal loads a proposal with its lines ordered by position.
func (s *Store) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.conn(ctx).
		Preload("Needs", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Paragraphs", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&proposal).Error
	if err != nil {
		return nil, translate(err)
	}
	return &proposal, nil
}

// ListProposals returns the proposals of a prospect, newest first. Drafts are
// left out when includeDrafts is false.
func (s *Store) ListProposals(ctx context.Context, prospectID uuid.UUID, includeDrafts bool) ([]models.Proposal, error) {
	q := s.conn(ctx).Where("prospect_id = ?", prospectID)
	if !includeDrafts {
		q = q.Where("status <> ?", models.ProposalStatusDraft)
	}
	var proposals []models.Proposal
	if err := q.Order("created_at DESC").Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	return proposals, nil
}

func (s *Store) ProposalIDsForProspect(ctx context.Context, prospectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.conn(ctx).Model(&models.Proposal{}).Where("prospect_id = ?", prospectID).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing proposal ids: %w", err)
	}
	return ids, nil
}

func (s *Store) UpdateProposalStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	res := s.conn(ctx).Model(&models.Proposal{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("updating proposal status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetProposalPDFKey(ctx context.Context, id uuid.UUID, key string) error {
	res := s.conn(ctx).Model(&models.Proposal{}).Where("id = ?", id).Update("pdf_key", key)
	if res.Error != nil {
		return fmt.Errorf("updating proposal pdf key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceProposalContent swaps every need and paragraph of a proposal in one
// transaction.
func (s *Store) ReplaceProposalContent(ctx context.Context, proposalID uuid.UUID, needs []models.Need, paragraphs []models.Paragraph) error {
	return s.WithTransaction(ctx, func(tx *Store) error {
		var exists int64
		if err := tx.conn(ctx).Model(&models.Proposal{}).Where("id = ?", proposalID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		if err := tx.deleteProposalLines(ctx, []uuid.UUID{proposalID}); err != nil {
			return err
		}
		for i := range needs {
			needs[i].ProposalID = proposalID
		}
		for i := range paragraphs {
			paragraphs[i].ProposalID = proposalID
		}
		if len(needs) > 0 {
			if err := tx.conn(ctx).Create(&needs).Error; err != nil {
				return fmt.Errorf("inserting needs: %w", err)
			}
		}
		if len(paragraphs) > 0 {
			if err := tx.conn(ctx).Create(&paragraphs).Error; err != nil {
				return fmt.Errorf("inserting paragraphs: %w", err)
			}
		}
		return tx.conn(ctx).Model(&models.Proposal{}).Where("id = ?", proposalID).
			Update("updated_at", time.Now()).Error
	})
}

func (s *Store) deleteProposalLines(ctx context.Context, proposalIDs []uuid.UUID) error {
	if err := s.conn(ctx).Where("proposal_id IN ?", proposalIDs).Delete(&models.Need{}).Error; err != nil {
		return fmt.Errorf("deleting needs: %w", err)
	}
	if err := s.conn(ctx).Where("proposal_id IN ?", proposalIDs).Delete(&models.Paragraph{}).Error; err != nil {
		return fmt.Errorf("deleting paragraphs: %w", err)
	}
	return nil
}

// DeleteProposal removes the lines before the proposal itself.
func (s *Store) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	return s.WithTransaction(ctx, func(tx *Store) error {
		if err := tx.deleteProposalLines(ctx, []uuid.UUID{id}); err != nil {
			return err
		}
		res := tx.conn(ctx).Where("id = ?", id).Delete(&models.Proposal{})
		if res.Error != nil {
			return fmt.Errorf("deleting proposal: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) DeleteProposalsForProspect(ctx context.Context, prospectID uuid.UUID) error {
	ids, err := s.ProposalIDsForProspect(ctx, prospectID)
	if err != nil || len(ids) == 0 {
		return err
	}
	if err := s.deleteProposalLines(ctx, ids); err != nil {
		return err
	}
	if err := s.conn(ctx).Where("id IN ?", ids).Delete(&models.Proposal{}).Error; err != nil {
		return fmt.Errorf("deleting proposals: %w", err)
	}
	return nil
}
