package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type AccessStore interface {
	CompanyIDsForProfile(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error)
	AddProfileToCompany(ctx context.Context, companyID, profileID uuid.UUID) error
	RemoveProfileFromCompany(ctx context.Context, companyID, profileID uuid.UUID) error
}

type AccessService struct {
	store AccessStore
}

func NewAccessService(st AccessStore) *AccessService {
	return &AccessService{store: st}
}

func (s *AccessService) Access(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	return s.store.CompanyIDsForProfile(ctx, profileID)
}

// SaveAccess makes the profile's company set equal to desired. Additions and
// removals run concurrently; the first failure is returned once all calls have
// finished.
func (s *AccessService) SaveAccess(ctx context.Context, profileID uuid.UUID, desired []uuid.UUID) ([]uuid.UUID, error) {
	current, err := s.store.CompanyIDsForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	want := make(map[uuid.UUID]bool, len(desired))
	result := make([]uuid.UUID, 0, len(desired))
	for _, id := range desired {
		if !want[id] {
			want[id] = true
			result = append(result, id)
		}
	}
	have := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		have[id] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range result {
		if have[id] {
			continue
		}
		companyID := id
		g.Go(func() error {
			if err := s.store.AddProfileToCompany(gctx, companyID, profileID); err != nil {
				return fmt.Errorf("granting %s: %w", companyID, err)
			}
			return nil
		})
	}
	for _, id := range current {
		if want[id] {
			continue
		}
		companyID := id
		g.Go(func() error {
			if err := s.store.RemoveProfileFromCompany(gctx, companyID, profileID); err != nil {
				return fmt.Errorf("revoking %s: %w", companyID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
