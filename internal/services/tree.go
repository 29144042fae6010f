package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
)

// MaxTreeDepth bounds every walk of the company hierarchy.
const MaxTreeDepth = 32

type companyGetter interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type childLister interface {
	ChildCompanyIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error)
}

// rootOf follows parent links from id up to the root organisation.
func rootOf(ctx context.Context, g companyGetter, id uuid.UUID) (*models.Company, error) {
	current, err := g.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	visited := map[uuid.UUID]bool{current.ID: true}
	for depth := 0; !current.IsRoot(); depth++ {
		if depth >= MaxTreeDepth {
			return nil, ErrTreeTooDeep
		}
		parentID := *current.CompanyID
		if visited[parentID] {
			return nil, fmt.Errorf("%w at %s", ErrCompanyCycle, parentID)
		}
		visited[parentID] = true

		current, err = g.GetCompany(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("loading ancestor %s: %w", parentID, err)
		}
	}
	return current, nil
}

// descendantIDs returns every company below id, level by level.
func descendantIDs(ctx context.Context, l childLister, id uuid.UUID) ([]uuid.UUID, error) {
	visited := map[uuid.UUID]bool{id: true}
	var out []uuid.UUID

	level := []uuid.UUID{id}
	for depth := 0; len(level) > 0; depth++ {
		if depth >= MaxTreeDepth {
			return nil, ErrTreeTooDeep
		}
		children, err := l.ChildCompanyIDs(ctx, level)
		if err != nil {
			return nil, err
		}
		next := make([]uuid.UUID, 0, len(children))
		for _, c := range children {
			if visited[c] {
				continue
			}
			visited[c] = true
			next = append(next, c)
		}
		out = append(out, next...)
		level = next
	}
	return out, nil
}
