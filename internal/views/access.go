package views

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// AccessSaver reads and writes the companies a profile may access.
type AccessSaver interface {
	Access(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error)
	SaveAccess(ctx context.Context, profileID uuid.UUID, desired []uuid.UUID) ([]uuid.UUID, error)
}

// AccessView holds the access grants shown on the profile screen. Load always
// reads the store; the local state is the last set loaded or saved.
type AccessView struct {
	saver AccessSaver

	mu     sync.Mutex
	grants map[uuid.UUID][]uuid.UUID
}

func NewAccessView(saver AccessSaver) *AccessView {
	return &AccessView{saver: saver, grants: make(map[uuid.UUID][]uuid.UUID)}
}

func (v *AccessView) Load(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := v.saver.Access(ctx, profileID)
	if err != nil {
		v.Invalidate(profileID)
		return nil, err
	}
	v.set(profileID, ids)
	return append([]uuid.UUID{}, ids...), nil
}

// Current returns the last set loaded or saved for the profile.
func (v *AccessView) Current(profileID uuid.UUID) ([]uuid.UUID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ids, ok := v.grants[profileID]
	if !ok {
		return nil, false
	}
	return append([]uuid.UUID{}, ids...), true
}

func (v *AccessView) Save(ctx context.Context, profileID uuid.UUID, desired []uuid.UUID) ([]uuid.UUID, error) {
	ids, err := v.saver.SaveAccess(ctx, profileID, desired)
	if err != nil {
		// The stored state is unknown after a partial failure.
		v.Invalidate(profileID)
		return nil, err
	}
	v.set(profileID, ids)
	return append([]uuid.UUID{}, ids...), nil
}

func (v *AccessView) set(profileID uuid.UUID, ids []uuid.UUID) {
	v.mu.Lock()
	v.grants[profileID] = ids
	v.mu.Unlock()
}

func (v *AccessView) Invalidate(profileID uuid.UUID) {
	v.mu.Lock()
	delete(v.grants, profileID)
	v.mu.Unlock()
}
