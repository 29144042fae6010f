package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccessService_SaveAccess(t *testing.T) {
	profileID := uuid.New()
	keep, drop, add := uuid.New(), uuid.New(), uuid.New()

	st := new(mockAccessStore)
	st.On("CompanyIDsForProfile", mock.Anything, profileID).Return([]uuid.UUID{keep, drop}, nil)
	st.On("AddProfileToCompany", mock.Anything, add, profileID).Return(nil).Once()
	st.On("RemoveProfileFromCompany", mock.Anything, drop, profileID).Return(nil).Once()

	svc := NewAccessService(st)
	got, err := svc.SaveAccess(context.Background(), profileID, []uuid.UUID{keep, add, add})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{keep, add}, got)
	st.AssertExpectations(t)
	st.AssertNotCalled(t, "AddProfileToCompany", mock.Anything, keep, profileID)
}

func TestAccessService_SaveAccess_Failure(t *testing.T) {
	profileID := uuid.New()
	a, b := uuid.New(), uuid.New()

	st := new(mockAccessStore)
	st.On("CompanyIDsForProfile", mock.Anything, profileID).Return([]uuid.UUID{}, nil)
	st.On("AddProfileToCompany", mock.Anything, a, profileID).Return(nil)
	st.On("AddProfileToCompany", mock.Anything, b, profileID).Return(errBoom)

	svc := NewAccessService(st)
	got, err := svc.SaveAccess(context.Background(), profileID, []uuid.UUID{a, b})

	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), b.String())
	assert.Nil(t, got)
}

func TestAccessService_SaveAccess_LoadFailure(t *testing.T) {
	profileID := uuid.New()
	st := new(mockAccessStore)
	st.On("CompanyIDsForProfile", mock.Anything, profileID).Return(nil, errBoom)

	_, err := NewAccessService(st).SaveAccess(context.Background(), profileID, []uuid.UUID{uuid.New()})

	assert.ErrorIs(t, err, errBoom)
	st.AssertNotCalled(t, "AddProfileToCompany", mock.Anything, mock.Anything, mock.Anything)
}
