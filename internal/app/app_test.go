package app

import (
	"context"
	"testing"

	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/testutil"
	"github.com/propale/propale/pkg/config"
	"github.com/propale/propale/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_OptionalServicesOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		Email: config.EmailConfig{BaseURL: "http://mail.local", From: "Propale <noreply@propale.co>"},
		PDF:   config.PDFConfig{ServiceURL: "http://pdf.local"},
	}

	core, err := New(context.Background(), cfg, db, util.DiscardLogger())
	require.NoError(t, err)

	assert.IsType(t, events.Noop{}, core.Events)
	assert.NotNil(t, core.Proposals)
	assert.NotNil(t, core.Renderer)
	assert.NoError(t, core.Close())
}
