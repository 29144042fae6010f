// Package app assembles the collaborators shared by the server and the worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/mailer"
	"github.com/propale/propale/internal/pdf"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/storage"
	"github.com/propale/propale/internal/store"
	"github.com/propale/propale/internal/web"
	"github.com/propale/propale/pkg/config"
	"gorm.io/gorm"
)

type Core struct {
	Store     *store.Store
	Events    events.Publisher
	Mailer    mailer.Mailer
	Renderer  *web.DocumentRenderer
	Proposals *services.ProposalService

	closers []func() error
}

// New wires the store, the external clients and the proposal service. Kafka
// and object storage are optional and stay off when not configured.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*Core, error) {
	c := &Core{
		Store:  store.New(db),
		Events: events.Noop{},
		Mailer: mailer.New(cfg.Email.BaseURL, cfg.Email.APIKey, cfg.Email.From),
	}

	if cfg.Kafka.Enabled() {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		c.Events = producer
		c.closers = append(c.closers, producer.Close)
		logger.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	}

	// A nil *S3Store must not end up in the interface.
	var uploader storage.Uploader
	if cfg.Storage.Enabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("configuring document storage: %w", err)
		}
		uploader = s3Store
		logger.Info("document storage enabled", "bucket", cfg.Storage.Bucket)
	}

	renderer, err := web.NewDocumentRenderer()
	if err != nil {
		return nil, fmt.Errorf("loading document templates: %w", err)
	}
	c.Renderer = renderer

	c.Proposals = services.NewProposalService(c.Store, services.ProposalDeps{
		Renderer: renderer,
		PDF:      pdf.New(cfg.PDF.ServiceURL, cfg.PDF.APIKey),
		Storage:  uploader,
		Mailer:   c.Mailer,
		Events:   c.Events,
	}, logger)

	return c, nil
}

// Close flushes pending events.
func (c *Core) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}
