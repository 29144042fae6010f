package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/builder"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/mailer"
	"github.com/propale/propale/internal/metrics"
	"github.com/propale/propale/internal/pdf"
	"github.com/propale/propale/internal/storage"
	"github.com/propale/propale/internal/store"
)

// ProposalRenderer produces the printable HTML of a proposal.
type ProposalRenderer interface {
	Proposal(p *models.Proposal, prospect *models.Company) (string, error)
}

type ProposalService struct {
	store    *store.Store
	renderer ProposalRenderer
	pdf      pdf.Generator
	storage  storage.Uploader
	mailer   mailer.Mailer
	events   events.Publisher
	logger   *slog.Logger
}

// ProposalDeps are the collaborators of ProposalService. Storage may be nil
// when no bucket is configured.
type ProposalDeps struct {
	Renderer ProposalRenderer
	PDF      pdf.Generator
	Storage  storage.Uploader
	Mailer   mailer.Mailer
	Events   events.Publisher
}

func NewProposalService(st *store.Store, deps ProposalDeps, logger *slog.Logger) *ProposalService {
	return &ProposalService{
		store:    st,
		renderer: deps.Renderer,
		pdf:      deps.PDF,
		storage:  deps.Storage,
		mailer:   deps.Mailer,
		events:   deps.Events,
		logger:   logger,
	}
}

func (s *ProposalService) Get(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return s.store.GetProposal(ctx, id)
}

// List returns the proposals of a prospect. Drafts are hidden from prospect
// contacts.
func (s *ProposalService) List(ctx context.Context, prospectID uuid.UUID, role models.Role) ([]models.Proposal, error) {
	return s.store.ListProposals(ctx, prospectID, role != models.RoleProspect)
}

type CreateProposalInput struct {
	ProspectID uuid.UUID
	ProfileID  *uuid.UUID
	Title      string
}

func (s *ProposalService) Create(ctx context.Context, in CreateProposalInput) (*models.Proposal, error) {
	prospect, err := s.store.GetCompany(ctx, in.ProspectID)
	if err != nil {
		return nil, err
	}
	if !prospect.IsProspect() {
		return nil, ErrNotProspect
	}

	proposal := &models.Proposal{
		ProspectID: in.ProspectID,
		ProfileID:  in.ProfileID,
		Title:      in.Title,
		Status:     models.ProposalStatusDraft,
	}
	if err := s.store.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}
	s.events.Publish(events.ProposalCreated, proposal.ID, proposal)
	return proposal, nil
}

// UpdateStatus writes any valid status; there is no transition table.
func (s *ProposalService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.store.UpdateProposalStatus(ctx, id, status); err != nil {
		return err
	}
	s.events.Publish(events.ProposalStatusSet, id, map[string]interface{}{"status": status})
	return nil
}

// ReplaceContent stores the content of doc as the proposal's needs and
// paragraphs, replacing the previous ones.
func (s *ProposalService) ReplaceContent(ctx context.Context, doc *builder.Document) (*models.Proposal, error) {
	needs, paragraphs := doc.Lines()
	if err := s.store.ReplaceProposalContent(ctx, doc.ProposalID, needs, paragraphs); err != nil {
		return nil, err
	}
	return s.store.GetProposal(ctx, doc.ProposalID)
}

func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteProposal(ctx, id); err != nil {
		return err
	}
	s.events.Publish(events.ProposalDeleted, id, nil)
	return nil
}

// Render returns the printable HTML of a stored proposal.
func (s *ProposalService) Render(ctx context.Context, id uuid.UUID) (string, *models.Proposal, error) {
	proposal, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return "", nil, err
	}
	prospect, err := s.store.GetCompany(ctx, proposal.ProspectID)
	if err != nil {
		return "", nil, fmt.Errorf("loading prospect: %w", err)
	}
	doc, err := s.renderer.Proposal(proposal, prospect)
	if err != nil {
		return "", nil, err
	}
	return doc, proposal, nil
}

// PDFResult is a generated proposal document. Key and URL are set when the
// document was uploaded.
type PDFResult struct {
	Key      string `json:"key,omitempty"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename"`
	PDF      []byte `json:"-"`
}

type GeneratePDFInput struct {
	// HTML overrides the stored proposal rendering.
	HTML     string
	Filename string
	Upload   bool
}

// GeneratePDF renders the proposal, converts it to PDF and optionally keeps it
// in object storage with a temporary download link.
func (s *ProposalService) GeneratePDF(ctx context.Context, id uuid.UUID, in GeneratePDFInput) (*PDFResult, error) {
	if in.Upload && s.storage == nil {
		return nil, ErrStorageDisabled
	}

	doc, proposal, err := s.Render(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.HTML != "" {
		doc = in.HTML
	}

	var body []byte
	err = callExternal("pdf", func() error {
		var genErr error
		body, genErr = s.pdf.Generate(ctx, doc)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	result := &PDFResult{Filename: in.Filename, PDF: body}
	if result.Filename == "" {
		result.Filename = fmt.Sprintf("proposition-%s.pdf", proposal.ID)
	}
	if in.Upload {
		key := storage.ProposalKey(proposal.ProspectID, proposal.ID)
		err = callExternal("storage", func() error {
			if err := s.storage.Upload(ctx, key, "application/pdf", body); err != nil {
				return err
			}
			url, err := s.storage.PresignGet(ctx, key)
			result.URL = url
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := s.store.SetProposalPDFKey(ctx, proposal.ID, key); err != nil {
			return nil, err
		}
		result.Key = key
	}

	s.logger.Info("proposal pdf generated", "proposal_id", proposal.ID, "bytes", len(body), "uploaded", in.Upload)
	s.events.Publish(events.ProposalPDFRendered, proposal.ID, map[string]interface{}{"key": result.Key})
	return result, nil
}

// Deliver emails the proposal PDF to the prospect contacts (or to the given
// recipients) and marks the proposal as sent.
func (s *ProposalService) Deliver(ctx context.Context, id uuid.UUID, recipients []string) (err error) {
	defer func() { metrics.RecordOperation("proposal_deliver", err) }()

	result, err := s.GeneratePDF(ctx, id, GeneratePDFInput{Upload: s.storage != nil})
	if err != nil {
		return err
	}
	proposal, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return err
	}

	if len(recipients) == 0 {
		contacts, err := s.store.ProfilesForCompany(ctx, proposal.ProspectID, models.RoleProspect)
		if err != nil {
			return err
		}
		for _, c := range contacts {
			recipients = append(recipients, c.Email)
		}
	}
	if len(recipients) == 0 {
		return fmt.Errorf("proposal %s has no recipient", id)
	}

	msg := mailer.Message{
		To:      recipients,
		Subject: proposal.Title,
		HTML:    deliveryHTML(proposal.Title, result.URL),
		Attachments: []mailer.Attachment{
			{Filename: result.Filename, Content: result.PDF},
		},
	}
	var messageID string
	err = callExternal("email", func() error {
		var sendErr error
		messageID, sendErr = s.mailer.Send(ctx, msg)
		return sendErr
	})
	if err != nil {
		return err
	}

	if err := s.store.UpdateProposalStatus(ctx, id, models.ProposalStatusSent); err != nil {
		return err
	}
	s.logger.Info("proposal delivered", "proposal_id", id, "recipients", len(recipients), "message_id", messageID)
	s.events.Publish(events.ProposalDelivered, id, map[string]interface{}{
		"recipients": recipients,
		"message_id": messageID,
	})
	return nil
}

func deliveryHTML(title, url string) string {
	body := fmt.Sprintf("<p>Bonjour,</p><p>Veuillez trouver ci-joint notre proposition « %s ».</p>", html.EscapeString(title))
	if url != "" {
		body += fmt.Sprintf(`<p>Elle est aussi disponible <a href="%s">en ligne</a>.</p>`, html.EscapeString(url))
	}
	return body
}
