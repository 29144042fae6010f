package web

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/propale/propale/internal/builder"
	"github.com/propale/propale/internal/database/models"
)

// DocumentRenderer produces the standalone HTML of a proposal, the input of
// the PDF renderer.
type DocumentRenderer struct {
	tmpl *template.Template
}

func NewDocumentRenderer() (*DocumentRenderer, error) {
	tmpl, err := template.New("proposal.html").Funcs(Funcs).ParseFS(TemplatesFS, "templates/documents/proposal.html")
	if err != nil {
		return nil, fmt.Errorf("parsing proposal document: %w", err)
	}
	return &DocumentRenderer{tmpl: tmpl}, nil
}

// ProposalDocument is the data of the proposal template.
type ProposalDocument struct {
	Title     string
	Status    string
	Prospect  string
	Siren     string
	Date      time.Time
	Items     []builder.Item
	Total     float64
	Generated time.Time
}

func NewProposalDocument(p *models.Proposal, prospect *models.Company) ProposalDocument {
	doc := builder.NewDocument(p.ID, nil, builder.ContentFromProposal(p))
	out := ProposalDocument{
		Title:     p.Title,
		Status:    string(p.Status),
		Date:      p.UpdatedAt,
		Items:     doc.Content,
		Total:     doc.Total(),
		Generated: time.Now(),
	}
	if prospect != nil {
		out.Prospect = prospect.Name
		out.Siren = prospect.Siren
	}
	return out
}

func (r *DocumentRenderer) Proposal(p *models.Proposal, prospect *models.Company) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, NewProposalDocument(p, prospect)); err != nil {
		return "", fmt.Errorf("rendering proposal: %w", err)
	}
	return buf.String(), nil
}
