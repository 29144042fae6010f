// Package builder composes the content of a proposal in memory. A Document is
// a reusable Library of blocks and the ordered Content being edited; saving
// turns the content into proposal needs and paragraphs.
package builder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/database/models"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidItemType = errors.New("invalid item type")
)

type ItemType string

const (
	ItemDescription ItemType = "description"
	ItemParagraph   ItemType = "paragraph"
	ItemNeed        ItemType = "need"
	ItemHeader      ItemType = "header"
	ItemPrice       ItemType = "price"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemDescription, ItemParagraph, ItemNeed, ItemHeader, ItemPrice:
		return true
	}
	return false
}

type Item struct {
	ID           uuid.UUID `json:"id"`
	Type         ItemType  `json:"type"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price,omitempty"`
	Quantity     int       `json:"quantity,omitempty"`
	ShowName     bool      `json:"show_name"`
	ShowPrice    bool      `json:"show_price"`
	ShowQuantity bool      `json:"show_quantity"`
}

// Document is not safe for concurrent use.
type Document struct {
	ProposalID uuid.UUID `json:"proposal_id"`
	Library    []Item    `json:"library"`
	Content    []Item    `json:"content"`
}

func NewDocument(proposalID uuid.UUID, library, content []Item) *Document {
	d := &Document{
		ProposalID: proposalID,
		Library:    append([]Item{}, library...),
		Content:    append([]Item{}, content...),
	}
	return d
}

// Add appends item to the content under a fresh id.
func (d *Document) Add(item Item) (Item, error) {
	if !item.Type.Valid() {
		return Item{}, ErrInvalidItemType
	}
	item.ID = uuid.New()
	d.Content = append(d.Content, item)
	return item, nil
}

// Insert copies a library block into the content at index. An index equal to
// the content length appends.
func (d *Document) Insert(libraryID uuid.UUID, index int) (Item, error) {
	if index < 0 || index > len(d.Content) {
		return Item{}, ErrIndexOutOfRange
	}
	src := -1
	for i := range d.Library {
		if d.Library[i].ID == libraryID {
			src = i
			break
		}
	}
	if src < 0 {
		return Item{}, fmt.Errorf("library %w", ErrItemNotFound)
	}

	item := d.Library[src]
	item.ID = uuid.New()

	d.Content = append(d.Content, Item{})
	copy(d.Content[index+1:], d.Content[index:])
	d.Content[index] = item
	return item, nil
}

// Edit replaces the content item with the same id, keeping its position.
func (d *Document) Edit(item Item) error {
	if !item.Type.Valid() {
		return ErrInvalidItemType
	}
	i := d.indexOf(item.ID)
	if i < 0 {
		return ErrItemNotFound
	}
	d.Content[i] = item
	return nil
}

func (d *Document) Remove(id uuid.UUID) error {
	i := d.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	d.Content = append(d.Content[:i], d.Content[i+1:]...)
	return nil
}

// Move shifts the item at from to index to, sliding the others.
func (d *Document) Move(from, to int) error {
	n := len(d.Content)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	item := d.Content[from]
	if from < to {
		copy(d.Content[from:to], d.Content[from+1:to+1])
	} else {
		copy(d.Content[to+1:from+1], d.Content[to:from])
	}
	d.Content[to] = item
	return nil
}

func (d *Document) indexOf(id uuid.UUID) int {
	for i := range d.Content {
		if d.Content[i].ID == id {
			return i
		}
	}
	return -1
}

// Lines splits the content into needs and paragraphs. Position is the index
// in the whole document so both lists interleave back in order.
func (d *Document) Lines() ([]models.Need, []models.Paragraph) {
	needs := make([]models.Need, 0)
	paragraphs := make([]models.Paragraph, 0)
	for pos, item := range d.Content {
		if item.Type == ItemNeed {
			needs = append(needs, models.Need{
				ProposalID:   d.ProposalID,
				Position:     pos,
				Name:         item.Name,
				Description:  item.Description,
				Price:        item.Price,
				Quantity:     item.Quantity,
				ShowName:     item.ShowName,
				ShowPrice:    item.ShowPrice,
				ShowQuantity: item.ShowQuantity,
			})
			continue
		}
		paragraphs = append(paragraphs, models.Paragraph{
			ProposalID:  d.ProposalID,
			Position:    pos,
			Type:        models.ParagraphType(item.Type),
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			ShowName:    item.ShowName,
			ShowPrice:   item.ShowPrice,
		})
	}
	return needs, paragraphs
}

// Total is the sum of price x quantity over the needs of the content.
func (d *Document) Total() float64 {
	var total float64
	for _, item := range d.Content {
		if item.Type == ItemNeed {
			total += item.Price * float64(item.Quantity)
		}
	}
	return total
}

// ContentFromProposal rebuilds the ordered content of a stored proposal.
func ContentFromProposal(p *models.Proposal) []Item {
	type positioned struct {
		pos  int
		item Item
	}
	all := make([]positioned, 0, len(p.Needs)+len(p.Paragraphs))
	for _, n := range p.Needs {
		all = append(all, positioned{n.Position, Item{
			ID:           n.ID,
			Type:         ItemNeed,
			Name:         n.Name,
			Description:  n.Description,
			Price:        n.Price,
			Quantity:     n.Quantity,
			ShowName:     n.ShowName,
			ShowPrice:    n.ShowPrice,
			ShowQuantity: n.ShowQuantity,
		}})
	}
	for _, para := range p.Paragraphs {
		all = append(all, positioned{para.Position, Item{
			ID:          para.ID,
			Type:        ItemType(para.Type),
			Name:        para.Name,
			Description: para.Description,
			Price:       para.Price,
			ShowName:    para.ShowName,
			ShowPrice:   para.ShowPrice,
		}})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].pos < all[j].pos })

	items := make([]Item, len(all))
	for i, p := range all {
		items[i] = p.item
	}
	return items
}

// LibraryFromDefaults turns the company default content into library blocks.
func LibraryFromDefaults(desc *models.DefaultDescription, paragraphs []models.DefaultParagraph) []Item {
	library := make([]Item, 0, len(paragraphs)+1)
	if desc != nil {
		library = append(library, Item{
			ID:          desc.ID,
			Type:        ItemDescription,
			Name:        desc.Name,
			Description: desc.Description,
			ShowName:    true,
		})
	}
	for _, p := range paragraphs {
		library = append(library, Item{
			ID:          p.ID,
			Type:        ItemParagraph,
			Name:        p.Name,
			Description: p.Description,
			ShowName:    true,
		})
	}
	return library
}
