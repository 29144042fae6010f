package handlers

import (
	"net/http"

	"github.com/propale/propale/internal/api/dto"
	"github.com/propale/propale/internal/api/middleware"
	"github.com/propale/propale/internal/builder"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/views"
)

// BuilderHandler edits the server-side draft of a proposal. Each profile has
// its own draft per proposal until it is saved or discarded.
type BuilderHandler struct {
	builder *services.BuilderService
}

func NewBuilderHandler(b *services.BuilderService) *BuilderHandler {
	return &BuilderHandler{builder: b}
}

func (h *BuilderHandler) draftKey(w http.ResponseWriter, r *http.Request) (views.DraftKey, bool) {
	proposalID, ok := urlUUID(w, r, "proposalId")
	if !ok {
		return views.DraftKey{}, false
	}
	return views.DraftKey{ProfileID: middleware.GetProfileID(r.Context()), ProposalID: proposalID}, true
}

func (h *BuilderHandler) respond(w http.ResponseWriter, r *http.Request, doc *builder.Document, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *BuilderHandler) Open(w http.ResponseWriter, r *http.Request) {
	key, ok := h.draftKey(w, r)
	if !ok {
		return
	}
	doc, err := h.builder.Open(r.Context(), key)
	h.respond(w, r, doc, err)
}

// AddItem appends a new block, or copies a library block at the given index
// when library_id is set.
func (h *BuilderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	key, ok := h.draftKey(w, r)
	if !ok {
		return
	}
	var req dto.BuilderItemRequest
	if !decode(w, r, &req) {
		return
	}

	if req.LibraryID != nil {
		doc, err := h.builder.Insert(r.Context(), key, *req.LibraryID, req.Index)
		h.respond(w, r, doc, err)
		return
	}
	doc, err := h.builder.Add(r.Context(), key, itemFrom(req))
	h.respond(w, r, doc, err)
}

func (h *BuilderHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	key, ok := h.draftKey(w, r)
	if !ok {
		return
	}
	itemID, ok := urlUUID(w, r, "itemId")
	if !ok {
		return
	}
	var req dto.BuilderItemRequest
	if !decode(w, r, &req) {
		return
	}

	item := itemFrom(req)
	item.ID = itemID
	doc, err := h.builder.Edit(r.Context(), key, item)
	h.respond(w, r, doc, err)
}

func (h *BuilderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, ok := h.draftKey(w, r)
	if !ok {
		return
	}
	itemID, ok := urlUUID(w, r, "itemId")
	if !ok {
		return
	}
	doc, err := h.builder.Remove(r.Context(), key, itemID)
	h.respond(w, r, doc, err)
}

func (h *BuilderHandler) Move(w http.ResponseWriter, r *http.Request) {
	key, ok := h.draftKey(w, r)
	if !ok {
		return
	}
	var req dto.MoveRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.builder.Move(r.Context(), key, req.From, req.To)
	h.respond(w, r, doc, err)
}

func (h *BuilderHandler) Save(w http.ResponseWriter, r *http.Request) {
	key, ok := h.draftKey(w, r)
	if !ok {
		return
	}
	doc, err := h.builder.Save(r.Context(), key)
	h.respond(w, r, doc, err)
}

func (h *BuilderHandler) Discard(w http.ResponseWriter, r *http.Request) {
	key, ok := h.draftKey(w, r)
	if !ok {
		return
	}
	h.builder.Discard(key)
	w.WriteHeader(http.StatusNoContent)
}

func itemFrom(req dto.BuilderItemRequest) builder.Item {
	return builder.Item{
		Type:         builder.ItemType(req.Type),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Quantity:     req.Quantity,
		ShowName:     req.ShowName,
		ShowPrice:    req.ShowPrice,
		ShowQuantity: req.ShowQuantity,
	}
}
