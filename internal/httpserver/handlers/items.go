package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/colocapp/colocourses/internal/catalog"
	"github.com/colocapp/colocourses/internal/domain"
	"github.com/colocapp/colocourses/internal/httpserver/deps"
)

// itemRequest tolerates loosely-typed numeric fields: clients send quantity
// and price as numbers or strings ("1,5" included), so both arrive as any
// and go through coercion.
type itemRequest struct {
	Name           string  `json:"name"`
	AddedBy        string  `json:"addedBy"`
	Category       string  `json:"category"`
	Quantity       any     `json:"quantity"`
	Unit           string  `json:"unit"`
	EstimatedPrice any     `json:"estimatedPrice"`
	AssignedTo     string  `json:"assignedTo"`
	Note           string  `json:"note"`
	DueDate        *string `json:"dueDate"`
	Urgent         bool    `json:"urgent"`
}

// ListItems returns the coloc's items, filtered and sorted per query params.
func ListItems(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colocID := chi.URLParam(r, "colocID")
		if _, err := d.Registry.GroupByID(r.Context(), colocID); err != nil {
			writeError(w, d, err)
			return
		}

		q := r.URL.Query()
		f := domain.ItemFilter{
			Search:   q.Get("search"),
			Category: q.Get("category"),
			Status:   q.Get("status"),
			SortBy:   domain.ParseSortKey(q.Get("sortBy")),
		}
		items, err := d.Store.FindItems(r.Context(), colocID, f)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// CreateItem adds an item to the coloc's list, applying catalog defaults for
// the absent fields.
func CreateItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colocID := chi.URLParam(r, "colocID")
		if _, err := d.Registry.GroupByID(r.Context(), colocID); err != nil {
			writeError(w, d, err)
			return
		}

		var req itemRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, d, domain.Validationf("nom d'article requis"))
			return
		}
		unit := req.Unit
		if unit == "" {
			unit = catalog.DefaultUnit
		}
		if !d.Catalog.ValidUnit(unit) {
			writeError(w, d, domain.Validationf("unité inconnue: %s", unit))
			return
		}
		category := strings.TrimSpace(req.Category)
		if category == "" {
			category = catalog.DefaultCategory
		}
		addedBy := strings.TrimSpace(req.AddedBy)
		if addedBy == "" {
			writeError(w, d, domain.Validationf("nom de l'auteur requis"))
			return
		}
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			writeError(w, d, err)
			return
		}

		now := d.TimeNow()
		it := &domain.Item{
			ID:             uuid.NewString(),
			ColocID:        colocID,
			Name:           name,
			AddedBy:        addedBy,
			Category:       category,
			Quantity:       domain.CoerceQuantity(req.Quantity),
			Unit:           unit,
			EstimatedPrice: domain.CoercePrice(req.EstimatedPrice),
			AssignedTo:     strings.TrimSpace(req.AssignedTo),
			Note:           strings.TrimSpace(req.Note),
			DueDate:        dueDate,
			Urgent:         req.Urgent,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := d.Store.InsertItem(r.Context(), it); err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, it)
	}
}

// itemPatchRequest distinguishes absent fields (nil, untouched) from sent
// ones. An empty dueDate string clears the date.
type itemPatchRequest struct {
	Name           *string `json:"name"`
	Category       *string `json:"category"`
	Quantity       any     `json:"quantity"`
	Unit           *string `json:"unit"`
	EstimatedPrice any     `json:"estimatedPrice"`
	AssignedTo     *string `json:"assignedTo"`
	Note           *string `json:"note"`
	DueDate        *string `json:"dueDate"`
	Bought         *bool   `json:"bought"`
	Urgent         *bool   `json:"urgent"`
}

// UpdateItem applies a partial update. Both ids must match; the item's coloc
// can never change.
func UpdateItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemPatchRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, d, err)
			return
		}

		patch := domain.ItemPatch{
			Category:   req.Category,
			AssignedTo: req.AssignedTo,
			Note:       req.Note,
			Bought:     req.Bought,
			Urgent:     req.Urgent,
		}
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				writeError(w, d, domain.Validationf("nom d'article requis"))
				return
			}
			patch.Name = req.Name
		}
		if req.Unit != nil {
			if !d.Catalog.ValidUnit(*req.Unit) {
				writeError(w, d, domain.Validationf("unité inconnue: %s", *req.Unit))
				return
			}
			patch.Unit = req.Unit
		}
		if req.Quantity != nil {
			q := domain.CoerceQuantity(req.Quantity)
			patch.Quantity = &q
		}
		if req.EstimatedPrice != nil {
			p := domain.CoercePrice(req.EstimatedPrice)
			patch.EstimatedPrice = &p
		}
		if req.DueDate != nil {
			due, err := parseDueDate(req.DueDate)
			if err != nil {
				writeError(w, d, err)
				return
			}
			patch.DueDate = due
			patch.DueDateSet = true
		}

		it, err := d.Store.UpdateItem(r.Context(),
			chi.URLParam(r, "colocID"), chi.URLParam(r, "itemID"), patch)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, it)
	}
}

type deleteItemResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// DeleteItem removes one item.
func DeleteItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "itemID")
		err := d.Store.DeleteItem(r.Context(), chi.URLParam(r, "colocID"), itemID)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteItemResponse{Message: "Supprimé", ID: itemID})
	}
}

type clearBoughtResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

// ClearBought removes every bought item of the coloc.
func ClearBought(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		colocID := chi.URLParam(r, "colocID")
		if _, err := d.Registry.GroupByID(r.Context(), colocID); err != nil {
			writeError(w, d, err)
			return
		}

		deleted, err := d.Store.DeleteBoughtItems(r.Context(), colocID)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, clearBoughtResponse{
			Message:      fmt.Sprintf("%d article(s) supprimé(s)", deleted),
			DeletedCount: deleted,
		})
	}
}

// parseDueDate accepts RFC3339 or plain dates; an empty or nil value means
// no due date.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	return nil, domain.Validationf("date invalide: %s", s)
}
