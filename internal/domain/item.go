package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Item is one shopping-list entry. ColocID is set at creation and never
// reassigned: an item must never be retrievable or mutable through another
// coloc's context.
type Item struct {
	ID             string     `json:"id"`
	ColocID        string     `json:"colocId"`
	Name           string     `json:"name"`
	AddedBy        string     `json:"addedBy"`
	Category       string     `json:"category"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	EstimatedPrice float64    `json:"estimatedPrice"`
	AssignedTo     string     `json:"assignedTo"`
	Note           string     `json:"note"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	Bought         bool       `json:"bought"`
	Urgent         bool       `json:"urgent"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ItemPatch is a partial update. Nil fields are left untouched.
// DueDateSet distinguishes "clear the due date" from "leave it alone".
type ItemPatch struct {
	Name           *string
	Category       *string
	Quantity       *float64
	Unit           *string
	EstimatedPrice *float64
	AssignedTo     *string
	Note           *string
	DueDate        *time.Time
	DueDateSet     bool
	Bought         *bool
	Urgent         *bool
}

// Apply writes the set fields of the patch onto it and bumps UpdatedAt.
func (p ItemPatch) Apply(it *Item, now time.Time) {
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		it.Unit = *p.Unit
	}
	if p.EstimatedPrice != nil {
		it.EstimatedPrice = *p.EstimatedPrice
	}
	if p.AssignedTo != nil {
		it.AssignedTo = *p.AssignedTo
	}
	if p.Note != nil {
		it.Note = *p.Note
	}
	if p.DueDateSet {
		it.DueDate = p.DueDate
	}
	if p.Bought != nil {
		it.Bought = *p.Bought
	}
	if p.Urgent != nil {
		it.Urgent = *p.Urgent
	}
	it.UpdatedAt = now
}

// Item status filter values.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// SortKey selects the ordering of a list query.
type SortKey string

const (
	SortCreated  SortKey = "createdAt"
	SortName     SortKey = "name"
	SortCategory SortKey = "category"
	SortUrgent   SortKey = "urgent"
	SortDueDate  SortKey = "dueDate"
)

// ParseSortKey maps a query parameter to a sort key, defaulting to creation
// order for anything unknown.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortName, SortCategory, SortUrgent, SortDueDate:
		return SortKey(s)
	default:
		return SortCreated
	}
}

// ItemFilter narrows and orders a per-coloc item query.
type ItemFilter struct {
	Search   string  // case-insensitive substring match on name
	Category string  // exact category match
	Status   string  // "", StatusPending or StatusDone
	SortBy   SortKey // zero value sorts by creation order
}

// Match reports whether it passes the filter.
func (f ItemFilter) Match(it *Item) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	switch f.Status {
	case StatusPending:
		if it.Bought {
			return false
		}
	case StatusDone:
		if !it.Bought {
			return false
		}
	}
	return true
}

// SortItems orders items in place according to key. Ties always fall back to
// creation time so the ordering is deterministic.
func SortItems(items []*Item, key SortKey) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch key {
		case SortName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case SortCategory:
			if a.Category != b.Category {
				return a.Category < b.Category
			}
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case SortUrgent:
			// Urgent pending items jump ahead of everything else,
			// regardless of when they were added.
			ra, rb := urgencyRank(a), urgencyRank(b)
			if ra != rb {
				return ra < rb
			}
		case SortDueDate:
			// Ascending by date, items without a date last.
			switch {
			case a.DueDate != nil && b.DueDate == nil:
				return true
			case a.DueDate == nil && b.DueDate != nil:
				return false
			case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
				return a.DueDate.Before(*b.DueDate)
			}
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func urgencyRank(it *Item) int {
	if it.Urgent && !it.Bought {
		return 0
	}
	return 1
}

// CoerceQuantity turns a loosely-typed quantity into a positive float,
// falling back to 1 when the value is absent or unparsable.
func CoerceQuantity(v any) float64 {
	q, ok := coerceFloat(v)
	if !ok || q <= 0 {
		return 1
	}
	return q
}

// CoercePrice turns a loosely-typed price into a non-negative float,
// falling back to 0 when the value is absent or unparsable.
func CoercePrice(v any) float64 {
	p, ok := coerceFloat(v)
	if !ok || p < 0 {
		return 0
	}
	return p
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
