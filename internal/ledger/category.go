package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Kind says whether a category collects spending or income.
type Kind int8

const (
	KindExpense Kind = iota
	KindIncome
)

func (k Kind) String() string {
	switch k {
	case KindExpense:
		return "expense"
	case KindIncome:
		return "income"
	default:
		return "unknown"
	}
}

func (k Kind) Valid() bool { return k == KindExpense || k == KindIncome }

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense":
		return KindExpense, nil
	case "income":
		return KindIncome, nil
	default:
		return KindExpense, NewValidationError("unknown category kind %q", s)
	}
}

// AllowsAmount reports whether a signed amount is consistent with the kind.
// Zero is accepted by both kinds.
func (k Kind) AllowsAmount(amount int64) bool {
	switch k {
	case KindExpense:
		return amount <= 0
	case KindIncome:
		return amount >= 0
	default:
		return false
	}
}

// Category is a spending or income bucket with an optional per-period budget target
// in minor units.
type Category struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Kind         Kind
	BudgetTarget *int64
	CreatedAt    time.Time
}

// Target returns the budget target and whether one is set.
func (c Category) Target() (int64, bool) {
	if c.BudgetTarget == nil {
		return 0, false
	}
	return *c.BudgetTarget, true
}

func (c Category) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("category name is required")
	}
	if !c.Kind.Valid() {
		return NewValidationError("category %s has unknown kind %d", c.ID, c.Kind)
	}
	if c.BudgetTarget != nil && *c.BudgetTarget < 0 {
		return NewValidationError("category %s budget target must be non-negative", c.ID)
	}
	return nil
}

// Registry is the set of valid categories of one user.
type Registry struct {
	byID map[uuid.UUID]Category
}

// NewRegistry validates every category and rejects duplicate identifiers.
func NewRegistry(categories []Category) (*Registry, error) {
	r := &Registry{byID: make(map[uuid.UUID]Category, len(categories))}
	for _, c := range categories {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, NewValidationError("duplicate category id %s", c.ID)
		}
		r.byID[c.ID] = c
	}
	return r, nil
}

func (r *Registry) Lookup(id uuid.UUID) (Category, bool) {
	if r == nil {
		return Category{}, false
	}
	c, ok := r.byID[id]
	return c, ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byID)
}

// All returns the categories ordered by name, then ID.
func (r *Registry) All() []Category {
	if r == nil {
		return nil
	}
	out := make([]Category, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// CheckAssignment validates that an optional category resolves and accepts the
// amount's sign.
func (r *Registry) CheckAssignment(categoryID uuid.NullUUID, amount int64) error {
	if !categoryID.Valid {
		return nil
	}
	c, ok := r.Lookup(categoryID.UUID)
	if !ok {
		return NewValidationError("category %s does not exist", categoryID.UUID)
	}
	if !c.Kind.AllowsAmount(amount) {
		return NewValidationError("amount %d does not match %s category %q", amount, c.Kind, c.Name)
	}
	return nil
}
