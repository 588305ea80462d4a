package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

func (s *LedgerService) CreateCategory(ctx context.Context, user uuid.UUID, in NewCategory) (*ledger.Category, error) {
	if user == uuid.Nil {
		return nil, ledger.NewValidationError("user id is required")
	}
	id, err := s.newID()
	if err != nil {
		return nil, ledger.NewStorageError("generate id", err)
	}
	c := ledger.Category{
		ID:           id,
		UserID:       user,
		Name:         strings.TrimSpace(in.Name),
		Kind:         in.Kind,
		BudgetTarget: in.BudgetTarget,
		CreatedAt:    s.now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.InsertCategory(ctx, c); err != nil {
		return nil, ledger.NewStorageError("insert category", err)
	}
	// Every cached period gains an entry for the new category.
	s.cache.InvalidateUser(user)
	return &c, nil
}

// ListCategories returns the user's categories ordered by name.
func (s *LedgerService) ListCategories(ctx context.Context, user uuid.UUID) ([]ledger.Category, error) {
	reg, err := s.registry(ctx, user)
	if err != nil {
		return nil, err
	}
	return reg.All(), nil
}

// SetBudgetTarget sets the per-period target of a category; nil clears it.
func (s *LedgerService) SetBudgetTarget(ctx context.Context, user, categoryID uuid.UUID, target *int64) error {
	if target != nil && *target < 0 {
		return ledger.NewValidationError("budget target must be non-negative")
	}
	if err := s.store.UpdateCategoryTarget(ctx, user, categoryID, target); err != nil {
		return storeError("update category target", err, "category %s not found", categoryID)
	}
	s.cache.InvalidateCategory(user, categoryID)
	return nil
}

// CreateTemplate validates the rule and the amount sign before storing an active
// template. Its occurrences are materialized when a period containing them is read.
func (s *LedgerService) CreateTemplate(ctx context.Context, user uuid.UUID, in NewTemplate) (*ledger.Template, error) {
	id, err := s.newID()
	if err != nil {
		return nil, ledger.NewStorageError("generate id", err)
	}
	now := s.now()
	rule := in.Rule
	rule.Anchor = ledger.DateOf(rule.Anchor)
	if rule.EndDate != nil {
		end := ledger.DateOf(*rule.EndDate)
		rule.EndDate = &end
	}
	tpl := ledger.Template{
		ID:          id,
		UserID:      user,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Description: in.Description,
		Rule:        rule,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	reg, err := s.registry(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := reg.CheckAssignment(tpl.CategoryID, tpl.Amount); err != nil {
		return nil, err
	}

	if err := s.store.InsertTemplate(ctx, tpl); err != nil {
		return nil, ledger.NewStorageError("insert template", err)
	}
	// Cached periods inside the template window are now missing occurrences.
	s.cache.InvalidateUser(user)
	return &tpl, nil
}

// DeactivateTemplate stops future materialization. Instances that already exist
// are kept.
func (s *LedgerService) DeactivateTemplate(ctx context.Context, user, id uuid.UUID) error {
	if err := s.store.SetTemplateActive(ctx, user, id, false); err != nil {
		return storeError("deactivate template", err, "template %s not found", id)
	}
	return nil
}

func (s *LedgerService) ListTemplates(ctx context.Context, user uuid.UUID, activeOnly bool) ([]ledger.Template, error) {
	templates, err := s.store.QueryTemplates(ctx, user, activeOnly)
	if err != nil {
		return nil, ledger.NewStorageError("query templates", err)
	}
	return templates, nil
}
