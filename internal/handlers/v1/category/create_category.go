package category

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
)

// CreateCategoryBody is the request body for creating a category.
type CreateCategoryBody struct {
	Name         string  `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Category name"`
	Kind         string  `json:"kind" required:"true" enum:"expense,income" doc:"Category kind"`
	BudgetTarget *string `json:"budgetTarget,omitempty" doc:"Non-negative decimal budget target per period"`
}

type CreateCategoryInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	Body   CreateCategoryBody
}

type CreateCategoryOutput struct {
	Body Category
}

type categoryCreator interface {
	CreateCategory(ctx context.Context, user uuid.UUID, in service.NewCategory) (*ledger.Category, error)
}

// CreateCategoryHandler handles POST /v1/category.
type CreateCategoryHandler struct {
	CategoryService categoryCreator
	Currency        string
}

func NewCreateCategoryHandler(svc categoryCreator, currencyCode string) *CreateCategoryHandler {
	return &CreateCategoryHandler{CategoryService: svc, Currency: currencyCode}
}

func (h *CreateCategoryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-category",
		Method:        http.MethodPost,
		Path:          "/v1/category",
		Summary:       "Create category",
		Description:   "Creates an expense or income category with an optional budget target.",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func parseCreateCategoryInput(input *CreateCategoryInput, code string) (uuid.UUID, service.NewCategory, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return uuid.Nil, service.NewCategory{}, err
	}
	kind, err := ledger.ParseKind(input.Body.Kind)
	if err != nil {
		return uuid.Nil, service.NewCategory{}, apierror.Invalid("kind", err)
	}
	target, err := currency.ParseOptionalMinor(input.Body.BudgetTarget, code)
	if err != nil {
		return uuid.Nil, service.NewCategory{}, apierror.Invalid("budgetTarget", err)
	}
	return user, service.NewCategory{Name: input.Body.Name, Kind: kind, BudgetTarget: target}, nil
}

func (h *CreateCategoryHandler) handle(ctx context.Context, input *CreateCategoryInput) (*CreateCategoryOutput, error) {
	user, in, err := parseCreateCategoryInput(input, h.Currency)
	if err != nil {
		return nil, err
	}
	logging.GetLogData(ctx).AddData("userID", user)

	c, err := h.CategoryService.CreateCategory(ctx, user, in)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to create category")
	}
	return &CreateCategoryOutput{Body: fromLedger(*c, h.Currency)}, nil
}
