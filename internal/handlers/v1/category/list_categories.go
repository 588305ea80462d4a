package category

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

type ListCategoriesInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
}

type ListCategoriesResponseBody struct {
	Categories []Category `json:"categories" doc:"Categories ordered by name"`
}

type ListCategoriesOutput struct {
	Body ListCategoriesResponseBody
}

type categoryLister interface {
	ListCategories(ctx context.Context, user uuid.UUID) ([]ledger.Category, error)
}

// ListCategoriesHandler handles GET /v1/categories.
type ListCategoriesHandler struct {
	CategoryService categoryLister
	Currency        string
}

func NewListCategoriesHandler(svc categoryLister, currencyCode string) *ListCategoriesHandler {
	return &ListCategoriesHandler{CategoryService: svc, Currency: currencyCode}
}

func (h *ListCategoriesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/v1/categories",
		Summary:     "List categories",
		Description: "Returns every category of the caller.",
		Tags:        []string{"Categories"},
	}, h.handle)
}

func (h *ListCategoriesHandler) handle(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return nil, err
	}
	categories, err := h.CategoryService.ListCategories(ctx, user)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to list categories")
	}
	logging.GetLogData(ctx).AddData("categoryCount", len(categories))

	resp := ListCategoriesResponseBody{Categories: make([]Category, len(categories))}
	for i, c := range categories {
		resp.Categories[i] = fromLedger(c, h.Currency)
	}
	return &ListCategoriesOutput{Body: resp}, nil
}
