package category

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

type SetTargetBody struct {
	BudgetTarget *string `json:"budgetTarget,omitempty" doc:"Non-negative decimal target; omit or null to clear"`
}

type SetTargetInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	ID     string `path:"id" doc:"Category UUID"`
	Body   SetTargetBody
}

type targetSetter interface {
	SetBudgetTarget(ctx context.Context, user, categoryID uuid.UUID, target *int64) error
}

// SetTargetHandler handles PUT /v1/category/{id}/target.
type SetTargetHandler struct {
	CategoryService targetSetter
	Currency        string
}

func NewSetTargetHandler(svc targetSetter, currencyCode string) *SetTargetHandler {
	return &SetTargetHandler{CategoryService: svc, Currency: currencyCode}
}

func (h *SetTargetHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "set-budget-target",
		Method:        http.MethodPut,
		Path:          "/v1/category/{id}/target",
		Summary:       "Set budget target",
		Description:   "Sets or clears the per-period budget target of a category.",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *SetTargetHandler) handle(ctx context.Context, input *SetTargetInput) (*struct{}, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return nil, err
	}
	id, err := apierror.ID("id", input.ID)
	if err != nil {
		return nil, err
	}
	target, err := currency.ParseOptionalMinor(input.Body.BudgetTarget, h.Currency)
	if err != nil {
		return nil, apierror.Invalid("budgetTarget", err)
	}

	logData := logging.GetLogData(ctx)
	logData.AddData("userID", user)
	logData.AddData("categoryID", id)

	if err := h.CategoryService.SetBudgetTarget(ctx, user, id, target); err != nil {
		return nil, apierror.FromLedger(err, "failed to set budget target")
	}
	return nil, nil
}
