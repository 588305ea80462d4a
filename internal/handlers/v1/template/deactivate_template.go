package template

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

type DeactivateTemplateInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	ID     string `path:"id" doc:"Template UUID"`
}

type templateDeactivator interface {
	DeactivateTemplate(ctx context.Context, user, id uuid.UUID) error
}

// DeactivateTemplateHandler handles POST /v1/template/{id}/deactivate.
type DeactivateTemplateHandler struct {
	TemplateService templateDeactivator
}

func NewDeactivateTemplateHandler(svc templateDeactivator) *DeactivateTemplateHandler {
	return &DeactivateTemplateHandler{TemplateService: svc}
}

func (h *DeactivateTemplateHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "deactivate-template",
		Method:        http.MethodPost,
		Path:          "/v1/template/{id}/deactivate",
		Summary:       "Deactivate template",
		Description:   "Stops future instances. Instances that already exist are kept.",
		Tags:          []string{"Templates"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *DeactivateTemplateHandler) handle(ctx context.Context, input *DeactivateTemplateInput) (*struct{}, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return nil, err
	}
	id, err := apierror.ID("id", input.ID)
	if err != nil {
		return nil, err
	}
	logging.GetLogData(ctx).AddData("templateID", id)

	if err := h.TemplateService.DeactivateTemplate(ctx, user, id); err != nil {
		return nil, apierror.FromLedger(err, "failed to deactivate template")
	}
	return nil, nil
}
