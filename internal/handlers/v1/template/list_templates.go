package template

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

type ListTemplatesInput struct {
	UserID          string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	IncludeInactive bool   `query:"includeInactive" doc:"Also return deactivated templates"`
}

type ListTemplatesResponseBody struct {
	Templates []Template `json:"templates"`
}

type ListTemplatesOutput struct {
	Body ListTemplatesResponseBody
}

type templateLister interface {
	ListTemplates(ctx context.Context, user uuid.UUID, activeOnly bool) ([]ledger.Template, error)
}

// ListTemplatesHandler handles GET /v1/templates.
type ListTemplatesHandler struct {
	TemplateService templateLister
	Currency        string
	Now             func() time.Time
}

func NewListTemplatesHandler(svc templateLister, currencyCode string) *ListTemplatesHandler {
	return &ListTemplatesHandler{TemplateService: svc, Currency: currencyCode, Now: time.Now}
}

func (h *ListTemplatesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-templates",
		Method:      http.MethodGet,
		Path:        "/v1/templates",
		Summary:     "List templates",
		Description: "Returns the caller's recurring templates.",
		Tags:        []string{"Templates"},
	}, h.handle)
}

func (h *ListTemplatesHandler) handle(ctx context.Context, input *ListTemplatesInput) (*ListTemplatesOutput, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return nil, err
	}
	templates, err := h.TemplateService.ListTemplates(ctx, user, !input.IncludeInactive)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to list templates")
	}
	logging.GetLogData(ctx).AddData("templateCount", len(templates))

	today := h.Now()
	resp := ListTemplatesResponseBody{Templates: make([]Template, len(templates))}
	for i, t := range templates {
		resp.Templates[i] = fromLedger(t, h.Currency, today)
	}
	return &ListTemplatesOutput{Body: resp}, nil
}
