package template

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
)

// CreateTemplateBody is the request body for creating a recurring template.
type CreateTemplateBody struct {
	CategoryID     *string `json:"categoryID,omitempty" doc:"Category UUID, omit for uncategorized"`
	Amount         string  `json:"amount" required:"true" doc:"Signed decimal amount of every instance"`
	Description    string  `json:"description,omitempty" maxLength:"500"`
	Frequency      string  `json:"frequency" required:"true" enum:"daily,weekly,monthly,yearly"`
	Interval       int     `json:"interval,omitempty" default:"1" doc:"Step in frequency units, must be positive"`
	Anchor         string  `json:"anchor" required:"true" format:"date" doc:"First scheduled date"`
	EndDate        *string `json:"endDate,omitempty" format:"date" doc:"Last possible date"`
	MaxOccurrences int     `json:"maxOccurrences,omitempty" minimum:"0" doc:"Occurrence cap counted from the anchor, 0 for none"`
}

type CreateTemplateInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	Body   CreateTemplateBody
}

type CreateTemplateOutput struct {
	Body Template
}

type templateCreator interface {
	CreateTemplate(ctx context.Context, user uuid.UUID, in service.NewTemplate) (*ledger.Template, error)
}

// CreateTemplateHandler handles POST /v1/template.
type CreateTemplateHandler struct {
	TemplateService templateCreator
	Currency        string
	Now             func() time.Time
}

func NewCreateTemplateHandler(svc templateCreator, currencyCode string) *CreateTemplateHandler {
	return &CreateTemplateHandler{TemplateService: svc, Currency: currencyCode, Now: time.Now}
}

func (h *CreateTemplateHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-template",
		Method:        http.MethodPost,
		Path:          "/v1/template",
		Summary:       "Create recurring template",
		Description:   "Creates an active recurring template. Its instances appear when a period containing them is listed.",
		Tags:          []string{"Templates"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func parseCreateTemplateInput(input *CreateTemplateInput, code string) (uuid.UUID, service.NewTemplate, error) {
	body := input.Body
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return uuid.Nil, service.NewTemplate{}, err
	}
	categoryID, err := apierror.OptionalID("categoryID", body.CategoryID)
	if err != nil {
		return uuid.Nil, service.NewTemplate{}, err
	}
	amount, err := currency.ParseMinor(body.Amount, code)
	if err != nil {
		return uuid.Nil, service.NewTemplate{}, apierror.Invalid("amount", err)
	}
	frequency, err := ledger.ParseFrequency(body.Frequency)
	if err != nil {
		return uuid.Nil, service.NewTemplate{}, apierror.Invalid("frequency", err)
	}
	anchor, err := apierror.Date("anchor", body.Anchor)
	if err != nil {
		return uuid.Nil, service.NewTemplate{}, err
	}
	interval := body.Interval
	if interval == 0 {
		interval = 1
	}
	rule := ledger.Rule{
		Frequency:      frequency,
		Interval:       interval,
		Anchor:         anchor,
		MaxOccurrences: body.MaxOccurrences,
	}
	if body.EndDate != nil {
		end, err := apierror.Date("endDate", *body.EndDate)
		if err != nil {
			return uuid.Nil, service.NewTemplate{}, err
		}
		rule.EndDate = &end
	}
	return user, service.NewTemplate{
		CategoryID:  categoryID,
		Amount:      amount,
		Description: strings.TrimSpace(body.Description),
		Rule:        rule,
	}, nil
}

func (h *CreateTemplateHandler) handle(ctx context.Context, input *CreateTemplateInput) (*CreateTemplateOutput, error) {
	user, in, err := parseCreateTemplateInput(input, h.Currency)
	if err != nil {
		return nil, err
	}
	logging.GetLogData(ctx).AddData("userID", user)

	tpl, err := h.TemplateService.CreateTemplate(ctx, user, in)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to create template")
	}
	return &CreateTemplateOutput{Body: fromLedger(*tpl, h.Currency, h.Now())}, nil
}
