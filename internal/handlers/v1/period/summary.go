package period

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type SummaryResponseBody struct {
	Start      string              `json:"start"`
	End        string              `json:"end"`
	Categories []CategoryAggregate `json:"categories"`
	Totals     Totals              `json:"totals"`
	Cached     bool                `json:"cached" doc:"Served from the aggregate cache"`
}

type SummaryOutput struct {
	Body SummaryResponseBody
}

type summarizer interface {
	Summary(ctx context.Context, user uuid.UUID, period ledger.Period) (*service.Summary, error)
}

// SummaryHandler handles GET /v1/ledger/summary.
type SummaryHandler struct {
	LedgerService summarizer
	Currency      string
}

func NewSummaryHandler(svc summarizer, currencyCode string) *SummaryHandler {
	return &SummaryHandler{LedgerService: svc, Currency: currencyCode}
}

func (h *SummaryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "period-summary",
		Method:      http.MethodGet,
		Path:        "/v1/ledger/summary",
		Summary:     "Period summary",
		Description: "Returns only the per-category totals of a period.",
		Tags:        []string{"Ledger"},
	}, h.handle)
}

func (h *SummaryHandler) handle(ctx context.Context, input *PeriodQuery) (*SummaryOutput, error) {
	user, period, err := parsePeriodQuery(*input)
	if err != nil {
		return nil, err
	}

	summary, err := h.LedgerService.Summary(ctx, user, period)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to summarize period")
	}
	logging.GetLogData(ctx).AddData("cached", summary.Cached)

	return &SummaryOutput{Body: SummaryResponseBody{
		Start:      ledger.DateKey(period.Start),
		End:        ledger.DateKey(period.End),
		Categories: categoryAggregates(summary.Aggregates, summary.Registry, h.Currency),
		Totals:     totals(summary.Aggregates, h.Currency),
		Cached:     summary.Cached,
	}}, nil
}
