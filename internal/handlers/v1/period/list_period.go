package period

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/handlers/v1/transaction"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
)

type ListPeriodResponseBody struct {
	Start        string                    `json:"start" doc:"First day of the period"`
	End          string                    `json:"end" doc:"Last day of the period"`
	Categories   []CategoryAggregate       `json:"categories" doc:"Per-category totals ordered by name, uncategorized last"`
	Totals       Totals                    `json:"totals"`
	Transactions []transaction.Transaction `json:"transactions" doc:"Every transaction of the period, recurring instances included"`
}

type ListPeriodOutput struct {
	Body ListPeriodResponseBody
}

type periodLister interface {
	ListPeriod(ctx context.Context, user uuid.UUID, period ledger.Period) (*service.PeriodView, error)
}

// ListPeriodHandler handles GET /v1/ledger/period.
type ListPeriodHandler struct {
	LedgerService periodLister
	Currency      string
}

func NewListPeriodHandler(svc periodLister, currencyCode string) *ListPeriodHandler {
	return &ListPeriodHandler{LedgerService: svc, Currency: currencyCode}
}

func (h *ListPeriodHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-period",
		Method:      http.MethodGet,
		Path:        "/v1/ledger/period",
		Summary:     "List period",
		Description: "Materializes the recurring transactions due in the period, then returns its transactions and per-category totals.",
		Tags:        []string{"Ledger"},
	}, h.handle)
}

func (h *ListPeriodHandler) handle(ctx context.Context, input *PeriodQuery) (*ListPeriodOutput, error) {
	user, period, err := parsePeriodQuery(*input)
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	stopTimer := logData.AddTiming("listPeriodMs")
	view, err := h.LedgerService.ListPeriod(ctx, user, period)
	stopTimer()
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to list period")
	}
	logData.AddData("transactionCount", len(view.Transactions))

	txs := make([]transaction.Transaction, len(view.Transactions))
	for i, tx := range view.Transactions {
		txs[i] = transaction.FromLedger(tx, h.Currency)
	}
	return &ListPeriodOutput{Body: ListPeriodResponseBody{
		Start:        ledger.DateKey(period.Start),
		End:          ledger.DateKey(period.End),
		Categories:   categoryAggregates(view.Aggregates, view.Registry, h.Currency),
		Totals:       totals(view.Aggregates, h.Currency),
		Transactions: txs,
	}}, nil
}
