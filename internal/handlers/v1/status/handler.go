package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carson-networks/budget-ledger/internal/logging"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Store   Pinger
	Timeout time.Duration
}

// NewHandler creates a status handler. A nil store is always healthy.
func NewHandler(store Pinger) Handler {
	return Handler{Store: store, Timeout: 2 * time.Second}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	if h.Store != nil {
		ctx, cancel := context.WithTimeout(req.Context(), h.Timeout)
		defer cancel()

		stopTimer := logData.AddTiming("pingMs")
		err := h.Store.Ping(ctx)
		stopTimer()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return errors.Join(errors.New("status: store unreachable"), err)
		}
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
