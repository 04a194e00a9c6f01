/*
handlers.go - HTTP handlers for the batch report server

ENDPOINTS:
  GET /api/healthz              Liveness
  GET /api/accounts             All final account snapshots
  GET /api/accounts/{client}    One account by client id
  GET /api/rejections           Transactions the ledger rejected

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed client id
  - 404: Unknown client
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payments-engine/csvio"
	"github.com/warp/payments-engine/ledger"
)

// Handler serves the results of a finished batch. Both fields are
// read-only after construction, so handlers need no locking.
type Handler struct {
	snapshots []ledger.AccountSnapshot
	byClient  map[ledger.ClientID]ledger.AccountSnapshot
	rejected  *ledger.RejectionLog
}

// NewHandler creates a handler over the batch results. rejected may be
// nil when rejection collection was disabled.
func NewHandler(snaps []ledger.AccountSnapshot, rejected *ledger.RejectionLog) *Handler {
	byClient := make(map[ledger.ClientID]ledger.AccountSnapshot, len(snaps))
	for _, s := range snaps {
		byClient[s.ClientID] = s
	}
	return &Handler{snapshots: snaps, byClient: byClient, rejected: rejected}
}

// =============================================================================
// DTOs
// =============================================================================

// accountDTO mirrors the CSV output contract: amounts truncated to 4
// fractional digits at this boundary, full precision inside.
type accountDTO struct {
	Client    ledger.ClientID `json:"client"`
	Available string          `json:"available"`
	Held      string          `json:"held"`
	Total     string          `json:"total"`
	Locked    bool            `json:"locked"`
}

type rejectionDTO struct {
	Client ledger.ClientID      `json:"client"`
	Tx     ledger.TransactionID `json:"tx"`
	Reason string               `json:"reason"`
}

func toAccountDTO(s ledger.AccountSnapshot) accountDTO {
	return accountDTO{
		Client:    s.ClientID,
		Available: csvio.FormatAmount(s.Available),
		Held:      csvio.FormatAmount(s.Held),
		Total:     csvio.FormatAmount(s.Total),
		Locked:    s.Locked,
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListAccounts(w http.ResponseWriter, _ *http.Request) {
	out := make([]accountDTO, 0, len(h.snapshots))
	for _, s := range h.snapshots {
		out = append(out, toAccountDTO(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "client")
	id, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid client id"))
		return
	}

	snap, ok := h.byClient[ledger.ClientID(id)]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown client"))
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(snap))
}

func (h *Handler) ListRejections(w http.ResponseWriter, _ *http.Request) {
	out := []rejectionDTO{}
	if h.rejected != nil {
		for _, e := range h.rejected.All() {
			out = append(out, rejectionDTO{
				Client: e.ClientID,
				Tx:     e.TxID,
				Reason: e.Err.Error(),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
