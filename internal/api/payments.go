package api

import (
	"errors"
	"net/http"
	"strings"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/internal/store"
)

// PaymentStatus devolve a transação do próprio chamador pela referência.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorize(w, r, "")
	if !ok {
		return
	}

	reference := strings.TrimSpace(r.URL.Query().Get("reference"))
	if reference == "" {
		writeError(w, http.StatusBadRequest, "reference required")
		return
	}

	txn, err := h.transactions.GetByReference(r.Context(), sess.UserID, reference)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error("get transaction", "module", "api", "action", "get", "resource", "transaction", "result", "failed", "error", err)
		}
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": txn})
}
