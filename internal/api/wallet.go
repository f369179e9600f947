package api

import (
	"net/http"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/middleware/session/domain"
)

// StudentWallet devolve a carteira do estudante; no primeiro acesso cria uma zerada.
func (h *Handler) StudentWallet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.authorize(w, r, domain.RoleStudent)
	if !ok {
		return
	}

	wallet, err := h.wallets.GetByUserID(r.Context(), sess.UserID)
	if err != nil {
		logger.Error("get wallet", "module", "api", "action", "get", "resource", "wallet", "result", "failed", "error", err)
		writeError(w, http.StatusBadRequest, "Wallet unavailable")
		return
	}
	if wallet == nil {
		wallet, err = h.wallets.Ensure(r.Context(), sess.UserID, h.studentCurrency)
		if err != nil {
			logger.Error("create wallet", "module", "api", "action", "create", "resource", "wallet", "result", "failed", "error", err)
			writeError(w, http.StatusBadRequest, "Wallet unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallet": wallet})
}
