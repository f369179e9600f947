package api

import (
	"errors"
	"net/http"
	"strings"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/internal/store"
	"marketplace-gateway/middleware/session/domain"
)

func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, domain.RoleAdmin); !ok {
		return
	}

	limit, offset := pagination(r)
	pending, err := h.profiles.ListPending(r.Context(), limit, offset)
	if err != nil {
		logger.Error("list pending profiles", "module", "api", "action", "list", "resource", "profile", "result", "failed", "error", err)
		writeError(w, http.StatusBadRequest, "Could not list approvals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pending": pending})
}

type approveRequest struct {
	UserID string `json:"userId"`
}

// Approve marca o usuário como aprovado e garante a carteira dele.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	admin, ok := h.authorize(w, r, domain.RoleAdmin)
	if !ok {
		return
	}

	var req approveRequest
	_ = decodeBody(w, r, &req)
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	if err := h.profiles.SetApprovalStatus(r.Context(), userID, string(domain.ApprovalApproved)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Error("approve profile", "module", "api", "action", "update", "resource", "profile", "result", "failed", "error", err)
		writeError(w, http.StatusBadRequest, "Could not approve user")
		return
	}

	// a aprovação já foi gravada; falha na carteira não desfaz
	if _, err := h.wallets.Ensure(r.Context(), userID, h.defaultCurrency); err != nil {
		logger.Warn("ensure wallet after approval", "module", "api", "action", "create", "resource", "wallet", "result", "failed", "user_id", userID, "error", err)
	}

	logger.Info("profile approved", "module", "api", "action", "update", "resource", "profile", "result", "ok", "user_id", userID, "admin_id", admin.UserID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, domain.RoleAdmin); !ok {
		return
	}

	limit, offset := pagination(r)
	list, err := h.transactions.ListByType(r.Context(), store.TransactionTypePayout, limit, offset)
	if err != nil {
		logger.Error("list withdrawals", "module", "api", "action", "list", "resource", "transaction", "result", "failed", "error", err)
		writeError(w, http.StatusBadRequest, "Could not list withdrawals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"withdrawals": list})
}
