package api

import (
	"errors"
	"net/http"
	"strings"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/middleware/session"
	"marketplace-gateway/middleware/session/domain"
)

// authorize resolve o chamador e, com role preenchido, exige perfil aprovado
// com esse papel. Na falha já escreve a resposta de erro e devolve false.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, role domain.Role) (domain.Session, bool) {
	res, err := h.resolver.Resolve(r.Context(), session.RequestCredentials{R: r})
	session.WriteCredentials(w, res.Refreshed)

	switch {
	case errors.Is(err, domain.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return domain.Session{}, false
	case err != nil:
		logger.Warn("resolve profile", "module", "api", "action", "authorize", "result", "failed", "path", r.URL.Path, "error", err)
		if role == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		} else {
			writeError(w, http.StatusForbidden, "Profile missing")
		}
		return domain.Session{}, false
	}

	sess := res.Session
	if role == "" {
		return sess, true
	}
	if sess.ApprovalStatus != domain.ApprovalApproved {
		writeError(w, http.StatusForbidden, "Approval required")
		return domain.Session{}, false
	}
	if sess.Role != role {
		writeError(w, http.StatusForbidden, roleLabel(role)+" role required")
		return domain.Session{}, false
	}
	return sess, true
}

func roleLabel(r domain.Role) string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
