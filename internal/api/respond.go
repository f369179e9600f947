package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"marketplace-gateway/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response", "module", "api", "action", "encode", "result", "failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// maxBodyBytes limita o corpo dos POSTs; acima disso o decode falha.
const maxBodyBytes = 1 << 20

// decodeBody lê o JSON do corpo com limite de tamanho.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// pagination lê limit/offset. limit fica em [1, 200] (padrão 50) e offset >= 0
// (padrão 0). Valor não numérico cai no padrão.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = min(max(n, 1), maxPageLimit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = max(n, 0)
		}
	}
	return limit, offset
}
