package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/internal/store"
)

const (
	testimonialFeedSize  = 30
	minTestimonialLength = 10
)

func (h *Handler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	list, err := h.testimonials.ListApproved(r.Context(), testimonialFeedSize)
	if err != nil {
		logger.Error("list testimonials", "module", "api", "action", "list", "resource", "testimonial", "result", "failed", "error", err)
		writeError(w, http.StatusBadRequest, "Could not load testimonials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"testimonials": list})
}

type testimonialRequest struct {
	Name    any `json:"name"`
	Role    any `json:"role"`
	Message any `json:"message"`
	Rating  any `json:"rating"`
}

// CreateTestimonial valida a entrada e grava o depoimento como pendente.
func (h *Handler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	// corpo inválido (ou grande demais) é validado como vazio
	_ = decodeBody(w, r, &req)

	t, msg := validateTestimonial(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.testimonials.Create(r.Context(), t)
	if err != nil {
		logger.Error("create testimonial", "module", "api", "action", "create", "resource", "testimonial", "result", "failed", "error", err)
		writeError(w, http.StatusBadRequest, "Could not save testimonial")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "testimonial": created})
}

func validateTestimonial(req testimonialRequest) (store.Testimonial, string) {
	name := strings.TrimSpace(stringify(req.Name))
	role := strings.TrimSpace(stringify(req.Role))
	message := strings.TrimSpace(stringify(req.Message))

	if name == "" || role == "" || utf8.RuneCountInString(message) < minTestimonialLength {
		return store.Testimonial{}, "Invalid testimonial data"
	}

	rating, ok := number(req.Rating)
	if !ok || rating < 1 || rating > 5 || rating != math.Trunc(rating) {
		return store.Testimonial{}, "Rating must be between 1 and 5"
	}

	return store.Testimonial{
		Name:    name,
		Role:    role,
		Message: message,
		Rating:  int(rating),
	}, ""
}

// stringify converte escalares JSON em texto; objeto, array e null viram "".
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// number aceita número JSON ou string numérica.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
