package infra

import (
	"context"
	"net/http"

	"marketplace-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore exporta as decisões como contador por resultado e método.
//
// Key e Path ficam fora dos labels para manter a cardinalidade limitada.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

var _ domain.StatsStore = (*PrometheusStatsStore)(nil)

func NewPrometheusStatsStore(reg prometheus.Registerer) *PrometheusStatsStore {
	s := &PrometheusStatsStore{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_ratelimit_decisions_total",
				Help: "Total number of rate limit decisions by result and method",
			},
			[]string{"result", "method"},
		),
	}
	reg.MustRegister(s.decisions)
	return s
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.decisions.WithLabelValues(outcomeField(ev), methodLabel(ev.Method)).Inc()
	return nil
}

// methodLabel reduz o método a um conjunto fixo; o net/http aceita qualquer
// token como método e o label não pode crescer com a entrada do cliente.
func methodLabel(m string) string {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return m
	}
	return "other"
}
