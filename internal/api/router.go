// Package api expõe os endpoints JSON do marketplace sob /api.
package api

import (
	"context"
	"database/sql"
	"net/http"

	"marketplace-gateway/internal/store"
	"marketplace-gateway/middleware/session/application"

	"github.com/go-chi/chi/v5"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*store.Profile, error)
	ListPending(ctx context.Context, limit, offset int) ([]store.Profile, error)
	SetApprovalStatus(ctx context.Context, id, status string) error
}

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID string) (*store.Wallet, error)
	Ensure(ctx context.Context, userID, currency string) (*store.Wallet, error)
}

type TransactionRepository interface {
	GetByReference(ctx context.Context, userID, reference string) (*store.Transaction, error)
	ListByType(ctx context.Context, txType string, limit, offset int) ([]store.Transaction, error)
}

type TestimonialRepository interface {
	Create(ctx context.Context, t store.Testimonial) (*store.Testimonial, error)
	ListApproved(ctx context.Context, limit int) ([]store.Testimonial, error)
}

type Handler struct {
	resolver        application.Resolver
	profiles        ProfileRepository
	wallets         WalletRepository
	transactions    TransactionRepository
	testimonials    TestimonialRepository
	defaultCurrency string
	studentCurrency string
}

type Config struct {
	Resolver        application.Resolver
	Profiles        ProfileRepository
	Wallets         WalletRepository
	Transactions    TransactionRepository
	Testimonials    TestimonialRepository
	// DefaultCurrency é a moeda da carteira criada na aprovação (padrão USD).
	DefaultCurrency string
	// StudentCurrency é a moeda da carteira criada no primeiro acesso do
	// estudante (padrão KES).
	StudentCurrency string
}

func NewHandler(cfg Config) *Handler {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	if cfg.StudentCurrency == "" {
		cfg.StudentCurrency = "KES"
	}
	return &Handler{
		resolver:        cfg.Resolver,
		profiles:        cfg.Profiles,
		wallets:         cfg.Wallets,
		transactions:    cfg.Transactions,
		testimonials:    cfg.Testimonials,
		defaultCurrency: cfg.DefaultCurrency,
		studentCurrency: cfg.StudentCurrency,
	}
}

// NewSQLHandler liga o handler aos repositórios SQLite.
func NewSQLHandler(db *sql.DB, resolver application.Resolver, defaultCurrency, studentCurrency string) *Handler {
	return NewHandler(Config{
		Resolver:        resolver,
		Profiles:        store.NewProfileRepository(db),
		Wallets:         store.NewWalletRepository(db),
		Transactions:    store.NewTransactionRepository(db),
		Testimonials:    store.NewTestimonialRepository(db),
		DefaultCurrency: defaultCurrency,
		StudentCurrency: studentCurrency,
	})
}

// Routes registra os endpoints em r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/payments/status", h.PaymentStatus)
	r.Get("/student/wallet", h.StudentWallet)
	r.Get("/admin/approvals", h.ListApprovals)
	r.Post("/admin/approvals", h.Approve)
	r.Get("/admin/withdrawals", h.ListWithdrawals)
	r.Get("/testimonials", h.ListTestimonials)
	r.Post("/testimonials", h.CreateTestimonial)
}

// Router devolve um router chi com os endpoints montados em /api.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", h.Routes)
	return r
}
