package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

const (
	TestimonialPending  = "pending"
	TestimonialApproved = "approved"
)

type Testimonial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	Status    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type TestimonialRepository struct {
	db *sql.DB
}

func NewTestimonialRepository(db *sql.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

// Create grava um depoimento novo. Sem status, fica pendente.
func (r *TestimonialRepository) Create(ctx context.Context, t Testimonial) (*Testimonial, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TestimonialPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = nowUTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO testimonials (id, name, role, message, rating, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Role, t.Message, t.Rating, t.Status, formatTime(t.CreatedAt))
	if err != nil {
		return nil, oops.Code("TESTIMONIAL_CREATE_FAILED").Wrap(err)
	}
	return &t, nil
}

// ListApproved devolve os aprovados, mais recentes primeiro.
func (r *TestimonialRepository) ListApproved(ctx context.Context, limit int) ([]Testimonial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, role, message, rating, status, created_at
		FROM testimonials
		WHERE status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, TestimonialApproved, limit)
	if err != nil {
		return nil, oops.Code("TESTIMONIAL_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	out := []Testimonial{}
	for rows.Next() {
		var t Testimonial
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &t.Role, &t.Message, &t.Rating, &t.Status, &created); err != nil {
			return nil, oops.Code("TESTIMONIAL_LIST_FAILED").Wrap(err)
		}
		if t.CreatedAt, err = parseTime(created); err != nil {
			return nil, oops.Code("TESTIMONIAL_LIST_FAILED").Wrap(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TESTIMONIAL_LIST_FAILED").Wrap(err)
	}
	return out, nil
}
