package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"
)

type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	ApprovalStatus string    `json:"approval_status"`
	CreatedAt      time.Time `json:"created_at"`
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p Profile) (*Profile, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = nowUTC()
	}
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = "pending"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, display_name, role, approval_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Email, p.DisplayName, p.Role, p.ApprovalStatus, formatTime(p.CreatedAt))
	if err != nil {
		return nil, oops.Code("PROFILE_CREATE_FAILED").
			With("id", p.ID).
			Wrap(err)
	}
	return &p, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, role, approval_status, created_at
		FROM profiles WHERE id = ?
	`, id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("PROFILE_NOT_FOUND").
			With("id", id).
			Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROFILE_GET_FAILED").
			With("id", id).
			Wrap(err)
	}
	return p, nil
}

// ListPending devolve os perfis pendentes, mais antigos primeiro.
func (r *ProfileRepository) ListPending(ctx context.Context, limit, offset int) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, display_name, role, approval_status, created_at
		FROM profiles
		WHERE approval_status = 'pending'
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, oops.Code("PROFILE_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, oops.Code("PROFILE_LIST_FAILED").Wrap(err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PROFILE_LIST_FAILED").Wrap(err)
	}
	return out, nil
}

func (r *ProfileRepository) SetApprovalStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET approval_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return oops.Code("PROFILE_UPDATE_FAILED").
			With("id", id).
			Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("PROFILE_UPDATE_FAILED").Wrap(err)
	}
	if n == 0 {
		return oops.Code("PROFILE_NOT_FOUND").
			With("id", id).
			Wrap(ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*Profile, error) {
	var p Profile
	var created string
	if err := s.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.ApprovalStatus, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t
	return &p, nil
}
