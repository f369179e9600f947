package infra

import (
	"context"
	"errors"

	"marketplace-gateway/internal/store"
	"marketplace-gateway/middleware/session/domain"
)

// ProfileGetter é o subconjunto do repositório de perfis usado pelo gate.
type ProfileGetter interface {
	GetByID(ctx context.Context, id string) (*store.Profile, error)
}

// ProfileStore adapta o repositório ao contrato domain.ProfileStore.
type ProfileStore struct {
	Repo ProfileGetter
}

var _ domain.ProfileStore = ProfileStore{}

func (s ProfileStore) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	if p == nil {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return domain.Profile{
		ID:             p.ID,
		Role:           domain.Role(p.Role),
		ApprovalStatus: domain.ApprovalStatus(p.ApprovalStatus),
	}, nil
}
