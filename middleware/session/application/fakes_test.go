package application

import (
	"context"
	"sync/atomic"
	"time"

	"marketplace-gateway/middleware/session/domain"
)

type mapCreds map[string]string

func (m mapCreds) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// fakeIdentity resolve o cookie "session" diretamente como user id.
type fakeIdentity struct {
	calls     atomic.Int32
	refreshed []domain.Credential
	err       error
	delay     time.Duration
}

func (f *fakeIdentity) Resolve(ctx context.Context, creds domain.Credentials) (domain.Identity, []domain.Credential, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return domain.Identity{}, nil, f.err
	}
	v, ok := creds.Get("session")
	if !ok || v == "" {
		return domain.Identity{}, nil, domain.ErrNoSession
	}
	return domain.Identity{UserID: v}, f.refreshed, nil
}

type fakeProfiles struct {
	calls    atomic.Int32
	profiles map[string]domain.Profile
	err      error
	block    bool
}

func (f *fakeProfiles) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return domain.Profile{}, ctx.Err()
	}
	if f.err != nil {
		return domain.Profile{}, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func profilesOf(ps ...domain.Profile) *fakeProfiles {
	m := make(map[string]domain.Profile, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return &fakeProfiles{profiles: m}
}
