package domain

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleWriter  Role = "writer"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleWriter, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath é a página inicial do papel, usada no redirect lateral.
func (r Role) DashboardPath() string {
	return "/" + string(r) + "/dashboard"
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Profile é o registro externo consultado por id a cada requisição protegida.
type Profile struct {
	ID             string
	Role           Role
	ApprovalStatus ApprovalStatus
}

// Session existe só durante a requisição.
type Session struct {
	UserID         string
	Role           Role
	ApprovalStatus ApprovalStatus
}

type Identity struct {
	UserID string
}

// Credential é um cookie (ou equivalente) a ser lido da requisição ou gravado
// na resposta.
type Credential struct {
	Name     string
	Value    string
	Path     string
	MaxAge   time.Duration
	Expires  time.Time
	HTTPOnly bool
	Secure   bool
}

// Credentials dá acesso às credenciais recebidas na requisição.
type Credentials interface {
	Get(name string) (string, bool)
}

var (
	ErrNoSession          = errors.New("no session")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileUnavailable = errors.New("profile unavailable")
)

// IdentityProvider resolve o usuário a partir das credenciais.
//
// Sem usuário válido devolve ErrNoSession. O provedor pode rotacionar o token:
// as credenciais devolvidas precisam ser gravadas na resposta.
type IdentityProvider interface {
	Resolve(ctx context.Context, creds Credentials) (Identity, []Credential, error)
}

// ProfileStore busca o perfil pela chave primária. Sem registro devolve
// ErrProfileNotFound.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (Profile, error)
}
