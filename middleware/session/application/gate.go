package application

import (
	"context"
	"errors"
	"strings"

	"marketplace-gateway/middleware/session/domain"
)

// ProtectedPrefix exige que o papel do chamador seja Role.
type ProtectedPrefix struct {
	Prefix string
	Role   domain.Role
}

type Policy struct {
	Prefixes    []ProtectedPrefix
	LoginPath   string
	PendingPath string
	// RequireApproved liga o bloqueio de perfis não aprovados (redirect para PendingPath).
	// Desligado por padrão: o status é resolvido mas não bloqueia.
	RequireApproved bool
}

func DefaultPolicy() Policy {
	return Policy{
		Prefixes: []ProtectedPrefix{
			{Prefix: "/student", Role: domain.RoleStudent},
			{Prefix: "/writer", Role: domain.RoleWriter},
			{Prefix: "/admin", Role: domain.RoleAdmin},
		},
		LoginPath:   "/login",
		PendingPath: "/pending",
	}
}

// Match devolve o prefixo protegido que cobre o path (comparação por prefixo simples).
func (p Policy) Match(path string) (ProtectedPrefix, bool) {
	for _, pp := range p.Prefixes {
		if strings.HasPrefix(path, pp.Prefix) {
			return pp, true
		}
	}
	return ProtectedPrefix{}, false
}

type Verdict int

const (
	// VerdictUnprotected: path fora dos prefixos, nenhuma consulta foi feita.
	VerdictUnprotected Verdict = iota
	VerdictAllow
	VerdictLogin
	VerdictWrongRole
	VerdictPending
)

func (v Verdict) String() string {
	switch v {
	case VerdictUnprotected:
		return "unprotected"
	case VerdictAllow:
		return "allow"
	case VerdictLogin:
		return "login"
	case VerdictWrongRole:
		return "wrong_role"
	case VerdictPending:
		return "pending"
	}
	return "unknown"
}

// Redirects indica se o veredito termina em redirect.
func (v Verdict) Redirects() bool {
	return v == VerdictLogin || v == VerdictWrongRole || v == VerdictPending
}

type Outcome struct {
	Verdict Verdict
	// Location é o path de destino quando Verdict.Redirects().
	Location  string
	Session   *domain.Session
	Refreshed []domain.Credential
	// Err guarda a causa de VerdictLogin (nunca exposta ao cliente).
	Err error
}

type Gate struct {
	Policy   Policy
	Resolver Resolver
}

// Evaluate aplica a política ao path. Cada requisição é avaliada de forma
// independente, sem retry.
func (g Gate) Evaluate(ctx context.Context, path string, creds domain.Credentials) Outcome {
	pp, ok := g.Policy.Match(path)
	if !ok {
		return Outcome{Verdict: VerdictUnprotected}
	}

	res, err := g.Resolver.Resolve(ctx, creds)
	if err != nil {
		// sem sessão e perfil indisponível são tratados igual
		if !errors.Is(err, domain.ErrNoSession) && !errors.Is(err, domain.ErrProfileUnavailable) {
			err = errors.Join(domain.ErrProfileUnavailable, err)
		}
		return Outcome{Verdict: VerdictLogin, Location: g.Policy.LoginPath, Refreshed: res.Refreshed, Err: err}
	}

	sess := res.Session
	if !sess.Role.Valid() {
		// sem papel conhecido não há dashboard para onde mandar
		return Outcome{Verdict: VerdictLogin, Location: g.Policy.LoginPath, Refreshed: res.Refreshed, Err: domain.ErrProfileUnavailable}
	}
	out := Outcome{Session: &sess, Refreshed: res.Refreshed}

	if g.Policy.RequireApproved && sess.ApprovalStatus != domain.ApprovalApproved {
		out.Verdict = VerdictPending
		out.Location = g.Policy.PendingPath
		return out
	}

	if sess.Role != pp.Role {
		out.Verdict = VerdictWrongRole
		out.Location = sess.Role.DashboardPath()
		return out
	}

	out.Verdict = VerdictAllow
	return out
}
