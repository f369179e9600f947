package session

import (
	"errors"
	"net/http"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/middleware/session/application"
	"marketplace-gateway/middleware/session/domain"
)

type Options struct {
	Gate application.Gate
	// RedirectStatus padrão: 307.
	RedirectStatus int
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RedirectStatus == 0 {
		opts.RedirectStatus = http.StatusTemporaryRedirect
	}
	gate := opts.Gate

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := gate.Evaluate(r.Context(), r.URL.Path, RequestCredentials{R: r})
			if out.Verdict == application.VerdictUnprotected {
				next.ServeHTTP(w, r)
				return
			}

			WriteCredentials(w, out.Refreshed)

			if out.Verdict.Redirects() {
				logVerdict(r, out)
				redirect(w, r, out.Location, opts.RedirectStatus)
				return
			}

			if out.Session != nil {
				r = r.WithContext(WithSession(r.Context(), *out.Session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// redirect troca só o path: a query string original é mantida.
func redirect(w http.ResponseWriter, r *http.Request, path string, status int) {
	u := *r.URL
	u.Path = path
	u.RawPath = ""
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	http.Redirect(w, r, target, status)
}

func logVerdict(r *http.Request, out application.Outcome) {
	switch {
	case out.Err != nil && errors.Is(out.Err, domain.ErrProfileUnavailable):
		logger.Warn("session gate denied", "module", "session", "action", "resolve", "result", out.Verdict.String(), "path", r.URL.Path, "error", out.Err)
	default:
		logger.Debug("session gate redirect", "module", "session", "action", "authorize", "result", out.Verdict.String(), "path", r.URL.Path, "location", out.Location)
	}
}
