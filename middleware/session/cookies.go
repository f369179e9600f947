package session

import (
	"net/http"

	"marketplace-gateway/middleware/session/domain"
)

// RequestCredentials expõe os cookies da requisição como domain.Credentials.
type RequestCredentials struct{ R *http.Request }

func (c RequestCredentials) Get(name string) (string, bool) {
	ck, err := c.R.Cookie(name)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

// WriteCredentials grava credenciais rotacionadas como Set-Cookie.
func WriteCredentials(w http.ResponseWriter, creds []domain.Credential) {
	for _, c := range creds {
		path := c.Path
		if path == "" {
			path = "/"
		}
		http.SetCookie(w, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			MaxAge:   int(c.MaxAge.Seconds()),
			Expires:  c.Expires,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
