package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/tidycsv/internal/session"
)

const (
	// SessionCookie holds the ID of the caller's cleaning session.
	SessionCookie = "tidycsv_session"

	flashCookie = "tidycsv_flash"
)

// currentSession returns the caller's session. With create set, a missing or
// expired session is replaced by a new one and the cookie is (re)issued;
// otherwise ErrNotLoaded is returned.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request, create bool) (*session.Session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.store.Get(c.Value); ok {
			return sess, nil
		}
	}
	if !create {
		return nil, session.ErrNotLoaded
	}
	return s.newSession(w)
}

func (s *Server) newSession(w http.ResponseWriter) (*session.Session, error) {
	sess, err := s.store.Create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// flash is a one-shot message shown on the next page render.
type flash struct {
	Kind string `json:"kind"` // "success", "info" or "error"
	Text string `json:"text"`
	Code string `json:"code,omitempty"`
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, f flash) {
	if b, err := json.Marshal(f); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    base64.RawURLEncoding.EncodeToString(b),
			Path:     "/",
			HttpOnly: true,
			Secure:   s.cfg.Session.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// popFlash reads and clears the flash cookie.
func popFlash(w http.ResponseWriter, r *http.Request) (flash, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return flash{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	var f flash
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil || json.Unmarshal(b, &f) != nil {
		return flash{}, false
	}
	return f, true
}
