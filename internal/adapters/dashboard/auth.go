package dashboard

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jose-valero/identity-crisis-bot/internal/adapters/discordoauth"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

const sessionCookie = "session"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.oauth.AuthorizeURL(), http.StatusTemporaryRedirect)
}

// handleCallback: canjea el code, identifica al usuario y rota la sesión web.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	tok, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		log.Printf("⚠️ oauth exchange: %v", err)
		writeError(w, http.StatusBadGateway, "discord token exchange failed")
		return
	}
	user, err := s.oauth.GetUser(ctx, tok.AccessToken)
	if err != nil {
		log.Printf("⚠️ oauth get user: %v", err)
		writeError(w, http.StatusBadGateway, "discord user lookup failed")
		return
	}

	sess := storage.WebSession{
		Token:          uuid.NewString(),
		DiscordID:      user.ID,
		Username:       user.Username,
		AccessToken:    tok.AccessToken,
		RefreshToken:   tok.RefreshToken,
		TokenExpiresAt: tok.ExpiresAt(),
	}
	if av := user.AvatarURL(); av != "" {
		sess.AvatarURL = &av
	}
	if err := s.sessions.Upsert(ctx, sess); err != nil {
		log.Printf("⚠️ web session upsert: %v", err)
		writeError(w, http.StatusInternalServerError, "session store failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
	})
	log.Printf("✅ login de %s (%s)", user.Username, user.ID)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		_ = s.sessions.DeleteByToken(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// withAuth resuelve la sesión de la cookie y refresca el token OAuth si ya
// venció. Sin sesión válida ⇒ 401.
func (s *Server) withAuth(next func(http.ResponseWriter, *http.Request, storage.WebSession)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		sess, err := s.sessions.GetByToken(r.Context(), c.Value)
		if err == storage.ErrNotFound {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "session lookup failed")
			return
		}

		if discordoauth.IsTokenExpired(sess.TokenExpiresAt) {
			tok, err := s.oauth.RefreshToken(r.Context(), sess.RefreshToken)
			if err != nil {
				log.Printf("⚠️ oauth refresh de %s: %v", sess.DiscordID, err)
				writeError(w, http.StatusUnauthorized, "discord token refresh failed, log in again")
				return
			}
			if err := s.sessions.RefreshTokens(r.Context(), sess.Token, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt()); err != nil {
				log.Printf("⚠️ persistiendo refresh de %s: %v", sess.DiscordID, err)
			}
			sess.AccessToken = tok.AccessToken
			sess.RefreshToken = tok.RefreshToken
			sess.TokenExpiresAt = tok.ExpiresAt()
		}

		next(w, r, sess)
	}
}
