package dashboard

import (
	"log"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

type memberDTO struct {
	UserID              string    `json:"user_id"`
	Username            string    `json:"username"`
	DisplayName         string    `json:"display_name"`
	LastSeenNick        *string   `json:"last_seen_nick"`
	ResetNickname       *string   `json:"reset_nickname"`
	ResetNicknameManual bool      `json:"reset_nickname_manual"`
	LastSeenAt          time.Time `json:"last_seen_at"`
}

func toMemberDTO(m storage.MemberNickname) memberDTO {
	return memberDTO{
		UserID:              m.UserID,
		Username:            m.Username,
		DisplayName:         m.DisplayName,
		LastSeenNick:        m.LastSeenNick,
		ResetNickname:       m.ResetNickname,
		ResetNicknameManual: m.ResetNicknameManual,
		LastSeenAt:          m.LastSeenAt,
	}
}

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	members, total, err := s.members.List(r.Context(), g.GuildID, (page-1)*size, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "member list failed")
		return
	}
	out := []memberDTO{}
	for _, m := range members {
		out = append(out, toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"members":   out,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// handlePatchMember fija el nick de reset y, si apply no viene en false,
// lo aplica ya mismo con el token del bot.
func (s *Server) handlePatchMember(w http.ResponseWriter, r *http.Request, sess storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	userID := r.PathValue("userID")

	var body struct {
		ResetNickname *string `json:"reset_nickname"`
		Manual        bool    `json:"manual"`
		Apply         *bool   `json:"apply"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.ResetNickname != nil && utf8.RuneCountInString(*body.ResetNickname) > transform.MaxNicknameLen {
		writeError(w, http.StatusBadRequest, "nickname exceeds 32 characters")
		return
	}

	m, err := s.members.SetReset(r.Context(), g.GuildID, userID, body.ResetNickname, body.Manual)
	if err == storage.ErrNotFound {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "member update failed")
		return
	}

	if body.Apply == nil || *body.Apply {
		if err := s.gw.EditNickname(r.Context(), g.GuildID, userID, m.ResetNickname); err != nil {
			log.Printf("⚠️ reset desde dashboard de %s en %s: %v", userID, g.GuildID, err)
			writeError(w, http.StatusBadGateway, "nickname edit failed (check bot role hierarchy)")
			return
		}
		log.Printf("✅ %s reseteó el nick de %s en %s", sess.DiscordID, userID, g.GuildID)
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	userID := r.PathValue("userID")
	deleted, err := s.members.Delete(r.Context(), g.GuildID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "member delete failed")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
