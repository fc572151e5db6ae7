package dashboard

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

type guildDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	IconURL        *string `json:"icon_url"`
	Enabled        bool    `json:"enabled"`
	RestoreOnLeave bool    `json:"restore_on_leave"`
	ImmunityRoleID *string `json:"immunity_role_id"`
}

func toGuildDTO(g storage.GuildSettings) guildDTO {
	return guildDTO{
		ID:             g.GuildID,
		Name:           g.Name,
		IconURL:        g.IconURL,
		Enabled:        g.Enabled,
		RestoreOnLeave: g.RestoreOnLeave,
		ImmunityRoleID: g.ImmunityRoleID,
	}
}

// handleListGuilds: guilds donde el usuario es admin ∩ guilds donde está el bot.
func (s *Server) handleListGuilds(w http.ResponseWriter, r *http.Request, sess storage.WebSession) {
	userGuilds, err := s.oauth.GetUserGuilds(r.Context(), sess.AccessToken)
	if err != nil {
		log.Printf("⚠️ get user guilds de %s: %v", sess.DiscordID, err)
		writeError(w, http.StatusBadGateway, "discord guild lookup failed")
		return
	}

	known, err := s.guilds.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "guild list failed")
		return
	}
	botIn := make(map[string]storage.GuildSettings, len(known))
	for _, g := range known {
		botIn[g.GuildID] = g
	}

	out := []guildDTO{}
	for _, ug := range userGuilds {
		if !ug.Owner && !ug.HasAdmin() {
			continue
		}
		g, ok := botIn[ug.ID]
		if !ok {
			continue
		}
		out = append(out, toGuildDTO(g))
	}
	writeJSON(w, http.StatusOK, out)
}

// requireGuild: 404 si el bot nunca vio ese guild.
func (s *Server) requireGuild(w http.ResponseWriter, r *http.Request) (storage.GuildSettings, bool) {
	guildID := r.PathValue("guildID")
	g, err := s.guilds.Get(r.Context(), guildID)
	if err == storage.ErrNotFound {
		writeError(w, http.StatusNotFound, "guild not found")
		return storage.GuildSettings{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "guild lookup failed")
		return storage.GuildSettings{}, false
	}
	return g, true
}

func (s *Server) handleGetGuild(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toGuildDTO(g))
}

func (s *Server) handlePatchGuild(w http.ResponseWriter, r *http.Request, sess storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	var body struct {
		Enabled        *bool   `json:"enabled"`
		RestoreOnLeave *bool   `json:"restore_on_leave"`
		ImmunityRoleID *string `json:"immunity_role_id"`
		ClearImmunity  bool    `json:"clear_immunity"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	updated, err := s.guilds.Update(r.Context(), g.GuildID, storage.GuildSettingsUpdate{
		Enabled:        body.Enabled,
		RestoreOnLeave: body.RestoreOnLeave,
		ImmunityRoleID: body.ImmunityRoleID,
		ClearImmunity:  body.ClearImmunity,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "guild update failed")
		return
	}
	log.Printf("ℹ️ guild %s actualizado por %s", g.GuildID, sess.DiscordID)
	writeJSON(w, http.StatusOK, toGuildDTO(updated))
}

// ---------- pool de nicknames ----------

type nicknameDTO struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

func (s *Server) handleListNicknames(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	entries, err := s.pool.List(r.Context(), g.GuildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "nickname list failed")
		return
	}
	out := []nicknameDTO{}
	for _, e := range entries {
		out = append(out, nicknameDTO{ID: e.ID, Nickname: e.Nickname})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddNickname(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	var body struct {
		Nickname string `json:"nickname"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	body.Nickname = strings.TrimSpace(body.Nickname)
	if body.Nickname == "" {
		writeError(w, http.StatusBadRequest, "nickname is required")
		return
	}
	if utf8.RuneCountInString(body.Nickname) > transform.MaxNicknameLen {
		writeError(w, http.StatusBadRequest, "nickname exceeds 32 characters")
		return
	}
	e, err := s.pool.Add(r.Context(), g.GuildID, body.Nickname)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "nickname insert failed")
		return
	}
	writeJSON(w, http.StatusCreated, nicknameDTO{ID: e.ID, Nickname: e.Nickname})
}

func (s *Server) handleDeleteNickname(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	okDel, err := s.pool.Delete(r.Context(), g.GuildID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "nickname delete failed")
		return
	}
	if !okDel {
		writeError(w, http.StatusNotFound, "nickname not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------- reglas disponibles ----------

type ruleInfoDTO struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	HasValue bool   `json:"has_value"`
}

func (s *Server) handleAvailableRules(w http.ResponseWriter, r *http.Request) {
	out := make([]ruleInfoDTO, 0, len(transform.KindNames))
	for _, k := range transform.KindNames {
		out = append(out, ruleInfoDTO{Type: string(k.Kind), Name: k.Name, HasValue: k.HasValue})
	}
	writeJSON(w, http.StatusOK, out)
}
