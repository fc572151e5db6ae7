package dashboard

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

type channelDTO struct {
	ID          int64  `json:"id"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
}

type customChannelDTO struct {
	ID          int64            `json:"id"`
	ChannelID   string           `json:"channel_id"`
	ChannelName string           `json:"channel_name"`
	Rules       []transform.Rule `json:"rules"`
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

type channelBody struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
}

func (b *channelBody) validate(w http.ResponseWriter) bool {
	b.ChannelID = strings.TrimSpace(b.ChannelID)
	if b.ChannelID == "" {
		writeError(w, http.StatusBadRequest, "channel_id is required")
		return false
	}
	return true
}

// validRules rechaza tipos desconocidos y values faltantes antes de guardar.
func validRules(w http.ResponseWriter, rules []transform.Rule) bool {
	for _, rule := range rules {
		found := false
		for _, info := range transform.KindNames {
			if info.Kind != rule.Kind {
				continue
			}
			found = true
			if info.HasValue && rule.Value == "" {
				writeError(w, http.StatusBadRequest, "rule "+string(rule.Kind)+" requires a value")
				return false
			}
			break
		}
		if !found {
			writeError(w, http.StatusBadRequest, "unknown rule type: "+string(rule.Kind))
			return false
		}
	}
	return true
}

// ---------- included ----------

func (s *Server) handleListIncluded(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	refs, err := s.channels.ListIncluded(r.Context(), g.GuildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "channel list failed")
		return
	}
	writeJSON(w, http.StatusOK, toChannelDTOs(refs))
}

func (s *Server) handleAddIncluded(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	var body channelBody
	if !readJSON(w, r, &body) || !body.validate(w) {
		return
	}
	ref, err := s.channels.AddIncluded(r.Context(), g.GuildID, body.ChannelID, body.ChannelName)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, channelDTO{ID: ref.ID, ChannelID: ref.ChannelID, ChannelName: ref.ChannelName})
}

func (s *Server) handleDeleteIncluded(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.channels.DeleteIncluded(r.Context(), g.GuildID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "channel delete failed")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------- excluded ----------

func (s *Server) handleListExcluded(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	refs, err := s.channels.ListExcluded(r.Context(), g.GuildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "channel list failed")
		return
	}
	writeJSON(w, http.StatusOK, toChannelDTOs(refs))
}

func (s *Server) handleAddExcluded(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	var body channelBody
	if !readJSON(w, r, &body) || !body.validate(w) {
		return
	}
	ref, err := s.channels.AddExcluded(r.Context(), g.GuildID, body.ChannelID, body.ChannelName)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, channelDTO{ID: ref.ID, ChannelID: ref.ChannelID, ChannelName: ref.ChannelName})
}

func (s *Server) handleDeleteExcluded(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.channels.DeleteExcluded(r.Context(), g.GuildID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "channel delete failed")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------- custom ----------

func (s *Server) handleListCustom(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	chans, err := s.channels.ListCustom(r.Context(), g.GuildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "channel list failed")
		return
	}
	out := []customChannelDTO{}
	for _, c := range chans {
		out = append(out, customChannelDTO{ID: c.ID, ChannelID: c.ChannelID, ChannelName: c.ChannelName, Rules: c.Rules})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddCustom(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	var body struct {
		channelBody
		Rules []transform.Rule `json:"rules"`
	}
	if !readJSON(w, r, &body) || !body.validate(w) || !validRules(w, body.Rules) {
		return
	}
	c, err := s.channels.AddCustom(r.Context(), storage.CustomChannel{
		GuildID:     g.GuildID,
		ChannelID:   body.ChannelID,
		ChannelName: body.ChannelName,
		Rules:       body.Rules,
	})
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, customChannelDTO{ID: c.ID, ChannelID: c.ChannelID, ChannelName: c.ChannelName, Rules: rulesOrEmptyDTO(c.Rules)})
}

func (s *Server) handlePatchCustom(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Rules []transform.Rule `json:"rules"`
	}
	if !readJSON(w, r, &body) || !validRules(w, body.Rules) {
		return
	}
	updated, err := s.channels.UpdateCustomRules(r.Context(), g.GuildID, id, body.Rules)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rules update failed")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleDeleteCustom(w http.ResponseWriter, r *http.Request, _ storage.WebSession) {
	g, ok := s.requireGuild(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.channels.DeleteCustom(r.Context(), g.GuildID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "channel delete failed")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func toChannelDTOs(refs []storage.ChannelRef) []channelDTO {
	out := []channelDTO{}
	for _, ref := range refs {
		out = append(out, channelDTO{ID: ref.ID, ChannelID: ref.ChannelID, ChannelName: ref.ChannelName})
	}
	return out
}

func rulesOrEmptyDTO(rules []transform.Rule) []transform.Rule {
	if rules == nil {
		return []transform.Rule{}
	}
	return rules
}
