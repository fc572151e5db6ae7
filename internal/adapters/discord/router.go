package discord

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/identity-crisis-bot/internal/app/service"
)

type Router struct {
	s            *discordgo.Session
	voice        *service.VoiceService
	settings     *service.SettingsService
	adminRoleIDs []string

	// guilds que ya conocíamos al conectar (los GUILD_CREATE del arranque
	// no son joins nuevos)
	mu    sync.Mutex
	known map[string]struct{}
}

func NewRouter(s *discordgo.Session, voice *service.VoiceService, settings *service.SettingsService, adminRoleIDs []string) *Router {
	return &Router{
		s:            s,
		voice:        voice,
		settings:     settings,
		adminRoleIDs: adminRoleIDs,
		known:        map[string]struct{}{},
	}
}

func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}
	return nil
}

// Handlers tiene que llamarse ANTES de Open(): discordgo despacha el READY
// mientras Open bloquea, y sin onReady enganchado el mapa known arranca
// vacío y los GUILD_CREATE del arranque parecen joins nuevos.
func (r *Router) Handlers() {
	r.s.AddHandler(r.onReady)
	r.s.AddHandler(r.onGuildCreate)
	r.s.AddHandler(r.onVoiceStateUpdate)
	r.s.AddHandler(r.onInteraction)
}

func (r *Router) onReady(s *discordgo.Session, ev *discordgo.Ready) {
	for _, g := range ev.Guilds {
		r.rememberGuild(g.ID)
	}
	log.Printf("✅ ready: %s en %d guild(s)", s.State.User.Username, len(ev.Guilds))
	_ = s.UpdateWatchStatus(0, "your identity crisis")
}

// rememberGuild marca el guild como conocido y dice si ya lo era.
func (r *Router) rememberGuild(id string) (alreadyKnown bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, seen := r.known[id]
	r.known[id] = struct{}{}
	return seen
}

func (r *Router) onGuildCreate(s *discordgo.Session, gc *discordgo.GuildCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.voice.EnsureGuild(ctx, gc.ID, gc.Name, guildIconURL(gc.Guild)); err != nil {
		log.Printf("⚠️ guild sync %s: %v", gc.ID, err)
	}

	if r.rememberGuild(gc.ID) {
		return
	}

	log.Printf("🎭 nuevo guild: %s (%s)", gc.Name, gc.ID)
	if gc.SystemChannelID != "" {
		_, err := s.ChannelMessageSend(gc.SystemChannelID,
			"🎭 **IdentityCrisis has arrived!**\n\n"+
				"Join a voice channel and watch your identity disappear. "+
				"Who will you become today? Nobody knows.\n\n"+
				"_Configure me at the web dashboard!_")
		if err != nil {
			log.Printf("⚠️ no pude saludar en %s: %v", gc.Name, err)
		}
	}
}

// VoiceStateUpdate → arma el VoiceEvent y se lo pasa al service. Cada evento
// corre en su goroutine con su propio timeout; un miembro trabado no frena
// al resto.
func (r *Router) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.GuildID == "" {
		return
	}
	before := ""
	if vs.BeforeUpdate != nil {
		before = vs.BeforeUpdate.ChannelID
	}
	if before == vs.ChannelID {
		// mute/deafen/stream toggle, no es una transición de canal
		return
	}

	m := vs.Member
	if m == nil || m.User == nil {
		var err error
		if m, err = r.safeGetMember(vs.GuildID, vs.UserID); err != nil {
			log.Printf("⚠️ voice: member %s/%s: %v", vs.GuildID, vs.UserID, err)
			return
		}
	}

	ev := service.VoiceEvent{
		GuildID:         vs.GuildID,
		UserID:          vs.UserID,
		Username:        m.User.Username,
		Nick:            nilIfEmpty(m.Nick),
		DisplayName:     displayName(m),
		BeforeChannelID: before,
		AfterChannelID:  vs.ChannelID,
	}
	if g, err := s.State.Guild(vs.GuildID); err == nil && g != nil {
		ev.GuildName = g.Name
		ev.GuildIconURL = nilIfEmpty(g.IconURL("128"))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.voice.HandleVoiceState(ctx, ev)
	}()
}

func (r *Router) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := ic.ApplicationCommandData()
	if data.Name != "chaos" {
		return
	}
	log.Printf("slash: /%s by=%s guild=%s", data.Name, ic.Member.User.ID, ic.GuildID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic in slash /%s: %v", data.Name, rec)
			ReplyEphemeral(s, ic, "⚠️ Ocurrió un error inesperado.")
		}
	}()

	_ = DeferEphemeral(s, ic)
	if !r.requireAdminOrRoles(s, ic) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	sub, ok := subcmdName(ic)
	if !ok {
		ReplyEphemeral(s, ic, "Usa `/chaos show` o `/chaos set`.")
		return
	}
	switch sub {
	case "show":
		msg, err := r.settings.Show(ctx, ic.GuildID)
		if err != nil {
			msg = "⚠️ No pude leer la config: " + err.Error()
		}
		ReplyEphemeral(s, ic, msg)

	case "set":
		var patch service.SettingsPatch
		if v, ok := optBool(ic, "enabled"); ok {
			patch.Enabled = &v
		}
		if v, ok := optBool(ic, "restore_on_leave"); ok {
			patch.RestoreOnLeave = &v
		}
		if v, ok := optRoleID(ic, "immunity_role"); ok {
			patch.ImmunityRoleID = &v
		}
		if v, ok := optBool(ic, "clear_immunity"); ok && v {
			patch.ClearImmunity = true
			patch.ImmunityRoleID = nil
		}
		msg, err := r.settings.Update(ctx, ic.GuildID, patch)
		if err != nil {
			ReplyEphemeral(s, ic, "⚠️ No pude actualizar: "+err.Error())
			return
		}
		ReplyEphemeral(s, ic, "✅ Config actualizada.\n"+msg)
	}
}

// ---------- helpers ----------

func (r *Router) safeGetMember(guildID, userID string) (*discordgo.Member, error) {
	if m, err := r.s.State.Member(guildID, userID); err == nil && m != nil && m.User != nil {
		return m, nil
	}
	m, err := r.s.GuildMember(guildID, userID)
	if err != nil {
		return nil, err
	}
	_ = r.s.State.MemberAdd(m)
	return m, nil
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

func guildIconURL(g *discordgo.Guild) *string {
	if g == nil || g.Icon == "" {
		return nil
	}
	u := g.IconURL("128")
	return &u
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
