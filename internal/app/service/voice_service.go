package service

import (
	"context"
	"log"
	"math/rand/v2"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

// Transition clasifica un voice state update. Mute/deafen y demás toggles
// dentro del mismo canal son TransitionNone y se ignoran.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionJoined
	TransitionLeft
	TransitionMoved
)

func Classify(beforeChannelID, afterChannelID string) Transition {
	switch {
	case beforeChannelID == "" && afterChannelID != "":
		return TransitionJoined
	case beforeChannelID != "" && afterChannelID == "":
		return TransitionLeft
	case beforeChannelID != afterChannelID:
		return TransitionMoved
	default:
		return TransitionNone
	}
}

// VoiceEvent es un voice state update ya resuelto contra el estado del
// gateway: quién, en qué guild, de qué canal a qué canal, y cómo se
// llama ahora mismo.
type VoiceEvent struct {
	GuildID      string
	GuildName    string
	GuildIconURL *string

	UserID      string
	Username    string
	Nick        *string // nickname del server (nil = sin nick)
	DisplayName string  // nick si tiene, si no el nombre global

	BeforeChannelID string
	AfterChannelID  string
}

// VoiceService es el handler de eventos de voz: decide si renombrar, con
// qué nombre, y cuándo devolver la identidad original.
type VoiceService struct {
	guilds   GuildRepo
	pool     PoolRepo
	channels ChannelRepo
	members  MemberRepo
	gw       Gateway
	sessions *SessionStore

	randInt func(n int) int
}

func NewVoiceService(guilds GuildRepo, pool PoolRepo, channels ChannelRepo, members MemberRepo, gw Gateway) *VoiceService {
	return &VoiceService{
		guilds:   guilds,
		pool:     pool,
		channels: channels,
		members:  members,
		gw:       gw,
		sessions: NewSessionStore(),
		randInt:  rand.IntN,
	}
}

// Sessions expone el store sólo para introspección (tests, logs de shutdown).
func (s *VoiceService) Sessions() *SessionStore { return s.sessions }

// EnsureGuild crea/refresca la fila del guild (on_guild_join, ready).
func (s *VoiceService) EnsureGuild(ctx context.Context, guildID, name string, iconURL *string) error {
	_, err := s.guilds.Ensure(ctx, guildID, name, iconURL)
	return err
}

// HandleVoiceState procesa un evento. Nunca devuelve error: cada fallo se
// loguea y muere acá, un evento roto no puede frenar a los demás.
func (s *VoiceService) HandleVoiceState(ctx context.Context, ev VoiceEvent) {
	tr := Classify(ev.BeforeChannelID, ev.AfterChannelID)
	if tr == TransitionNone {
		return
	}

	gs, err := s.guilds.Ensure(ctx, ev.GuildID, ev.GuildName, ev.GuildIconURL)
	if err != nil {
		log.Printf("⚠️ voice: settings de guild %s: %v", ev.GuildID, err)
		return
	}
	if !gs.Enabled {
		return
	}

	// reglas custom del canal anterior y del destino, en un solo viaje
	ids := make([]string, 0, 2)
	if ev.BeforeChannelID != "" {
		ids = append(ids, ev.BeforeChannelID)
	}
	if ev.AfterChannelID != "" {
		ids = append(ids, ev.AfterChannelID)
	}
	custom, err := s.channels.CustomRulesFor(ctx, ev.GuildID, ids)
	if err != nil {
		log.Printf("⚠️ voice: reglas custom de guild %s: %v", ev.GuildID, err)
		return
	}
	_, prevCustom := custom[ev.BeforeChannelID]

	if tr == TransitionLeft {
		// un canal custom siempre devuelve la identidad al salir;
		// los demás sólo si el guild tiene restore_on_leave
		if prevCustom || gs.RestoreOnLeave {
			s.restore(ctx, ev)
		}
		return
	}

	// joined o moved
	if tr == TransitionMoved && prevCustom {
		// salir de un canal custom suelta esa identidad, sea cual sea el destino
		s.restore(ctx, ev)
	}

	destRules, destCustom := custom[ev.AfterChannelID]
	inScope, err := s.channelInScope(ctx, ev.GuildID, ev.AfterChannelID, destCustom)
	if err != nil {
		log.Printf("⚠️ voice: scope de canal %s: %v", ev.AfterChannelID, err)
		return
	}
	if !inScope {
		if tr == TransitionMoved && gs.RestoreOnLeave && !prevCustom {
			prevInScope, err := s.channelInScope(ctx, ev.GuildID, ev.BeforeChannelID, false)
			if err == nil && prevInScope {
				s.restore(ctx, ev)
			}
		}
		return
	}

	if !s.eligible(ctx, ev, gs) {
		return
	}

	// snapshot sólo en el primer join; moverse de canal no pisa el original
	if tr == TransitionJoined {
		if s.sessions.Snapshot(ev.GuildID, ev.UserID, IdentitySession{Nick: ev.Nick, DisplayName: ev.DisplayName}) {
			if err := s.members.TouchSeen(ctx, storage.MemberNickname{
				GuildID:      ev.GuildID,
				UserID:       ev.UserID,
				Username:     ev.Username,
				DisplayName:  ev.DisplayName,
				LastSeenNick: ev.Nick,
			}); err != nil {
				log.Printf("⚠️ voice: member_nicknames de %s/%s: %v", ev.GuildID, ev.UserID, err)
			}
		}
	}

	var newNick string
	if destCustom {
		// las reglas se aplican sobre el display name ORIGINAL, no sobre
		// el nombre caótico que pueda tener puesto ahora
		base := ev.DisplayName
		if sess, ok := s.sessions.Peek(ev.GuildID, ev.UserID); ok && sess.DisplayName != "" {
			base = sess.DisplayName
		}
		newNick = transform.Apply(base, destRules)
	} else {
		names := s.poolFor(ctx, ev.GuildID)
		newNick = names[s.randInt(len(names))]
	}

	s.rename(ctx, ev, newNick)
}

// channelInScope: custom ⇒ siempre in scope. Si el guild tiene alguna regla
// included/custom está en modo allow-list y sólo cuentan los canales
// incluidos; si no, vale todo menos los excluidos.
func (s *VoiceService) channelInScope(ctx context.Context, guildID, channelID string, isCustom bool) (bool, error) {
	if isCustom {
		return true, nil
	}
	allowList, err := s.channels.HasAnyIncludedOrCustom(ctx, guildID)
	if err != nil {
		return false, err
	}
	if allowList {
		return s.channels.IsIncluded(ctx, guildID, channelID)
	}
	excluded, err := s.channels.IsExcluded(ctx, guildID, channelID)
	return !excluded, err
}

// eligible corre los chequeos en orden: bot, owner, jerarquía de roles,
// rol de inmunidad. Cualquier fallo corta sin tocar nada.
func (s *VoiceService) eligible(ctx context.Context, ev VoiceEvent, gs storage.GuildSettings) bool {
	if ev.UserID == s.gw.BotUserID() {
		return false
	}
	owner, err := s.gw.IsGuildOwner(ev.GuildID, ev.UserID)
	if err != nil || owner {
		return false
	}
	// si el top role del bot no está por encima, Discord va a rechazar el
	// edit igual; mejor ni intentarlo
	outranks, err := s.gw.BotOutranks(ev.GuildID, ev.UserID)
	if err != nil || !outranks {
		return false
	}
	if gs.ImmunityRoleID != nil {
		has, err := s.gw.MemberHasRole(ev.GuildID, ev.UserID, *gs.ImmunityRoleID)
		if err != nil || has {
			return false
		}
	}
	return true
}

func (s *VoiceService) poolFor(ctx context.Context, guildID string) []string {
	entries, err := s.pool.List(ctx, guildID)
	if err != nil {
		log.Printf("⚠️ voice: pool de %s: %v (uso el default)", guildID, err)
		return DefaultNicknames
	}
	if len(entries) == 0 {
		return DefaultNicknames
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Nickname
	}
	return names
}

func (s *VoiceService) rename(ctx context.Context, ev VoiceEvent, newNick string) bool {
	newNick = transform.Truncate(newNick)
	if err := s.gw.EditNickname(ctx, ev.GuildID, ev.UserID, &newNick); err != nil {
		log.Printf("⚠️ voice: no pude renombrar a %s en %s: %v", ev.Username, ev.GuildID, err)
		return false
	}
	log.Printf("🎭 voice: %s ahora es %q en %s", ev.Username, newNick, ev.GuildID)
	return true
}

// restore: pop del snapshot (consumido pase lo que pase) y edit al nick
// literal original; nil limpia el nickname del server. Si el dashboard fijó
// un reset manual, ese gana.
func (s *VoiceService) restore(ctx context.Context, ev VoiceEvent) bool {
	sess, ok := s.sessions.Pop(ev.GuildID, ev.UserID)
	if !ok {
		return false
	}
	target := sess.Nick
	if override, ok, err := s.members.ResetOverride(ctx, ev.GuildID, ev.UserID); err == nil && ok {
		target = override
	}
	if err := s.gw.EditNickname(ctx, ev.GuildID, ev.UserID, target); err != nil {
		log.Printf("⚠️ voice: no pude restaurar a %s en %s: %v", ev.Username, ev.GuildID, err)
		return false
	}
	if target != nil {
		log.Printf("🎭 voice: %s restaurado a %q en %s", ev.Username, *target, ev.GuildID)
	} else {
		log.Printf("🎭 voice: %s restaurado (sin nick) en %s", ev.Username, ev.GuildID)
	}
	return true
}
