package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jose-valero/identity-crisis-bot/internal/app/transform"
	"github.com/jose-valero/identity-crisis-bot/internal/infra/storage"
)

// ---------- fakes de los ports ----------

type fakeGuilds struct{ gs storage.GuildSettings }

func (f *fakeGuilds) Ensure(_ context.Context, _, _ string, _ *string) (storage.GuildSettings, error) {
	return f.gs, nil
}
func (f *fakeGuilds) Get(_ context.Context, _ string) (storage.GuildSettings, error) {
	return f.gs, nil
}
func (f *fakeGuilds) Update(_ context.Context, _ string, _ storage.GuildSettingsUpdate) (storage.GuildSettings, error) {
	return f.gs, nil
}

type fakePool struct {
	names []string
	err   error
}

func (f *fakePool) List(_ context.Context, guildID string) ([]storage.NicknameEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []storage.NicknameEntry
	for i, n := range f.names {
		out = append(out, storage.NicknameEntry{ID: int64(i + 1), GuildID: guildID, Nickname: n})
	}
	return out, nil
}

type fakeChannels struct {
	excluded map[string]bool
	included map[string]bool
	custom   map[string][]transform.Rule
}

func (f *fakeChannels) IsExcluded(_ context.Context, _, channelID string) (bool, error) {
	return f.excluded[channelID], nil
}
func (f *fakeChannels) IsIncluded(_ context.Context, _, channelID string) (bool, error) {
	return f.included[channelID], nil
}
func (f *fakeChannels) HasAnyIncludedOrCustom(_ context.Context, _ string) (bool, error) {
	return len(f.included) > 0 || len(f.custom) > 0, nil
}
func (f *fakeChannels) CustomRulesFor(_ context.Context, _ string, channelIDs []string) (map[string][]transform.Rule, error) {
	out := map[string][]transform.Rule{}
	for _, id := range channelIDs {
		if rules, ok := f.custom[id]; ok {
			out[id] = rules
		}
	}
	return out, nil
}

type fakeMembers struct {
	touched     []storage.MemberNickname
	override    *string
	hasOverride bool
}

func (f *fakeMembers) TouchSeen(_ context.Context, m storage.MemberNickname) error {
	f.touched = append(f.touched, m)
	return nil
}
func (f *fakeMembers) ResetOverride(_ context.Context, _, _ string) (*string, bool, error) {
	return f.override, f.hasOverride, nil
}

type editCall struct {
	userID string
	nick   *string
}

type fakeGateway struct {
	botID    string
	owner    bool
	outranks bool
	hasRole  bool
	editErr  error
	edits    []editCall
}

func (f *fakeGateway) BotUserID() string { return f.botID }
func (f *fakeGateway) IsGuildOwner(_, _ string) (bool, error) {
	return f.owner, nil
}
func (f *fakeGateway) BotOutranks(_, _ string) (bool, error) {
	return f.outranks, nil
}
func (f *fakeGateway) MemberHasRole(_, _, _ string) (bool, error) {
	return f.hasRole, nil
}
func (f *fakeGateway) EditNickname(_ context.Context, _, userID string, nick *string) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, editCall{userID: userID, nick: nick})
	return nil
}

// ---------- fixture ----------

type voiceFixture struct {
	guilds   *fakeGuilds
	pool     *fakePool
	channels *fakeChannels
	members  *fakeMembers
	gw       *fakeGateway
	svc      *VoiceService
}

func newVoiceFixture() *voiceFixture {
	f := &voiceFixture{
		guilds:   &fakeGuilds{gs: storage.GuildSettings{GuildID: "g1", Enabled: true, RestoreOnLeave: true}},
		pool:     &fakePool{names: []string{"Agent 47", "Banana Joe"}},
		channels: &fakeChannels{excluded: map[string]bool{}, included: map[string]bool{}, custom: map[string][]transform.Rule{}},
		members:  &fakeMembers{},
		gw:       &fakeGateway{botID: "bot", outranks: true},
	}
	f.svc = NewVoiceService(f.guilds, f.pool, f.channels, f.members, f.gw)
	f.svc.randInt = func(int) int { return 0 } // determinista: siempre el primero del pool
	return f
}

func event(before, after string) VoiceEvent {
	return VoiceEvent{
		GuildID:         "g1",
		UserID:          "u1",
		Username:        "mario",
		DisplayName:     "Mario",
		BeforeChannelID: before,
		AfterChannelID:  after,
	}
}

// ---------- tests ----------

func TestClassify(t *testing.T) {
	cases := []struct {
		before, after string
		want          Transition
	}{
		{"", "a", TransitionJoined},
		{"a", "", TransitionLeft},
		{"a", "b", TransitionMoved},
		{"a", "a", TransitionNone},
		{"", "", TransitionNone},
	}
	for _, tc := range cases {
		if got := Classify(tc.before, tc.after); got != tc.want {
			t.Errorf("Classify(%q, %q) = %v, quiero %v", tc.before, tc.after, got, tc.want)
		}
	}
}

func TestJoinRenamesFromPool(t *testing.T) {
	f := newVoiceFixture()
	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))

	if len(f.gw.edits) != 1 {
		t.Fatalf("edits = %d, quiero 1", len(f.gw.edits))
	}
	if e := f.gw.edits[0]; e.nick == nil || *e.nick != "Agent 47" {
		t.Fatalf("rename = %v, quiero Agent 47", e.nick)
	}
	if f.svc.Sessions().Len() != 1 {
		t.Fatal("tendría que haber un snapshot vivo")
	}
	if len(f.members.touched) != 1 || f.members.touched[0].Username != "mario" {
		t.Fatalf("member_nicknames no se tocó: %+v", f.members.touched)
	}
}

func TestJoinFallsBackToDefaultPool(t *testing.T) {
	f := newVoiceFixture()
	f.pool.names = nil
	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))

	if len(f.gw.edits) != 1 {
		t.Fatalf("edits = %d, quiero 1", len(f.gw.edits))
	}
	if e := f.gw.edits[0]; e.nick == nil || *e.nick != DefaultNicknames[0] {
		t.Fatalf("rename = %v, quiero %q del pool default", e.nick, DefaultNicknames[0])
	}
}

func TestLeaveRestoresToUnsetNick(t *testing.T) {
	f := newVoiceFixture()
	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))
	// el usuario no tenía nickname: restaurar = limpiar
	f.svc.HandleVoiceState(context.Background(), event("voz-1", ""))

	if len(f.gw.edits) != 2 {
		t.Fatalf("edits = %d, quiero 2", len(f.gw.edits))
	}
	if f.gw.edits[1].nick != nil {
		t.Fatalf("restore = %q, quiero nil (sin nick)", *f.gw.edits[1].nick)
	}
	if f.svc.Sessions().Len() != 0 {
		t.Fatal("el snapshot tendría que haberse consumido")
	}
}

func TestLeaveRestoresLiteralNick(t *testing.T) {
	f := newVoiceFixture()
	ev := event("", "voz-1")
	ev.Nick = strPtr("ElFontanero")
	ev.DisplayName = "ElFontanero"
	f.svc.HandleVoiceState(context.Background(), ev)
	f.svc.HandleVoiceState(context.Background(), event("voz-1", ""))

	if len(f.gw.edits) != 2 {
		t.Fatalf("edits = %d, quiero 2", len(f.gw.edits))
	}
	if e := f.gw.edits[1]; e.nick == nil || *e.nick != "ElFontanero" {
		t.Fatalf("restore = %v, quiero ElFontanero", e.nick)
	}
}

func TestLeaveWithoutRestoreKeepsChaosName(t *testing.T) {
	f := newVoiceFixture()
	f.guilds.gs.RestoreOnLeave = false
	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))
	f.svc.HandleVoiceState(context.Background(), event("voz-1", ""))

	if len(f.gw.edits) != 1 {
		t.Fatalf("edits = %d, quiero sólo el rename del join", len(f.gw.edits))
	}
}

func TestDisabledGuildDoesNothing(t *testing.T) {
	f := newVoiceFixture()
	f.guilds.gs.Enabled = false
	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))

	if len(f.gw.edits) != 0 {
		t.Fatalf("edits = %d, quiero 0", len(f.gw.edits))
	}
}

func TestCustomChannelAppliesRules(t *testing.T) {
	f := newVoiceFixture()
	f.channels.custom["raro"] = []transform.Rule{{Kind: transform.KindUppercase}, {Kind: transform.KindSuffix, Value: "[?]"}}
	f.svc.HandleVoiceState(context.Background(), event("", "raro"))

	if len(f.gw.edits) != 1 {
		t.Fatalf("edits = %d, quiero 1", len(f.gw.edits))
	}
	if e := f.gw.edits[0]; e.nick == nil || *e.nick != "MARIO [?]" {
		t.Fatalf("rename = %v, quiero MARIO [?]", e.nick)
	}
}

func TestCustomRulesUseOriginalDisplayName(t *testing.T) {
	f := newVoiceFixture()
	f.channels.custom["raro"] = []transform.Rule{{Kind: transform.KindUppercase}}
	// included vacío pero custom presente ⇒ modo allow-list; el canal normal
	// también tiene que estar incluido para que el join inicial renombre
	f.channels.included["voz-1"] = true

	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))
	// al moverse, las reglas corren sobre "Mario", no sobre "Agent 47"
	f.svc.HandleVoiceState(context.Background(), event("voz-1", "raro"))

	last := f.gw.edits[len(f.gw.edits)-1]
	if last.nick == nil || *last.nick != "MARIO" {
		t.Fatalf("rename en custom = %v, quiero MARIO", last.nick)
	}
}

func TestMovedOutOfCustomRestores(t *testing.T) {
	f := newVoiceFixture()
	f.guilds.gs.RestoreOnLeave = false
	f.channels.custom["raro"] = []transform.Rule{{Kind: transform.KindReverse}}
	f.channels.included["voz-1"] = true

	f.svc.HandleVoiceState(context.Background(), event("", "raro"))
	f.svc.HandleVoiceState(context.Background(), event("raro", "voz-1"))

	// restore (nil) + rename nuevo del pool
	if len(f.gw.edits) != 3 {
		t.Fatalf("edits = %d, quiero 3 (join, restore, rename)", len(f.gw.edits))
	}
	if f.gw.edits[1].nick != nil {
		t.Fatalf("el restore tendría que limpiar el nick, fue %v", f.gw.edits[1].nick)
	}
	if e := f.gw.edits[2]; e.nick == nil || *e.nick != "Agent 47" {
		t.Fatalf("rename post-custom = %v, quiero Agent 47", e.nick)
	}
}

func TestAllowListMode(t *testing.T) {
	f := newVoiceFixture()
	f.channels.included["permitido"] = true

	f.svc.HandleVoiceState(context.Background(), event("", "otro"))
	if len(f.gw.edits) != 0 {
		t.Fatalf("canal fuera de la allow-list renombró: %+v", f.gw.edits)
	}

	f.svc.HandleVoiceState(context.Background(), event("", "permitido"))
	if len(f.gw.edits) != 1 {
		t.Fatalf("canal permitido no renombró")
	}
}

func TestExclusionMode(t *testing.T) {
	f := newVoiceFixture()
	f.channels.excluded["afk"] = true

	f.svc.HandleVoiceState(context.Background(), event("", "afk"))
	if len(f.gw.edits) != 0 {
		t.Fatalf("canal excluido renombró: %+v", f.gw.edits)
	}

	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))
	if len(f.gw.edits) != 1 {
		t.Fatalf("canal no excluido no renombró")
	}
}

func TestMoveIntoExcludedChannelRestores(t *testing.T) {
	f := newVoiceFixture()
	f.channels.excluded["afk"] = true

	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))
	// pasar a un canal excluido desde uno no excluido devuelve la identidad
	f.svc.HandleVoiceState(context.Background(), event("voz-1", "afk"))

	if len(f.gw.edits) != 2 {
		t.Fatalf("edits = %d, quiero 2 (rename, restore)", len(f.gw.edits))
	}
	if f.gw.edits[1].nick != nil {
		t.Fatalf("restore = %q, quiero nil (sin nick)", *f.gw.edits[1].nick)
	}
	if f.svc.Sessions().Len() != 0 {
		t.Fatal("el snapshot tendría que haberse consumido al entrar al excluido")
	}
}

func TestMoveIntoExcludedWithoutRestoreOnLeave(t *testing.T) {
	f := newVoiceFixture()
	f.guilds.gs.RestoreOnLeave = false
	f.channels.excluded["afk"] = true

	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))
	f.svc.HandleVoiceState(context.Background(), event("voz-1", "afk"))

	if len(f.gw.edits) != 1 {
		t.Fatalf("sin restore_on_leave el caos se queda: edits = %d", len(f.gw.edits))
	}
	if f.svc.Sessions().Len() != 1 {
		t.Fatal("el snapshot tendría que seguir vivo")
	}
}

func TestEligibility(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*voiceFixture, *VoiceEvent)
	}{
		{"el bot se ignora a sí mismo", func(f *voiceFixture, ev *VoiceEvent) { ev.UserID = f.gw.botID }},
		{"el owner es intocable", func(f *voiceFixture, _ *VoiceEvent) { f.gw.owner = true }},
		{"sin jerarquía no se intenta", func(f *voiceFixture, _ *VoiceEvent) { f.gw.outranks = false }},
		{"rol de inmunidad", func(f *voiceFixture, _ *VoiceEvent) {
			f.guilds.gs.ImmunityRoleID = strPtr("r-immune")
			f.gw.hasRole = true
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newVoiceFixture()
			ev := event("", "voz-1")
			tc.setup(f, &ev)
			f.svc.HandleVoiceState(context.Background(), ev)
			if len(f.gw.edits) != 0 {
				t.Fatalf("edits = %d, quiero 0", len(f.gw.edits))
			}
			if f.svc.Sessions().Len() != 0 {
				t.Fatal("no tendría que haber snapshot de un miembro no elegible")
			}
		})
	}
}

func TestManualResetOverrideWinsOnRestore(t *testing.T) {
	f := newVoiceFixture()
	ev := event("", "voz-1")
	ev.Nick = strPtr("Original")
	f.svc.HandleVoiceState(context.Background(), ev)

	f.members.override = strPtr("ElegidoPorElDashboard")
	f.members.hasOverride = true
	f.svc.HandleVoiceState(context.Background(), event("voz-1", ""))

	if e := f.gw.edits[len(f.gw.edits)-1]; e.nick == nil || *e.nick != "ElegidoPorElDashboard" {
		t.Fatalf("restore = %v, quiero el override del dashboard", e.nick)
	}
}

func TestFailedRestoreConsumesSession(t *testing.T) {
	f := newVoiceFixture()
	f.svc.HandleVoiceState(context.Background(), event("", "voz-1"))

	f.gw.editErr = errors.New("Missing Permissions")
	f.svc.HandleVoiceState(context.Background(), event("voz-1", ""))

	if f.svc.Sessions().Len() != 0 {
		t.Fatal("la sesión se consume aunque el edit falle, sin reintentos")
	}
}

func TestMuteToggleIsNoop(t *testing.T) {
	f := newVoiceFixture()
	f.svc.HandleVoiceState(context.Background(), event("voz-1", "voz-1"))
	if len(f.gw.edits) != 0 {
		t.Fatalf("un toggle dentro del mismo canal no es transición: %+v", f.gw.edits)
	}
}
