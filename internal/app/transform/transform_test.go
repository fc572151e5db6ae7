package transform

import (
	"strings"
	"testing"
)

func TestApply(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		rules []Rule
		want  string
	}{
		{"sin reglas", "Mario", nil, "Mario"},
		{"reverse", "Mario", []Rule{{Kind: KindReverse}}, "oiraM"},
		{"reverse dos veces vuelve al original", "Mario", []Rule{{Kind: KindReverse}, {Kind: KindReverse}}, "Mario"},
		{"upside down", "Mario", []Rule{{Kind: KindUpsideDown}}, "oᴉɹɐW"},
		{"mirror", "Mario", []Rule{{Kind: KindMirror}}, "oiɿɒM"},
		{"leetspeak", "Mario", []Rule{{Kind: KindLeetspeak}}, "M4r10"},
		{"sarcastic", "Mario", []Rule{{Kind: KindSarcastic}}, "mArIo"},
		{"sarcastic no avanza en espacios", "ab cd", []Rule{{Kind: KindSarcastic}}, "aB cD"},
		{"uppercase", "Mario", []Rule{{Kind: KindUppercase}}, "MARIO"},
		{"lowercase", "MaRiO", []Rule{{Kind: KindLowercase}}, "mario"},
		{"prefix", "Bob", []Rule{{Kind: KindPrefix, Value: "Sir"}}, "Sir Bob"},
		{"suffix", "Bob", []Rule{{Kind: KindSuffix, Value: "[AFK]"}}, "Bob [AFK]"},
		{"prefix sin value no hace nada", "Bob", []Rule{{Kind: KindPrefix}}, "Bob"},
		{"encadenadas en orden", "Bob", []Rule{{Kind: KindUppercase}, {Kind: KindSuffix, Value: "[AFK]"}}, "BOB [AFK]"},
		{"regla desconocida se saltea", "Bob", []Rule{{Kind: Kind("sparkles")}, {Kind: KindReverse}}, "boB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Apply(tc.in, tc.rules); got != tc.want {
				t.Errorf("Apply(%q, %v) = %q, quiero %q", tc.in, tc.rules, got, tc.want)
			}
		})
	}
}

func TestApplyTruncates(t *testing.T) {
	long := strings.Repeat("x", 40)
	got := Apply(long, []Rule{{Kind: KindUppercase}})
	if want := strings.Repeat("X", MaxNicknameLen); got != want {
		t.Errorf("Apply largo = %q (len %d), quiero %d runas", got, len([]rune(got)), MaxNicknameLen)
	}

	// el suffix también tiene que quedar dentro del límite
	got = Apply(strings.Repeat("y", 30), []Rule{{Kind: KindSuffix, Value: "[AFK]"}})
	if n := len([]rune(got)); n != MaxNicknameLen {
		t.Errorf("con suffix quedaron %d runas, quiero %d", n, MaxNicknameLen)
	}
}

func TestTruncateCountsRunesNotBytes(t *testing.T) {
	// glifos invertidos multibyte: 32 runas tienen que sobrevivir enteras
	upside := Apply(strings.Repeat("a", MaxNicknameLen), []Rule{{Kind: KindUpsideDown}})
	if n := len([]rune(upside)); n != MaxNicknameLen {
		t.Errorf("quedaron %d runas, quiero %d", n, MaxNicknameLen)
	}
	if !strings.Contains(upside, "ɐ") {
		t.Errorf("se perdió el glifo invertido: %q", upside)
	}
}

func TestRoundTripReversibles(t *testing.T) {
	// upside_down y mirror son reverse(translate(...)); aplicadas a un
	// nombre sólo-ASCII el largo en runas no cambia
	for _, k := range []Kind{KindUpsideDown, KindMirror, KindReverse} {
		got := Apply("Peach", []Rule{{Kind: k}})
		if len([]rune(got)) != len("Peach") {
			t.Errorf("%s cambió el largo: %q", k, got)
		}
	}
}
