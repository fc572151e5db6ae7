package transform

import (
	"strings"
	"unicode"
)

// Límite de Discord para nicknames.
const MaxNicknameLen = 32

// Kind es el set cerrado de transformaciones disponibles.
type Kind string

const (
	KindReverse    Kind = "reverse"
	KindUpsideDown Kind = "upside_down"
	KindMirror     Kind = "mirror"
	KindLeetspeak  Kind = "leetspeak"
	KindSarcastic  Kind = "sarcastic"
	KindUppercase  Kind = "uppercase"
	KindLowercase  Kind = "lowercase"
	KindPrefix     Kind = "prefix"
	KindSuffix     Kind = "suffix"
)

// Rule es una transformación con valor opcional (sólo prefix/suffix lo usan).
// El shape JSON es el mismo que guarda el dashboard: {"type": ..., "value": ...}
type Rule struct {
	Kind  Kind   `json:"type"`
	Value string `json:"value,omitempty"`
}

// Apply corre las reglas en orden, cada una sobre la salida de la anterior,
// y trunca el resultado al límite de Discord.
func Apply(name string, rules []Rule) string {
	out := name
	for _, r := range rules {
		switch r.Kind {
		case KindReverse:
			out = reverse(out)
		case KindUpsideDown:
			out = reverse(translate(out, upsideDownMap))
		case KindMirror:
			out = reverse(translate(out, mirrorMap))
		case KindLeetspeak:
			out = translate(out, leetMap)
		case KindSarcastic:
			out = sarcastic(out)
		case KindUppercase:
			out = strings.ToUpper(out)
		case KindLowercase:
			out = strings.ToLower(out)
		case KindPrefix:
			if r.Value != "" {
				out = r.Value + " " + out
			}
		case KindSuffix:
			if r.Value != "" {
				out = out + " " + r.Value
			}
		default:
			// regla desconocida (dashboard viejo?) → la salteamos
		}
	}
	return Truncate(out)
}

// Truncate corta a MaxNicknameLen runas (no bytes: los glifos invertidos son multibyte).
func Truncate(s string) string {
	rs := []rune(s)
	if len(rs) <= MaxNicknameLen {
		return s
	}
	return string(rs[:MaxNicknameLen])
}

func reverse(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

func translate(s string, table map[rune]rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if m, ok := table[r]; ok {
			b.WriteRune(m)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sarcastic alterna mInÚsCuLa/mAyÚsCuLa sólo sobre letras; el resto pasa
// sin avanzar la alternancia. Arranca en minúscula.
func sarcastic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if upper {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			upper = !upper
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
