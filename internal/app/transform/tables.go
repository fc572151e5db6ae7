package transform

// Tablas de glifos fijas. Cada par de strings tiene la misma cantidad de runas.

var upsideDownMap = makeTable(
	"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
	"ɐqɔpǝɟƃɥᴉɾʞlɯuodbɹsʇnʌʍxʎz∀qƆpƎℲפHIſʞ˥WNOԀQɹS┴∩ΛMX⅄Z0ƖᄅƐㄣϛ9ㄥ86",
)

var mirrorMap = makeTable(
	"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
	"ɒdɔbɘʇǫʜiįʞlmnoqpɿꙅƚυvwxyzAdƆbƎꟻGHIJʞ⅃MᴎOꟼQЯƧTUVWXYZ",
)

var leetMap = makeTable(
	"aAeEiIoOsStTlL",
	"44331100$$7711",
)

func makeTable(from, to string) map[rune]rune {
	fr := []rune(from)
	tr := []rune(to)
	if len(fr) != len(tr) {
		panic("transform: tabla de glifos desbalanceada")
	}
	m := make(map[rune]rune, len(fr))
	for i, r := range fr {
		m[r] = tr[i]
	}
	return m
}

// Nombres legibles para el dashboard (/api/available-rules).
var KindNames = []struct {
	Kind     Kind
	Name     string
	HasValue bool
}{
	{KindReverse, "Reverse (Mario → oiraM)", false},
	{KindUpsideDown, "Upside Down (Mario → oᴉɹɐW)", false},
	{KindMirror, "Mirror (Mario → oiɿɒM)", false},
	{KindLeetspeak, "Leetspeak (Mario → M4r10)", false},
	{KindSarcastic, "Sarcastic (Mario → mArIo)", false},
	{KindUppercase, "UPPERCASE", false},
	{KindLowercase, "lowercase", false},
	{KindPrefix, "Add Prefix", true},
	{KindSuffix, "Add Suffix", true},
}
