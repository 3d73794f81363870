package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultNoiseTokens are the transmission-type markers stripped from file
// names, together with everything that follows them.
var DefaultNoiseTokens = []string{"CRASH", "DCP", "MQTT", "AWS", "SOLAR", "LOG", "SYNOP", "TABLE"}

// minStationKeyLen is the shortest name accepted as a station key.
const minStationKeyLen = 2

// Normalizer turns transmission file names into canonical station keys.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	noiseRe *regexp.Regexp
}

// NewNormalizer builds a Normalizer for the given noise tokens. Tokens are
// matched literally against the uppercased name; an empty list falls back to
// DefaultNoiseTokens.
func NewNormalizer(tokens []string) *Normalizer {
	quoted := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 {
		return NewNormalizer(DefaultNoiseTokens)
	}
	return &Normalizer{noiseRe: regexp.MustCompile("(?:" + strings.Join(quoted, "|") + ")")}
}

// Normalize returns the station key for fileName, or false when the name
// reduces to noise.
func (n *Normalizer) Normalize(fileName string) (string, bool) {
	name := baseName(fileName)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	name = strings.ToUpper(name)

	if loc := n.noiseRe.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}

	name = stripSerialDigits(name)
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))

	if utf8.RuneCountInString(name) < minStationKeyLen {
		return "", false
	}
	return name, true
}

// stripSerialDigits removes every digit run whose preceding character is an
// ASCII uppercase letter, an underscore or whitespace. Leading digits stay, so
// do runs after punctuation such as "-".
func stripSerialDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	dropping := false
	for i, r := range s {
		if isASCIIDigit(r) {
			if !dropping && i > 0 && !isASCIIDigit(prev) {
				dropping = prev == '_' || (prev >= 'A' && prev <= 'Z') || unicode.IsSpace(prev)
			}
			if !dropping {
				b.WriteRune(r)
			}
		} else {
			dropping = false
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

// baseName strips any directory prefix, tolerating both separators since
// uploads from browsers may carry either.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
