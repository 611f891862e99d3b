package style

import "strings"

// Fallback tokens for inputs that cannot stand alone as CSS identifiers.
const (
	UnknownToken = "type-unknown" // empty or all-punctuation input
	DigitPrefix  = "type-"        // prepended when the token starts with a digit
)

// ClassToken converts a raw type string into a CSS class identifier.
//
// The input is lower-cased, every run of characters outside [a-z0-9-] is
// replaced with a single "-", repeated dashes are collapsed and leading or
// trailing dashes removed. An empty result becomes [UnknownToken]; a result
// starting with a digit gets [DigitPrefix].
//
// ClassToken(ClassToken(s)) == ClassToken(s) for every s.
func ClassToken(raw string) string {
	lower := strings.ToLower(raw)

	var sb strings.Builder
	sb.Grow(len(lower))
	dash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			sb.WriteByte('-')
			dash = true
		}
	}

	token := strings.Trim(sb.String(), "-")
	switch {
	case token == "":
		return UnknownToken
	case token[0] >= '0' && token[0] <= '9':
		return DigitPrefix + token
	}
	return token
}

// Classes joins a base class with the token of typ, if any.
// Classes("node", "Router") == "node router".
func Classes(base, typ string) string {
	if strings.TrimSpace(typ) == "" {
		return base
	}
	return base + " " + ClassToken(typ)
}
