package parktrack

import (
	"regexp"
	"strings"
)

const maskRune = "•"

var bearerPrefix = regexp.MustCompile(`(?i)^bearer\s+`)

// MaskToken hides all but the last four characters of token. Tokens of
// four characters or fewer are hidden completely.
func MaskToken(token string) string {
	t := []rune(strings.TrimSpace(token))
	if len(t) == 0 {
		return ""
	}
	if len(t) <= 4 {
		return strings.Repeat(maskRune, len(t))
	}
	return strings.Repeat(maskRune, len(t)-4) + string(t[len(t)-4:])
}

// MaskBearer masks the token in an Authorization header value.
func MaskBearer(header string) string {
	if header == "" {
		return ""
	}
	token := strings.TrimSpace(bearerPrefix.ReplaceAllString(header, ""))
	return "Bearer " + MaskToken(token)
}
