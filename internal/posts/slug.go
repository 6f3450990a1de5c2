package posts

import (
	"strings"

	"github.com/google/uuid"
)

// NewSlug derives a URL-friendly key from the title plus a short random
// suffix. The suffix keeps identical titles from colliding without a
// unique index round-trip.
func NewSlug(title string) string {
	base := slugify(title)
	if base == "" {
		base = "post"
	}
	return base + "-" + uuid.NewString()[:8]
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dashes
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
