package shared

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// NewID returns a new random entity identifier.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether id is a canonical UUID.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Text Value Objects
// ═══════════════════════════════════════════════════════════════════════════

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]{3,150}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	colorRegex    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	slugDashes    = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsValidUsername checks a login name: 3-150 letters, digits or @.+-_ characters.
func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// IsValidEmail performs a shallow shape check of an email address.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidColor checks a #rrggbb color.
func IsValidColor(color string) bool {
	return colorRegex.MatchString(color)
}

// Slugify converts free text into a URL slug. Accents are folded to their
// base letters so "Programação Orientada" becomes "programacao-orientada".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = slugDashes.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination
// ═══════════════════════════════════════════════════════════════════════════

const (
	// DefaultPageSize is used when a list request does not specify a limit.
	DefaultPageSize = 20
	// MaxPageSize caps the limit of a single list request.
	MaxPageSize = 100
)

// Page selects a window of a list ordered by the repository.
type Page struct {
	Limit  int
	Offset int
}

// Normalize returns a Page with limit and offset clamped to sane values.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// IsFirst reports whether the page starts at the beginning of the list
// with the default size.
func (p Page) IsFirst() bool {
	n := p.Normalize()
	return n.Offset == 0 && n.Limit == DefaultPageSize
}
