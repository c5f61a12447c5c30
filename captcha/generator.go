package captcha

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// alphabet deliberately excludes visually ambiguous characters (0/O, 1/I/l, i/o)
// so that rendered glyphs can always be read back unambiguously. The set is part
// of the contract: changing it invalidates nothing server-side but confuses users.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

const (
	DefaultLength = 6
	DefaultTTL    = 10 * time.Minute
)

// Challenge is the text+expiry pair a user must echo back. It lives only inside
// the session record; the caller is responsible for storing and consuming it.
type Challenge struct {
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Generator produces and validates challenges. It is stateless and safe for
// concurrent use.
type Generator struct {
	length  int
	ttl     time.Duration
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// GeneratorOption defines a function type to modify the Generator instance.
type GeneratorOption func(*Generator)

// WithLength sets the number of characters in generated challenges.
func WithLength(length int) GeneratorOption {
	return func(g *Generator) {
		g.length = length
	}
}

// WithTTL sets how long a generated challenge stays valid.
func WithTTL(ttl time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.ttl = ttl
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.nowTime = nowFunc
	}
}

// NewGenerator initializes a Generator with the default length and TTL.
// Optional configuration can be provided via options.
func NewGenerator(options ...GeneratorOption) *Generator {
	g := &Generator{
		length:  DefaultLength,
		ttl:     DefaultTTL,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.length <= 0 {
		g.length = DefaultLength
	}
	if g.ttl <= 0 {
		g.ttl = DefaultTTL
	}
	return g
}

// Generate produces a fresh challenge with expiry set to now + TTL. It is a
// pure value; nothing is stored.
func (g *Generator) Generate() (Challenge, error) {
	var sb strings.Builder
	sb.Grow(g.length)
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return Challenge{}, errors.Wrap(err, "[Generator.Generate] rand.Int")
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return Challenge{
		Text:      sb.String(),
		ExpiresAt: g.nowTime().Add(g.ttl),
	}, nil
}

// Validate reports whether input matches the stored challenge text before its
// expiry. Absent stored state and expiry are normal "invalid" outcomes, never
// errors. The comparison is case-insensitive: rendered glyphs are ambiguous in
// case, so this is a usability trade-off, not a security control — the CAPTCHA
// is bot friction, not a cryptographic gate.
func (g *Generator) Validate(input, storedText string, storedExpiresAt time.Time) bool {
	if input == "" || storedText == "" || storedExpiresAt.IsZero() {
		return false
	}
	if g.nowTime().After(storedExpiresAt) {
		return false
	}
	return strings.EqualFold(input, storedText)
}
