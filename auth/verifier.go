package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lintangjaya/go-storefront/captcha"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Proof carries whatever the client submitted to prove it solved a challenge.
// Answer holds the echoed text; Token holds a signed challenge token or an
// external reCAPTCHA token, depending on the configured verifier.
type Proof struct {
	Answer string
	Token  string
}

// ChallengeVerifier decides whether a request carries valid proof for the
// CAPTCHA gate. Implementations must treat absent or malformed proof as a
// normal "invalid" outcome, never an error. There is exactly one verifier per
// deployment, selected by configuration.
type ChallengeVerifier interface {
	Verify(ctx context.Context, sess *sessions.Session, proof Proof) bool
}

// SessionChallengeVerifier validates the answer against the challenge stored
// in the caller's session. This is the default, self-contained scheme.
type SessionChallengeVerifier struct {
	gen *captcha.Generator
}

var _ ChallengeVerifier = (*SessionChallengeVerifier)(nil)

func NewSessionChallengeVerifier(gen *captcha.Generator) *SessionChallengeVerifier {
	return &SessionChallengeVerifier{gen: gen}
}

func (v *SessionChallengeVerifier) Verify(_ context.Context, sess *sessions.Session, proof Proof) bool {
	if sess == nil || sess.Captcha == nil {
		return false
	}
	return v.gen.Validate(proof.Answer, sess.Captcha.Text, sess.Captcha.ExpiresAt)
}

// SignedTokenVerifier is the stateless scheme: the server issues an
// HMAC-signed token carrying the hash of the normalized answer and an expiry;
// the client echoes the token together with the answer. No session state is
// consulted, which suits deployments behind load balancers without sticky
// sessions.
type SignedTokenVerifier struct {
	secret  []byte
	nowTime func() time.Time
}

var _ ChallengeVerifier = (*SignedTokenVerifier)(nil)

// SignedTokenOption defines a function type to modify the SignedTokenVerifier.
type SignedTokenOption func(*SignedTokenVerifier)

// WithTokenNowTime sets the now time function (primarily for testing)
func WithTokenNowTime(nowFunc func() time.Time) SignedTokenOption {
	return func(v *SignedTokenVerifier) {
		v.nowTime = nowFunc
	}
}

func NewSignedTokenVerifier(secret []byte, options ...SignedTokenOption) *SignedTokenVerifier {
	v := &SignedTokenVerifier{
		secret:  secret,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

type challengeClaims struct {
	AnswerHash string `json:"ath"` // SHA-256 of the lowercased answer
	jwt.RegisteredClaims
}

// IssueToken signs a stateless token for the given challenge. The token never
// contains the answer itself, only its hash.
func (v *SignedTokenVerifier) IssueToken(c captcha.Challenge) (string, error) {
	claims := challengeClaims{
		AnswerHash: hashAnswer(c.Text),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(v.nowTime()),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", errors.Wrap(err, "[SignedTokenVerifier.IssueToken] SignedString")
	}
	return signed, nil
}

func (v *SignedTokenVerifier) Verify(_ context.Context, _ *sessions.Session, proof Proof) bool {
	if proof.Token == "" || proof.Answer == "" {
		return false
	}

	claims := &challengeClaims{}
	token, err := jwt.ParseWithClaims(proof.Token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.nowTime), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return false
	}

	return claims.AnswerHash == hashAnswer(proof.Answer)
}

func hashAnswer(answer string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(answer)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RecaptchaVerifier delegates to Google's siteverify endpoint. The session is
// not consulted; the proof token is whatever the reCAPTCHA widget produced on
// the client.
type RecaptchaVerifier struct {
	secret         string
	verifyURL      string
	client         *http.Client
	scoreThreshold float64
	devBypass      bool
}

var _ ChallengeVerifier = (*RecaptchaVerifier)(nil)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaOption defines a function type to modify the RecaptchaVerifier.
type RecaptchaOption func(*RecaptchaVerifier)

// WithVerifyURL overrides the siteverify endpoint (primarily for testing).
func WithVerifyURL(u string) RecaptchaOption {
	return func(v *RecaptchaVerifier) {
		v.verifyURL = u
	}
}

// WithHTTPClient overrides the HTTP client used for verification calls.
func WithHTTPClient(c *http.Client) RecaptchaOption {
	return func(v *RecaptchaVerifier) {
		v.client = c
	}
}

// WithDevBypass lets requests without a token pass. Only ever enabled in
// development environments.
func WithDevBypass(bypass bool) RecaptchaOption {
	return func(v *RecaptchaVerifier) {
		v.devBypass = bypass
	}
}

func NewRecaptchaVerifier(secret string, options ...RecaptchaOption) *RecaptchaVerifier {
	v := &RecaptchaVerifier{
		secret:         secret,
		verifyURL:      recaptchaVerifyURL,
		client:         &http.Client{Timeout: 10 * time.Second},
		scoreThreshold: 0.5,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, _ *sessions.Session, proof Proof) bool {
	if proof.Token == "" {
		if v.devBypass {
			log.Info().Msg("development mode: bypassing recaptcha verification")
			return true
		}
		return false
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {proof.Token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		log.Err(err).Msg("recaptcha verification request build failed")
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		log.Err(err).Msg("recaptcha verification call failed")
		return false
	}
	defer resp.Body.Close()

	var body siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Err(err).Msg("recaptcha verification response unreadable")
		return false
	}

	if !body.Success {
		log.Warn().Strs("error_codes", body.ErrorCodes).Msg("recaptcha verification rejected")
		return false
	}
	// reCAPTCHA v3 scores suspicious traffic below the threshold.
	if body.Score != nil && *body.Score < v.scoreThreshold {
		log.Warn().Float64("score", *body.Score).Msg("recaptcha score below threshold")
		return false
	}
	return true
}
