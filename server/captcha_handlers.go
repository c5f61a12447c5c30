package server

import (
	"fmt"
	"net/http"

	"github.com/lintangjaya/go-storefront/captcha"
	"github.com/rs/zerolog/log"
)

// CaptchaHandler issues a fresh challenge, stores it in the caller's session
// and responds with the rendered SVG. The plaintext answer never leaves the
// server in machine-readable form; only the image and, in the signed-token
// scheme, a token carrying the answer's hash.
func (s *Server) CaptchaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		challenge, err := s.deps.Captcha.Generate()
		if err != nil {
			log.Err(err).Msg("captcha generation failed")
			respondError(w, http.StatusInternalServerError, "Failed to generate captcha")
			return
		}

		// Overwrites any previous challenge: at most one live per session.
		sess := s.loadSession(r)
		sess.Captcha = &challenge

		if s.deps.TokenIssuer != nil {
			token, err := s.deps.TokenIssuer.IssueToken(challenge)
			if err != nil {
				log.Err(err).Msg("captcha token issue failed")
				respondError(w, http.StatusInternalServerError, "Failed to generate captcha")
				return
			}
			w.Header().Set("X-Captcha-Token", token)
		}

		s.saveSession(w, r, sess)

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-store")
		fmt.Fprint(w, captcha.RenderSVG(challenge))
	}
}
