package config

import (
	"strconv"
	"time"
)

type Captcha struct{}

var _ CaptchaConfig = Captcha{}

func (Captcha) GetCaptchaLength() int {
	raw := GetEnv("CAPTCHA_LENGTH", "6")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 6
	}
	return n
}

func (Captcha) GetCaptchaTTL() time.Duration {
	return durationEnv("CAPTCHA_TTL", 10*time.Minute)
}

func (Captcha) GetCaptchaVerifier() string {
	return GetEnv("CAPTCHA_VERIFIER", "session")
}

func (Captcha) GetReCaptchaSecret() string {
	return GetEnv("RECAPTCHA_SECRET", "")
}
