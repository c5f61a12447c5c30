package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lintangjaya/go-storefront/audit"
	"github.com/lintangjaya/go-storefront/audit/gormsink"
	"github.com/lintangjaya/go-storefront/auth"
	"github.com/lintangjaya/go-storefront/captcha"
	"github.com/lintangjaya/go-storefront/internal/config"
	productsgorm "github.com/lintangjaya/go-storefront/products/gormrepo"
	"github.com/lintangjaya/go-storefront/server"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/lintangjaya/go-storefront/sessions/redisrepo"
	usersgorm "github.com/lintangjaya/go-storefront/users/gormrepo"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	srv, err := buildServer(c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(c config.Config) (*server.Server, error) {
	db, err := openDatabase(c)
	if err != nil {
		return nil, err
	}

	userRepo := usersgorm.New(db)
	if err := userRepo.Migrate(); err != nil {
		return nil, errors.Wrap(err, "[buildServer] userRepo.Migrate")
	}
	productRepo := productsgorm.New(db)
	if err := productRepo.Migrate(); err != nil {
		return nil, errors.Wrap(err, "[buildServer] productRepo.Migrate")
	}
	auditSink := gormsink.New(db)
	if err := auditSink.Migrate(); err != nil {
		return nil, errors.Wrap(err, "[buildServer] auditSink.Migrate")
	}
	auditLogger := audit.NewLogger(auditSink)

	sessionRepo, err := buildSessionStore(c)
	if err != nil {
		return nil, err
	}

	generator := captcha.NewGenerator(
		captcha.WithLength(c.GetCaptchaLength()),
		captcha.WithTTL(c.GetCaptchaTTL()),
	)

	verifier, tokenIssuer, err := buildVerifier(c, generator)
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(userRepo, auditLogger, verifier,
		auth.WithSessionTTLs(c.GetSessionTTL(), c.GetRememberMeTTL()))
	if err != nil {
		return nil, errors.Wrap(err, "[buildServer] auth.NewService")
	}

	return server.New(c, server.Deps{
		Auth:        authService,
		Users:       userRepo,
		Products:    productRepo,
		Sessions:    sessionRepo,
		Audit:       auditLogger,
		Captcha:     generator,
		TokenIssuer: tokenIssuer,
		AuditCounts: auditSink,
	})
}

func openDatabase(c config.Config) (*gorm.DB, error) {
	path := c.GetDatabasePath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "[openDatabase] os.MkdirAll")
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "[openDatabase] gorm.Open")
	}
	return db, nil
}

func buildSessionStore(c config.Config) (sessions.Repo, error) {
	switch c.GetSessionStore() {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, errors.Wrap(err, "[buildSessionStore] redis ping")
		}
		return redisrepo.New(client), nil
	case "memory":
		return sessions.NewInMemoryRepo(), nil
	default:
		return nil, errors.Errorf("[buildSessionStore] unknown session store %q", c.GetSessionStore())
	}
}

func buildVerifier(c config.Config, generator *captcha.Generator) (auth.ChallengeVerifier, *auth.SignedTokenVerifier, error) {
	switch c.GetCaptchaVerifier() {
	case "session":
		return auth.NewSessionChallengeVerifier(generator), nil, nil
	case "token":
		secret := c.GetSessionSecret()
		if secret == "" {
			return nil, nil, errors.New("[buildVerifier] SESSION_SECRET is required for the token verifier")
		}
		issuer := auth.NewSignedTokenVerifier([]byte(secret))
		return issuer, issuer, nil
	case "recaptcha":
		secret := c.GetReCaptchaSecret()
		if secret == "" && c.GetEnv() != "DEV" {
			return nil, nil, errors.New("[buildVerifier] RECAPTCHA_SECRET is required for the recaptcha verifier")
		}
		verifier := auth.NewRecaptchaVerifier(secret,
			auth.WithDevBypass(c.GetEnv() == "DEV"))
		return verifier, nil, nil
	default:
		return nil, nil, errors.Errorf("[buildVerifier] unknown captcha verifier %q", c.GetCaptchaVerifier())
	}
}

func configureLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
