package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/accounts/repofake"
	"github.com/ovenworks/go-backoffice-auth/auth"
	"github.com/ovenworks/go-backoffice-auth/internal/config"
	"github.com/ovenworks/go-backoffice-auth/mailer"
	"github.com/ovenworks/go-backoffice-auth/realtime"
	"github.com/ovenworks/go-backoffice-auth/server"
	"github.com/ovenworks/go-backoffice-auth/token"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("godotenv.Load: %w", err)
		}
	}

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	tokenService, err := token.NewService(c.GetJWTSecret(),
		token.WithTokenExpiry(c.GetAccessTokenTTL(), c.GetRefreshTokenTTL()))
	if err != nil {
		return fmt.Errorf("token.NewService: %w", err)
	}

	repo, err := accountsRepo(c)
	if err != nil {
		return fmt.Errorf("accounts repo: %w", err)
	}

	presence, err := presenceStore(c)
	if err != nil {
		return fmt.Errorf("presence store: %w", err)
	}
	gateway := realtime.NewGateway(presence)

	authService, err := auth.NewService(repo, tokenService, mailSender(c), c.GetFrontendURL())
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	srv, err := server.New(c, authService, tokenService, repo, gateway)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv.Handler()}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "PRODUCTION" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func accountsRepo(c config.Config) (accounts.Repo, error) {
	dbURL := c.GetDatabaseURL()
	if dbURL == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory account store")
		return repofake.NewFakeAccountRepo(), nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return accounts.NewPostgresRepo(db)
}

func presenceStore(c config.Config) (realtime.PresenceStore, error) {
	addr := c.GetRedisAddr()
	if addr == "" {
		return realtime.NewMemoryPresence(), nil
	}
	return realtime.NewRedisPresence(addr, c.GetRedisPassword())
}

func mailSender(c config.Config) mailer.Sender {
	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     c.GetSmtpHost(),
		Port:     c.GetSmtpPort(),
		Username: c.GetSmtpAccount(),
		Password: c.GetSmtpPassword(),
		From:     c.GetEmailFrom(),
	})
	if err != nil {
		log.Warn().Msg("SMTP not configured, password-reset mail goes to the log")
		return mailer.LogSender{}
	}
	return sender
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
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
