// Command assigncoach gives the coach role to an existing account, or
// lists accounts with their roles.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dom/mama-respira/internal/auth"
	"github.com/dom/mama-respira/internal/completion"
	"github.com/dom/mama-respira/internal/config"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/logger"
	"github.com/dom/mama-respira/internal/service"
	"github.com/dom/mama-respira/internal/storage"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "email of the account to promote to coach (defaults to COACH_EMAIL)")
	list := flag.Bool("list", false, "list every account and its role")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console"})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repos, closeStore, err := storage.Open(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore(context.Background())

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL())
	if err != nil {
		zlog.Fatal("invalid token configuration", zap.Error(err))
	}
	services := service.NewServices(repos, cfg, tokens, nil, completion.Disabled{}, zlog)

	if *list {
		if err := listUsers(ctx, services.Auth); err != nil {
			zlog.Fatal("failed to list users", zap.Error(err))
		}
		return
	}

	target := *email
	if target == "" {
		target = cfg.CoachEmail
	}

	user, err := services.Auth.AssignCoach(ctx, target)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		fmt.Fprintf(os.Stderr, "no account registered with %s; register it first\n", target)
		os.Exit(1)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	case err != nil:
		zlog.Fatal("failed to assign coach", zap.Error(err))
	}

	fmt.Printf("%s (%s) is now the coach\n", user.Email, user.UserID)
}

func listUsers(ctx context.Context, authService *service.AuthService) error {
	users, err := authService.ListUsers(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER ID\tEMAIL\tNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.UserID, u.Email, u.Name, u.Role)
	}
	return w.Flush()
}
