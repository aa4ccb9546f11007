package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/oksasatya/go-session-auth/config"
	"github.com/oksasatya/go-session-auth/internal/application"
	pginfra "github.com/oksasatya/go-session-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/go-session-auth/pkg/helpers"
)

// seed creates a demo account through the account store. An existing email is
// reported and left alone.
func main() {
	email := flag.String("email", "demo@example.com", "account email")
	password := flag.String("password", "", "account password (prompted when empty)")
	first := flag.String("first-name", "Demo", "first name")
	last := flag.String("last-name", "User", "last name")
	flag.Parse()

	if *password == "" {
		p, err := promptPassword()
		if err != nil {
			log.Fatalf("read password: %v", err)
		}
		*password = p
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.RunMigrations {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	store := application.NewAccountStore(pginfra.NewAccountRepository(pool), helpers.NewBcryptHasher(cfg.BcryptCost), logger)
	acc, err := store.Create(ctx, application.CreateAccountInput{
		Email:     *email,
		Password:  *password,
		FirstName: *first,
		LastName:  *last,
	})
	switch {
	case errors.Is(err, application.ErrEmailAlreadyRegistered):
		fmt.Printf("account %s already exists, nothing to do\n", *email)
	case err != nil:
		log.Fatalf("failed to seed account: %v", err)
	default:
		fmt.Printf("seeded account: id=%s email=%s\n", acc.ID, acc.Email)
	}
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("-password is required when stdin is not a terminal")
	}
	fmt.Print("Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
