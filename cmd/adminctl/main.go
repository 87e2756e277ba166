// Command adminctl bootstraps the admin account: it connects to the
// database, applies migrations, and creates the configured admin user if it
// does not exist yet. Run with -prompt to type the password interactively
// instead of taking it from configuration.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/premio/internal/server/config"
	"github.com/dmitrijs2005/premio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/premio/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptPassword() (string, error) {
	fmt.Println("-Enter admin password")
	b, err := readPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func shouldPrompt(args []string) bool {
	for _, a := range args {
		if a == "-prompt" {
			return true
		}
	}
	return false
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	password := cfg.AdminPassword
	if shouldPrompt(os.Args[1:]) {
		p, err := promptPassword()
		if err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		password = p
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)

	user, created, err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, password)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("admin account %q created (id %d)\n", user.Username, user.ID)
	} else {
		fmt.Printf("admin account %q already exists (id %d)\n", user.Username, user.ID)
	}
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
