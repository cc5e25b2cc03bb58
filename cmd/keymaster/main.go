package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/keymaster/keymaster/internal/config"
	"github.com/keymaster/keymaster/internal/crypto"
	"github.com/keymaster/keymaster/internal/logger"
	"github.com/keymaster/keymaster/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("keymaster-admin")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	// The config layer already ran flag.Parse; the subcommand is the first
	// positional argument.
	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	repos := store.NewRepositories(db, log)

	switch command {
	case "migrate":
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("error running migrations")
		}
		log.Info().Msg("migrations applied")

	case "setup":
		if err := setup(ctx, repos.Config, log); err != nil {
			log.Fatal().Err(err).Msg("setup failed")
		}

	case "rotate":
		if err := rotate(ctx, repos.Config, log); err != nil {
			log.Fatal().Err(err).Msg("rotation failed")
		}

	case "check":
		if err := check(ctx, repos.Config, log); err != nil {
			log.Fatal().Err(err).Msg("check failed")
		}

	default:
		usage()
		os.Exit(2)
	}
}

// setup records the first global master password hash. Refuses to run when a
// hash already exists; use rotate for that.
func setup(ctx context.Context, configRepo store.ConfigRepository, log *logger.Logger) error {
	_, err := configRepo.GetMasterPwdHash(ctx)
	switch {
	case err == nil:
		return errors.New("a master password is already set, use rotate instead")
	case !errors.Is(err, store.ErrParameterNotFound):
		return fmt.Errorf("read master pass hash: %w", err)
	}

	masterPass, err := promptMasterPass("New master password: ")
	if err != nil {
		return err
	}

	hash, err := crypto.HashKey(masterPass)
	if err != nil {
		return fmt.Errorf("hash master pass: %w", err)
	}
	if err := configRepo.SetMasterPwdHash(ctx, hash); err != nil {
		return fmt.Errorf("record master pass hash: %w", err)
	}
	if err := configRepo.SetLastUpdateMPass(ctx, time.Now().Unix()); err != nil {
		return fmt.Errorf("record master pass timestamp: %w", err)
	}

	log.Info().Msg("master password recorded")
	return nil
}

// rotate replaces the global master password hash and advances the change
// timestamp, forcing every stored user record into the changed state on the
// next login.
func rotate(ctx context.Context, configRepo store.ConfigRepository, log *logger.Logger) error {
	oldHash, err := configRepo.GetMasterPwdHash(ctx)
	if errors.Is(err, store.ErrParameterNotFound) {
		return errors.New("no master password set, use setup first")
	}
	if err != nil {
		return fmt.Errorf("read master pass hash: %w", err)
	}

	currentPass, err := promptMasterPass("Current master password: ")
	if err != nil {
		return err
	}
	if !crypto.CheckHashKey(currentPass, oldHash) {
		return errors.New("current master password does not match")
	}

	newPass, err := promptMasterPass("New master password: ")
	if err != nil {
		return err
	}

	hash, err := crypto.HashKey(newPass)
	if err != nil {
		return fmt.Errorf("hash master pass: %w", err)
	}
	if err := configRepo.SetMasterPwdHash(ctx, hash); err != nil {
		return fmt.Errorf("record master pass hash: %w", err)
	}
	if err := configRepo.SetLastUpdateMPass(ctx, time.Now().Unix()); err != nil {
		// Put the old hash back so the hash and the timestamp stay paired.
		if restoreErr := configRepo.SetMasterPwdHash(ctx, oldHash); restoreErr != nil {
			log.Error().Err(restoreErr).Msg("restoring previous master pass hash failed, hash and timestamp are out of sync")
		}
		return fmt.Errorf("record master pass timestamp: %w", err)
	}

	log.Info().Msg("master password rotated, user records will re-derive on next login")
	return nil
}

// check verifies a candidate master password against the stored hash.
func check(ctx context.Context, configRepo store.ConfigRepository, log *logger.Logger) error {
	hash, err := configRepo.GetMasterPwdHash(ctx)
	if errors.Is(err, store.ErrParameterNotFound) {
		return errors.New("no master password set")
	}
	if err != nil {
		return fmt.Errorf("read master pass hash: %w", err)
	}

	masterPass, err := promptMasterPass("Master password: ")
	if err != nil {
		return err
	}

	if !crypto.CheckHashKey(masterPass, hash) {
		return errors.New("master password does not match")
	}

	log.Info().Msg("master password matches")
	return nil
}

// promptMasterPass reads a password without echoing when stdin is a
// terminal, falling back to a plain line read otherwise (piped input).
func promptMasterPass(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if len(raw) == 0 {
			return "", errors.New("empty password")
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: keymaster [flags] <command>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  migrate   apply database migrations")
	fmt.Fprintln(os.Stderr, "  setup     record the first global master password")
	fmt.Fprintln(os.Stderr, "  rotate    replace the global master password")
	fmt.Fprintln(os.Stderr, "  check     verify a candidate master password")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
