package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/support-desk/internal/bootstrap"
	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

var seedUsersFile string

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Role      string `yaml:"role"`
	AvatarURL string `yaml:"avatarUrl"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixture data",
}

var seedUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Insert users from a YAML file; existing ids are skipped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := loadSeedUsers(seedUsersFile)
		if err != nil {
			return err
		}

		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		storage, err := bootstrap.OpenStorage(cmd.Context(), cfg, logger, cfg.Storage.RunMigrations)
		if err != nil {
			return err
		}
		defer storage.Close()

		inserted, err := service.NewDirectoryService(storage.Store, clock.Real()).Seed(cmd.Context(), users)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d users inserted\n", inserted, len(users))
		return nil
	},
}

// loadSeedUsers reads a seed file. Roles are case-insensitive.
func loadSeedUsers(path string) ([]domain.User, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("--file is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(file.Users) == 0 {
		return nil, fmt.Errorf("seed file %s has no users", path)
	}

	users := make([]domain.User, 0, len(file.Users))
	for i, u := range file.Users {
		role := domain.Role(strings.ToUpper(strings.TrimSpace(u.Role)))
		if !role.Valid() {
			return nil, fmt.Errorf("user %d (%s): unknown role %q", i, u.ID, u.Role)
		}
		users = append(users, domain.User{
			ID:        strings.TrimSpace(u.ID),
			Name:      strings.TrimSpace(u.Name),
			Email:     strings.TrimSpace(u.Email),
			Role:      role,
			AvatarURL: strings.TrimSpace(u.AvatarURL),
		})
	}
	return users, nil
}

func init() {
	seedUsersCmd.Flags().StringVar(&seedUsersFile, "file", "", "YAML file with a top-level users list")
	seedCmd.AddCommand(seedUsersCmd)
	rootCmd.AddCommand(seedCmd)
}
