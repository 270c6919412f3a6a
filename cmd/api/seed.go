package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"civic-backoffice/internal/adapter/repository/mysql"
	"civic-backoffice/internal/domain/ward"
	dbinfra "civic-backoffice/internal/infrastructure/db"
)

func newSeedWardsCmd(a *app) *cobra.Command {
	var inactive bool
	cmd := &cobra.Command{
		Use:   "seed-wards CODE[=NAME]...",
		Short: "Create or update wards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wards, err := parseWards(args, !inactive)
			if err != nil {
				return err
			}
			db, err := dbinfra.Open(a.cfg)
			if err != nil {
				return err
			}
			if err := seedWards(cmd.Context(), db, wards); err != nil {
				return err
			}
			a.log.WithField("count", len(wards)).Info("wards seeded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&inactive, "inactive", false, "store the wards as inactive")
	return cmd
}

// parseWards reads CODE or CODE=Name arguments. Codes are upper-cased.
func parseWards(args []string, active bool) ([]ward.Ward, error) {
	seen := map[string]bool{}
	out := make([]ward.Ward, 0, len(args))
	for _, arg := range args {
		code, name, _ := strings.Cut(arg, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		name = strings.TrimSpace(name)
		if code == "" {
			return nil, fmt.Errorf("empty ward code in %q", arg)
		}
		if seen[code] {
			return nil, fmt.Errorf("ward %s listed twice", code)
		}
		seen[code] = true
		if name == "" {
			name = code
		}
		out = append(out, ward.Ward{Code: code, Name: name, Active: active})
	}
	return out, nil
}

func seedWards(ctx context.Context, db *gorm.DB, wards []ward.Ward) error {
	repo := mysql.NewWardRepository(db)
	for i := range wards {
		if err := repo.Upsert(ctx, &wards[i]); err != nil {
			return fmt.Errorf("upsert ward %s: %w", wards[i].Code, err)
		}
	}
	return nil
}
