package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/propale/propale/internal/api/validation"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/events"
	"github.com/propale/propale/internal/services"
	"github.com/propale/propale/internal/store"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	Organisation string
	Email        string
	Password     string
	Firstname    string
	Lastname     string
}

func seedCmd(e *env) *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a first organisation and its super admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Connect(&e.cfg.Database, e.logger)
			if err != nil {
				return err
			}
			sqlDB, _ := db.DB()
			defer sqlDB.Close()

			st := store.New(db)
			users := auth.NewService(st, auth.NewJWTService(e.cfg.JWT.Secret, e.cfg.JWT.Expiry()))
			companies := services.NewCompanyService(st, users, events.Noop{}, e.logger)

			created, err := seed(cmd.Context(), st, companies, opts)
			if errors.Is(err, auth.ErrUserExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists\n", opts.Email)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "organisation %s (%s)\n", created.Company.Name, created.Company.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "super admin %s (profile %s)\n", created.User.Email, created.Profile.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Organisation, "org", "Propale", "Name of the root organisation")
	cmd.Flags().StringVar(&opts.Email, "email", "admin@propale.co", "Login of the super admin")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Password of the super admin")
	cmd.Flags().StringVar(&opts.Firstname, "firstname", "Admin", "First name of the super admin")
	cmd.Flags().StringVar(&opts.Lastname, "lastname", "Propale", "Last name of the super admin")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// seed creates the root organisation, with its starter settings, and a super
// admin attached to it.
func seed(ctx context.Context, st *store.Store, companies *services.CompanyService, opts seedOptions) (*services.CreatedUser, error) {
	in := validation.CreateUserInput{
		User: validation.UserInput{Email: opts.Email, Password: opts.Password},
		Profile: validation.ProfileInput{
			Firstname: opts.Firstname,
			Lastname:  opts.Lastname,
			Email:     opts.Email,
			Role:      string(models.RoleSuperAdmin),
		},
	}
	if details := validation.Struct(&in); len(details) > 0 {
		return nil, fmt.Errorf("invalid admin: %v", details)
	}

	if _, err := st.GetUserByEmail(ctx, opts.Email); err == nil {
		return nil, auth.ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	org, err := companies.Create(ctx, services.CreateCompanyInput{Name: opts.Organisation})
	if err != nil {
		return nil, fmt.Errorf("creating organisation: %w", err)
	}

	created, err := companies.CreateUser(ctx, org.ID, in)
	if err != nil {
		return nil, err
	}
	created.Company = org
	return created, nil
}
