package main

import (
	"context"
	"fmt"
	"os"

	"go-vaccination-booking/cmd/bootstrap"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "vaccination-booking",
		Short:        "Child vaccination schedule and doctor slot booking service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(sweepOverdueCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	withMigrator := func(run func(m *database.Migrator) error) error {
		cfg, log, err := bootstrap.Load()
		if err != nil {
			return err
		}
		m, err := database.NewMigrator(cfg.DB, log)
		if err != nil {
			return err
		}
		defer m.Close()
		return run(m)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error { return m.Up() })
		},
	})

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error { return m.Down(steps) })
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load initial data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "vaccines",
		Short: "Load the national immunization calendar into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *bootstrap.App) error {
				seeded, err := app.Usecases.Vaccine.SeedNationalCalendar(cmd.Context(), entity.SystemActor())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d vaccines\n", seeded.Total)
				return nil
			})
		},
	})

	var email, password, name string
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *bootstrap.App) error {
				admin, err := app.Usecases.Auth.CreateAdmin(cmd.Context(), email, password, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Email, admin.ID)
				return nil
			})
		},
	}
	adminCmd.Flags().StringVar(&email, "email", "", "admin email")
	adminCmd.Flags().StringVar(&password, "password", "", "admin password")
	adminCmd.Flags().StringVar(&name, "name", "Administrator", "admin full name")
	_ = adminCmd.MarkFlagRequired("email")
	_ = adminCmd.MarkFlagRequired("password")
	cmd.AddCommand(adminCmd)

	return cmd
}

func sweepOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark scheduled doses past their date as delayed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *bootstrap.App) error {
				marked, err := app.Usecases.Vaccination.MarkOverdue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %d doses as delayed\n", marked)
				return nil
			})
		},
	}
}

func withApp(ctx context.Context, run func(app *bootstrap.App) error) error {
	app, err := bootstrap.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()
	return run(app)
}
