package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/auth"
	"github.com/railzwaylabs/pricecalc/internal/authorization"
	"github.com/railzwaylabs/pricecalc/internal/catalog"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/migration"
	"github.com/railzwaylabs/pricecalc/internal/observability"
	"github.com/railzwaylabs/pricecalc/internal/profile"
	profiledomain "github.com/railzwaylabs/pricecalc/internal/profile/domain"
	"github.com/railzwaylabs/pricecalc/internal/quote"
	"github.com/railzwaylabs/pricecalc/internal/redis"
	"github.com/railzwaylabs/pricecalc/internal/refresh"
	"github.com/railzwaylabs/pricecalc/internal/server"
	"github.com/railzwaylabs/pricecalc/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pricecalc",
		Short:        "Pricing calculator service",
		Version:      readVersionFromEnv(),
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newImportCmd(), newAllCmd(), newGrantAdminCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and activate schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the pricing catalog from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var actorID *uuid.UUID
			if strings.TrimSpace(actor) != "" {
				id, err := uuid.Parse(strings.TrimSpace(actor))
				if err != nil {
					return fmt.Errorf("invalid --actor: %w", err)
				}
				actorID = &id
			}
			return runImport(cmd, args[0], actorID)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "owner id recorded as the importer")
	return cmd
}

func newGrantAdminCmd() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "grant-admin <owner-id>",
		Short: "Mark a profile as admin so it can import the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid owner id: %w", err)
			}
			return runGrantAdmin(cmd, id, !revoke)
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove admin instead of granting it")
	return cmd
}

func runMigrate() error {
	app := fx.New(
		baseModules(),
		migration.RunModule,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		baseModules(),
		clock.Module,
		redis.Module,
		migration.Module,
		fx.Invoke(migration.RequireSchema),
		auth.Module,
		authorization.Module,
		profile.Module,
		catalog.Module,
		quote.Module,
		refresh.Module,
		server.Module,
	)
	app.Run()
}

func runImport(cmd *cobra.Command, path string, actor *uuid.UUID) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var svc catalogdomain.Service
	app := fx.New(
		baseModules(),
		clock.Module,
		redis.Module,
		migration.Module,
		fx.Invoke(migration.RequireSchema),
		catalog.Module,
		fx.Populate(&svc),
	)
	return withApp(app, func(ctx context.Context) error {
		res, err := svc.Import(ctx, catalogdomain.ImportRequest{
			Actor:  actor,
			Source: catalogdomain.SourceCLI,
			Body:   f,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows (%d kept their ids), removed %d, skipped %d\n",
			res.Inserted, res.Retained, res.Removed, res.Skipped)
		return nil
	})
}

func runGrantAdmin(cmd *cobra.Command, id uuid.UUID, admin bool) error {
	var (
		profiles profiledomain.Service
		authz    authorization.Authorizer
	)
	app := fx.New(
		baseModules(),
		clock.Module,
		migration.Module,
		fx.Invoke(migration.RequireSchema),
		authorization.Module,
		profile.Module,
		fx.Populate(&profiles, &authz),
	)
	return withApp(app, func(ctx context.Context) error {
		if err := profiles.SetAdmin(ctx, id, admin); err != nil {
			return err
		}
		if err := authz.SyncRoles(ctx, id.String(), admin); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %s admin=%t\n", id, admin)
		return nil
	})
}

// baseModules is what every command needs: config, logging, ids and the database.
func baseModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Provide(registerSnowflake),
		db.Module,
	)
}

func withApp(app *fx.App, run func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()
	return run(ctx)
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
