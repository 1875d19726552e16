package migration

import (
	"context"

	"github.com/railzwaylabs/pricecalc/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the schema gate used by readiness checks.
var Module = fx.Module("migrations",
	fx.Provide(NewSchemaGate),
)

// RequireSchema refuses to start the process until the gate passes, so a
// binary never serves quotes against a schema it was not built for.
func RequireSchema(lc fx.Lifecycle, gate SchemaGate, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := gate.Check(ctx); err != nil {
				log.Named("migrations").Error("schema gate closed", zap.Error(err))
				return err
			}
			return nil
		},
	})
}

// RunModule applies migrations while the fx graph is built. The migrate and
// all commands include it; serve only checks the gate.
var RunModule = fx.Module("migrations.run",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Apply(context.Background(), conn, cfg.Database.Driver); err != nil {
			return err
		}
		log.Named("migrations").Info("schema is up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	}),
)
