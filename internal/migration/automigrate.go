package migration

import (
	"context"
	"fmt"

	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	profiledomain "github.com/railzwaylabs/pricecalc/internal/profile/domain"
	quotedomain "github.com/railzwaylabs/pricecalc/internal/quote/domain"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&SystemBootstrapState{},
		&profiledomain.Profile{},
		&catalogdomain.Item{},
		&catalogdomain.Import{},
		&quotedomain.Quote{},
		&quotedomain.Item{},
	}
}

// AutoMigrate creates the schema from the gorm models. Used for sqlite and
// mysql, and by tests.
func AutoMigrate(ctx context.Context, conn *gorm.DB) error {
	if err := conn.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
