package migration

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"gorm.io/gorm"
)

// Gate failures are operator problems: the binary and the database disagree
// about the schema until someone runs `pricecalc migrate`.
var (
	ErrSchemaInactive = apperror.New(apperror.KindConfiguration,
		"schema_inactive", "the database schema has not been activated, run pricecalc migrate")
	ErrSchemaVersionMismatch = apperror.New(apperror.KindConfiguration,
		"schema_version_mismatch", "the database schema version does not match this build")
	ErrSchemaChecksumMismatch = apperror.New(apperror.KindConfiguration,
		"schema_checksum_mismatch", "the applied migrations differ from the ones embedded in this build")
)

// SchemaGate answers whether quotes and catalog rows can be served from the
// database this process is connected to.
type SchemaGate interface {
	Check(ctx context.Context) error
}

type schemaGate struct {
	db       *gorm.DB
	version  string
	checksum string
}

// NewSchemaGate pins the gate to the migrations embedded in this build.
func NewSchemaGate(db *gorm.DB) (SchemaGate, error) {
	if db == nil {
		return nil, errors.New("schema gate: nil database")
	}
	version, err := LatestMigrationVersion()
	if err != nil {
		return nil, err
	}
	checksum, err := MigrationsChecksum()
	if err != nil {
		return nil, err
	}
	return &schemaGate{
		db:       db,
		version:  strconv.FormatUint(uint64(version), 10),
		checksum: checksum,
	}, nil
}

func (g *schemaGate) Check(ctx context.Context) error {
	state, err := loadSystemBootstrapState(ctx, g.db)
	switch {
	case errors.Is(err, ErrBootstrapStateNotFound):
		return apperror.Wrap(ErrSchemaInactive, err)
	case err != nil:
		return apperror.Wrap(apperror.ErrStore, err)
	}

	if state.Status != StatusActive {
		return apperror.WithMessage(ErrSchemaInactive, "schema state is %q, run pricecalc migrate", state.Status)
	}
	if state.SchemaVersion != g.version {
		return apperror.WithMessage(ErrSchemaVersionMismatch,
			"database is at schema %s, this build needs %s", state.SchemaVersion, g.version)
	}
	// Rows written before checksums were recorded carry none.
	if state.Checksum == nil || strings.TrimSpace(*state.Checksum) == "" {
		return nil
	}
	if *state.Checksum != g.checksum {
		return ErrSchemaChecksumMismatch
	}
	return nil
}
