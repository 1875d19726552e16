package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// schemaLockKey serializes concurrent migrate runs across replicas.
const schemaLockKey int64 = 0x70726963 // "pric"

var ErrSchemaLocked = errors.New("another instance is migrating the schema")

// acquireAdvisoryLock takes a session level postgres lock on a dedicated
// connection. Session locks belong to the connection, so the same one must
// release it.
func acquireAdvisoryLock(ctx context.Context, db *sql.DB) (func(context.Context) error, error) {
	if db == nil {
		return nil, errors.New("advisory lock requires a database handle")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserve lock connection: %w", err)
	}

	var locked bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", schemaLockKey).Scan(&locked); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !locked {
		_ = conn.Close()
		return nil, ErrSchemaLocked
	}

	return func(ctx context.Context) error {
		defer conn.Close()
		var released bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", schemaLockKey).Scan(&released); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		if !released {
			return errors.New("advisory lock was not held by this session")
		}
		return nil
	}, nil
}
