package option

import (
	"fmt"
	"strconv"
	"time"

	"github.com/railzwaylabs/pricecalc/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ApplyPagination keyset-paginates on (column, id) descending. The cursor's
// created_at holds the value of column for the last row served.
func ApplyPagination(page pagination.Pagination, column string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			cursor, err := pagination.DecodeCursor(page.PageToken)
			if err != nil {
				_ = db.AddError(err)
				return db
			}
			at, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			if err != nil {
				_ = db.AddError(pagination.ErrInvalidCursor)
				return db
			}
			id, err := strconv.ParseInt(cursor.ID, 10, 64)
			if err != nil {
				_ = db.AddError(pagination.ErrInvalidCursor)
				return db
			}
			db = db.Where(
				fmt.Sprintf("(%s < ?) OR (%s = ? AND id < ?)", column, column),
				at, at, id,
			)
		}
		if page.PageSize > 0 {
			db = db.Limit(page.PageSize + 1)
		}
		return db
	})
}
