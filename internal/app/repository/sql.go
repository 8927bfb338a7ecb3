package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrConditionNotMet is returned by guarded UPDATEs (stock decrement,
// status change) whose WHERE clause matched no row.
var ErrConditionNotMet = errors.New("guarded update matched no rows")

// queryOne scans a single row into dest and reports gorm.ErrRecordNotFound
// when the query returned nothing.
func queryOne(ctx context.Context, db *gorm.DB, dest interface{}, stmt string, args ...interface{}) error {
	res := db.WithContext(ctx).Raw(stmt, args...).Scan(dest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// query scans every returned row into dest (a slice or scalar pointer).
func query(ctx context.Context, db *gorm.DB, dest interface{}, stmt string, args ...interface{}) error {
	return db.WithContext(ctx).Raw(stmt, args...).Scan(dest).Error
}

// exec runs a statement and returns the number of affected rows.
func exec(ctx context.Context, db *gorm.DB, stmt string, args ...interface{}) (int64, error) {
	res := db.WithContext(ctx).Exec(stmt, args...)
	return res.RowsAffected, res.Error
}

// execOne runs a statement that must touch exactly one row identified by
// its WHERE clause. Zero rows become gorm.ErrRecordNotFound.
func execOne(ctx context.Context, db *gorm.DB, stmt string, args ...interface{}) error {
	n, err := exec(ctx, db, stmt, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func now() time.Time {
	return time.Now().UTC()
}
