package database

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorFields describes a storage error as structured log fields, exposing
// vendor error codes when the driver reports one.
func ErrorFields(err error) []zap.Field {
	if err == nil {
		return nil
	}

	fields := []zap.Field{zap.Error(err)}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		fields = append(fields, zap.String("sqlstate", pgErr.Code))
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil {
		fields = append(fields, zap.Uint16("mysql_errno", myErr.Number))
	}

	if IsUniqueViolation(err) {
		fields = append(fields, zap.Bool("unique_violation", true))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		fields = append(fields, zap.Bool("timeout", true))
	}

	return fields
}

// IsUniqueViolation detects primary key or unique constraint failures across vendors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil {
		return myErr.Number == 1062
	}

	// sqlite3 only exposes the constraint in its message.
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
