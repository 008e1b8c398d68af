package repositories

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func ptrArg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func withLimit(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 {
		return query, args
	}
	query += ` LIMIT ` + strconv.Itoa(limit)
	if offset > 0 {
		query += ` OFFSET ` + strconv.Itoa(offset)
	}
	return query, args
}
