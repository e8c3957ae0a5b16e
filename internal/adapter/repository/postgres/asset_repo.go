package postgres

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/simaogato/patrimony-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/patrimony-backend/internal/domain"
)

// uniqueViolation is the SQLSTATE of unique_violation
const uniqueViolation = "23505"

// Dialect is the PostgreSQL flavour of the SQL asset store
var Dialect = sqlstore.Dialect{
	Name:              "postgres",
	Rebind:            Rebind,
	IsUniqueViolation: isUniqueViolation,
	SnapshotTx:        &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return sqlstore.NewAssetRepository(db.DB, Dialect)
}

// Rebind turns '?' placeholders into $1, $2, ...
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
