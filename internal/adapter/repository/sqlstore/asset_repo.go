// Package sqlstore implements domain.AssetRepository on database/sql.
// Queries are written with '?' placeholders and rebound by the Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simaogato/patrimony-backend/internal/adapter/repository/record"
	"github.com/simaogato/patrimony-backend/internal/domain"
)

// Dialect captures what differs between SQL engines
type Dialect struct {
	Name string

	// Rebind rewrites '?' placeholders into the engine's syntax
	Rebind func(query string) string

	// IsUniqueViolation reports whether err is a primary key or unique constraint failure
	IsUniqueViolation func(err error) bool

	// SnapshotTx are the options of the transaction FindByOwner reads in,
	// so assets and valuations come from one snapshot
	SnapshotTx *sql.TxOptions
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AssetRepository implements domain.AssetRepository
type AssetRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewAssetRepository creates a new asset repository over db
func NewAssetRepository(db *sql.DB, dialect Dialect) *AssetRepository {
	if dialect.Rebind == nil {
		dialect.Rebind = func(q string) string { return q }
	}
	if dialect.IsUniqueViolation == nil {
		dialect.IsUniqueViolation = func(error) bool { return false }
	}
	return &AssetRepository{db: db, dialect: dialect}
}

const assetColumns = `id, owner_id, name, description, type, category, currency,
	current_value, acquisition_value, acquisition_date, last_update_date, attributes, version`

const valuationColumns = `id, asset_id, seq, value, valuation_date, currency, source`

// Save inserts a new asset or compare-and-swaps an existing one, appending new valuations
func (r *AssetRepository) Save(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	toStore := asset.Clone()
	insert := toStore.ID == ""
	if insert {
		toStore.ID = uuid.NewString()
	}

	rec, vals, err := record.EncodeAsset(toStore)
	if err != nil {
		return nil, domain.NewPersistenceError("encode asset", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback()

	if insert {
		err = r.insertAsset(ctx, tx, rec)
	} else {
		err = r.updateAsset(ctx, tx, rec)
	}
	if err != nil {
		return nil, err
	}

	if err := r.appendValuations(ctx, tx, rec.ID, vals); err != nil {
		return nil, err
	}

	saved, err := r.findByID(ctx, tx, rec.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewPersistenceError("commit transaction", err)
	}

	return saved, nil
}

func (r *AssetRepository) insertAsset(ctx context.Context, tx *sql.Tx, rec record.Asset) error {
	query := r.dialect.Rebind(`
		INSERT INTO assets (` + assetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`)

	_, err := tx.ExecContext(ctx, query,
		rec.ID,
		rec.OwnerID,
		rec.Name,
		rec.Description,
		rec.Type,
		rec.Category,
		rec.Currency,
		rec.CurrentValue,
		rec.AcquisitionValue,
		rec.AcquisitionDate,
		rec.LastUpdateDate,
		rec.Attributes,
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("insert asset %s: %w", rec.ID, domain.ErrVersionConflict)
		}
		return domain.NewPersistenceError("insert asset", err)
	}
	return nil
}

func (r *AssetRepository) updateAsset(ctx context.Context, tx *sql.Tx, rec record.Asset) error {
	query := r.dialect.Rebind(`
		UPDATE assets
		SET owner_id = ?, name = ?, description = ?, type = ?, category = ?, currency = ?,
			current_value = ?, acquisition_value = ?, acquisition_date = ?, last_update_date = ?,
			attributes = ?, version = version + 1
		WHERE id = ? AND version = ?
	`)

	res, err := tx.ExecContext(ctx, query,
		rec.OwnerID,
		rec.Name,
		rec.Description,
		rec.Type,
		rec.Category,
		rec.Currency,
		rec.CurrentValue,
		rec.AcquisitionValue,
		rec.AcquisitionDate,
		rec.LastUpdateDate,
		rec.Attributes,
		rec.ID,
		rec.Version,
	)
	if err != nil {
		return domain.NewPersistenceError("update asset", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError("read rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("update asset %s at version %d: %w", rec.ID, rec.Version, domain.ErrVersionConflict)
	}
	return nil
}

// appendValuations inserts the valuations not yet stored, after the stored ones
func (r *AssetRepository) appendValuations(ctx context.Context, tx *sql.Tx, assetID string, vals []record.Valuation) error {
	stored, err := r.findValuations(ctx, tx, `WHERE asset_id = ?`, assetID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(stored))
	for _, v := range stored {
		known[v.ID] = true
	}

	query := r.dialect.Rebind(`
		INSERT INTO asset_valuations (` + valuationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	position := len(stored)
	for _, v := range vals {
		if known[v.ID] {
			continue
		}
		_, err := tx.ExecContext(ctx, query,
			v.ID,
			assetID,
			position,
			v.Value,
			v.ValuationDate,
			v.Currency,
			v.Source,
		)
		if err != nil {
			return domain.NewPersistenceError("insert valuation", err)
		}
		position++
	}
	return nil
}

// FindByID retrieves an asset by its ID
func (r *AssetRepository) FindByID(ctx context.Context, id string) (*domain.Asset, error) {
	return r.findByID(ctx, r.db, id)
}

func (r *AssetRepository) findByID(ctx context.Context, q querier, id string) (*domain.Asset, error) {
	query := r.dialect.Rebind(`SELECT ` + assetColumns + ` FROM assets WHERE id = ?`)

	rec, err := scanAsset(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
		}
		return nil, domain.NewPersistenceError("get asset by ID", err)
	}

	vals, err := r.findValuations(ctx, q, `WHERE asset_id = ?`, id)
	if err != nil {
		return nil, err
	}

	asset, err := record.DecodeAsset(rec, vals)
	if err != nil {
		return nil, domain.NewPersistenceError("decode asset", err)
	}
	return asset, nil
}

// FindByOwner retrieves every asset of an owner with their histories in two queries
func (r *AssetRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	tx, err := r.db.BeginTx(ctx, r.dialect.SnapshotTx)
	if err != nil {
		return nil, domain.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback()

	query := r.dialect.Rebind(`SELECT ` + assetColumns + ` FROM assets WHERE owner_id = ? ORDER BY name, id`)

	rows, err := tx.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, domain.NewPersistenceError("list assets", err)
	}
	defer rows.Close()

	recs := make([]record.Asset, 0)
	for rows.Next() {
		rec, err := scanAsset(rows)
		if err != nil {
			return nil, domain.NewPersistenceError("scan asset", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("iterate assets", err)
	}

	rows.Close()

	vals, err := r.findValuations(ctx, tx,
		`WHERE asset_id IN (SELECT id FROM assets WHERE owner_id = ?)`, ownerID)
	if err != nil {
		return nil, err
	}
	byAsset := make(map[string][]record.Valuation, len(recs))
	for _, v := range vals {
		byAsset[v.AssetID] = append(byAsset[v.AssetID], v)
	}

	assets := make([]*domain.Asset, 0, len(recs))
	for _, rec := range recs {
		asset, err := record.DecodeAsset(rec, byAsset[rec.ID])
		if err != nil {
			return nil, domain.NewPersistenceError("decode asset", err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// DeleteByID removes an asset and its history in one transaction
func (r *AssetRepository) DeleteByID(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM asset_valuations WHERE asset_id = ?`), id); err != nil {
		return domain.NewPersistenceError("delete valuations", err)
	}
	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM assets WHERE id = ?`), id); err != nil {
		return domain.NewPersistenceError("delete asset", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewPersistenceError("commit transaction", err)
	}
	return nil
}

// findValuations loads valuations matching where, ordered by asset then append sequence
func (r *AssetRepository) findValuations(ctx context.Context, q querier, where string, args ...any) ([]record.Valuation, error) {
	query := r.dialect.Rebind(`SELECT ` + valuationColumns + ` FROM asset_valuations ` + where + ` ORDER BY asset_id, seq`)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewPersistenceError("list valuations", err)
	}
	defer rows.Close()

	vals := make([]record.Valuation, 0)
	for rows.Next() {
		var v record.Valuation
		if err := rows.Scan(&v.ID, &v.AssetID, &v.Position, &v.Value, &v.ValuationDate, &v.Currency, &v.Source); err != nil {
			return nil, domain.NewPersistenceError("scan valuation", err)
		}
		vals = append(vals, v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("iterate valuations", err)
	}
	return vals, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (record.Asset, error) {
	var rec record.Asset
	var currentValue, acquisitionValue, acquisitionDate, lastUpdateDate sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Name,
		&rec.Description,
		&rec.Type,
		&rec.Category,
		&rec.Currency,
		&currentValue,
		&acquisitionValue,
		&acquisitionDate,
		&lastUpdateDate,
		&rec.Attributes,
		&rec.Version,
	)
	if err != nil {
		return record.Asset{}, err
	}

	rec.CurrentValue = nullString(currentValue)
	rec.AcquisitionValue = nullString(acquisitionValue)
	rec.AcquisitionDate = nullString(acquisitionDate)
	rec.LastUpdateDate = nullString(lastUpdateDate)
	return rec, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
