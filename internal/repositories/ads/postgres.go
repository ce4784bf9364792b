package ads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/dbx"
	"github.com/adboardapp/adboard/internal/models"
)

// PostgresRepository implements ad storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const adColumns = `id, user_id, title, description, category, price, city, images, active, created_at`

func (r *PostgresRepository) Insert(ctx context.Context, ad *models.Ad) (*models.Ad, error) {

	images, err := json.Marshal(ad.Images)
	if err != nil {
		return nil, fmt.Errorf("images encode error: %w", err)
	}

	var price sql.NullFloat64
	if ad.Price != nil {
		price = sql.NullFloat64{Float64: *ad.Price, Valid: true}
	}

	query :=
		`INSERT INTO ads (id, user_id, title, description, category, price, city, images, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	_, err = r.db.ExecContext(ctx, query,
		ad.ID, ad.UserID, ad.Title, ad.Description, ad.Category,
		price, ad.City, images, ad.Active, ad.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ad, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	ad, err := scanAd(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ad, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE ads SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ads: %w", err)
	}
	defer rows.Close()

	return collectAds(rows)
}

// Select builds and runs a feed query. Price ordering puts ads without a
// price last.
func (r *PostgresRepository) Select(ctx context.Context, q Query) ([]models.Ad, error) {

	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.OnlyActive {
		where = append(where, "active = TRUE")
	}
	if q.Category != "" {
		where = append(where, "category = "+arg(q.Category))
	}
	if q.MinPrice != nil {
		where = append(where, "price >= "+arg(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		where = append(where, "price <= "+arg(*q.MaxPrice))
	}

	query := `SELECT ` + adColumns + ` FROM ads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch q.Sort {
	case SortCheapest:
		query += " ORDER BY price ASC NULLS LAST, created_at DESC"
	default:
		query += " ORDER BY created_at DESC"
	}

	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select ads: %w", err)
	}
	defer rows.Close()

	return collectAds(rows)
}

func collectAds(rows *sql.Rows) ([]models.Ad, error) {
	var result []models.Ad
	for rows.Next() {
		ad, err := scanAd(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *ad)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ad rows: %w", err)
	}

	return result, nil
}

func scanAd(scan func(dest ...any) error) (*models.Ad, error) {
	var (
		ad     models.Ad
		price  sql.NullFloat64
		images []byte
	)

	err := scan(&ad.ID, &ad.UserID, &ad.Title, &ad.Description, &ad.Category,
		&price, &ad.City, &images, &ad.Active, &ad.CreatedAt)
	if err != nil {
		return nil, err
	}

	if price.Valid {
		p := price.Float64
		ad.Price = &p
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &ad.Images); err != nil {
			return nil, fmt.Errorf("images decode error: %w", err)
		}
	}

	return &ad, nil
}
