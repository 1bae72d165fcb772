package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lastchancecy/apiserver/types"
)

// AdRepository handles persistence for ads.
type AdRepository struct {
	db *sql.DB
}

func NewAdRepository(db *sql.DB) *AdRepository {
	return &AdRepository{db: db}
}

// List returns every ad, newest first.
func (r *AdRepository) List(ctx context.Context) ([]types.Ad, error) {
	const query = `
		SELECT id, title, description, image_url, user_id, dj, staff, pr, created_at
		FROM ads
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ads := make([]types.Ad, 0)
	for rows.Next() {
		var ad types.Ad
		if err := rows.Scan(
			&ad.ID,
			&ad.Title,
			&ad.Description,
			&ad.ImageURL,
			&ad.UserID,
			&ad.DJ,
			&ad.Staff,
			&ad.PR,
			&ad.CreatedAt,
		); err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ads, nil
}

func (r *AdRepository) Get(ctx context.Context, id int) (types.Ad, error) {
	const query = `
		SELECT id, title, description, image_url, user_id, dj, staff, pr, created_at
		FROM ads
		WHERE id = $1`
	var ad types.Ad
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ad.ID,
		&ad.Title,
		&ad.Description,
		&ad.ImageURL,
		&ad.UserID,
		&ad.DJ,
		&ad.Staff,
		&ad.PR,
		&ad.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Ad{}, ErrNotFound
		}
		return types.Ad{}, err
	}
	return ad, nil
}

func (r *AdRepository) Create(ctx context.Context, ad types.Ad) (types.Ad, error) {
	ad.CreatedAt = time.Now()

	const query = `
		INSERT INTO ads (title, description, image_url, user_id, dj, staff, pr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		ad.Title,
		ad.Description,
		ad.ImageURL,
		ad.UserID,
		ad.DJ,
		ad.Staff,
		ad.PR,
		ad.CreatedAt,
	).Scan(&ad.ID); err != nil {
		return types.Ad{}, err
	}
	return ad, nil
}
