package repository

import (
	"context"
	"errors"
	"fmt"

	"poorito-booking/internal/data/entity"
	"poorito-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MountainRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Mountain, error)
	FindAll(ctx context.Context) ([]*entity.Mountain, error)
	FindByDifficulty(ctx context.Context, difficulty string) ([]*entity.Mountain, error)
}

type mountainRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMountainRepository(db database.PgxIface, log *zap.Logger) MountainRepository {
	return &mountainRepository{
		db:  db,
		log: log.With(zap.String("repository", "mountain")),
	}
}

const mountainSelect = `
	SELECT id, name, elevation, location, difficulty, description, image_url, created_at, updated_at
	FROM mountains
`

func scanMountain(row rowScanner) (*entity.Mountain, error) {
	var m entity.Mountain
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Elevation,
		&m.Location,
		&m.Difficulty,
		&m.Description,
		&m.ImageURL,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mountainRepository) FindByID(ctx context.Context, id int64) (*entity.Mountain, error) {
	query := mountainSelect + `WHERE id = $1`

	mountain, err := scanMountain(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find mountain by ID", zap.Error(err), zap.Int64("mountain_id", id))
		return nil, fmt.Errorf("find mountain by ID %d: %w", id, err)
	}

	return mountain, nil
}

func (r *mountainRepository) FindAll(ctx context.Context) ([]*entity.Mountain, error) {
	return r.list(ctx, mountainSelect+`ORDER BY name ASC`)
}

// FindByDifficulty matches the level case-insensitively.
func (r *mountainRepository) FindByDifficulty(ctx context.Context, difficulty string) ([]*entity.Mountain, error) {
	return r.list(ctx, mountainSelect+`WHERE LOWER(difficulty) = LOWER($1) ORDER BY name ASC`, difficulty)
}

func (r *mountainRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Mountain, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list mountains", zap.Error(err))
		return nil, fmt.Errorf("list mountains: %w", err)
	}
	defer rows.Close()

	mountains := make([]*entity.Mountain, 0)
	for rows.Next() {
		mountain, err := scanMountain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mountain: %w", err)
		}
		mountains = append(mountains, mountain)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mountains: %w", err)
	}

	return mountains, nil
}
