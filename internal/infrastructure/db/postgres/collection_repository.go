package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

type CollectionRepository struct {
	pool *pgxpool.Pool
}

func NewCollectionRepository(pool *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

func (r *CollectionRepository) Create(ctx context.Context, c *domain.Collection) (*domain.Collection, error) {
	created := *c
	created.ID = newID()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO collections (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		created.ID, created.Name, created.OwnerID, created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert collection: %w", err)
	}
	return &created, nil
}

func (r *CollectionRepository) FindByID(ctx context.Context, id string) (*domain.Collection, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}

	c, err := scanCollection(r.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM collections WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("find collection: %w", err)
	}
	return c, nil
}

func (r *CollectionRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Collection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.owner_id, c.created_at, c.updated_at,
		       (SELECT count(*) FROM api_requests r WHERE r.collection_id = c.id)
		FROM collections c
		WHERE c.owner_id = $1
		ORDER BY c.created_at DESC, c.id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	out := []domain.Collection{}
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &c.RequestCount); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		c.UpdatedAt = c.UpdatedAt.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return out, nil
}

func (r *CollectionRepository) Rename(ctx context.Context, id, name string) (*domain.Collection, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}

	c, err := scanCollection(r.pool.QueryRow(ctx, `
		UPDATE collections SET name = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, name, owner_id, created_at, updated_at`,
		id, name, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("rename collection: %w", err)
	}
	return c, nil
}

// Delete relies on ON DELETE CASCADE to remove the collection's requests.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCollectionNotFound
	}
	return nil
}

func scanCollection(row pgx.Row) (*domain.Collection, error) {
	var c domain.Collection
	if err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
