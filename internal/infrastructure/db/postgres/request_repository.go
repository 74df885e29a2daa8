package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

const requestColumns = `id, name, url, method, headers, authentication, body, collection_id, created_at, updated_at`

func (r *RequestRepository) Create(ctx context.Context, req *domain.APIRequest) (*domain.APIRequest, error) {
	collectionID, err := parseID(req.CollectionID)
	if err != nil {
		return nil, err
	}
	cols, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	created := *req
	created.ID = newID()
	created.CollectionID = collectionID

	_, err = r.pool.Exec(ctx, `
		INSERT INTO api_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		created.ID, created.Name, created.URL, created.Method,
		cols.headers, cols.auth, cols.body,
		created.CollectionID, created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}
	return &created, nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.APIRequest, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}

	req, err := scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM api_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) ListByCollection(ctx context.Context, collectionID string) ([]domain.APIRequest, error) {
	collectionID, err := parseID(collectionID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM api_requests
		WHERE collection_id = $1
		ORDER BY created_at DESC, id DESC`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	out := []domain.APIRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *domain.APIRequest) (*domain.APIRequest, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	cols, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	updated, err := scanRequest(r.pool.QueryRow(ctx, `
		UPDATE api_requests
		SET name = $2, url = $3, method = $4, headers = $5, authentication = $6, body = $7, updated_at = $8
		WHERE id = $1
		RETURNING `+requestColumns,
		id, req.Name, req.URL, req.Method, cols.headers, cols.auth, cols.body, req.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("update request: %w", err)
	}
	return updated, nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM api_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// jsonbColumns holds the optional JSONB values of a request; nil encodes as SQL NULL.
type jsonbColumns struct {
	headers []byte
	auth    []byte
	body    []byte
}

func encodeRequest(req *domain.APIRequest) (jsonbColumns, error) {
	var cols jsonbColumns
	var err error
	if len(req.Headers) > 0 {
		if cols.headers, err = json.Marshal(req.Headers); err != nil {
			return cols, fmt.Errorf("encode headers: %w", err)
		}
	}
	if req.Auth != nil {
		if cols.auth, err = json.Marshal(req.Auth); err != nil {
			return cols, fmt.Errorf("encode authentication: %w", err)
		}
	}
	if domain.HasBody(req.Body) {
		cols.body = []byte(req.Body)
	}
	return cols, nil
}

func scanRequest(row pgx.Row) (*domain.APIRequest, error) {
	var (
		req  domain.APIRequest
		cols jsonbColumns
	)
	err := row.Scan(&req.ID, &req.Name, &req.URL, &req.Method,
		&cols.headers, &cols.auth, &cols.body,
		&req.CollectionID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeRequest(&req, cols); err != nil {
		return nil, err
	}
	req.CreatedAt = req.CreatedAt.UTC()
	req.UpdatedAt = req.UpdatedAt.UTC()
	return &req, nil
}

func decodeRequest(req *domain.APIRequest, cols jsonbColumns) error {
	if cols.headers != nil {
		if err := json.Unmarshal(cols.headers, &req.Headers); err != nil {
			return fmt.Errorf("decode headers: %w", err)
		}
	}
	if cols.auth != nil {
		req.Auth = &domain.AuthSpec{}
		if err := json.Unmarshal(cols.auth, req.Auth); err != nil {
			return fmt.Errorf("decode authentication: %w", err)
		}
	}
	if cols.body != nil {
		req.Body = json.RawMessage(cols.body)
	}
	return nil
}
