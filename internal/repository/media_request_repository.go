package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/media-request-service/internal/domain"
)

const mediaRequestColumns = `id, tracking_id, requester_name, organization, email, phone,
               media_types, coverage_type, event_name, event_date, event_time, event_location,
               expected_audience, special_requirements, description, status,
               admin_comments, cancel_reason, cancelled_at, created_at, updated_at`

type mediaRequestRepository struct {
	pool *pgxpool.Pool
}

// NewMediaRequestRepository instantiates the Postgres repository.
func NewMediaRequestRepository(pool *pgxpool.Pool) MediaRequestRepository {
	return &mediaRequestRepository{pool: pool}
}

func (r *mediaRequestRepository) Create(ctx context.Context, req *domain.MediaRequest) error {
	const query = `
        INSERT INTO media_requests (id, tracking_id, requester_name, organization, email, phone,
            media_types, coverage_type, event_name, event_date, event_time, event_location,
            expected_audience, special_requirements, description, status, admin_comments,
            cancel_reason, cancelled_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$20)
        RETURNING created_at, updated_at`

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	mediaTypes := req.MediaTypes
	if mediaTypes == nil {
		mediaTypes = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		req.ID,
		req.TrackingID,
		req.RequesterName,
		req.Organization,
		req.Email,
		req.Phone,
		mediaTypes,
		req.CoverageType,
		req.EventName,
		req.EventDate,
		req.EventTime,
		req.EventLocation,
		req.ExpectedAudience,
		req.SpecialRequirements,
		req.Description,
		req.Status,
		req.AdminComments,
		req.CancelReason,
		req.CancelledAt,
		req.CreatedAt,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	return translateError(err)
}

func (r *mediaRequestRepository) Update(ctx context.Context, id string, patch domain.MediaRequestPatch) (*domain.MediaRequest, error) {
	const query = `
        UPDATE media_requests SET
            status = COALESCE($2, status),
            admin_comments = COALESCE($3, admin_comments),
            cancel_reason = COALESCE($4, cancel_reason),
            cancelled_at = COALESCE($5, cancelled_at),
            updated_at = NOW()
        WHERE id=$1
        RETURNING ` + mediaRequestColumns

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	return r.fetchSingle(ctx, query, id, status, patch.AdminComments, patch.CancelReason, patch.CancelledAt)
}

func (r *mediaRequestRepository) GetByID(ctx context.Context, id string) (*domain.MediaRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+mediaRequestColumns+` FROM media_requests WHERE id=$1`, id)
}

func (r *mediaRequestRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.MediaRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+mediaRequestColumns+` FROM media_requests WHERE tracking_id=$1`, trackingID)
}

func (r *mediaRequestRepository) List(ctx context.Context) ([]domain.MediaRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+mediaRequestColumns+` FROM media_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMediaRequests(rows)
}

func (r *mediaRequestRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM media_requests WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *mediaRequestRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.MediaRequest, error) {
	req, err := scanMediaRequest(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return req, nil
}

func scanMediaRequest(row pgx.Row) (*domain.MediaRequest, error) {
	var req domain.MediaRequest
	if err := row.Scan(
		&req.ID,
		&req.TrackingID,
		&req.RequesterName,
		&req.Organization,
		&req.Email,
		&req.Phone,
		&req.MediaTypes,
		&req.CoverageType,
		&req.EventName,
		&req.EventDate,
		&req.EventTime,
		&req.EventLocation,
		&req.ExpectedAudience,
		&req.SpecialRequirements,
		&req.Description,
		&req.Status,
		&req.AdminComments,
		&req.CancelReason,
		&req.CancelledAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func scanMediaRequests(rows pgx.Rows) ([]domain.MediaRequest, error) {
	result := []domain.MediaRequest{}
	for rows.Next() {
		req, err := scanMediaRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}
