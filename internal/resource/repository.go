package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	// Update writes every field except Images, which only AppendImage changes.
	Update(ctx context.Context, res *Resource) error
	Delete(ctx context.Context, id string) error

	// AppendImage atomically adds fileID to the resource's images and returns
	// the updated resource.
	AppendImage(ctx context.Context, id, fileID string, updatedAt time.Time) (*Resource, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const resourceColumns = `
	id, name, type, description, capacity,
	building, floor, room_number, amenities, images, is_available,
	opening_time, closing_time, min_duration_minutes, max_duration_minutes,
	requires_approval, created_at, updated_at`

func scanResource(row pgx.Row, extra ...any) (*Resource, error) {
	var res Resource
	dest := []any{
		&res.ID, &res.Name, &res.Type, &res.Description, &res.Capacity,
		&res.Location.Building, &res.Location.Floor, &res.Location.RoomNumber,
		&res.Amenities, &res.Images, &res.Available,
		&res.OperatingHours.Start, &res.OperatingHours.End,
		&res.BookingDuration.Min, &res.BookingDuration.Max,
		&res.RequiresApproval, &res.CreatedAt, &res.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *pgxRepository) Create(ctx context.Context, res *Resource) error {
	const query = `
		INSERT INTO public.resources (
			name, type, description, capacity,
			building, floor, room_number, amenities, images, is_available,
			opening_time, closing_time, min_duration_minutes, max_duration_minutes,
			requires_approval
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		res.Name, res.Type, res.Description, res.Capacity,
		res.Location.Building, res.Location.Floor, res.Location.RoomNumber,
		res.Amenities, res.Images, res.Available,
		res.OperatingHours.Start, res.OperatingHours.End,
		res.BookingDuration.Min, res.BookingDuration.Max,
		res.RequiresApproval,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM public.resources WHERE id = $1`

	res, err := scanResource(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(resourceColumns, "count(*) OVER() as total_count").
		From("public.resources")

	if filter.Search != "" {
		query = query.Where(
			"to_tsvector('simple', name || ' ' || description) @@ plainto_tsquery('simple', ?)",
			filter.Search,
		)
	}
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"type": filter.Type})
	}
	if filter.Available != nil {
		query = query.Where(squirrel.Eq{"is_available": *filter.Available})
	}

	// Sorting
	orderBy := "name"
	if filter.SortBy != "" {
		orderBy = filter.SortBy
	}

	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}

	query = query.OrderBy(orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var result []*Resource
	var total int

	for rows.Next() {
		res, err := scanResource(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Resource) error {
	const query = `
		UPDATE public.resources
		SET name = $1, type = $2, description = $3, capacity = $4,
			building = $5, floor = $6, room_number = $7, amenities = $8,
			is_available = $9, opening_time = $10, closing_time = $11,
			min_duration_minutes = $12, max_duration_minutes = $13,
			requires_approval = $14, updated_at = $15
		WHERE id = $16
		RETURNING images
	`
	err := r.pool.QueryRow(ctx, query,
		res.Name, res.Type, res.Description, res.Capacity,
		res.Location.Building, res.Location.Floor, res.Location.RoomNumber,
		res.Amenities, res.Available,
		res.OperatingHours.Start, res.OperatingHours.End,
		res.BookingDuration.Min, res.BookingDuration.Max,
		res.RequiresApproval, res.UpdatedAt, res.ID,
	).Scan(&res.Images)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update resource failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) AppendImage(ctx context.Context, id, fileID string, updatedAt time.Time) (*Resource, error) {
	query := `
		UPDATE public.resources
		SET images = array_append(images, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(images))
		RETURNING ` + resourceColumns

	res, err := scanResource(r.pool.QueryRow(ctx, query, id, fileID, updatedAt))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("append resource image failed: %w", err)
	}

	// No row updated: either the resource is gone or the image is already there.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM public.resources WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("append resource image failed: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrImageAlreadyAttached
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.resources WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			// Past, declined and cancelled bookings still reference it.
			return ErrHasBookingHistory
		}
		return fmt.Errorf("delete resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
