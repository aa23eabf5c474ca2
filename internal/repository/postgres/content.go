package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/pkg/database"
	apperrors "github.com/devportal/backend/pkg/errors"
)

// AnnouncementRepository implements repository.AnnouncementRepository using PostgreSQL.
type AnnouncementRepository struct {
	pool database.DBTX
}

// NewAnnouncementRepository creates a new PostgreSQL-backed announcement repository.
func NewAnnouncementRepository(pool database.DBTX) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

// Create inserts a new announcement and assigns the generated id.
func (r *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	query := `
		INSERT INTO announcements (title, content, category, published, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		a.Title,
		a.Content,
		a.Category,
		a.Published,
		a.PublishedAt,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}

	return nil
}

// GetByID retrieves an announcement by its ID.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	query := `
		SELECT id, title, content, category, published, published_at, created_at, updated_at
		FROM announcements
		WHERE id = $1`

	var a domain.Announcement
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Category,
		&a.Published,
		&a.PublishedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan announcement: %w", err)
	}

	return &a, nil
}

// ListPublished returns published announcements, newest publish first,
// optionally filtered by category.
func (r *AnnouncementRepository) ListPublished(ctx context.Context, category string, limit, offset int) ([]domain.Announcement, int, error) {
	var total int
	var err error
	if category != "" {
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM announcements WHERE published = true AND category = $1`,
			category,
		).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM announcements WHERE published = true`,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}

	var rows pgx.Rows
	if category != "" {
		rows, err = r.pool.Query(ctx, `
			SELECT id, title, content, category, published, published_at, created_at, updated_at
			FROM announcements
			WHERE published = true AND category = $1
			ORDER BY published_at DESC
			LIMIT $2 OFFSET $3`,
			category, limit, offset)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT id, title, content, category, published, published_at, created_at, updated_at
			FROM announcements
			WHERE published = true
			ORDER BY published_at DESC
			LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	items, err := scanAnnouncements(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListAll returns every announcement regardless of publish state, newest first.
func (r *AnnouncementRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Announcement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, title, content, category, published, published_at, created_at, updated_at
		FROM announcements
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	items, err := scanAnnouncements(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Update modifies an existing announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, a *domain.Announcement) error {
	query := `
		UPDATE announcements
		SET title = $1, content = $2, category = $3, published = $4, published_at = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		a.Title,
		a.Content,
		a.Category,
		a.Published,
		a.PublishedAt,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("announcement", fmt.Sprint(a.ID))
	}

	return nil
}

// Delete removes an announcement by its ID.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("announcement", fmt.Sprint(id))
	}

	return nil
}

func scanAnnouncements(rows pgx.Rows) ([]domain.Announcement, error) {
	items := []domain.Announcement{}
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Content,
			&a.Category,
			&a.Published,
			&a.PublishedAt,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan announcement row: %w", err)
		}
		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate announcement rows: %w", err)
	}

	return items, nil
}

// --- Release Repository ---

// ReleaseRepository implements repository.ReleaseRepository using PostgreSQL.
type ReleaseRepository struct {
	pool database.DBTX
}

// NewReleaseRepository creates a new PostgreSQL-backed release repository.
func NewReleaseRepository(pool database.DBTX) *ReleaseRepository {
	return &ReleaseRepository{pool: pool}
}

// Create inserts a new release and assigns the generated id.
func (r *ReleaseRepository) Create(ctx context.Context, rel *domain.Release) error {
	query := `
		INSERT INTO releases (version, title, notes, type, released_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		rel.Version,
		rel.Title,
		rel.Notes,
		rel.Type,
		rel.ReleasedAt,
		rel.CreatedAt,
		rel.UpdatedAt,
	).Scan(&rel.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.InvalidInput(fmt.Sprintf("version %q already exists", rel.Version))
		}
		return fmt.Errorf("insert release: %w", err)
	}

	return nil
}

// GetByID retrieves a release by its ID.
func (r *ReleaseRepository) GetByID(ctx context.Context, id int64) (*domain.Release, error) {
	query := `
		SELECT id, version, title, notes, type, released_at, created_at, updated_at
		FROM releases
		WHERE id = $1`

	var rel domain.Release
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rel.ID,
		&rel.Version,
		&rel.Title,
		&rel.Notes,
		&rel.Type,
		&rel.ReleasedAt,
		&rel.CreatedAt,
		&rel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan release: %w", err)
	}

	return &rel, nil
}

// List returns releases newest first with the total row count.
func (r *ReleaseRepository) List(ctx context.Context, limit, offset int) ([]domain.Release, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM releases`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count releases: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, version, title, notes, type, released_at, created_at, updated_at
		FROM releases
		ORDER BY released_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	items := []domain.Release{}
	for rows.Next() {
		var rel domain.Release
		if err := rows.Scan(
			&rel.ID,
			&rel.Version,
			&rel.Title,
			&rel.Notes,
			&rel.Type,
			&rel.ReleasedAt,
			&rel.CreatedAt,
			&rel.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan release row: %w", err)
		}
		items = append(items, rel)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate release rows: %w", err)
	}

	return items, total, nil
}

// Update modifies an existing release.
func (r *ReleaseRepository) Update(ctx context.Context, rel *domain.Release) error {
	rel.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE releases
		SET version = $1, title = $2, notes = $3, type = $4, released_at = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.pool.Exec(ctx, query,
		rel.Version,
		rel.Title,
		rel.Notes,
		rel.Type,
		rel.ReleasedAt,
		rel.UpdatedAt,
		rel.ID,
	)
	if err != nil {
		return fmt.Errorf("update release: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("release", fmt.Sprint(rel.ID))
	}

	return nil
}

// Delete removes a release by its ID.
func (r *ReleaseRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM releases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete release: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("release", fmt.Sprint(id))
	}

	return nil
}
