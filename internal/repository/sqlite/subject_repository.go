package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nbarbosa/resurface/internal/logger"
	"github.com/nbarbosa/resurface/internal/repository"
)

type subjectRepository struct {
	db *sql.DB
}

// NewSubjectRepository creates the SubjectRepository backed by the local
// subjects table. The content trackers own the table; the scheduler only
// reads existence and the archived flag.
func NewSubjectRepository(db *sql.DB) repository.SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM subjects WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("subject_repo").Error("failed to check subject existence: %v", err)
		return false, err
	}
	return true, nil
}

func (r *subjectRepository) IsArchived(ctx context.Context, id int64) (bool, error) {
	var archived bool
	err := r.db.QueryRowContext(ctx, `SELECT archived FROM subjects WHERE id = ?`, id).Scan(&archived)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("subject_repo").Error("failed to check subject archived flag: %v", err)
		return false, err
	}
	return archived, nil
}
