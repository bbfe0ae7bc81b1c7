package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/online-course-platform/internal/model"
)

// CourseRepo stores each course as a single JSON document plus a
// version stamp. The whole aggregate is read and written as one unit;
// Save only succeeds when the caller's version still matches the row,
// which turns the read-modify-write pattern on nested arrays into a
// detectable conflict instead of a silent lost update.
type CourseRepo struct{ DB *sql.DB }

func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{DB: db} }

// Create inserts a new course document at version 1.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO courses (id, doc, version) VALUES (?,?,1)", c.ID, doc)
	return err
}

// GetByID loads the full aggregate and its current version.
func (r *CourseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var (
		doc     []byte
		version uint64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT doc, version FROM courses WHERE id=? LIMIT 1", id).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return decodeCourse(doc, version)
}

// List returns all course documents ordered by creation time.
func (r *CourseRepo) List(ctx context.Context) ([]*model.Course, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT doc, version FROM courses ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Course
	for rows.Next() {
		var (
			doc     []byte
			version uint64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, err
		}
		c, err := decodeCourse(doc, version)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Save writes the aggregate back, guarded by the version the caller
// read. Zero rows affected means another writer won the race.
func (r *CourseRepo) Save(ctx context.Context, c *model.Course) error {
	c.UpdatedAt = time.Now().UTC()
	readVersion := c.Version
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE courses SET doc=?, version=version+1 WHERE id=? AND version=?",
		doc, c.ID, readVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from a stale version.
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM courses WHERE id=? LIMIT 1", c.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCourseNotFound
			}
			return err
		}
		return ErrVersionConflict
	}
	c.Version = readVersion + 1
	return nil
}

func decodeCourse(doc []byte, version uint64) (*model.Course, error) {
	var c model.Course
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, err
	}
	c.Version = version
	return &c, nil
}
