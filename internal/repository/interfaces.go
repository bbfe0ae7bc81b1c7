package repository

import (
	"context"

	"github.com/iliyamo/online-course-platform/internal/model"
)

// UserStore is what handlers need from user persistence. The MySQL
// implementation lives in this package; tests use in-memory fakes.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	Save(ctx context.Context, u *model.User) error
}

// CourseStore persists course aggregate documents. Save performs a
// compare-and-swap on the version stamp and returns
// ErrVersionConflict when the stored version has moved on.
type CourseStore interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
	Save(ctx context.Context, c *model.Course) error
}
