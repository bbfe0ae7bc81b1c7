package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/cache"
	"github.com/iliyamo/online-course-platform/internal/media"
	"github.com/iliyamo/online-course-platform/internal/model"
	"github.com/iliyamo/online-course-platform/internal/queue"
	"github.com/iliyamo/online-course-platform/internal/repository"
)

// CourseHandler bundles dependencies for course CRUD, the cached
// browse endpoints and the nested content mutations.
type CourseHandler struct {
	Courses    repository.CourseStore
	Cache      cache.Store
	Media      media.Uploader
	Notify     queue.Publisher
	AdminEmail string // review notifications go here; empty disables
}

func NewCourseHandler(courses repository.CourseStore, store cache.Store, uploader media.Uploader, notify queue.Publisher, adminEmail string) *CourseHandler {
	return &CourseHandler{Courses: courses, Cache: store, Media: uploader, Notify: notify, AdminEmail: adminEmail}
}

type createCourseReq struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Price          float64            `json:"price"`
	EstimatedPrice float64            `json:"estimated_price"`
	Thumbnail      string             `json:"thumbnail"`
	Tags           string             `json:"tags"`
	Level          string             `json:"level"`
	DemoURL        string             `json:"demo_url"`
	Benefits       []model.Titled     `json:"benefits"`
	Prerequisites  []model.Titled     `json:"prerequisites"`
	CourseData     []model.CourseData `json:"course_data"`
}

type editCourseReq struct {
	Name           *string             `json:"name"`
	Description    *string             `json:"description"`
	Price          *float64            `json:"price"`
	EstimatedPrice *float64            `json:"estimated_price"`
	Thumbnail      *string             `json:"thumbnail"`
	Tags           *string             `json:"tags"`
	Level          *string             `json:"level"`
	DemoURL        *string             `json:"demo_url"`
	Benefits       *[]model.Titled     `json:"benefits"`
	Prerequisites  *[]model.Titled     `json:"prerequisites"`
	CourseData     *[]model.CourseData `json:"course_data"`
}

// Create uploads the thumbnail (if any) to the media host and
// persists a new course aggregate. Admin only.
func (h *CourseHandler) Create(c echo.Context) error {
	var req createCourseReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.Name == "" {
		return apperror.Validation("course name is required")
	}
	if req.Price < 0 {
		return apperror.Validation("price cannot be negative")
	}

	ctx := c.Request().Context()
	course := &model.Course{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		EstimatedPrice: req.EstimatedPrice,
		Tags:           req.Tags,
		Level:          req.Level,
		DemoURL:        req.DemoURL,
		Benefits:       req.Benefits,
		Prerequisites:  req.Prerequisites,
		Reviews:        []model.Review{},
		CourseData:     req.CourseData,
	}
	ensureContentIDs(course)

	if req.Thumbnail != "" {
		thumb, err := h.Media.Upload(ctx, "courses", req.Thumbnail, 0)
		if err != nil {
			return apperror.Upstream("could not upload course thumbnail", err)
		}
		course.Thumbnail = thumb
	}

	if err := h.Courses.Create(ctx, course); err != nil {
		return apperror.Persistence("failed to create course", err)
	}
	h.Cache.Invalidate(ctx, h.Cache.AllCoursesKey())

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "course": course})
}

// Edit applies a partial update to an existing course. A new
// thumbnail payload replaces the hosted asset. Admin only.
func (h *CourseHandler) Edit(c echo.Context) error {
	courseID := c.Param("id")
	if courseID == "" {
		return apperror.Validation("invalid course id")
	}
	var req editCourseReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	ctx := c.Request().Context()

	// Upload once, outside the retry loop: a version conflict must
	// not duplicate assets on the media host.
	var newThumb *model.Avatar
	if req.Thumbnail != nil && *req.Thumbnail != "" {
		existing, err := h.Courses.GetByID(ctx, courseID)
		if err != nil {
			if errors.Is(err, repository.ErrCourseNotFound) {
				return apperror.NotFound("course not found")
			}
			return apperror.Persistence("failed to load course", err)
		}
		if existing.Thumbnail.PublicID != "" {
			if err := h.Media.Destroy(ctx, existing.Thumbnail.PublicID); err != nil {
				return apperror.Upstream("could not remove previous thumbnail", err)
			}
		}
		thumb, err := h.Media.Upload(ctx, "courses", *req.Thumbnail, 0)
		if err != nil {
			return apperror.Upstream("could not upload course thumbnail", err)
		}
		newThumb = &thumb
	}

	course, err := h.mutateCourse(ctx, courseID, func(course *model.Course) error {
		if req.Name != nil {
			course.Name = *req.Name
		}
		if req.Description != nil {
			course.Description = *req.Description
		}
		if req.Price != nil {
			course.Price = *req.Price
		}
		if req.EstimatedPrice != nil {
			course.EstimatedPrice = *req.EstimatedPrice
		}
		if req.Tags != nil {
			course.Tags = *req.Tags
		}
		if req.Level != nil {
			course.Level = *req.Level
		}
		if req.DemoURL != nil {
			course.DemoURL = *req.DemoURL
		}
		if req.Benefits != nil {
			course.Benefits = *req.Benefits
		}
		if req.Prerequisites != nil {
			course.Prerequisites = *req.Prerequisites
		}
		if req.CourseData != nil {
			course.CourseData = *req.CourseData
			ensureContentIDs(course)
		}
		if newThumb != nil {
			course.Thumbnail = *newThumb
		}
		return nil
	})
	if err != nil {
		return err
	}
	h.invalidateCourse(ctx, courseID)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "course": course})
}

// mutateCourse runs the read-modify-write cycle under optimistic
// concurrency: on a version conflict the aggregate is re-read and the
// mutation re-applied, up to three attempts.
func (h *CourseHandler) mutateCourse(ctx context.Context, id string, apply func(*model.Course) error) (*model.Course, error) {
	const maxAttempts = 3
	for attempt := 1; ; attempt++ {
		course, err := h.Courses.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrCourseNotFound) {
				return nil, apperror.NotFound("course not found")
			}
			return nil, apperror.Persistence("failed to load course", err)
		}
		if err := apply(course); err != nil {
			return nil, err
		}
		err = h.Courses.Save(ctx, course)
		if err == nil {
			return course, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) && attempt < maxAttempts {
			continue
		}
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, apperror.NotFound("course not found")
		}
		return nil, apperror.Persistence("failed to save course", err)
	}
}

// invalidateCourse drops the cached browse payloads touched by a
// mutation, keeping the read cache write-through.
func (h *CourseHandler) invalidateCourse(ctx context.Context, courseID string) {
	h.Cache.Invalidate(ctx, h.Cache.CourseKey(courseID), h.Cache.AllCoursesKey())
}

// ensureContentIDs assigns identifiers to content items created
// without one so nested lookups stay addressable.
func ensureContentIDs(course *model.Course) {
	for i := range course.CourseData {
		if course.CourseData[i].ID == "" {
			course.CourseData[i].ID = uuid.NewString()
		}
	}
}
