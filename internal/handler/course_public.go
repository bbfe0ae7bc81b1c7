package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/model"
	"github.com/iliyamo/online-course-platform/internal/repository"
)

// GetSingle serves the projected view of one course. The rendered
// payload is cached verbatim under course:<id>; mutations invalidate
// the key, the TTL is only a backstop.
func (h *CourseHandler) GetSingle(c echo.Context) error {
	courseID := c.Param("id")
	ctx := c.Request().Context()
	key := h.Cache.CourseKey(courseID)

	if payload, ok := h.Cache.Get(ctx, key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return apperror.NotFound("course not found")
		}
		return apperror.Persistence("failed to load course", err)
	}

	payload, err := json.Marshal(echo.Map{"success": true, "course": course.Projected()})
	if err != nil {
		return apperror.Internal("failed to encode course", err)
	}
	h.Cache.Set(ctx, key, payload)
	return c.JSONBlob(http.StatusOK, payload)
}

// GetAll serves the projected list of all courses, cached under a
// single key.
func (h *CourseHandler) GetAll(c echo.Context) error {
	ctx := c.Request().Context()
	key := h.Cache.AllCoursesKey()

	if payload, ok := h.Cache.Get(ctx, key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	courses, err := h.Courses.List(ctx)
	if err != nil {
		return apperror.Persistence("failed to list courses", err)
	}
	projected := make([]model.Course, 0, len(courses))
	for _, course := range courses {
		projected = append(projected, course.Projected())
	}

	payload, err := json.Marshal(echo.Map{"success": true, "courses": projected})
	if err != nil {
		return apperror.Internal("failed to encode courses", err)
	}
	h.Cache.Set(ctx, key, payload)
	return c.JSONBlob(http.StatusOK, payload)
}
