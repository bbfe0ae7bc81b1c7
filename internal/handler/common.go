// Package handler implements the HTTP endpoints. Handlers bind and
// validate input, call the stores and collaborators behind their
// interfaces, and return apperror values for the centralized error
// responder; success responses are written inline.
package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/middleware"
	"github.com/iliyamo/online-course-platform/internal/model"
)

// requireUser returns the authenticated user hydrated by the auth
// middleware. Nil only happens when a protected route is miswired.
func requireUser(c echo.Context) (*model.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil, apperror.Auth("please login to access this resource")
	}
	return u, nil
}
