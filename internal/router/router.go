// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-course-platform/internal/handler"
	"github.com/iliyamo/online-course-platform/internal/middleware"
	"github.com/iliyamo/online-course-platform/internal/model"
)

// Register wires every route under /api/v1. The auth middleware
// hydrates the session user; limiter throttles the unauthenticated
// auth endpoints.
func Register(e *echo.Echo, users *handler.UserHandler, courses *handler.CourseHandler, auth, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")

	// Unauthenticated auth endpoints, rate limited.
	api.POST("/registration", users.Register, limiter)
	api.POST("/activate-user", users.Activate, limiter)
	api.POST("/login", users.Login, limiter)
	// The misspelling is load-bearing; deployed clients use this path.
	api.POST("/soical-auth", users.SocialAuth, limiter)

	// Refresh authenticates by refresh cookie, not access token.
	api.GET("/refresh-token", users.RefreshToken)

	// Session and profile endpoints.
	api.GET("/logout", users.Logout, auth)
	api.GET("/me", users.Me, auth)
	api.PUT("/update-user-info", users.UpdateInfo, auth)
	api.PUT("/update-user-password", users.UpdatePassword, auth)
	api.PUT("/update-user-avatar", users.UpdateAvatar, auth)

	// Admin course management.
	admin := middleware.RequireRole(model.RoleAdmin)
	api.POST("/create-course", courses.Create, auth, admin)
	api.PUT("/edit-course/:id", courses.Edit, auth, admin)

	// Public, cached browse endpoints.
	api.GET("/get-course/:id", courses.GetSingle)
	api.GET("/get-courses", courses.GetAll)

	// Course content and interactions.
	api.GET("/get-course-content/:id", courses.GetCourseContent, auth)
	api.PUT("/add-question", courses.AddQuestion, auth)
	api.PUT("/add-answer", courses.AddAnswer, auth)
	api.PUT("/add-review/:id", courses.AddReview, auth)
	api.PUT("/add-reply", courses.AddReplyToReview, auth)
}
