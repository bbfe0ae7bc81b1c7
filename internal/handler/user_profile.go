package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/repository"
	"github.com/iliyamo/online-course-platform/internal/utils"
)

type updateInfoReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updatePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type updateAvatarReq struct {
	Avatar string `json:"avatar"`
}

// UpdateInfo changes name and/or email. Email changes re-check
// uniqueness; the session snapshot is refreshed after the write.
func (h *UserHandler) UpdateInfo(c echo.Context) error {
	current, err := requireUser(c)
	if err != nil {
		return err
	}
	var req updateInfoReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, current.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Persistence("failed to load user", err)
	}

	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if _, err := h.Users.GetByEmail(ctx, email); err == nil {
			return apperror.Validation("email already exists")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return apperror.Persistence("failed to check email", err)
		}
		user.Email = email
	}
	if req.Name != "" {
		user.Name = req.Name
	}

	if err := h.Users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Validation("email already exists")
		}
		return apperror.Persistence("failed to update user", err)
	}
	if err := h.Sessions.Set(ctx, user); err != nil {
		return apperror.Internal("failed to refresh session", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": user})
}

// UpdatePassword re-verifies the old password before storing the new
// hash. Accounts created through social auth have no password and are
// rejected.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	current, err := requireUser(c)
	if err != nil {
		return err
	}
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperror.Validation("please enter old and new password")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, current.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Persistence("failed to load user", err)
	}
	if user.PasswordHash == "" {
		return apperror.Validation("invalid user")
	}
	if !utils.VerifyPassword(user.PasswordHash, req.OldPassword) {
		return apperror.Validation("invalid old password")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}
	user.PasswordHash = hash

	if err := h.Users.Save(ctx, user); err != nil {
		return apperror.Persistence("failed to update password", err)
	}
	if err := h.Sessions.Set(ctx, user); err != nil {
		return apperror.Internal("failed to refresh session", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "user": user})
}

// UpdateAvatar replaces the hosted avatar: the previous asset is
// destroyed before the new payload is uploaded.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	current, err := requireUser(c)
	if err != nil {
		return err
	}
	var req updateAvatarReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.Avatar == "" {
		return apperror.Validation("avatar is required")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByID(ctx, current.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Persistence("failed to load user", err)
	}

	if user.Avatar.PublicID != "" {
		if err := h.Media.Destroy(ctx, user.Avatar.PublicID); err != nil {
			return apperror.Upstream("could not remove previous avatar", err)
		}
	}
	avatar, err := h.Media.Upload(ctx, "avatars", req.Avatar, 150)
	if err != nil {
		return apperror.Upstream("could not upload avatar", err)
	}
	user.Avatar = avatar

	if err := h.Users.Save(ctx, user); err != nil {
		return apperror.Persistence("failed to update avatar", err)
	}
	if err := h.Sessions.Set(ctx, user); err != nil {
		return apperror.Internal("failed to refresh session", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}
