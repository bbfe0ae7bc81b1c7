package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/config"
	"github.com/iliyamo/online-course-platform/internal/mailer"
	"github.com/iliyamo/online-course-platform/internal/media"
	"github.com/iliyamo/online-course-platform/internal/middleware"
	"github.com/iliyamo/online-course-platform/internal/model"
	"github.com/iliyamo/online-course-platform/internal/repository"
	"github.com/iliyamo/online-course-platform/internal/session"
	"github.com/iliyamo/online-course-platform/internal/utils"
)

// UserHandler bundles dependencies for registration, session and
// profile endpoints.
type UserHandler struct {
	Cfg      config.Config
	Users    repository.UserStore
	Sessions session.Store
	Mail     mailer.Sender
	Media    media.Uploader
}

func NewUserHandler(cfg config.Config, users repository.UserStore, sessions session.Store, mail mailer.Sender, uploader media.Uploader) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Sessions: sessions, Mail: mail, Media: uploader}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type activateReq struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialAuthReq struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Register issues an activation token and mails the matching one-time
// code. No user row is created until activation succeeds.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperror.Validation("name, email and password are required")
	}

	if _, err := h.Users.GetByEmail(c.Request().Context(), req.Email); err == nil {
		return apperror.Validation("email already exists")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return apperror.Persistence("failed to check email", err)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}

	pending := model.PendingUser{Name: req.Name, Email: req.Email, PasswordHash: hash}
	activation, err := utils.NewActivationToken(h.Cfg.ActivationSecret, pending, h.Cfg.ActivationTTL)
	if err != nil {
		return apperror.Internal("failed to issue activation token", err)
	}

	if err := h.Mail.SendActivationCode(c.Request().Context(), req.Email, req.Name, activation.Code); err != nil {
		return apperror.Upstream("could not send activation email", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":          true,
		"message":          "please check your email: " + req.Email + " to activate your account",
		"activation_token": activation.Token,
	})
}

// Activate verifies the activation token and code and persists the
// pending user with role "user".
func (h *UserHandler) Activate(c echo.Context) error {
	var req activateReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}

	pending, err := utils.VerifyActivationToken(h.Cfg.ActivationSecret, req.ActivationToken, req.ActivationCode)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrCodeMismatch):
			return apperror.Validation("invalid activation code")
		case errors.Is(err, utils.ErrTokenExpired):
			return apperror.Auth("activation token is expired")
		default:
			return apperror.Auth("activation token is not valid")
		}
	}

	user := &model.User{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         model.RoleUser,
		Courses:      []string{},
	}
	if err := h.Users.Create(c.Request().Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Validation("email already exists")
		}
		return apperror.Persistence("failed to create user", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// Login verifies credentials, writes the session snapshot and sets
// both token cookies.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperror.Validation("please enter email and password")
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.Auth("invalid email or password")
		}
		return apperror.Persistence("failed to load user", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return apperror.Auth("invalid email or password")
	}

	return h.sendToken(c, user)
}

// SocialAuth logs in a user vouched for by an external identity
// provider, creating the account on first sight.
func (h *UserHandler) SocialAuth(c echo.Context) error {
	var req socialAuthReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return apperror.Validation("email is required")
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return apperror.Persistence("failed to load user", err)
		}
		user = &model.User{
			Name:    req.Name,
			Email:   req.Email,
			Role:    model.RoleUser,
			Avatar:  model.Avatar{URL: req.Avatar},
			Courses: []string{},
		}
		if err := h.Users.Create(c.Request().Context(), user); err != nil {
			return apperror.Persistence("failed to create user", err)
		}
	}

	return h.sendToken(c, user)
}

// Logout clears both cookies and deletes the session entry, revoking
// any tokens still in flight. Idempotent if the entry is absent.
func (h *UserHandler) Logout(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	middleware.ClearSessionCookies(c)
	if err := h.Sessions.Delete(c.Request().Context(), user.ID); err != nil {
		return apperror.Internal("failed to delete session", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out successfully"})
}

// RefreshToken exchanges a valid refresh cookie for a fresh token
// pair. The cached session must still exist; rotation leaves it
// untouched.
func (h *UserHandler) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(middleware.RefreshCookie)
	if err != nil || cookie.Value == "" {
		return apperror.Auth("refresh token is required")
	}

	userID, err := utils.VerifySessionToken(h.Cfg.RefreshSecret, cookie.Value)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return apperror.Auth("refresh token is expired, please login again")
		}
		return apperror.Auth("could not refresh token")
	}

	user, err := h.Sessions.Get(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return apperror.Auth("could not refresh token, please login again")
		}
		return apperror.Internal("session lookup failed", err)
	}

	access, refresh, err := h.issuePair(user.ID)
	if err != nil {
		return apperror.Internal("failed to issue tokens", err)
	}
	h.setTokenCookies(c, access, refresh)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "access_token": access})
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// sendToken issues the token pair, writes the session snapshot and
// sets both cookies. Shared by login and social auth.
func (h *UserHandler) sendToken(c echo.Context, user *model.User) error {
	access, refresh, err := h.issuePair(user.ID)
	if err != nil {
		return apperror.Internal("failed to issue tokens", err)
	}
	if err := h.Sessions.Set(c.Request().Context(), user); err != nil {
		return apperror.Internal("failed to store session", err)
	}
	h.setTokenCookies(c, access, refresh)

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"user":         user,
		"access_token": access,
	})
}

func (h *UserHandler) issuePair(userID uint64) (access, refresh string, err error) {
	access, err = utils.NewSessionToken(h.Cfg.AccessSecret, userID, h.Cfg.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = utils.NewSessionToken(h.Cfg.RefreshSecret, userID, h.Cfg.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (h *UserHandler) setTokenCookies(c echo.Context, access, refresh string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(h.Cfg.AccessTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(h.Cfg.RefreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
