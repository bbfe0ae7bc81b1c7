package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/model"
	"github.com/iliyamo/online-course-platform/internal/session"
	"github.com/iliyamo/online-course-platform/internal/utils"
)

const accessSecret = "access-secret"

type stubSessions struct {
	users map[uint64]*model.User
}

func (s *stubSessions) Set(_ context.Context, u *model.User) error {
	s.users[u.ID] = u
	return nil
}

func (s *stubSessions) Get(_ context.Context, id uint64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return u, nil
}

func (s *stubSessions) Delete(_ context.Context, id uint64) error {
	delete(s.users, id)
	return nil
}

func runAuth(t *testing.T, sessions session.Store, cookie *http.Cookie) (*model.User, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.User
	h := Authenticate(accessSecret, sessions)(func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	return seen, err
}

func TestAuthenticateMissingCookie(t *testing.T) {
	_, err := runAuth(t, &stubSessions{users: map[uint64]*model.User{}}, nil)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status())
}

func TestAuthenticateInvalidToken(t *testing.T) {
	_, err := runAuth(t, &stubSessions{users: map[uint64]*model.User{}},
		&http.Cookie{Name: AccessCookie, Value: "garbage"})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status())
}

func TestAuthenticateExpiredToken(t *testing.T) {
	tok, err := utils.NewSessionToken(accessSecret, 1, -time.Minute)
	require.NoError(t, err)

	_, err = runAuth(t, &stubSessions{users: map[uint64]*model.User{}},
		&http.Cookie{Name: AccessCookie, Value: tok})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "access token is expired", appErr.Message)
}

// A well-signed token is rejected once its session entry is gone:
// deleting the cache entry is how sessions are revoked.
func TestAuthenticateRevokedByCacheMiss(t *testing.T) {
	sessions := &stubSessions{users: map[uint64]*model.User{}}
	user := &model.User{ID: 7, Email: "a@x.com", Role: model.RoleUser}
	require.NoError(t, sessions.Set(context.Background(), user))

	tok, err := utils.NewSessionToken(accessSecret, user.ID, time.Minute)
	require.NoError(t, err)

	// Sanity: passes while the session exists.
	seen, err := runAuth(t, sessions, &http.Cookie{Name: AccessCookie, Value: tok})
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)

	require.NoError(t, sessions.Delete(context.Background(), user.ID))

	_, err = runAuth(t, sessions, &http.Cookie{Name: AccessCookie, Value: tok})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "session not found, please login again", appErr.Message)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		user    *model.User
		allowed []string
		wantErr bool
	}{
		{name: "admin allowed", user: &model.User{Role: model.RoleAdmin}, allowed: []string{model.RoleAdmin}, wantErr: false},
		{name: "user forbidden", user: &model.User{Role: model.RoleUser}, allowed: []string{model.RoleAdmin}, wantErr: true},
		{name: "no user", user: nil, allowed: []string{model.RoleAdmin}, wantErr: true},
		{name: "multiple roles", user: &model.User{Role: model.RoleUser}, allowed: []string{model.RoleAdmin, model.RoleUser}, wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/create-course", nil)
			c := e.NewContext(req, httptest.NewRecorder())
			if tt.user != nil {
				SetCurrentUser(c, tt.user)
			}

			h := RequireRole(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			err := h(c)
			if tt.wantErr {
				var appErr *apperror.Error
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, http.StatusForbidden, appErr.Status())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClearSessionCookies(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/logout", nil), rec)

	ClearSessionCookies(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, ck := range cookies {
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
		assert.True(t, ck.HttpOnly)
	}
}
