package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-course-platform/internal/middleware"
	"github.com/iliyamo/online-course-platform/internal/model"
	"github.com/iliyamo/online-course-platform/internal/utils"
)

// invokeAs runs a handler with an authenticated user already in the
// context, the way Authenticate would leave it.
func invokeAs(t *testing.T, user *model.User, h echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetCurrentUser(c, user)
	return rec, h(c)
}

// withUser wraps a handler so the given user is authenticated for the
// request.
func withUser(user *model.User, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		middleware.SetCurrentUser(c, user)
		return h(c)
	}
}

func TestUpdateInfoChangesNameAndEmail(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "ada@example.com", "pw123456", model.RoleUser)

	rec, err := invokeAs(t, seeded, f.h.UpdateInfo, jsonRequest(http.MethodPut, "/api/v1/update-user-info",
		updateInfoReq{Name: "Ada L.", Email: "Ada.New@Example.com"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	user, err := f.users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)
	assert.Equal(t, "ada.new@example.com", user.Email)

	// Session snapshot follows the profile.
	stored, err := f.sessions.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada.new@example.com", stored.Email)
}

func TestUpdateInfoRejectsTakenEmail(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "ada@example.com", "pw123456", model.RoleUser)
	f.seedUser(t, "other@example.com", "pw123456", model.RoleUser)

	_, err := invokeAs(t, seeded, f.h.UpdateInfo, jsonRequest(http.MethodPut, "/api/v1/update-user-info",
		updateInfoReq{Email: "other@example.com"}))
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, "email already exists", appErr.Message)
}

// Re-submitting the current email is not a conflict.
func TestUpdateInfoSameEmailIsNoop(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "ada@example.com", "pw123456", model.RoleUser)

	rec, err := invokeAs(t, seeded, f.h.UpdateInfo, jsonRequest(http.MethodPut, "/api/v1/update-user-info",
		updateInfoReq{Name: "Ada", Email: "ada@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdatePassword(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "ada@example.com", "old-password", model.RoleUser)

	rec, err := invokeAs(t, seeded, f.h.UpdatePassword, jsonRequest(http.MethodPut, "/api/v1/update-user-password",
		updatePasswordReq{OldPassword: "old-password", NewPassword: "new-password"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	user, err := f.users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(user.PasswordHash, "new-password"))
	assert.False(t, utils.VerifyPassword(user.PasswordHash, "old-password"))
}

func TestUpdatePasswordWrongOld(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "ada@example.com", "old-password", model.RoleUser)

	_, err := invokeAs(t, seeded, f.h.UpdatePassword, jsonRequest(http.MethodPut, "/api/v1/update-user-password",
		updatePasswordReq{OldPassword: "wrong", NewPassword: "new-password"}))
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, "invalid old password", appErr.Message)
}

// Social-auth accounts carry no password hash and cannot set one here.
func TestUpdatePasswordSocialAccount(t *testing.T) {
	f := newAuthFixture()
	social := &model.User{Name: "Ada", Email: "ada@example.com", Role: model.RoleUser, Courses: []string{}}
	require.NoError(t, f.users.Create(context.Background(), social))

	_, err := invokeAs(t, social, f.h.UpdatePassword, jsonRequest(http.MethodPut, "/api/v1/update-user-password",
		updatePasswordReq{OldPassword: "anything", NewPassword: "new-password"}))
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, "invalid user", appErr.Message)
}

func TestUpdateAvatarReplacesHostedAsset(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "ada@example.com", "pw123456", model.RoleUser)
	seeded.Avatar = model.Avatar{PublicID: "avatars/old", URL: "https://media.example/avatars/old"}
	require.NoError(t, f.users.Save(context.Background(), seeded))

	rec, err := invokeAs(t, seeded, f.h.UpdateAvatar, jsonRequest(http.MethodPut, "/api/v1/update-user-avatar",
		updateAvatarReq{Avatar: "data:image/png;base64,xxxx"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"avatars/old"}, f.media.destroyed)
	assert.Equal(t, 1, f.media.uploads)

	user, err := f.users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, user.Avatar.PublicID)
	assert.NotEqual(t, "avatars/old", user.Avatar.PublicID)
}

func TestUpdateAvatarFirstUploadSkipsDestroy(t *testing.T) {
	f := newAuthFixture()
	seeded := f.seedUser(t, "ada@example.com", "pw123456", model.RoleUser)

	_, err := invokeAs(t, seeded, f.h.UpdateAvatar, jsonRequest(http.MethodPut, "/api/v1/update-user-avatar",
		updateAvatarReq{Avatar: "data:image/png;base64,xxxx"}))
	require.NoError(t, err)
	assert.Empty(t, f.media.destroyed)
	assert.Equal(t, 1, f.media.uploads)
}
