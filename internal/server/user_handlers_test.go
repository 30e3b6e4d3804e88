package server

import (
	"net/http"
	"testing"

	"critica/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyProfileRequiresAuth(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/users/me", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateMyProfileKeepsRole(t *testing.T) {
	_, app, db := newTestServer(t)
	user, token := createUser(t, db, "plain", models.RoleUser)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/users/me",
		fiber.Map{"bio": "I review things", "role": "admin"}, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Equal(t, "I review things", got.Bio)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestListUsersAdminOnlyOverHTTP(t *testing.T) {
	_, app, db := newTestServer(t)
	_, userToken := createUser(t, db, "plain", models.RoleUser)
	_, adminToken := createUser(t, db, "boss", models.RoleAdmin)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/users", nil, userToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/users", nil, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Users []models.User `json:"users"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Users, 2)
}

func TestAdminPromotesUser(t *testing.T) {
	_, app, db := newTestServer(t)
	target, _ := createUser(t, db, "plain", models.RoleUser)
	_, adminToken := createUser(t, db, "boss", models.RoleAdmin)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/users/plain",
		fiber.Map{"role": "moderator"}, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.User
	require.NoError(t, db.First(&got, target.ID).Error)
	assert.Equal(t, models.RoleModerator, got.Role)
}

func TestDemotionTakesEffectImmediately(t *testing.T) {
	_, app, db := newTestServer(t)
	demoted, demotedToken := createUser(t, db, "expired", models.RoleAdmin)
	createUser(t, db, "boss", models.RoleAdmin)

	// The admin still holds a valid token when the role changes underneath.
	require.NoError(t, db.Model(demoted).Update("role", models.RoleUser).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/categories",
		fiber.Map{"name": "Games", "slug": "games"}, demotedToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminDeletesUserWithContent(t *testing.T) {
	_, app, db := newTestServer(t)
	title := createTitle(t, db, "Sacrifice", 1986)
	target, _ := createUser(t, db, "plain", models.RoleUser)
	_, adminToken := createUser(t, db, "boss", models.RoleAdmin)

	review := &models.Review{AuthorID: target.ID, TitleID: title.ID, Text: "Fire", Score: 9}
	require.NoError(t, db.Create(review).Error)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/users/plain", nil, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	assert.EqualValues(t, 0, reviews)
}
