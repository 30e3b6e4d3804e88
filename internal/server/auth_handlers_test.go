package server

import (
	"errors"
	"net/http"
	"testing"

	"critica/internal/mail"
	"critica/internal/middleware"
	"critica/internal/models"
	"critica/internal/repository"
	"critica/internal/service"
	"critica/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSender struct{}

func (failingSender) Send(mail.Message) error {
	return errors.New("smtp unreachable")
}

func TestSignupThenExchangeFlow(t *testing.T) {
	_, app, db := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "reader",
		"email":    "reader@example.com",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var signupBody map[string]string
	decodeBody(t, resp, &signupBody)
	assert.Equal(t, "reader", signupBody["username"])
	assert.Equal(t, "reader@example.com", signupBody["email"])
	assert.NotContains(t, signupBody, "mail_delivered")

	// The code is delivered by mail in production. Read it from storage here.
	var user models.User
	require.NoError(t, db.Where("username = ?", "reader").First(&user).Error)
	require.NotEqual(t, models.ConfirmationCodePlaceholder, user.ConfirmationCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/token", fiber.Map{
		"username":          "reader",
		"confirmation_code": user.ConfirmationCode,
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenBody map[string]interface{}
	decodeBody(t, resp, &tokenBody)
	bearer, _ := tokenBody["token"].(string)
	require.NotEmpty(t, bearer)

	// The token authenticates requests.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/users/me", nil, bearer))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]interface{}
	decodeBody(t, resp, &me)
	assert.Equal(t, "reader", me["username"])
	assert.Equal(t, string(models.RoleUser), me["role"])
}

func TestSignupReportsUndeliveredMail(t *testing.T) {
	s, app, db := newTestServer(t)
	s.authService = service.NewAuthService(
		repository.NewUserRepository(db),
		token.NewCodeIssuer("test_secret"),
		token.NewMinter("test_secret", middleware.TokenIssuer, middleware.TokenAudience),
		failingSender{},
	)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "reader",
		"email":    "reader@example.com",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "reader", body["username"])
	assert.Equal(t, false, body["mail_delivered"])
	assert.NotEmpty(t, body["warning"])

	// The identity and its code survive the failed delivery, so a later
	// signup retry reuses them.
	var user models.User
	require.NoError(t, db.Where("username = ?", "reader").First(&user).Error)
	assert.NotEqual(t, models.ConfirmationCodePlaceholder, user.ConfirmationCode)
}

func TestSignupRejectsReservedUsername(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "me",
		"email":    "me@example.com",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignupUsernameConflict(t *testing.T) {
	_, app, db := newTestServer(t)
	createUser(t, db, "taken", models.RoleUser)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "taken",
		"email":    "someone.else@example.com",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestExchangeRejectsWrongCode(t *testing.T) {
	_, app, db := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "reader",
		"email":    "reader@example.com",
	}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/token", fiber.Map{
		"username":          "reader",
		"confirmation_code": "not-the-code",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The real code still works after a failed attempt.
	var user models.User
	require.NoError(t, db.Where("username = ?", "reader").First(&user).Error)
	assert.NotEqual(t, models.ConfirmationCodePlaceholder, user.ConfirmationCode)
}

func TestExchangeUnknownUser(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/token", fiber.Map{
		"username":          "ghost",
		"confirmation_code": "whatever",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
