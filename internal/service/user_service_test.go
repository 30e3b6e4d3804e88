package service

import (
	"context"
	"testing"

	"critica/internal/access"
	"critica/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfileKeepsRole(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "reader", Email: "reader@example.com", Role: models.RoleUser}, nil
	}
	var updated *models.User
	repo.updateFn = func(_ context.Context, user *models.User) error {
		updated = user
		return nil
	}
	svc := NewUserService(repo)

	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		Actor: author(),
		Email: "new@example.com",
		Bio:   "mostly horror",
	})
	require.NoError(t, err)

	// The input carries no role at all; whatever the caller sends on the
	// wire cannot reach this path.
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "mostly horror", updated.Bio)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "reader", Email: "reader@example.com"}, nil
	}
	repo.getByEmailFn = func(context.Context, string) (*models.User, error) {
		return &models.User{ID: 42, Email: "taken@example.com"}, nil
	}
	svc := NewUserService(repo)

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		Actor: author(),
		Email: "taken@example.com",
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.Equal(t, "email", appErr.Field)
}

func TestListUsersAdminOnly(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.listFn = func(context.Context, string, int, int) ([]models.User, error) {
		return []models.User{{ID: 1, Username: "a"}}, nil
	}
	svc := NewUserService(repo)

	_, err := svc.ListUsers(context.Background(),
		access.Actor{ID: 1, Role: models.RoleModerator, Authenticated: true}, "", 20, 0)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodePermission, appErr.Code)

	users, err := svc.ListUsers(context.Background(),
		access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}, "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAdminUpdateUserSetsRole(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		return &models.User{ID: 2, Username: username, Email: "target@example.com", Role: models.RoleUser}, nil
	}
	var updated *models.User
	repo.updateFn = func(_ context.Context, user *models.User) error {
		updated = user
		return nil
	}
	svc := NewUserService(repo)

	adminActor := access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}

	_, err := svc.AdminUpdateUser(context.Background(), AdminUpdateUserInput{
		Actor:    adminActor,
		Username: "target",
		Role:     models.RoleModerator,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)

	_, err = svc.AdminUpdateUser(context.Background(), AdminUpdateUserInput{
		Actor:    adminActor,
		Username: "target",
		Role:     models.Role("emperor"),
	})
	require.Error(t, err)
	assert.Equal(t, "role", fieldOf(t, err))
}

func TestAdminDeleteUser(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "ghost" {
			return nil, nil
		}
		return &models.User{ID: 2, Username: username}, nil
	}
	var deletedID uint
	repo.deleteFn = func(_ context.Context, id uint) error {
		deletedID = id
		return nil
	}
	svc := NewUserService(repo)

	adminActor := access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}

	err := svc.AdminDeleteUser(context.Background(), adminActor, "ghost")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	require.NoError(t, svc.AdminDeleteUser(context.Background(), adminActor, "target"))
	assert.Equal(t, uint(2), deletedID)

	err = svc.AdminDeleteUser(context.Background(),
		access.Actor{ID: 3, Role: models.RoleUser, Authenticated: true}, "target")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodePermission, appErr.Code)
}
