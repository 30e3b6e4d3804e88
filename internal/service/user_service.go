package service

import (
	"context"

	"critica/internal/access"
	"critica/internal/models"
	"critica/internal/repository"
)

// UserService covers self-service profile access and admin user management.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput is a self-service profile edit. The role field is
// deliberately absent: only admin management may change roles.
type UpdateProfileInput struct {
	Actor access.Actor
	Email string
	Bio   string
}

// AdminUpdateUserInput is an admin edit of an arbitrary user.
type AdminUpdateUserInput struct {
	Actor    access.Actor
	Username string
	Email    string
	Bio      string
	Role     models.Role
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the actor's own user record.
func (s *UserService) GetProfile(ctx context.Context, actor access.Actor) (*models.User, error) {
	if err := access.Decide(actor, access.Action{Resource: access.SelfProfile, Kind: access.Read}); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, actor.ID)
}

// UpdateProfile edits the actor's own record. Attempts to change the role
// via this path are impossible by construction.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.SelfProfile, Kind: access.WriteObject, Owned: true}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.Actor.ID)
	if err != nil {
		return nil, err
	}

	if in.Email != "" && in.Email != user.Email {
		if err := validateEmail(in.Email); err != nil {
			return nil, err
		}
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, models.NewConflictError("email", "This email is already registered")
		}
		user.Email = in.Email
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns users for administration, searchable by username.
func (s *UserService) ListUsers(ctx context.Context, actor access.Actor, search string, limit, offset int) ([]models.User, error) {
	if err := access.Decide(actor, access.Action{Resource: access.UserAdmin, Kind: access.Read}); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, search, limit, offset)
}

// GetUser returns a user by username for administration.
func (s *UserService) GetUser(ctx context.Context, actor access.Actor, username string) (*models.User, error) {
	if err := access.Decide(actor, access.Action{Resource: access.UserAdmin, Kind: access.Read}); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// AdminUpdateUser edits an arbitrary user, including role elevation. This is
// the only path that changes roles.
func (s *UserService) AdminUpdateUser(ctx context.Context, in AdminUpdateUserInput) (*models.User, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.UserAdmin, Kind: access.WriteObject}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", in.Username)
	}

	if in.Role != "" {
		if !in.Role.Valid() {
			return nil, models.NewFieldValidationError("role", "Unknown role")
		}
		user.Role = in.Role
	}
	if in.Email != "" && in.Email != user.Email {
		if err := validateEmail(in.Email); err != nil {
			return nil, err
		}
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, models.NewConflictError("email", "This email is already registered")
		}
		user.Email = in.Email
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AdminDeleteUser removes a user and cascades to their content.
func (s *UserService) AdminDeleteUser(ctx context.Context, actor access.Actor, username string) error {
	if err := access.Decide(actor, access.Action{Resource: access.UserAdmin, Kind: access.WriteObject}); err != nil {
		return err
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", username)
	}
	return s.userRepo.Delete(ctx, user.ID)
}
