// Package service implements the application's business rules.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"critica/internal/mail"
	"critica/internal/middleware"
	"critica/internal/models"
	"critica/internal/observability"
	"critica/internal/repository"
	"critica/internal/token"
)

const (
	maxUsernameLen = 150
	maxEmailLen    = 254

	// reservedUsername collides with the "current user" route (/users/me).
	reservedUsername = "me"
)

var (
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// AuthService orchestrates signup and the confirmation-code token exchange.
type AuthService struct {
	userRepo repository.UserRepository
	codes    *token.CodeIssuer
	minter   *token.Minter
	mailer   mail.Sender
}

// SignupInput is a registration request.
type SignupInput struct {
	Username string
	Email    string
}

// SignupResult reports the (possibly reused) identity and whether the
// confirmation mail was actually handed off. Delivered=false is a degraded
// signup, not a failed one: the code is issued and a retry of the identical
// request re-sends it.
type SignupResult struct {
	User      *models.User
	Delivered bool
}

// ExchangeInput is a token-exchange request.
type ExchangeInput struct {
	Username         string
	ConfirmationCode string
}

// ExchangeResult carries the minted access token.
type ExchangeResult struct {
	Token     string
	ExpiresAt time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	codes *token.CodeIssuer,
	minter *token.Minter,
	mailer mail.Sender,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codes:    codes,
		minter:   minter,
		mailer:   mailer,
	}
}

// Signup registers an identity or re-requests a code for an existing one.
//
// Resolution order for the (username, email) pair:
//  1. exact pair exists            -> idempotent: reuse identity, rotate code
//  2. username bound to other mail -> conflict scoped to username
//  3. email bound to other name    -> conflict scoped to email
//  4. otherwise                    -> create
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	if err := validateUsername(in.Username); err != nil {
		observability.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		observability.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	byName, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	byEmail, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	var user *models.User
	switch {
	case byName != nil && byName.Email == in.Email:
		user = byName
		observability.SignupsTotal.WithLabelValues("reissued").Inc()
	case byName != nil:
		observability.SignupsTotal.WithLabelValues("conflict").Inc()
		return nil, models.NewConflictError("username", "This username is already taken")
	case byEmail != nil:
		observability.SignupsTotal.WithLabelValues("conflict").Inc()
		return nil, models.NewConflictError("email", "This email is already registered")
	default:
		user = &models.User{
			Username:         in.Username,
			Email:            in.Email,
			Role:             models.RoleUser,
			ConfirmationCode: models.ConfirmationCodePlaceholder,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		observability.SignupsTotal.WithLabelValues("created").Inc()
	}

	// The code is issued and stored before the send obligation is built, so
	// a lost mail still leaves a redeemable code behind.
	code, err := s.codes.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.SetConfirmationCode(ctx, user.ID, code); err != nil {
		return nil, err
	}
	user.ConfirmationCode = code

	delivered := true
	msg := mail.Message{
		To:      user.Email,
		Subject: "Critica confirmation code",
		Body: fmt.Sprintf("Hello, %s.\nYour confirmation code: %s",
			user.Username, code),
	}
	if err := s.mailer.Send(msg); err != nil {
		// Identity state stands; the caller sees a degraded result.
		delivered = false
		observability.MailDeliveryFailures.Inc()
		middleware.Logger.WarnContext(ctx, "confirmation mail delivery failed",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
	}

	return &SignupResult{User: user, Delivered: delivered}, nil
}

// ExchangeToken validates a confirmation code and mints an access token.
// Only the most recently issued code matches; superseded codes always fail.
func (s *AuthService) ExchangeToken(ctx context.Context, in ExchangeInput) (*ExchangeResult, error) {
	if in.Username == "" {
		return nil, models.NewFieldValidationError("username", "Username is required")
	}
	if in.ConfirmationCode == "" {
		return nil, models.NewFieldValidationError("confirmation_code", "Confirmation code is required")
	}

	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.TokenExchangesTotal.WithLabelValues("unknown_user").Inc()
		return nil, &models.AppError{
			Code:    models.CodeNotFound,
			Message: "User not found",
			Field:   "username",
		}
	}

	if user.ConfirmationCode == models.ConfirmationCodePlaceholder ||
		user.ConfirmationCode != in.ConfirmationCode {
		observability.TokenExchangesTotal.WithLabelValues("bad_code").Inc()
		return nil, models.NewFieldValidationError("confirmation_code", "Invalid confirmation code")
	}

	signed, expiry, err := s.minter.Mint(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.TokenExchangesTotal.WithLabelValues("issued").Inc()
	return &ExchangeResult{Token: signed, ExpiresAt: expiry}, nil
}

func validateUsername(username string) error {
	if username == "" {
		return models.NewFieldValidationError("username", "Username is required")
	}
	if len(username) > maxUsernameLen {
		return models.NewFieldValidationError("username", "Username too long (max 150 characters)")
	}
	if username == reservedUsername {
		return models.NewFieldValidationError("username", `Username "me" is reserved`)
	}
	if !usernameRe.MatchString(username) {
		return models.NewFieldValidationError("username", "Username contains invalid characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return models.NewFieldValidationError("email", "Email is required")
	}
	if len(email) > maxEmailLen {
		return models.NewFieldValidationError("email", "Email too long (max 254 characters)")
	}
	if !emailRe.MatchString(email) {
		return models.NewFieldValidationError("email", "Invalid email address")
	}
	return nil
}
