package commands

import (
	"context"
	"log/slog"

	"aurum-commerce/internal/domain/user"
	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/pkg/errs"
	"aurum-commerce/internal/pkg/jwt"
	"aurum-commerce/internal/pkg/password"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = errs.New("email already registered")
	ErrInvalidCredentials = errs.New("invalid credentials")
	ErrUserInactive       = errs.New("user inactive")
	ErrTokenGeneration    = errs.New("token generation failed")
	ErrTokenValidation    = errs.New("token validation failed")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterResult struct {
	UserID uuid.UUID
}

type LoginResult struct {
	UserID    uuid.UUID
	Role      string
	TokenPair TokenPair
}

type AuthCommands interface {
	Register(ctx context.Context, email, rawPassword string) (*RegisterResult, error)
	Login(ctx context.Context, email, rawPassword string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authUseCaseImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
	logger     *slog.Logger
}

func NewAuthUseCase(uow shared.UnitOfWork, jwtService *jwt.Service, logger *slog.Logger) AuthCommands {
	return &authUseCaseImpl{uow: uow, jwtService: jwtService, logger: logger}
}

func (uc *authUseCaseImpl) Register(ctx context.Context, email, rawPassword string) (*RegisterResult, error) {
	validEmail, err := user.NewEmail(email)
	if err != nil {
		return nil, err
	}
	validPassword, err := user.NewPassword(rawPassword)
	if err != nil {
		return nil, err
	}

	hash, err := password.HashPassword(validPassword.Value())
	if err != nil {
		return nil, err
	}

	var userID uuid.UUID
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, derr := tx.Users().Create(ctx, tx.DB(), validEmail.Value(), hash, user.RoleCustomer.String())
		if derr != nil {
			if infra.IsKind(derr, infra.KindDuplicateKey) {
				return ErrEmailTaken
			}
			return derr
		}
		userID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResult{UserID: userID}, nil
}

func (uc *authUseCaseImpl) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	snap, err := uc.uow.CommandReads().UserByEmail(ctx, email)
	if err != nil {
		// Same error as a password mismatch to prevent user enumeration.
		return nil, ErrInvalidCredentials
	}
	if !snap.IsActive {
		return nil, ErrUserInactive
	}
	if err := password.ComparePassword(snap.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	role, err := user.NewRole(snap.Role)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := uc.issueTokens(snap.ID, role)
	if err != nil {
		return nil, err
	}

	if err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, tx.DB(), snap.ID)
	}); err != nil {
		// Not critical; the login itself succeeded.
		uc.logger.WarnContext(ctx, "failed to update last login",
			slog.String("user_id", snap.ID.String()),
			slog.Any("error", err),
		)
	}

	return &LoginResult{UserID: snap.ID, Role: role.String(), TokenPair: *pair}, nil
}

func (uc *authUseCaseImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := uc.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return nil, ErrTokenValidation
	}

	return uc.issueTokens(claims.UserID, role)
}

func (uc *authUseCaseImpl) issueTokens(userID uuid.UUID, role user.Role) (*TokenPair, error) {
	access, err := uc.jwtService.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	refresh, err := uc.jwtService.GenerateRefreshToken(userID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
