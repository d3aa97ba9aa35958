package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/internal/profiles"
	"github.com/partshub/autospares-backend/internal/users"
	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/security"
)

const minPasswordLength = 8

// RegisterService handles customer sign-up.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if err := requireFreeEmail(ctx, userRepo, email); err != nil {
			return err
		}
		if err := requireFreeUsername(ctx, userRepo, username); err != nil {
			return err
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if phone := strings.TrimSpace(req.Phone); phone != "" {
			profileRepo := profiles.NewRepository(tx)
			if err := profileRepo.UpsertDefaults(ctx, user.ID, profiles.Defaults{Phone: phone}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
			}
		}

		created = user
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return users.FromModel(created), nil
}

func requireFreeEmail(ctx context.Context, repo *users.Repository, email string) error {
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	return nil
}

func requireFreeUsername(ctx context.Context, repo *users.Repository, username string) error {
	if _, err := repo.FindByUsername(ctx, username); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	}
	return nil
}
