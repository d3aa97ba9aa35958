package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/internal/users"
	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/security"
)

const tempPasswordLength = 16

// AdminService covers the super-admin staff management surface.
type AdminService interface {
	// CreateStoreAdmin provisions a staff account. A temporary password is
	// generated when none is supplied.
	CreateStoreAdmin(ctx context.Context, req CreateStoreAdminRequest) (*CreatedStoreAdminDTO, error)
	// ListStoreAdmins returns all staff accounts with the store_admin role.
	ListStoreAdmins(ctx context.Context) ([]users.UserDTO, error)
}

type adminService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// AdminServiceParams packages the dependencies for staff management.
type AdminServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

// NewAdminService builds the staff management service.
func NewAdminService(params AdminServiceParams) (AdminService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &adminService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *adminService) CreateStoreAdmin(ctx context.Context, req CreateStoreAdminRequest) (*CreatedStoreAdminDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}

	password := req.Password
	tempPassword := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
		tempPassword = generated
	} else if len(password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(password, s.passwordCfg)
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
			Role:         enums.ActorRoleStoreAdmin,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create staff user")
		}
		created = user
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &CreatedStoreAdminDTO{
		User:         users.FromModel(created),
		TempPassword: tempPassword,
	}, nil
}

func (s *adminService) ListStoreAdmins(ctx context.Context) ([]users.UserDTO, error) {
	records, err := users.NewRepository(s.db.DB()).ListByRole(ctx, enums.ActorRoleStoreAdmin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list staff users")
	}
	out := make([]users.UserDTO, 0, len(records))
	for i := range records {
		out = append(out, *users.FromModel(&records[i]))
	}
	return out, nil
}
