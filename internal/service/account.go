package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reward-admin/internal/audit"
	"reward-admin/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

type AccountInput struct {
	Username string
	Password string
	Role     models.Role
	Email    string
	UnitID   *uint
}

type AccountService struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewAccountService(db *gorm.DB, auditLog *audit.Logger) *AccountService {
	return &AccountService{db: db, audit: auditLog}
}

func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	var a models.Account
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Take(&a).Error
	if isRecordNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.audit.Record(ctx, audit.Entry{ActorID: a.ID, Action: audit.ActionLogin, Resource: audit.ResourceAccounts, ResourceID: a.ID, Description: audit.DescribeAccount(audit.ActionLogin, a)})
	return &a, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.Account, error) {
	var a models.Account
	err := s.db.WithContext(ctx).Preload("Unit").Take(&a, id).Error
	if isRecordNotFound(err) {
		return nil, notFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &a, nil
}

func (s *AccountService) List(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	if err := s.db.WithContext(ctx).Preload("Unit").Order("username asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (s *AccountService) Create(ctx context.Context, actor models.Account, in AccountInput) (*models.Account, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) < minUsernameLength {
		return nil, validationf("username", "must be at least %d characters", minUsernameLength)
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationf("password", "must be at least %d characters", minPasswordLength)
	}
	if !in.Role.Valid() {
		return nil, validationf("role", "unknown role %q", in.Role)
	}
	if in.Role.Level() > actor.Role.Level() {
		return nil, &AuthorizationError{Message: "cannot grant a role above your own"}
	}
	if in.UnitID != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Unit{}).Where("id = ?", *in.UnitID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check unit: %w", err)
		}
		if n == 0 {
			return nil, validationf("unit_id", "unit %d does not exist", *in.UnitID)
		}
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return nil, conflictf("username %q is taken", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         in.Role,
		Email:        strings.TrimSpace(in.Email),
		UnitID:       in.UnitID,
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionCreate, Resource: audit.ResourceAccounts, ResourceID: a.ID, Description: audit.DescribeAccount(audit.ActionCreate, a)})
	return &a, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, account models.Account, current, next string) error {
	var a models.Account
	if err := s.db.WithContext(ctx).Take(&a, account.ID).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("account", account.ID)
		}
		return fmt.Errorf("load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(current)); err != nil {
		return validationf("current_password", "does not match")
	}
	if len(next) < minPasswordLength {
		return validationf("new_password", "must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&a).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: a.ID, Action: audit.ActionUpdate, Resource: audit.ResourceAccounts, ResourceID: a.ID, Description: "Đổi mật khẩu tài khoản: " + a.Username})
	return nil
}

func (s *AccountService) Delete(ctx context.Context, actor models.Account, id uint) error {
	if actor.ID == id {
		return validationf("id", "cannot delete your own account")
	}
	var a models.Account
	if err := s.db.WithContext(ctx).Take(&a, id).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("account", id)
		}
		return fmt.Errorf("load account: %w", err)
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("submitted_by_id = ? OR approved_by_id = ?", id, id).
		Count(&n).Error; err != nil {
		return fmt.Errorf("check account references: %w", err)
	}
	if n > 0 {
		return conflictf("account %q is referenced by %d proposals", a.Username, n)
	}

	if err := s.db.WithContext(ctx).Delete(&a).Error; err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionDelete, Resource: audit.ResourceAccounts, ResourceID: a.ID, Description: audit.DescribeAccount(audit.ActionDelete, a)})
	return nil
}
