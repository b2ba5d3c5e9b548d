package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-social-api/internal/apperr"
	"go-social-api/internal/domain"
	"go-social-api/pkg/utils"
)

// Signup 注册：校验 → 查重 → bcrypt(12) → 落库。
// 唯一索引兜底并发下的重复注册，冲突统一映射成 409
func (s *Service) Signup(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := s.validateCredentials(email, password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("db error", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User already exists!")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Status:       "I am new!",
	}
	if err := s.users.Create(ctx, u); err != nil {
		if isDupKey(err) {
			return nil, apperr.Conflict("User already exists!")
		}
		return nil, apperr.Internal("create user", err)
	}

	s.log.Info("user signed up", zap.String("userId", u.ID))
	return u, nil
}

// Login 校验口令并签发 1 小时 JWT
func (s *Service) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.Internal("db error", err)
	}
	if u == nil {
		return "", nil, apperr.Unauthorized("No account with this email exists.")
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return "", nil, apperr.Unauthorized("Incorrect password.")
	}

	token, err = s.jwter.Issue(u.ID, u.Email)
	if err != nil {
		return "", nil, apperr.Internal("issue token", err)
	}
	return token, u, nil
}

// CurrentUser 取当前登录用户（GraphQL user 查询 / 其它内部复用）
func (s *Service) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("db error", err)
	}
	if err := foundUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetStatus(ctx context.Context, userID string) (string, error) {
	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Status, nil
}

func (s *Service) UpdateStatus(ctx context.Context, userID, status string) (*domain.User, error) {
	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Status = status
	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperr.Internal("update status", err)
	}
	return u, nil
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免驱动差异导致匹配不上
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
