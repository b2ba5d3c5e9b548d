package service

import (
	"strings"

	"go-social-api/internal/apperr"
	"go-social-api/internal/domain"
)

// 守卫函数：命中即返回带状态码的业务错误。
// 帖子字段校验是例外——先收集全部违规再一次性报出。

func foundPost(p *domain.Post) error {
	if p == nil {
		return apperr.NotFound("Could not find post.")
	}
	return nil
}

func foundUser(u *domain.User) error {
	if u == nil {
		return apperr.NotFound("User not found.")
	}
	return nil
}

func ownedBy(p *domain.Post, userID string) error {
	if p.CreatorID() != userID {
		return apperr.Forbidden("Not authorized.")
	}
	return nil
}

// ValidatePostInput title/content 都要非空且 ≥5 字符；
// 返回的 422 里带上所有违规字段，不是只报第一个
func ValidatePostInput(title, content string) error {
	var errs []apperr.FieldError
	if !minLen(title, 5) {
		errs = append(errs, apperr.FieldError{Message: "Title is invalid."})
	}
	if !minLen(content, 5) {
		errs = append(errs, apperr.FieldError{Message: "Content is invalid."})
	}
	if len(errs) > 0 {
		return apperr.Validation("Invalid input.", errs)
	}
	return nil
}

func minLen(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) >= n
}

// validateCredentials 注册入参：邮箱格式 + 密码 ≥5，同样先收集后报
func (s *Service) validateCredentials(email, password string) error {
	var errs []apperr.FieldError
	if err := s.validate.Var(email, "required,email"); err != nil {
		errs = append(errs, apperr.FieldError{Message: "Email is invalid."})
	}
	if err := s.validate.Var(password, "required,min=5"); err != nil {
		errs = append(errs, apperr.FieldError{Message: "Password too short"})
	}
	if len(errs) > 0 {
		return apperr.Validation("Validation failed.", errs)
	}
	return nil
}
