package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"checkout-api/internal/domain/model"
	"checkout-api/internal/repository"
	"checkout-api/internal/usecase"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

// handlerがJSONにして返す
type AuthOutput struct {
	AccessToken string     `json:"accessToken"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	User        model.User `json:"user"`
}

type AuthUsecase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	issuer AccessTokenIssuer
	log    *slog.Logger
	now    func() time.Time
}

func NewAuthUsecase(users repository.UserRepository, hasher PasswordHasher, issuer AccessTokenIssuer, log *slog.Logger) *AuthUsecase {
	return &AuthUsecase{users: users, hasher: hasher, issuer: issuer, log: log, now: time.Now}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (AuthOutput, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if _, err := mail.ParseAddress(email); err != nil {
		return AuthOutput{}, usecase.Validation("email must be a valid email address")
	}
	if utf8.RuneCountInString(in.Password) < 8 {
		return AuthOutput{}, usecase.Validation("password must be at least 8 characters")
	}
	if name == "" {
		return AuthOutput{}, usecase.Validation("name is required")
	}

	//パスワードは必ずハッシュ化して保存
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return AuthOutput{}, usecase.Internal(err)
	}

	user, err := u.users.Create(ctx, model.User{Email: email, PasswordHash: hash, Name: name})
	if errors.Is(err, repository.ErrConflict) {
		return AuthOutput{}, usecase.NewHTTPError(http.StatusConflict, "Email already registered")
	}
	if err != nil {
		return AuthOutput{}, usecase.Internal(err)
	}

	u.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return u.issue(user)
}

// メール・パスワードのどちらが違っても同じ401
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (AuthOutput, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return AuthOutput{}, usecase.Validation("email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return AuthOutput{}, usecase.Internal(err)
	}
	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		return AuthOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return u.issue(user)
}

func (u *AuthUsecase) issue(user model.User) (AuthOutput, error) {
	token, exp, err := u.issuer.Issue(user.ID, u.now())
	if err != nil {
		return AuthOutput{}, usecase.Internal(err)
	}
	return AuthOutput{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
