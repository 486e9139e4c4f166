package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/domain/repository"
	pkgAuth "github.com/polkiloo/beautymart/internal/pkg/auth"
)

const minPasswordLength = 8

// AdminCredentials are the single back-office login configured for the deployment.
type AdminCredentials struct {
	Email    string
	Password string
}

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users    repository.UserRepository
	hasher   pkgAuth.PasswordHasher
	tokens   pkgAuth.Strategy
	admin    AdminCredentials
	validate *validator.Validate
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, admin AdminCredentials) *AuthUseCase {
	return &AuthUseCase{
		users:    users,
		hasher:   hasher,
		tokens:   strategy,
		admin:    admin,
		validate: validator.New(),
	}
}

// Register creates a new customer and returns an auth token.
func (u *AuthUseCase) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", domainErrors.Invalid("name, email and password are required")
	}
	if err := u.validate.Var(email, "email"); err != nil {
		return nil, "", domainErrors.Invalid("please enter a valid email")
	}
	if len(password) < minPasswordLength {
		return nil, "", domainErrors.Invalid("please enter a strong password")
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: pkgAuth.RoleUser})
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: pkgAuth.RoleUser})
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// AdminLogin issues an admin token for the configured back-office credentials.
func (u *AuthUseCase) AdminLogin(email, password string) (string, error) {
	emailOK := pkgAuth.SecretsEqual(u.admin.Email, strings.TrimSpace(email))
	passwordOK := pkgAuth.SecretsEqual(u.admin.Password, password)
	if !emailOK || !passwordOK {
		return "", domainErrors.ErrInvalidCredentials
	}
	return u.tokens.IssueToken(pkgAuth.Claims{Role: pkgAuth.RoleAdmin})
}

// ParseToken extracts claims from provided token.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}
