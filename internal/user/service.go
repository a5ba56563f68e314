package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/acmefin/dashboard-core/internal/forms"
	"github.com/acmefin/dashboard-core/internal/user/entity"
	userrepo "github.com/acmefin/dashboard-core/internal/user/repo"
	"github.com/acmefin/dashboard-core/pkg/database"
	"github.com/acmefin/dashboard-core/pkg/utilities"
)

// MinPasswordLength is the shortest password signup and login accept.
const MinPasswordLength = 6

// dummyHash is a bcrypt hash of an unused value, compared against on the
// unknown-email path so rejection timing does not reveal whether the
// email exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ErrBadCredentials is the single rejection every failed login produces,
// whether the shape was invalid, the email unknown, or the password wrong.
// Callers must not be able to tell those cases apart.
var ErrBadCredentials = errors.New("invalid credentials")

// PasswordHasher abstracts the slow one-way hash so the algorithm can be
// swapped without touching the service.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares using bcrypt's constant-time comparison.
func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Repository is the storage surface the service needs.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// Service handles signup and credential verification.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

func NewService(db *sqlx.DB, r Repository, hasher PasswordHasher) *Service {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: bcrypt.DefaultCost}
	}
	return &Service{repo: r, hasher: hasher}
}

// SignupInput is the raw signup form submission. ConfirmProvided tells
// whether the confirmation field was present at all; when it was, it must
// match the password.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	Confirm         string
	ConfirmProvided bool
}

func validateSignup(in SignupInput) *forms.ValidationError {
	errs := forms.FieldErrors{}
	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) < 2 {
		errs.Add("name", "Name must be at least 2 characters.")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		errs.Add("email", "Please enter a valid email address.")
	}
	if len(in.Password) < MinPasswordLength {
		errs.Add("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	if in.ConfirmProvided && in.Confirm != in.Password {
		errs.Add("confirmPassword", "Passwords do not match.")
	}
	if len(errs) > 0 {
		return &forms.ValidationError{Fields: errs}
	}
	return nil
}

// Signup validates the input, hashes the password, and inserts the user.
// The plaintext password is never stored or logged. A duplicate email is
// reported as a field error rather than a raw persistence failure.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	if verr := validateSignup(in); verr != nil {
		return nil, verr
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		ID:       utilities.NewKSUID(),
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hash,
	}
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, &forms.ValidationError{Fields: forms.FieldErrors{
				"email": {"An account with this email already exists."},
			}}
		}
		return nil, &forms.PersistenceError{Op: "create user", Err: err}
	}
	u.Password = ""
	return u, nil
}

// Authenticate is the credential verifier: shape check, lookup by unique
// email, constant-time hash comparison. Every failure mode other than a
// storage fault collapses into ErrBadCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrBadCredentials
	}
	if len(password) < MinPasswordLength {
		return nil, ErrBadCredentials
	}
	ctx, cancel := context.WithTimeout(ctx, database.QueryTimeout)
	defer cancel()
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// burn a hash comparison so an unknown email costs the same
			// as a wrong password
			s.hasher.Verify(dummyHash, password)
			return nil, ErrBadCredentials
		}
		return nil, &forms.PersistenceError{Op: "fetch user", Err: err}
	}
	if !s.hasher.Verify(u.Password, password) {
		return nil, ErrBadCredentials
	}
	u.Password = ""
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
