// Package account signs users in against the catalog backend and keeps the
// signed-in user in the key-value store.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/sirupsen/logrus"
)

const (
	UserKey           = "@user_data"
	MinPasswordLength = 6
)

// ErrValidation wraps every input problem reported before any request is made.
var ErrValidation = errors.New("validation failed")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	auth  port.Authenticator
	store port.KVStore
	log   *logrus.Entry
}

type Option func(*Service)

func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func New(auth port.Authenticator, store port.KVStore, opts ...Option) (*Service, error) {
	if auth == nil {
		return nil, fmt.Errorf("auth is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}

	s := &Service{
		auth:  auth,
		store: store,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login exchanges credentials for tokens, loads the profile and stores the
// result as the current user.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	tokens, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth.Login: %w", err)
	}

	user, err := s.auth.Profile(ctx, tokens.AccessToken)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth.Profile: %w", err)
	}
	user.AccessToken = tokens.AccessToken
	user.RefreshToken = tokens.RefreshToken
	if user.Email == "" {
		user.Email = email
	}

	if err := s.save(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.log.WithField("user", user.DisplayName()).Info("signed in")
	return user, nil
}

// Register creates a backend account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, user domain.NewUser) (domain.User, error) {
	if err := validateNewUser(user); err != nil {
		return domain.User{}, err
	}
	user.Email = strings.TrimSpace(user.Email)

	created, err := s.auth.Register(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth.Register: %w", err)
	}

	s.log.WithField("email", created.Email).Info("registered")
	return created, nil
}

// Current returns the stored user, or nil when nobody is signed in.
func (s *Service) Current(ctx context.Context) (*domain.User, error) {
	raw, err := s.store.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("store.Get: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return &user, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx, UserKey); err != nil {
		return fmt.Errorf("store.Clear: %w", err)
	}
	s.log.Info("signed out")
	return nil
}

func (s *Service) save(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	if err := s.store.Set(ctx, UserKey, raw); err != nil {
		return fmt.Errorf("store.Set: %w", err)
	}
	return nil
}

func validateNewUser(u domain.NewUser) error {
	var problems []string

	if strings.TrimSpace(u.FirstName) == "" && strings.TrimSpace(u.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(u.Name) == "" && strings.TrimSpace(u.LastName) == "" {
		problems = append(problems, "last name is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(u.Email)) {
		problems = append(problems, "email is invalid")
	}
	if len(u.Password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, ", "))
	}
	return nil
}
