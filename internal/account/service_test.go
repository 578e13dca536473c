package account_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/storefront/internal/account"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeAuth struct {
	tokens     port.Tokens
	loginErr   error
	profile    domain.User
	profileErr error

	gotToken    string
	registered  []domain.NewUser
	registerErr error
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (port.Tokens, error) {
	return f.tokens, f.loginErr
}

func (f *fakeAuth) Profile(_ context.Context, accessToken string) (domain.User, error) {
	f.gotToken = accessToken
	return f.profile, f.profileErr
}

func (f *fakeAuth) Register(_ context.Context, u domain.NewUser) (domain.User, error) {
	f.registered = append(f.registered, u)
	if f.registerErr != nil {
		return domain.User{}, f.registerErr
	}
	return domain.User{ID: 99, Name: u.Name, Email: u.Email}, nil
}

type accountSuite struct {
	suite.Suite
	auth  *fakeAuth
	store *repository.MemoryRepository
	svc   *account.Service
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(accountSuite))
}

func (s *accountSuite) SetupTest() {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s.auth = &fakeAuth{}
	s.store = repository.NewMemory()

	svc, err := account.New(s.auth, s.store, account.WithLogger(logrus.NewEntry(log)))
	s.Require().NoError(err)
	s.svc = svc
}

func (s *accountSuite) TestLoginPersistsUser() {
	ctx := context.Background()
	email := gofakeit.Email()

	s.auth.tokens = port.Tokens{AccessToken: gofakeit.UUID(), RefreshToken: gofakeit.UUID()}
	s.auth.profile = domain.User{ID: 1, Name: gofakeit.Name(), Role: "customer"}

	user, err := s.svc.Login(ctx, " "+email+" ", "changeme")
	s.Require().NoError(err)

	want := s.auth.profile
	want.Email = email
	want.AccessToken = s.auth.tokens.AccessToken
	want.RefreshToken = s.auth.tokens.RefreshToken

	s.Empty(cmp.Diff(want, user))
	s.Equal(s.auth.tokens.AccessToken, s.auth.gotToken)
	s.True(user.IsAuthenticated())

	current, err := s.svc.Current(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(current)
	s.Empty(cmp.Diff(want, *current))
}

func (s *accountSuite) TestLoginFailures() {
	backendErr := errors.New("backend down")

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(f *fakeAuth)
		wantErr  error
	}{
		{
			name:     "missing email",
			password: "secret1",
			wantErr:  account.ErrValidation,
		},
		{
			name:    "missing password",
			email:   "a@b.co",
			wantErr: account.ErrValidation,
		},
		{
			name:     "login rejected",
			email:    "a@b.co",
			password: "secret1",
			setup:    func(f *fakeAuth) { f.loginErr = backendErr },
			wantErr:  backendErr,
		},
		{
			name:     "profile failed",
			email:    "a@b.co",
			password: "secret1",
			setup: func(f *fakeAuth) {
				f.tokens = port.Tokens{AccessToken: "t"}
				f.profileErr = backendErr
			},
			wantErr: backendErr,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			if tt.setup != nil {
				tt.setup(s.auth)
			}

			_, err := s.svc.Login(context.Background(), tt.email, tt.password)
			s.Require().ErrorIs(err, tt.wantErr)

			current, err := s.svc.Current(context.Background())
			s.Require().NoError(err)
			s.Nil(current)
		})
	}
}

func (s *accountSuite) TestLogout() {
	ctx := context.Background()

	s.auth.tokens = port.Tokens{AccessToken: "t"}
	_, err := s.svc.Login(ctx, gofakeit.Email(), "secret1")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Logout(ctx))

	current, err := s.svc.Current(ctx)
	s.Require().NoError(err)
	s.Nil(current)

	s.Require().NoError(s.svc.Logout(ctx))
}

func (s *accountSuite) TestCurrentCorrupt() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, account.UserKey, []byte("{oops")))

	_, err := s.svc.Current(ctx)
	s.Error(err)
}

func (s *accountSuite) TestRegister() {
	valid := domain.NewUser{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Password:  "secret1",
	}

	tests := []struct {
		name    string
		mutate  func(u *domain.NewUser)
		wantErr bool
	}{
		{name: "valid"},
		{name: "full name only", mutate: func(u *domain.NewUser) { u.FirstName, u.LastName, u.Name = "", "", "Ada Lovelace" }},
		{name: "no first name", mutate: func(u *domain.NewUser) { u.FirstName = "" }, wantErr: true},
		{name: "no last name", mutate: func(u *domain.NewUser) { u.LastName = "" }, wantErr: true},
		{name: "bad email", mutate: func(u *domain.NewUser) { u.Email = "not-an-email" }, wantErr: true},
		{name: "short password", mutate: func(u *domain.NewUser) { u.Password = "12345" }, wantErr: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			u := valid
			if tt.mutate != nil {
				tt.mutate(&u)
			}

			created, err := s.svc.Register(context.Background(), u)
			if tt.wantErr {
				s.Require().ErrorIs(err, account.ErrValidation)
				s.Empty(s.auth.registered)
				return
			}
			s.Require().NoError(err)
			s.Equal(99, created.ID)
			s.Len(s.auth.registered, 1)

			current, err := s.svc.Current(context.Background())
			s.Require().NoError(err)
			s.Nil(current)
		})
	}
}

func TestNew(t *testing.T) {
	_, err := account.New(nil, repository.NewMemory())
	require.Error(t, err)

	_, err = account.New(&fakeAuth{}, nil)
	require.Error(t, err)

	svc, err := account.New(&fakeAuth{}, repository.NewMemory())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
