package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"letrus_backend/internals/databases/inmem"
	userModel "letrus_backend/internals/features/users/user/model"
	"letrus_backend/internals/helpers/apperror"
)

type captureSender struct {
	mu    sync.Mutex
	codes []string
}

func (s *captureSender) Send(_ context.Context, _ *userModel.User, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return nil
}

func (s *captureSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[len(s.codes)-1]
}

type authEnv struct {
	svc    *Service
	repo   *inmem.Auth
	sender *captureSender
	now    time.Time
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	env := &authEnv{
		repo:   inmem.NewAuth(),
		sender: &captureSender{},
		now:    time.Now(),
	}
	env.svc = New(env.repo, env.sender, Options{
		Secret: "test-secret",
		TTL:    time.Hour,
		OTPTTL: 5 * time.Minute,
	}, func() time.Time { return env.now }, log)
	env.svc.BcryptCost = bcrypt.MinCost
	return env
}

func (e *authEnv) register(t *testing.T, name string) *userModel.User {
	t.Helper()
	phone := "923000000"
	u, err := e.svc.Register(context.Background(), RegisterInput{
		Username: name,
		Password: "segredo123",
		CenterID: uuid.New(),
		Phone:    &phone,
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	env := newAuthEnv(t)
	u := env.register(t, "  Maria.Secretaria ")

	assert.Equal(t, "maria.secretaria", u.UserName)
	assert.Equal(t, userModel.RoleSecretary, u.UserRole)
	assert.NotEqual(t, "segredo123", u.UserPassword)

	_, err := env.svc.Register(context.Background(), RegisterInput{
		Username: "MARIA.SECRETARIA",
		Password: "outrasenha1",
		CenterID: uuid.New(),
	})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestRegister_Validation(t *testing.T) {
	env := newAuthEnv(t)
	_, err := env.svc.Register(context.Background(), RegisterInput{
		Username: "ab",
		Password: "curta",
		Role:     "owner",
	})
	var ae *apperror.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperror.CodeValidation, ae.Code)
	assert.Contains(t, ae.Fields, "user_name")
	assert.Contains(t, ae.Fields, "password")
	assert.Contains(t, ae.Fields, "role")
	assert.Contains(t, ae.Fields, "center_id")
}

func TestLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)
	u := env.register(t, "joao")

	_, err := env.svc.Login(ctx, "joao", "errada123")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	_, err = env.svc.Login(ctx, "ninguem", "segredo123")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	sess, err := env.svc.Login(ctx, " JOAO ", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, sess.User.UserID)
	assert.WithinDuration(t, env.now.Add(time.Hour), sess.ExpiresAt, time.Second)

	revoked, err := env.svc.IsRevoked(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, env.svc.Logout(ctx, sess.Token))
	revoked, err = env.svc.IsRevoked(ctx, sess.Token)
	require.NoError(t, err)
	assert.True(t, revoked)

	// blacklist rows expire with the token
	env.now = env.now.Add(2 * time.Hour)
	revoked, err = env.svc.IsRevoked(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLogin_DisabledAccount(t *testing.T) {
	env := newAuthEnv(t)
	u := env.register(t, "inativo")
	env.repo.SetActive(u.UserID, false)

	_, err := env.svc.Login(context.Background(), "inativo", "segredo123")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestOTP(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)
	u := env.register(t, "ana")

	pub, err := env.svc.FindUser(ctx, "ANA")
	require.NoError(t, err)
	assert.True(t, pub.HasPhone)

	exp, err := env.svc.IssueOTP(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, env.now.Add(5*time.Minute), exp)
	first := env.sender.last()
	assert.Len(t, first, 6)

	_, err = env.svc.IssueOTP(ctx, u.UserID)
	require.NoError(t, err)
	second := env.sender.last()

	if first != second {
		// reissuing retires the earlier code
		assert.True(t, errors.Is(env.svc.VerifyOTP(ctx, u.UserID, first), apperror.ErrInvalidOTP))
	}
	require.NoError(t, env.svc.VerifyOTP(ctx, u.UserID, second))
	assert.True(t, errors.Is(env.svc.VerifyOTP(ctx, u.UserID, second), apperror.ErrInvalidOTP), "codes are single use")
}

func TestOTP_Expired(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv(t)
	u := env.register(t, "pedro")

	_, err := env.svc.IssueOTP(ctx, u.UserID)
	require.NoError(t, err)
	env.now = env.now.Add(5 * time.Minute)

	err = env.svc.VerifyOTP(ctx, u.UserID, env.sender.last())
	assert.True(t, errors.Is(err, apperror.ErrInvalidOTP))
}

func TestIssueOTP_UnknownUser(t *testing.T) {
	env := newAuthEnv(t)
	_, err := env.svc.IssueOTP(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
