package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	authModel "letrus_backend/internals/features/users/auth/model"
	"letrus_backend/internals/features/users/auth/repository"
	userModel "letrus_backend/internals/features/users/user/model"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
	"letrus_backend/internals/helpers/dbtime"
)

type Options struct {
	Secret string
	TTL    time.Duration
	OTPTTL time.Duration
}

type Service struct {
	repo   repository.Repository
	sender OTPSender
	opts   Options
	clock  dbtime.Clock
	log    *logrus.Entry

	// BcryptCost is lowered in tests.
	BcryptCost int
}

func New(repo repository.Repository, sender OTPSender, opts Options, clock dbtime.Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = dbtime.SystemClock
	}
	return &Service{
		repo:       repo,
		sender:     sender,
		opts:       opts,
		clock:      clock,
		log:        log.WithField("component", "auth"),
		BcryptCost: bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Username string
	Password string
	Role     userModel.Role
	CenterID uuid.UUID
	Phone    *string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*userModel.User, error) {
	fields := map[string][]string{}
	name := userModel.NormalizeUsername(in.Username)
	if len(name) < 3 {
		fields["user_name"] = []string{"min=3"}
	}
	if len(in.Password) < 8 {
		fields["password"] = []string{"min=8"}
	}
	if in.Role == "" {
		in.Role = userModel.RoleSecretary
	}
	if !in.Role.Valid() {
		fields["role"] = []string{"oneof=admin secretary teacher"}
	}
	if in.CenterID == uuid.Nil {
		fields["center_id"] = []string{"required"}
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &userModel.User{
		UserID:       uuid.New(),
		UserName:     name,
		UserPassword: string(hash),
		UserRole:     in.Role,
		UserCenterID: in.CenterID,
		UserPhone:    in.Phone,
		UserIsActive: true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.UserID, "center_id": u.UserCenterID}).Info("user registered")
	return u, nil
}

type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *userModel.User `json:"user"`
}

var errBadCredentials = apperror.ErrUnauthorized.With("invalid username or password")

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.UserPassword), []byte(password)) != nil {
		return nil, errBadCredentials
	}
	if !u.UserIsActive {
		return nil, apperror.ErrForbidden.With("account disabled")
	}

	now := s.clock()
	exp := now.Add(s.opts.TTL)
	claims := helperAuth.Claims{
		UserID:   u.UserID,
		CenterID: u.UserCenterID,
		Role:     string(u.UserRole),
		Username: u.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: exp, User: u}, nil
}

// Logout blacklists raw until its own expiry. Unparseable tokens are
// blacklisted for one TTL.
func (s *Service) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	exp := s.clock().Add(s.opts.TTL)
	claims := &helperAuth.Claims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.opts.Secret), nil
	}); err == nil && claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return s.repo.BlacklistToken(ctx, helperAuth.HashToken(raw, s.opts.Secret), exp)
}

func (s *Service) IsRevoked(ctx context.Context, raw string) (bool, error) {
	return s.repo.IsBlacklisted(ctx, helperAuth.HashToken(raw, s.opts.Secret), s.clock())
}

type PublicUser struct {
	UserID   uuid.UUID      `json:"user_id"`
	UserName string         `json:"user_name"`
	UserRole userModel.Role `json:"user_role"`
	HasPhone bool           `json:"has_phone"`
}

// FindUser is the first step of password recovery.
func (s *Service) FindUser(ctx context.Context, username string) (*PublicUser, error) {
	u, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &PublicUser{
		UserID:   u.UserID,
		UserName: u.UserName,
		UserRole: u.UserRole,
		HasPhone: u.UserPhone != nil && *u.UserPhone != "",
	}, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*userModel.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *Service) IssueOTP(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	code, err := generateCode()
	if err != nil {
		return time.Time{}, fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.BcryptCost)
	if err != nil {
		return time.Time{}, fmt.Errorf("hash otp: %w", err)
	}
	o := &authModel.OTP{
		OTPID:        uuid.New(),
		OTPUserID:    u.UserID,
		OTPCodeHash:  string(hash),
		OTPStatus:    authModel.OTPPending,
		OTPExpiresAt: s.clock().Add(s.opts.OTPTTL),
	}
	if err := s.repo.CreateOTP(ctx, o); err != nil {
		return time.Time{}, err
	}
	if err := s.sender.Send(ctx, u, code); err != nil {
		return time.Time{}, fmt.Errorf("send otp: %w", err)
	}
	return o.OTPExpiresAt, nil
}

// VerifyOTP consumes the latest pending code. A wrong code leaves it pending.
func (s *Service) VerifyOTP(ctx context.Context, userID uuid.UUID, code string) error {
	o, err := s.repo.LatestPendingOTP(ctx, userID)
	if err != nil {
		return err
	}
	if !s.clock().Before(o.OTPExpiresAt) {
		return apperror.ErrInvalidOTP.With("code expired")
	}
	if bcrypt.CompareHashAndPassword([]byte(o.OTPCodeHash), []byte(strings.TrimSpace(code))) != nil {
		return apperror.ErrInvalidOTP
	}
	return s.repo.MarkOTPUsed(ctx, o.OTPID)
}
