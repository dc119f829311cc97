package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	authModel "letrus_backend/internals/features/users/auth/model"
	userModel "letrus_backend/internals/features/users/user/model"
	"letrus_backend/internals/helpers/apperror"
)

type blacklisted struct {
	expiresAt time.Time
}

type Auth struct {
	mu        sync.Mutex
	users     map[uuid.UUID]userModel.User
	otps      []authModel.OTP
	blacklist map[string]blacklisted
	seq       time.Duration
}

func NewAuth() *Auth {
	return &Auth{users: map[uuid.UUID]userModel.User{}, blacklist: map[string]blacklisted{}}
}

func (s *Auth) CreateUser(_ context.Context, u *userModel.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if x.UserName == u.UserName {
			return apperror.ErrConflict.With("username %s is taken", u.UserName)
		}
	}
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	s.users[u.UserID] = *u
	return nil
}

func (s *Auth) FindUserByUsername(_ context.Context, username string) (*userModel.User, error) {
	name := userModel.NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserName == name {
			cp := u
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound.With("user %s not found", username)
}

func (s *Auth) FindUserByID(_ context.Context, id uuid.UUID) (*userModel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperror.ErrNotFound.With("user %s not found", id)
	}
	return &u, nil
}

// SetActive flips a user's active flag.
func (s *Auth) SetActive(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.UserIsActive = active
	s.users[id] = u
}

func (s *Auth) CreateOTP(_ context.Context, o *authModel.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.otps {
		if s.otps[i].OTPUserID == o.OTPUserID && s.otps[i].OTPStatus == authModel.OTPPending {
			s.otps[i].OTPStatus = authModel.OTPUsed
		}
	}
	if o.OTPID == uuid.Nil {
		o.OTPID = uuid.New()
	}
	// keeps creation order stable when the test clock does not move
	s.seq += time.Nanosecond
	o.OTPCreatedAt = time.Unix(0, 0).Add(s.seq)
	s.otps = append(s.otps, *o)
	return nil
}

func (s *Auth) LatestPendingOTP(_ context.Context, userID uuid.UUID) (*authModel.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []authModel.OTP
	for _, o := range s.otps {
		if o.OTPUserID == userID && o.OTPStatus == authModel.OTPPending {
			pending = append(pending, o)
		}
	}
	if len(pending) == 0 {
		return nil, apperror.ErrInvalidOTP
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].OTPCreatedAt.After(pending[j].OTPCreatedAt) })
	return &pending[0], nil
}

func (s *Auth) MarkOTPUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.otps {
		if s.otps[i].OTPID == id {
			s.otps[i].OTPStatus = authModel.OTPUsed
		}
	}
	return nil
}

func (s *Auth) BlacklistToken(_ context.Context, hash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[hash] = blacklisted{expiresAt: expiresAt}
	return nil
}

func (s *Auth) IsBlacklisted(_ context.Context, hash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blacklist[hash]
	return ok && b.expiresAt.After(now), nil
}

func (s *Auth) PurgeBlacklist(_ context.Context, before time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, b := range s.blacklist {
		if limit > 0 && n >= int64(limit) {
			break
		}
		if b.expiresAt.Before(before) {
			delete(s.blacklist, k)
			n++
		}
	}
	return n, nil
}

func (s *Auth) PurgeOTPs(_ context.Context, before time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.otps[:0]
	var n int64
	for _, o := range s.otps {
		if o.OTPExpiresAt.Before(before) && (limit <= 0 || n < int64(limit)) {
			n++
			continue
		}
		kept = append(kept, o)
	}
	s.otps = kept
	return n, nil
}

func (s *Auth) OTPLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.otps)
}

func (s *Auth) BlacklistLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blacklist)
}
