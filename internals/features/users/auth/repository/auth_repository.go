package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"letrus_backend/internals/databases/dberr"
	authModel "letrus_backend/internals/features/users/auth/model"
	userModel "letrus_backend/internals/features/users/user/model"
	"letrus_backend/internals/helpers/apperror"
)

type Repository interface {
	CreateUser(ctx context.Context, u *userModel.User) error
	FindUserByUsername(ctx context.Context, username string) (*userModel.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*userModel.User, error)

	// CreateOTP marks earlier pending codes of the user used, then stores o.
	CreateOTP(ctx context.Context, o *authModel.OTP) error
	LatestPendingOTP(ctx context.Context, userID uuid.UUID) (*authModel.OTP, error)
	MarkOTPUsed(ctx context.Context, id uuid.UUID) error

	BlacklistToken(ctx context.Context, hash string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, hash string, now time.Time) (bool, error)
	// PurgeBlacklist hard-deletes up to limit rows that expired before before.
	PurgeBlacklist(ctx context.Context, before time.Time, limit int) (int64, error)
	// PurgeOTPs hard-deletes up to limit codes that expired before before.
	PurgeOTPs(ctx context.Context, before time.Time, limit int) (int64, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) CreateUser(ctx context.Context, u *userModel.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	if dberr.IsUniqueViolation(err) {
		return apperror.ErrConflict.With("username %s is taken", u.UserName)
	}
	return dberr.Translate(err, nil)
}

func (r *GormRepository) FindUserByUsername(ctx context.Context, username string) (*userModel.User, error) {
	var u userModel.User
	err := r.DB.WithContext(ctx).
		Where("user_name = ?", userModel.NormalizeUsername(username)).
		Take(&u).Error
	if err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("user %s not found", username))
	}
	return &u, nil
}

func (r *GormRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
	var u userModel.User
	if err := r.DB.WithContext(ctx).Where("user_id = ?", id).Take(&u).Error; err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("user %s not found", id))
	}
	return &u, nil
}

func (r *GormRepository) CreateOTP(ctx context.Context, o *authModel.OTP) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&authModel.OTP{}).
			Where("otp_user_id = ? AND otp_status = ?", o.OTPUserID, authModel.OTPPending).
			Update("otp_status", authModel.OTPUsed).Error; err != nil {
			return err
		}
		return tx.Create(o).Error
	})
	return dberr.Translate(err, nil)
}

func (r *GormRepository) LatestPendingOTP(ctx context.Context, userID uuid.UUID) (*authModel.OTP, error) {
	var o authModel.OTP
	err := r.DB.WithContext(ctx).
		Where("otp_user_id = ? AND otp_status = ?", userID, authModel.OTPPending).
		Order("otp_created_at DESC").
		Take(&o).Error
	if err != nil {
		return nil, dberr.Translate(err, apperror.ErrInvalidOTP)
	}
	return &o, nil
}

func (r *GormRepository) MarkOTPUsed(ctx context.Context, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Model(&authModel.OTP{}).
		Where("otp_id = ?", id).
		Update("otp_status", authModel.OTPUsed).Error
	return dberr.Translate(err, nil)
}

func (r *GormRepository) BlacklistToken(ctx context.Context, hash string, expiresAt time.Time) error {
	row := authModel.TokenBlacklist{TokenBlacklistHash: hash, TokenBlacklistExpiresAt: expiresAt}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_blacklist_hash"}},
			DoUpdates: clause.Assignments(map[string]any{"token_blacklist_expires_at": expiresAt}),
		}).
		Create(&row).Error
	return dberr.Translate(err, nil)
}

func (r *GormRepository) IsBlacklisted(ctx context.Context, hash string, now time.Time) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&authModel.TokenBlacklist{}).
		Where("token_blacklist_hash = ? AND token_blacklist_expires_at > ?", hash, now).
		Count(&n).Error
	return n > 0, dberr.Translate(err, nil)
}

func (r *GormRepository) PurgeBlacklist(ctx context.Context, before time.Time, limit int) (int64, error) {
	res := r.DB.WithContext(ctx).Exec(`
		DELETE FROM token_blacklist
		WHERE token_blacklist_id IN (
		  SELECT token_blacklist_id FROM token_blacklist
		  WHERE token_blacklist_expires_at < ?
		  ORDER BY token_blacklist_expires_at
		  LIMIT ?
		)`, before, limit)
	return res.RowsAffected, dberr.Translate(res.Error, nil)
}

func (r *GormRepository) PurgeOTPs(ctx context.Context, before time.Time, limit int) (int64, error) {
	res := r.DB.WithContext(ctx).Exec(`
		DELETE FROM otps
		WHERE otp_id IN (
		  SELECT otp_id FROM otps
		  WHERE otp_expires_at < ?
		  LIMIT ?
		)`, before, limit)
	return res.RowsAffected, dberr.Translate(res.Error, nil)
}
