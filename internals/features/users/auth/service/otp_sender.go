package service

import (
	"context"

	"github.com/sirupsen/logrus"

	userModel "letrus_backend/internals/features/users/user/model"
)

// OTPSender delivers a one-time code to the user, e.g. by SMS.
type OTPSender interface {
	Send(ctx context.Context, u *userModel.User, code string) error
}

// LogSender writes the code to the log. Use it in development only.
type LogSender struct {
	Log *logrus.Logger
}

func (s LogSender) Send(_ context.Context, u *userModel.User, code string) error {
	s.Log.WithFields(logrus.Fields{
		"user_id":   u.UserID,
		"user_name": u.UserName,
		"code":      code,
	}).Info("otp issued")
	return nil
}
