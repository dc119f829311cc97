package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"letrus_backend/internals/helpers/apperror"
)

type ReceiptNumberer interface {
	Next(ctx context.Context, centerID uuid.UUID) (string, error)
}

// NewReceiptNumberer uses a per-center Redis counter when rdb is set and a
// random suffix otherwise. Both give P<prefix>-<suffix>.
func NewReceiptNumberer(rdb *redis.Client) ReceiptNumberer {
	if rdb == nil {
		return RandomReceipts{}
	}
	return &SequenceReceipts{rdb: rdb}
}

func centerPrefix(centerID uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(centerID.String(), "-", "")[:4])
}

type SequenceReceipts struct {
	rdb *redis.Client
}

func (s *SequenceReceipts) Next(ctx context.Context, centerID uuid.UUID) (string, error) {
	n, err := s.rdb.Incr(ctx, "letrus:receipt_seq:"+centerID.String()).Result()
	if err != nil {
		return "", apperror.ErrUnavailable.With("receipt sequence unavailable").Wrap(err)
	}
	return fmt.Sprintf("P%s-%06d", centerPrefix(centerID), n), nil
}

var receiptEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type RandomReceipts struct{}

func (RandomReceipts) Next(_ context.Context, centerID uuid.UUID) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("P%s-%s", centerPrefix(centerID), receiptEncoding.EncodeToString(b[:])), nil
}
