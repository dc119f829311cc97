package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"letrus_backend/internals/features/finance/tuition_fees/model"
	"letrus_backend/internals/helpers/apperror"
)

type TuitionFees struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.TuitionFee
}

func NewTuitionFees() *TuitionFees {
	return &TuitionFees{rows: map[uuid.UUID]model.TuitionFee{}}
}

// Seed stores fee as is, bypassing the single-active rule.
func (s *TuitionFees) Seed(fee model.TuitionFee) model.TuitionFee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fee.TuitionFeeID == uuid.Nil {
		fee.TuitionFeeID = uuid.New()
	}
	if fee.TuitionFeeStatus == "" {
		fee.TuitionFeeStatus = model.TuitionFeeActive
	}
	s.rows[fee.TuitionFeeID] = fee
	return fee
}

func (s *TuitionFees) byCourse(courseID uuid.UUID) []model.TuitionFee {
	var out []model.TuitionFee
	for _, r := range s.rows {
		if r.TuitionFeeCourseID == courseID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TuitionFeeCreatedAt.After(out[j].TuitionFeeCreatedAt) })
	return out
}

func (s *TuitionFees) FindActive(_ context.Context, courseID uuid.UUID) (*model.TuitionFee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.byCourse(courseID) {
		if r.TuitionFeeStatus == model.TuitionFeeActive {
			return &r, nil
		}
	}
	return nil, apperror.ErrNotFound.With("course %s has no active tuition fee", courseID)
}

func (s *TuitionFees) FindLatestAsOf(_ context.Context, courseID uuid.UUID, asOf time.Time) (*model.TuitionFee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.byCourse(courseID) {
		if !r.TuitionFeeCreatedAt.After(asOf) {
			return &r, nil
		}
	}
	return nil, apperror.ErrNotFound.With("course %s has no tuition fee as of %s", courseID, asOf.Format(time.RFC3339))
}

func (s *TuitionFees) FindByID(_ context.Context, id uuid.UUID) (*model.TuitionFee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, apperror.ErrNotFound.With("tuition fee %s not found", id)
	}
	return &r, nil
}

func (s *TuitionFees) ListByCourse(_ context.Context, courseID uuid.UUID) ([]model.TuitionFee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byCourse(courseID), nil
}

func (s *TuitionFees) ReplaceActive(_ context.Context, fee *model.TuitionFee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rows {
		if r.TuitionFeeCourseID == fee.TuitionFeeCourseID && r.TuitionFeeStatus == model.TuitionFeeActive {
			r.TuitionFeeStatus = model.TuitionFeeInactive
			r.TuitionFeeUpdatedAt = fee.TuitionFeeCreatedAt
			s.rows[id] = r
		}
	}
	if fee.TuitionFeeID == uuid.Nil {
		fee.TuitionFeeID = uuid.New()
	}
	fee.TuitionFeeStatus = model.TuitionFeeActive
	s.rows[fee.TuitionFeeID] = *fee
	return nil
}

// ActiveCount is the number of active versions for courseID.
func (s *TuitionFees) ActiveCount(courseID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.TuitionFeeCourseID == courseID && r.TuitionFeeStatus == model.TuitionFeeActive {
			n++
		}
	}
	return n
}
