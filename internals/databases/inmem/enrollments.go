package inmem

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/enrollments/repository"
	"letrus_backend/internals/helpers/apperror"
)

type Enrollments struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Enrollment
	fail failures
}

func NewEnrollments() *Enrollments { return &Enrollments{rows: map[uuid.UUID]model.Enrollment{}} }

// FailOn makes op ("create", "delete", "mark_ready") return fn's error.
func (s *Enrollments) FailOn(op string, fn func() error) { s.fail.set(op, fn) }

func (s *Enrollments) Create(_ context.Context, m *model.Enrollment) error {
	if err := s.fail.check("create"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.EnrollmentID == uuid.Nil {
		m.EnrollmentID = uuid.New()
	}
	if m.EnrollmentStatus == "" {
		m.EnrollmentStatus = model.EnrollmentEnrolled
	}
	s.rows[m.EnrollmentID] = *m
	return nil
}

func (s *Enrollments) FindByID(_ context.Context, id uuid.UUID) (*model.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, apperror.ErrNotFound.With("enrollment %s not found", id)
	}
	return &r, nil
}

func (s *Enrollments) Delete(_ context.Context, id uuid.UUID) error {
	if err := s.fail.check("delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *Enrollments) MarkFinancialPlanReady(_ context.Context, id, feeID uuid.UUID) error {
	if err := s.fail.check("mark_ready"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return apperror.ErrNotFound.With("enrollment %s not found", id)
	}
	if r.EnrollmentTuitionFeeID == nil {
		f := feeID
		r.EnrollmentTuitionFeeID = &f
	}
	r.EnrollmentHasFinancialPlan = true
	s.rows[id] = r
	return nil
}

func (s *Enrollments) UpdateStatus(_ context.Context, id uuid.UUID, status model.EnrollmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return apperror.ErrNotFound.With("enrollment %s not found", id)
	}
	r.EnrollmentStatus = status
	s.rows[id] = r
	return nil
}

func (s *Enrollments) List(_ context.Context, f repository.Filter, limit, offset int) ([]model.Enrollment, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Enrollment
	for _, r := range s.rows {
		switch {
		case r.EnrollmentCenterID != f.CenterID,
			f.StudentID != nil && r.EnrollmentStudentID != *f.StudentID,
			f.ClassID != nil && r.EnrollmentClassID != *f.ClassID,
			f.Status != nil && r.EnrollmentStatus != *f.Status,
			f.HasFinancialPlan != nil && r.EnrollmentHasFinancialPlan != *f.HasFinancialPlan:
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentDate.After(out[j].EnrollmentDate) })
	return page(out, limit, offset), int64(len(out)), nil
}

func (s *Enrollments) ListWithoutPlan(_ context.Context, afterID uuid.UUID, limit int) ([]model.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Enrollment
	for _, r := range s.rows {
		if !r.EnrollmentHasFinancialPlan && bytes.Compare(r.EnrollmentID[:], afterID[:]) > 0 {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].EnrollmentID[:], out[j].EnrollmentID[:]) < 0 })
	return page(out, limit, 0), nil
}

// Len is the number of stored enrollments.
func (s *Enrollments) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
