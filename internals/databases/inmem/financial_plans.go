package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"letrus_backend/internals/features/finance/financial_plans/model"
)

type planKey struct {
	enrollmentID uuid.UUID
	month        string
	year         int
}

func keyOf(e *model.FinancialPlan) planKey {
	return planKey{e.FinancialPlanEnrollmentID, e.FinancialPlanMonth, e.FinancialPlanYear}
}

type FinancialPlans struct {
	mu   sync.Mutex
	rows map[planKey]model.FinancialPlan

	// InsertHook, when set, runs before every insert; a non-nil error is
	// returned instead of writing.
	InsertHook func(e *model.FinancialPlan) error
}

func NewFinancialPlans() *FinancialPlans {
	return &FinancialPlans{rows: map[planKey]model.FinancialPlan{}}
}

func clonePlan(e model.FinancialPlan) model.FinancialPlan {
	if e.FinancialPlanLinkedPaymentID != nil {
		id := *e.FinancialPlanLinkedPaymentID
		e.FinancialPlanLinkedPaymentID = &id
	}
	return e
}

func (s *FinancialPlans) InsertIfAbsent(_ context.Context, e *model.FinancialPlan) (bool, error) {
	s.mu.Lock()
	hook := s.InsertHook
	s.mu.Unlock()
	if hook != nil {
		if err := hook(e); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(e)
	if _, ok := s.rows[k]; ok {
		return false, nil
	}
	if e.FinancialPlanID == uuid.Nil {
		e.FinancialPlanID = uuid.New()
	}
	if e.FinancialPlanStatus == "" {
		e.FinancialPlanStatus = model.PlanPending
	}
	s.rows[k] = clonePlan(*e)
	return true, nil
}

func (s *FinancialPlans) ListByEnrollment(_ context.Context, enrollmentID uuid.UUID) ([]model.FinancialPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.FinancialPlan
	for _, r := range s.rows {
		if r.FinancialPlanEnrollmentID == enrollmentID {
			out = append(out, clonePlan(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinancialPlanYear != out[j].FinancialPlanYear {
			return out[i].FinancialPlanYear < out[j].FinancialPlanYear
		}
		return out[i].FinancialPlanMonthIndex < out[j].FinancialPlanMonthIndex
	})
	return out, nil
}

func (s *FinancialPlans) MarkOverdue(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, r := range s.rows {
		if r.FinancialPlanStatus == model.PlanPending && !r.FinancialPlanDueDate.After(cutoff) {
			r.FinancialPlanStatus = model.PlanOverdue
			s.rows[k] = r
			n++
		}
	}
	return n, nil
}

// Get returns the entry for (enrollment, month, year).
func (s *FinancialPlans) Get(enrollmentID uuid.UUID, month string, year int) (model.FinancialPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[planKey{enrollmentID, month, year}]
	return clonePlan(r), ok
}

// Put overwrites an entry; tests use it to stage paid or linked rows.
func (s *FinancialPlans) Put(e model.FinancialPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.FinancialPlanID == uuid.Nil {
		e.FinancialPlanID = uuid.New()
	}
	s.rows[keyOf(&e)] = clonePlan(e)
}

func (s *FinancialPlans) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *FinancialPlans) snapshot() map[planKey]model.FinancialPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[planKey]model.FinancialPlan, len(s.rows))
	for k, v := range s.rows {
		cp[k] = clonePlan(v)
	}
	return cp
}

func (s *FinancialPlans) restore(rows map[planKey]model.FinancialPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}
