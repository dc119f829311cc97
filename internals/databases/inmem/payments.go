package inmem

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/features/finance/payments/model"
	"letrus_backend/internals/features/finance/payments/repository"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/helpers/apperror"
)

// Payments implements the payment store. WithinTx serializes transactions
// and restores every table it touched when fn fails.
type Payments struct {
	txMu sync.Mutex

	mu       sync.Mutex
	payments map[uuid.UUID]model.Payment
	receipts map[uuid.UUID]model.PaymentReceipt

	plans       *FinancialPlans
	enrollments *Enrollments
	fail        failures
}

func NewPayments(plans *FinancialPlans, enrollments *Enrollments) *Payments {
	return &Payments{
		payments:    map[uuid.UUID]model.Payment{},
		receipts:    map[uuid.UUID]model.PaymentReceipt{},
		plans:       plans,
		enrollments: enrollments,
	}
}

// FailOn makes op ("create_payment", "create_receipt", "link") return fn's error.
func (s *Payments) FailOn(op string, fn func() error) { s.fail.set(op, fn) }

func (s *Payments) WithinTx(ctx context.Context, fn func(tx repository.TxRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	plans := s.plans.snapshot()
	s.mu.Lock()
	payments := make(map[uuid.UUID]model.Payment, len(s.payments))
	for k, v := range s.payments {
		payments[k] = v
	}
	receipts := make(map[uuid.UUID]model.PaymentReceipt, len(s.receipts))
	for k, v := range s.receipts {
		receipts[k] = v
	}
	s.mu.Unlock()

	if err := fn(&paymentTx{s: s}); err != nil {
		s.plans.restore(plans)
		s.mu.Lock()
		s.payments, s.receipts = payments, receipts
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Payments) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, *model.PaymentReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, nil, apperror.ErrNotFound.With("payment %s not found", id)
	}
	for _, rc := range s.receipts {
		if rc.PaymentReceiptPaymentID == id {
			rc := rc
			return &p, &rc, nil
		}
	}
	return &p, nil, nil
}

func (s *Payments) List(_ context.Context, f repository.Filter, limit, offset int) ([]model.Payment, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Payment
	for _, p := range s.payments {
		switch {
		case p.PaymentCenterID != f.CenterID,
			f.EnrollmentID != nil && p.PaymentEnrollmentID != *f.EnrollmentID,
			f.From != nil && p.PaymentDate.Before(*f.From),
			f.To != nil && p.PaymentDate.After(*f.To):
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return page(out, limit, offset), int64(len(out)), nil
}

func (s *Payments) ListUnlinkedPaid(_ context.Context, afterID uuid.UUID, limit int) ([]model.Payment, error) {
	linked := map[uuid.UUID]bool{}
	for _, e := range s.plans.snapshot() {
		if e.FinancialPlanLinkedPaymentID != nil {
			linked[*e.FinancialPlanLinkedPaymentID] = true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Payment
	for _, p := range s.payments {
		if p.PaymentStatus == model.PaymentPaid && p.PaymentMonthReference != "" && !linked[p.PaymentID] &&
			bytes.Compare(p.PaymentID[:], afterID[:]) > 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].PaymentID[:], out[j].PaymentID[:]) < 0 })
	return page(out, limit, 0), nil
}

// Seed stores a payment directly, as a legacy import would.
func (s *Payments) Seed(p model.Payment) model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	s.payments[p.PaymentID] = p
	return p
}

// Counts returns the number of stored payments and receipts.
func (s *Payments) Counts() (payments, receipts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments), len(s.receipts)
}

type paymentTx struct {
	s *Payments
}

func (t *paymentTx) FindEnrollment(ctx context.Context, id uuid.UUID) (*enrollModel.Enrollment, error) {
	return t.s.enrollments.FindByID(ctx, id)
}

func (t *paymentTx) CreatePayment(_ context.Context, p *model.Payment) error {
	if err := t.s.fail.check("create_payment"); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	if _, ok := t.s.payments[p.PaymentID]; ok {
		return apperror.ErrConflict.With("payment %s already exists", p.PaymentID)
	}
	t.s.payments[p.PaymentID] = *p
	return nil
}

func (t *paymentTx) CreateReceipt(_ context.Context, rc *model.PaymentReceipt) error {
	if err := t.s.fail.check("create_receipt"); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, r := range t.s.receipts {
		if r.PaymentReceiptNumber == rc.PaymentReceiptNumber || r.PaymentReceiptPaymentID == rc.PaymentReceiptPaymentID {
			return apperror.ErrConflict.With("receipt %s already exists", rc.PaymentReceiptNumber)
		}
	}
	if rc.PaymentReceiptID == uuid.Nil {
		rc.PaymentReceiptID = uuid.New()
	}
	t.s.receipts[rc.PaymentReceiptID] = *rc
	return nil
}

func (t *paymentTx) LockPlanEntry(_ context.Context, enrollmentID uuid.UUID, month string, year int) (*fpModel.FinancialPlan, error) {
	e, ok := t.s.plans.Get(enrollmentID, month, year)
	if !ok {
		return nil, apperror.ErrPlanEntryMissing.With("no plan entry for %s %d", month, year)
	}
	return &e, nil
}

func (t *paymentTx) LinkPlanEntry(_ context.Context, entryID, paymentID uuid.UUID) (bool, error) {
	if err := t.s.fail.check("link"); err != nil {
		return false, err
	}
	p := t.s.plans
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, e := range p.rows {
		if e.FinancialPlanID != entryID {
			continue
		}
		if e.FinancialPlanLinkedPaymentID != nil || !e.FinancialPlanStatus.Payable() {
			return false, nil
		}
		id := paymentID
		e.FinancialPlanStatus = fpModel.PlanPaid
		e.FinancialPlanLinkedPaymentID = &id
		p.rows[k] = e
		return true, nil
	}
	return false, nil
}

func (t *paymentTx) InsertPlanEntry(_ context.Context, e *fpModel.FinancialPlan) error {
	p := t.s.plans
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.rows[keyOf(e)]; ok {
		return apperror.ErrConflict.With("plan entry %s %d already exists", e.FinancialPlanMonth, e.FinancialPlanYear)
	}
	if e.FinancialPlanID == uuid.Nil {
		e.FinancialPlanID = uuid.New()
	}
	p.rows[keyOf(e)] = clonePlan(*e)
	return nil
}
