// Package seeds holds the one-shot data jobs run from the CLI: generating
// plans for enrollments that predate the generator and linking historical
// payments to plan entries.
package seeds

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	payModel "letrus_backend/internals/features/finance/payments/model"
	payService "letrus_backend/internals/features/finance/payments/service"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	enrollService "letrus_backend/internals/features/school/enrollments/service"
)

const defaultBatch = 200

type PendingEnrollments interface {
	ListWithoutPlan(ctx context.Context, afterID uuid.UUID, limit int) ([]enrollModel.Enrollment, error)
}

type PlanRegenerator interface {
	RegeneratePlan(ctx context.Context, centerID, id uuid.UUID) (*enrollService.Intake, error)
}

type PlanReport struct {
	Scanned int `json:"scanned"`
	Ready   int `json:"ready"`
	Failed  int `json:"failed"`
}

// BackfillPlans walks every enrollment without a plan and regenerates it.
// One failing enrollment does not stop the run.
func BackfillPlans(ctx context.Context, src PendingEnrollments, gen PlanRegenerator, batch int, log *logrus.Logger) (PlanReport, error) {
	if batch <= 0 {
		batch = defaultBatch
	}
	entry := log.WithField("job", "backfill_plans")

	var rep PlanReport
	after := uuid.Nil
	for {
		rows, err := src.ListWithoutPlan(ctx, after, batch)
		if err != nil {
			return rep, err
		}
		if len(rows) == 0 {
			break
		}
		for i := range rows {
			e := rows[i]
			rep.Scanned++
			if _, err := gen.RegeneratePlan(ctx, e.EnrollmentCenterID, e.EnrollmentID); err != nil {
				rep.Failed++
				entry.WithError(err).WithField("enrollment_id", e.EnrollmentID).Warn("plan not generated")
				continue
			}
			rep.Ready++
		}
		after = rows[len(rows)-1].EnrollmentID
		if err := ctx.Err(); err != nil {
			return rep, err
		}
	}

	entry.WithFields(logrus.Fields{
		"scanned": rep.Scanned,
		"ready":   rep.Ready,
		"failed":  rep.Failed,
	}).Info("backfill finished")
	return rep, nil
}

type UnlinkedPayments interface {
	ListUnlinkedPaid(ctx context.Context, afterID uuid.UUID, limit int) ([]payModel.Payment, error)
}

type PaymentLinker interface {
	LinkExisting(ctx context.Context, p *payModel.Payment, policy payService.MissingEntryPolicy) (payService.LinkOutcome, error)
}

type LinkReport struct {
	Scanned      int `json:"scanned"`
	Linked       int `json:"linked"`
	Materialized int `json:"materialized"`
	AlreadyDone  int `json:"already_done"`
	Failed       int `json:"failed"`
}

// LinkPayments attaches every paid, unlinked payment to its plan entry,
// creating the entry through policy when it is missing.
func LinkPayments(ctx context.Context, src UnlinkedPayments, linker PaymentLinker, policy payService.MissingEntryPolicy, batch int, log *logrus.Logger) (LinkReport, error) {
	if batch <= 0 {
		batch = defaultBatch
	}
	entry := log.WithField("job", "link_payments")

	var rep LinkReport
	after := uuid.Nil
	for {
		rows, err := src.ListUnlinkedPaid(ctx, after, batch)
		if err != nil {
			return rep, err
		}
		if len(rows) == 0 {
			break
		}
		for i := range rows {
			p := rows[i]
			rep.Scanned++
			outcome, err := linker.LinkExisting(ctx, &p, policy)
			if err != nil {
				rep.Failed++
				entry.WithError(err).WithFields(logrus.Fields{
					"payment_id": p.PaymentID,
					"month":      p.PaymentMonthReference,
					"year":       p.PaymentYearReference,
				}).Warn("payment not linked")
				continue
			}
			switch outcome {
			case payService.LinkLinked:
				rep.Linked++
			case payService.LinkMaterialized:
				rep.Materialized++
			case payService.LinkAlreadyDone:
				rep.AlreadyDone++
			}
		}
		after = rows[len(rows)-1].PaymentID
		if err := ctx.Err(); err != nil {
			return rep, err
		}
	}

	entry.WithFields(logrus.Fields{
		"scanned":      rep.Scanned,
		"linked":       rep.Linked,
		"materialized": rep.Materialized,
		"already_done": rep.AlreadyDone,
		"failed":       rep.Failed,
	}).Info("payment linking finished")
	return rep, nil
}
