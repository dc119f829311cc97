package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	fpService "letrus_backend/internals/features/finance/financial_plans/service"
	"letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/enrollments/repository"
	studentModel "letrus_backend/internals/features/school/students/model"
	"letrus_backend/internals/helpers/apperror"
	"letrus_backend/internals/helpers/dbtime"
)

type PlanGenerator interface {
	Generate(ctx context.Context, e *model.Enrollment) (*fpService.Result, error)
}

type StudentLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*studentModel.Student, error)
}

type Service struct {
	repo     repository.Repository
	students StudentLookup
	plans    PlanGenerator
	clock    dbtime.Clock
	log      *logrus.Entry
}

func New(repo repository.Repository, students StudentLookup, plans PlanGenerator, clock dbtime.Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = dbtime.SystemClock
	}
	return &Service{
		repo:     repo,
		students: students,
		plans:    plans,
		clock:    clock,
		log:      log.WithField("component", "enrollment_intake"),
	}
}

type EnrollInput struct {
	StudentID      uuid.UUID
	ClassID        uuid.UUID
	CenterID       uuid.UUID
	UserID         uuid.UUID
	EnrollmentDate time.Time
	HasScholarship bool
	Documents      *model.Documents
}

// Intake is the stored enrollment plus what the plan run produced.
type Intake struct {
	Enrollment *model.Enrollment `json:"enrollment"`
	Plan       *fpService.Result `json:"financial_plan,omitempty"`
}

func (in EnrollInput) validate() error {
	errs := map[string][]string{}
	if in.StudentID == uuid.Nil {
		errs["student_id"] = []string{"required"}
	}
	if in.ClassID == uuid.Nil {
		errs["class_id"] = []string{"required"}
	}
	if in.CenterID == uuid.Nil {
		errs["center_id"] = []string{"required"}
	}
	if in.UserID == uuid.Nil {
		errs["user_id"] = []string{"required"}
	}
	if len(errs) > 0 {
		return apperror.Validation(errs)
	}
	return nil
}

// Enroll stores the enrollment and generates its financial plan.
//
// When the plan cannot start (no current year, class, course or fee) the
// enrollment is removed again and the typed error returned. When only some
// months failed the enrollment stays without a plan flag; the error is
// ErrPlanIncomplete and RegeneratePlan completes it later.
func (s *Service) Enroll(ctx context.Context, in EnrollInput) (*Intake, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	st, err := s.students.FindByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if st.StudentCenterID != in.CenterID {
		return nil, apperror.ErrNotFound.With("student %s not found in center", in.StudentID)
	}

	e := &model.Enrollment{
		EnrollmentID:             uuid.New(),
		EnrollmentStudentID:      in.StudentID,
		EnrollmentClassID:        in.ClassID,
		EnrollmentCenterID:       in.CenterID,
		EnrollmentUserID:         in.UserID,
		EnrollmentDate:           in.EnrollmentDate,
		EnrollmentStatus:         model.EnrollmentEnrolled,
		EnrollmentHasScholarship: in.HasScholarship,
	}
	if e.EnrollmentDate.IsZero() {
		e.EnrollmentDate = s.clock()
	}
	if in.Documents != nil {
		raw, err := sonic.Marshal(in.Documents)
		if err != nil {
			return nil, apperror.Validation(map[string][]string{"documents": {"invalid"}})
		}
		e.EnrollmentDocuments = datatypes.JSON(raw)
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{
		"enrollment_id": e.EnrollmentID,
		"center_id":     e.EnrollmentCenterID,
		"class_id":      e.EnrollmentClassID,
	})

	res, err := s.plans.Generate(ctx, e)
	if err != nil && res == nil {
		if derr := s.repo.Delete(context.WithoutCancel(ctx), e.EnrollmentID); derr != nil {
			log.WithError(derr).Error("enrollment rollback failed")
		}
		log.WithError(err).Warn("enrollment rejected")
		return nil, err
	}
	if err != nil {
		log.WithError(err).Warn("enrollment kept with incomplete financial plan")
		return &Intake{Enrollment: e, Plan: res}, err
	}

	if err := s.markReady(ctx, e, res); err != nil {
		return &Intake{Enrollment: e, Plan: res}, err
	}
	log.WithField("months", len(res.Months)).Info("student enrolled")
	return &Intake{Enrollment: e, Plan: res}, nil
}

// RegeneratePlan re-runs the idempotent generator for an enrollment of
// centerID and flags it ready once every month exists.
func (s *Service) RegeneratePlan(ctx context.Context, centerID, id uuid.UUID) (*Intake, error) {
	e, err := s.Get(ctx, centerID, id)
	if err != nil {
		return nil, err
	}
	res, err := s.plans.Generate(ctx, e)
	if err != nil {
		return &Intake{Enrollment: e, Plan: res}, err
	}
	if err := s.markReady(ctx, e, res); err != nil {
		return &Intake{Enrollment: e, Plan: res}, err
	}
	s.log.WithFields(logrus.Fields{
		"enrollment_id": e.EnrollmentID,
		"created":       res.Created,
		"skipped":       res.Skipped,
	}).Info("financial plan regenerated")
	return &Intake{Enrollment: e, Plan: res}, nil
}

func (s *Service) markReady(ctx context.Context, e *model.Enrollment, res *fpService.Result) error {
	if err := s.repo.MarkFinancialPlanReady(ctx, e.EnrollmentID, res.TuitionFee.TuitionFeeID); err != nil {
		s.log.WithError(err).WithField("enrollment_id", e.EnrollmentID).Error("could not flag financial plan ready")
		return err
	}
	if e.EnrollmentTuitionFeeID == nil {
		id := res.TuitionFee.TuitionFeeID
		e.EnrollmentTuitionFeeID = &id
	}
	e.EnrollmentHasFinancialPlan = true
	return nil
}

// Get returns the enrollment when it belongs to centerID.
func (s *Service) Get(ctx context.Context, centerID, id uuid.UUID) (*model.Enrollment, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.EnrollmentCenterID != centerID {
		return nil, apperror.ErrNotFound.With("enrollment %s not found", id)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, f repository.Filter, limit, offset int) ([]model.Enrollment, int64, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) ChangeStatus(ctx context.Context, centerID, id uuid.UUID, status model.EnrollmentStatus) (*model.Enrollment, error) {
	if !status.Valid() {
		return nil, apperror.Validation(map[string][]string{"status": {"oneof=enrolled completed dropped"}})
	}
	e, err := s.Get(ctx, centerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	e.EnrollmentStatus = status
	s.log.WithFields(logrus.Fields{"enrollment_id": id, "status": status}).Info("enrollment status changed")
	return e, nil
}
