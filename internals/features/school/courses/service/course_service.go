package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	feeService "letrus_backend/internals/features/finance/tuition_fees/service"
	"letrus_backend/internals/features/school/courses/model"
	"letrus_backend/internals/features/school/courses/repository"
	"letrus_backend/internals/helpers/apperror"
)

type Service struct {
	repo   repository.Repository
	ledger *feeService.Ledger
	log    *logrus.Entry
}

func New(repo repository.Repository, ledger *feeService.Ledger, log *logrus.Logger) *Service {
	return &Service{repo: repo, ledger: ledger, log: log.WithField("component", "courses")}
}

// CourseWithFee is a course and the price list in force now.
type CourseWithFee struct {
	model.Course
	ActiveFee *feeModel.TuitionFee `json:"active_fee"`
}

type CreateInput struct {
	CenterID    uuid.UUID
	Name        string
	Description *string
	Fee         feeModel.FeeFields
}

type UpdateInput struct {
	Name        *string
	Description *string
	// Fee, when set, publishes a new fee version.
	Fee *feeModel.FeeFields
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*CourseWithFee, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case in.CenterID == uuid.Nil:
		return nil, apperror.Validation(map[string][]string{"center_id": {"required"}})
	case name == "":
		return nil, apperror.Validation(map[string][]string{"name": {"required"}})
	}
	c := &model.Course{
		CourseID:          uuid.New(),
		CourseCenterID:    in.CenterID,
		CourseName:        name,
		CourseDescription: in.Description,
		CourseStatus:      model.CourseActive,
	}
	fee, err := s.ledger.NewVersion(c.CourseID, in.Fee)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateWithFee(ctx, c, fee); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"course_id": c.CourseID, "fee_id": fee.TuitionFeeID}).Info("course created")
	return &CourseWithFee{Course: *c, ActiveFee: fee}, nil
}

// Get returns the course of centerID with its active fee. A course without
// an active version is returned with ActiveFee nil.
func (s *Service) Get(ctx context.Context, centerID, id uuid.UUID) (*CourseWithFee, error) {
	c, err := s.find(ctx, centerID, id)
	if err != nil {
		return nil, err
	}
	out := &CourseWithFee{Course: *c}
	fee, err := s.ledger.GetActiveFee(ctx, id)
	switch {
	case err == nil:
		out.ActiveFee = fee
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, centerID, id uuid.UUID) (*model.Course, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CourseCenterID != centerID {
		return nil, apperror.ErrNotFound.With("course %s not found", id)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, centerID uuid.UUID, status *model.CourseStatus, limit, offset int) ([]model.Course, int64, error) {
	return s.repo.List(ctx, centerID, status, limit, offset)
}

func (s *Service) Update(ctx context.Context, centerID, id uuid.UUID, in UpdateInput) (*CourseWithFee, error) {
	c, err := s.find(ctx, centerID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if c.CourseName = strings.TrimSpace(*in.Name); c.CourseName == "" {
			return nil, apperror.Validation(map[string][]string{"name": {"required"}})
		}
	}
	if in.Description != nil {
		c.CourseDescription = in.Description
	}
	if in.Name != nil || in.Description != nil {
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, err
		}
	}
	if in.Fee != nil {
		if _, err := s.ledger.ReplaceFee(ctx, id, *in.Fee); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, centerID, id)
}

// Deactivate hides the course from new classes. Existing plans keep the
// fee they were bound to.
func (s *Service) Deactivate(ctx context.Context, centerID, id uuid.UUID) (*model.Course, error) {
	c, err := s.find(ctx, centerID, id)
	if err != nil {
		return nil, err
	}
	c.CourseStatus = model.CourseInactive
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.log.WithField("course_id", id).Info("course deactivated")
	return c, nil
}

func (s *Service) FeeHistory(ctx context.Context, centerID, id uuid.UUID) ([]feeModel.TuitionFee, error) {
	if _, err := s.find(ctx, centerID, id); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, id)
}
