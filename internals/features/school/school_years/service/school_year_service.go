package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"letrus_backend/internals/features/school/school_years/model"
	"letrus_backend/internals/features/school/school_years/repository"
	"letrus_backend/internals/helpers/apperror"
)

type Service struct {
	repo repository.Repository
	log  *logrus.Entry
}

func New(repo repository.Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log.WithField("component", "school_years")}
}

// GetCurrentSchoolYear fails with ErrNoActiveSchoolYear when the center has
// no year marked current.
func (s *Service) GetCurrentSchoolYear(ctx context.Context, centerID uuid.UUID) (*model.SchoolYear, error) {
	sy, err := s.repo.FindCurrent(ctx, centerID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.ErrNoActiveSchoolYear.With("center %s has no current school year", centerID).Wrap(err)
	}
	return sy, err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.SchoolYear, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]model.SchoolYear, int64, error) {
	return s.repo.List(ctx, centerID, limit, offset)
}

func (s *Service) Create(ctx context.Context, m *model.SchoolYear) error {
	if err := m.Validate(); err != nil {
		return apperror.Validation(map[string][]string{"end_date": {"gtefield=start_date"}})
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"center_id":  m.SchoolYearCenterID,
		"year_id":    m.SchoolYearID,
		"is_current": m.SchoolYearIsCurrent,
	}).Info("school year created")
	return nil
}

func (s *Service) Update(ctx context.Context, m *model.SchoolYear) error {
	if err := m.Validate(); err != nil {
		return apperror.Validation(map[string][]string{"end_date": {"gtefield=start_date"}})
	}
	return s.repo.Update(ctx, m)
}

// SetCurrent unsets the center's previous current year and sets id in one
// transaction.
func (s *Service) SetCurrent(ctx context.Context, centerID, id uuid.UUID) error {
	if err := s.repo.SetCurrent(ctx, centerID, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"center_id": centerID, "year_id": id}).Info("current school year switched")
	return nil
}
