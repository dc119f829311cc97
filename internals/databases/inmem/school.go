package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	classModel "letrus_backend/internals/features/school/classes/model"
	courseModel "letrus_backend/internals/features/school/courses/model"
	syModel "letrus_backend/internals/features/school/school_years/model"
	studentModel "letrus_backend/internals/features/school/students/model"
	"letrus_backend/internals/helpers/apperror"
)

type SchoolYears struct {
	mu   sync.Mutex
	rows map[uuid.UUID]syModel.SchoolYear
}

func NewSchoolYears() *SchoolYears { return &SchoolYears{rows: map[uuid.UUID]syModel.SchoolYear{}} }

func (s *SchoolYears) FindCurrent(_ context.Context, centerID uuid.UUID) (*syModel.SchoolYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.SchoolYearCenterID == centerID && r.SchoolYearIsCurrent {
			return &r, nil
		}
	}
	return nil, apperror.ErrNotFound.With("center %s has no current school year", centerID)
}

func (s *SchoolYears) FindByID(_ context.Context, id uuid.UUID) (*syModel.SchoolYear, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, apperror.ErrNotFound.With("school year %s not found", id)
	}
	return &r, nil
}

func (s *SchoolYears) List(_ context.Context, centerID uuid.UUID, limit, offset int) ([]syModel.SchoolYear, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []syModel.SchoolYear
	for _, r := range s.rows {
		if r.SchoolYearCenterID == centerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SchoolYearStartDate.After(out[j].SchoolYearStartDate) })
	return page(out, limit, offset), int64(len(out)), nil
}

func (s *SchoolYears) unsetCurrent(centerID, except uuid.UUID) {
	for id, r := range s.rows {
		if r.SchoolYearCenterID == centerID && id != except && r.SchoolYearIsCurrent {
			r.SchoolYearIsCurrent = false
			s.rows[id] = r
		}
	}
}

func (s *SchoolYears) Create(_ context.Context, m *syModel.SchoolYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.SchoolYearID == uuid.Nil {
		m.SchoolYearID = uuid.New()
	}
	if m.SchoolYearIsCurrent {
		s.unsetCurrent(m.SchoolYearCenterID, m.SchoolYearID)
	}
	s.rows[m.SchoolYearID] = *m
	return nil
}

func (s *SchoolYears) Update(_ context.Context, m *syModel.SchoolYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[m.SchoolYearID]; !ok {
		return apperror.ErrNotFound.With("school year %s not found", m.SchoolYearID)
	}
	if m.SchoolYearIsCurrent {
		s.unsetCurrent(m.SchoolYearCenterID, m.SchoolYearID)
	}
	s.rows[m.SchoolYearID] = *m
	return nil
}

func (s *SchoolYears) SetCurrent(_ context.Context, centerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || r.SchoolYearCenterID != centerID {
		return apperror.ErrNotFound.With("school year %s not found in center", id)
	}
	s.unsetCurrent(centerID, id)
	r.SchoolYearIsCurrent = true
	s.rows[id] = r
	return nil
}

type Courses struct {
	mu   sync.Mutex
	rows map[uuid.UUID]courseModel.Course
	fees *TuitionFees
}

func NewCourses() *Courses { return &Courses{rows: map[uuid.UUID]courseModel.Course{}} }

// NewCoursesWithFees backs CreateWithFee with fees.
func NewCoursesWithFees(fees *TuitionFees) *Courses {
	c := NewCourses()
	c.fees = fees
	return c
}

func (s *Courses) CreateWithFee(ctx context.Context, m *courseModel.Course, fee *feeModel.TuitionFee) error {
	if s.fees == nil {
		return apperror.ErrUnavailable.With("courses fake has no fee table")
	}
	if err := s.Create(ctx, m); err != nil {
		return err
	}
	fee.TuitionFeeCourseID = m.CourseID
	fee.TuitionFeeStatus = feeModel.TuitionFeeActive
	*fee = s.fees.Seed(*fee)
	return nil
}

func (s *Courses) Create(_ context.Context, m *courseModel.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CourseID == uuid.Nil {
		m.CourseID = uuid.New()
	}
	if m.CourseStatus == "" {
		m.CourseStatus = courseModel.CourseActive
	}
	s.rows[m.CourseID] = *m
	return nil
}

func (s *Courses) Update(_ context.Context, m *courseModel.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[m.CourseID]; !ok {
		return apperror.ErrNotFound.With("course %s not found", m.CourseID)
	}
	s.rows[m.CourseID] = *m
	return nil
}

func (s *Courses) FindByID(_ context.Context, id uuid.UUID) (*courseModel.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, apperror.ErrNotFound.With("course %s not found", id)
	}
	return &r, nil
}

func (s *Courses) List(_ context.Context, centerID uuid.UUID, status *courseModel.CourseStatus, limit, offset int) ([]courseModel.Course, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []courseModel.Course
	for _, r := range s.rows {
		if r.CourseCenterID == centerID && (status == nil || r.CourseStatus == *status) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseName < out[j].CourseName })
	return page(out, limit, offset), int64(len(out)), nil
}

// Remove drops a course so classes pointing at it dangle.
func (s *Courses) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
}

type Classes struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]classModel.Class
	courses *Courses
}

func NewClasses(courses *Courses) *Classes {
	return &Classes{rows: map[uuid.UUID]classModel.Class{}, courses: courses}
}

func (s *Classes) Create(ctx context.Context, m *classModel.Class) error {
	c, err := s.courses.FindByID(ctx, m.ClassCourseID)
	if err != nil || c.CourseCenterID != m.ClassCenterID {
		return apperror.ErrCourseNotFound.With("course %s not found in center", m.ClassCourseID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	if m.ClassStatus == "" {
		m.ClassStatus = classModel.ClassActive
	}
	s.rows[m.ClassID] = *m
	return nil
}

func (s *Classes) FindByID(_ context.Context, id uuid.UUID) (*classModel.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, apperror.ErrNotFound.With("class %s not found", id)
	}
	return &r, nil
}

func (s *Classes) List(_ context.Context, centerID uuid.UUID, limit, offset int) ([]classModel.Class, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []classModel.Class
	for _, r := range s.rows {
		if r.ClassCenterID == centerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return page(out, limit, offset), int64(len(out)), nil
}

func (s *Classes) ResolveCourseID(ctx context.Context, classID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	r, ok := s.rows[classID]
	s.mu.Unlock()
	if !ok {
		return uuid.Nil, apperror.ErrClassNotFound.With("class %s not found", classID)
	}
	if _, err := s.courses.FindByID(ctx, r.ClassCourseID); err != nil {
		return uuid.Nil, apperror.ErrCourseNotFound.With("class %s points to a missing course", classID)
	}
	return r.ClassCourseID, nil
}

type Students struct {
	mu   sync.Mutex
	rows map[uuid.UUID]studentModel.Student
}

func NewStudents() *Students { return &Students{rows: map[uuid.UUID]studentModel.Student{}} }

func (s *Students) Create(_ context.Context, m *studentModel.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.StudentCenterID == m.StudentCenterID && r.StudentCode == m.StudentCode {
			return apperror.ErrConflict.With("student code %s already exists", m.StudentCode)
		}
	}
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	s.rows[m.StudentID] = *m
	return nil
}

func (s *Students) FindByID(_ context.Context, id uuid.UUID) (*studentModel.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, apperror.ErrNotFound.With("student %s not found", id)
	}
	return &r, nil
}

func (s *Students) List(_ context.Context, centerID uuid.UUID, search string, limit, offset int) ([]studentModel.Student, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search = strings.ToLower(search)
	var out []studentModel.Student
	for _, r := range s.rows {
		if r.StudentCenterID != centerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.StudentName), search) && !strings.Contains(strings.ToLower(r.StudentCode), search) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return page(out, limit, offset), int64(len(out)), nil
}
