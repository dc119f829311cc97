package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"letrus_backend/internals/constants"
	"letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/enrollments/service"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/helpers/apperror"
)

type CreateEnrollmentRequest struct {
	StudentID      string  `json:"student_id" validate:"required,uuid"`
	ClassID        string  `json:"class_id" validate:"required,uuid"`
	EnrollmentDate *string `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
	HasScholarship bool    `json:"has_scholarship"`
	DocFile        *string `json:"doc_file" validate:"omitempty,max=255"`
	ImageFile      *string `json:"image_file" validate:"omitempty,max=255"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=enrolled completed dropped"`
}

// ToInput fills center and user from the session. A missing date means now.
func (r CreateEnrollmentRequest) ToInput(centerID, userID uuid.UUID, loc *time.Location) (service.EnrollInput, error) {
	in := service.EnrollInput{
		CenterID:       centerID,
		UserID:         userID,
		HasScholarship: r.HasScholarship,
	}
	var err error
	if in.StudentID, err = helper.ParseUUIDString(r.StudentID, "student_id"); err != nil {
		return in, err
	}
	if in.ClassID, err = helper.ParseUUIDString(r.ClassID, "class_id"); err != nil {
		return in, err
	}
	if r.EnrollmentDate != nil {
		if in.EnrollmentDate, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(*r.EnrollmentDate), loc); err != nil {
			return in, apperror.Validation(map[string][]string{"enrollment_date": {"must be a date in YYYY-MM-DD format"}})
		}
	}
	if r.DocFile != nil || r.ImageFile != nil {
		docs := &model.Documents{}
		fields := map[string][]string{}
		if r.DocFile != nil {
			docs.DocFile = strings.TrimSpace(*r.DocFile)
			if docs.DocFile != "" && constants.DetectFileKind(docs.DocFile) != constants.FileDocument {
				fields["doc_file"] = []string{"must be a pdf, doc or docx file"}
			}
		}
		if r.ImageFile != nil {
			docs.ImageFile = strings.TrimSpace(*r.ImageFile)
			if docs.ImageFile != "" && constants.DetectFileKind(docs.ImageFile) != constants.FileImage {
				fields["image_file"] = []string{"must be a png, jpg or webp image"}
			}
		}
		if len(fields) > 0 {
			return in, apperror.Validation(fields)
		}
		in.Documents = docs
	}
	return in, nil
}
