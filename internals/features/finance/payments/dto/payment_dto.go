package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"letrus_backend/internals/features/finance/payments/model"
	"letrus_backend/internals/features/finance/payments/service"
	helper "letrus_backend/internals/helpers"
)

type RecordPaymentRequest struct {
	EnrollmentID   string          `json:"enrollment_id" validate:"required,uuid"`
	Amount         decimal.Decimal `json:"amount"`
	LateFee        decimal.Decimal `json:"late_fee"`
	PaymentDate    *string         `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Method         string          `json:"payment_method" validate:"omitempty,max=40"`
	MonthReference string          `json:"month_reference" validate:"required,max=12"`
	YearReference  int             `json:"year_reference" validate:"required,gte=2000,lte=2100"`
}

func (r RecordPaymentRequest) ToInput(centerID, userID uuid.UUID, loc *time.Location) (service.RecordPaymentInput, error) {
	enrollmentID, err := helper.ParseUUIDString(r.EnrollmentID, "enrollment_id")
	if err != nil {
		return service.RecordPaymentInput{}, err
	}
	in := service.RecordPaymentInput{
		EnrollmentID:   enrollmentID,
		CenterID:       centerID,
		UserID:         userID,
		Amount:         r.Amount,
		LateFee:        r.LateFee,
		Method:         model.PaymentMethod(strings.TrimSpace(r.Method)),
		MonthReference: strings.TrimSpace(r.MonthReference),
		YearReference:  r.YearReference,
	}
	if r.PaymentDate != nil {
		in.PaymentDate, _ = time.ParseInLocation("2006-01-02", *r.PaymentDate, loc)
	}
	return in, nil
}
