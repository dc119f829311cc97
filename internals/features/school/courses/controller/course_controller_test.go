package controller

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letrus_backend/internals/databases/inmem"
	feeService "letrus_backend/internals/features/finance/tuition_fees/service"
	"letrus_backend/internals/features/school/courses/service"
	helper "letrus_backend/internals/helpers"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type session struct {
	center uuid.UUID
	role   string
}

func newApp(t *testing.T, s *session) *fiber.App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	fees := inmem.NewTuitionFees()
	clock := func() time.Time { return time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC) }
	svc := service.New(inmem.NewCoursesWithFees(fees), feeService.NewLedger(fees, log, clock), log)
	h := NewCourseController(svc)

	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler(false, log)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocCenterID, s.center)
		c.Locals(helperAuth.LocUserID, uuid.New())
		c.Locals(helperAuth.LocRole, s.role)
		return c.Next()
	})
	app.Post("/courses", h.Create)
	app.Get("/courses/:id", h.Get)
	return app
}

type envelope struct {
	Success   bool                `json:"success"`
	ErrorCode string              `json:"error_code"`
	Errors    map[string][]string `json:"errors"`
	Data      struct {
		CourseID  uuid.UUID `json:"course_id"`
		Name      string    `json:"course_name"`
		ActiveFee *struct {
			Fee string `json:"tuition_fee_fee"`
		} `json:"active_fee"`
	} `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestCreateAndGet(t *testing.T) {
	s := &session{center: uuid.New(), role: helperAuth.RoleAdmin}
	app := newApp(t, s)

	status, out := do(t, app, http.MethodPost, "/courses",
		`{"name":"Francês","fee":"12000","fee_fine":"500","enrollment_fee":"3000","confirmation_enrollment_fee":"1500"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.True(t, out.Success)
	assert.Equal(t, "Francês", out.Data.Name)
	require.NotNil(t, out.Data.ActiveFee)
	assert.Equal(t, "12000", out.Data.ActiveFee.Fee)

	status, got := do(t, app, http.MethodGet, "/courses/"+out.Data.CourseID.String(), "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, out.Data.CourseID, got.Data.CourseID)

	s.center = uuid.New()
	status, miss := do(t, app, http.MethodGet, "/courses/"+out.Data.CourseID.String(), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", miss.ErrorCode)
}

func TestCreate_Validation(t *testing.T) {
	app := newApp(t, &session{center: uuid.New(), role: helperAuth.RoleAdmin})

	status, out := do(t, app, http.MethodPost, "/courses", `{"fee":"12000"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, out.Success)
	assert.Contains(t, out.Errors, "name")
}

func TestGet_BadID(t *testing.T) {
	app := newApp(t, &session{center: uuid.New(), role: helperAuth.RoleAdmin})
	status, _ := do(t, app, http.MethodGet, "/courses/not-a-uuid", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
