package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"letrus_backend/internals/bootstrap"
	dashController "letrus_backend/internals/features/dashboard/controller"
	dashRoute "letrus_backend/internals/features/dashboard/route"
	fpController "letrus_backend/internals/features/finance/financial_plans/controller"
	fpRoute "letrus_backend/internals/features/finance/financial_plans/route"
	payController "letrus_backend/internals/features/finance/payments/controller"
	payRoute "letrus_backend/internals/features/finance/payments/route"
	classController "letrus_backend/internals/features/school/classes/controller"
	classRoute "letrus_backend/internals/features/school/classes/route"
	courseController "letrus_backend/internals/features/school/courses/controller"
	courseRoute "letrus_backend/internals/features/school/courses/route"
	enrollController "letrus_backend/internals/features/school/enrollments/controller"
	enrollRoute "letrus_backend/internals/features/school/enrollments/route"
	syController "letrus_backend/internals/features/school/school_years/controller"
	syRoute "letrus_backend/internals/features/school/school_years/route"
	studentController "letrus_backend/internals/features/school/students/controller"
	studentRoute "letrus_backend/internals/features/school/students/route"
	authController "letrus_backend/internals/features/users/auth/controller"
	authRoute "letrus_backend/internals/features/users/auth/route"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

var startTime time.Time

// SetupRoutes mounts the public auth endpoints and every feature under the
// JWT-protected /api/a group.
func SetupRoutes(app *fiber.App, c *bootstrap.Container) {
	startTime = time.Now()
	log := c.Log.WithField("component", "routes")

	BaseRoutes(app, c.DB)

	api := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:    c.Config.JWTSecret,
			IsRevoked: c.Auth.IsRevoked,
		}),
	)

	log.Info("mounting auth routes")
	authRoute.AuthRoutes(app, api, authController.NewAuthController(c.Auth, c.Config.IsProduction()))

	log.Info("mounting school routes")
	syRoute.SchoolYearRoutes(api, syController.NewSchoolYearController(c.SchoolYears, c.Loc))
	courseRoute.CourseRoutes(api, courseController.NewCourseController(c.Courses))
	classRoute.ClassRoutes(api, classController.NewClassController(c.Classes))
	studentRoute.StudentRoutes(api, studentController.NewStudentController(c.Students, c.Loc))
	enrollRoute.EnrollmentRoutes(api, enrollController.NewEnrollmentController(c.Intake, c.Loc))

	log.Info("mounting finance routes")
	fpRoute.FinancialPlanRoutes(api, fpController.NewFinancialPlanController(c.PlanQuery, c.Intake))
	payRoute.PaymentRoutes(api, payController.NewPaymentController(c.Reconciler, c.PaymentQuery, c.Loc))

	log.Info("mounting dashboard routes")
	dashRoute.DashboardRoutes(api, dashController.NewDashboardController(c.Dashboard))

	log.WithFields(logrus.Fields{"routes": len(app.GetRoutes())}).Info("routes ready")
}
