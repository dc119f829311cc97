// Package bootstrap builds the services once per process so the HTTP server
// and the maintenance commands share the same wiring.
package bootstrap

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"letrus_backend/internals/configs"
	dashRepo "letrus_backend/internals/features/dashboard/repository"
	dashService "letrus_backend/internals/features/dashboard/service"
	fpRepo "letrus_backend/internals/features/finance/financial_plans/repository"
	fpScheduler "letrus_backend/internals/features/finance/financial_plans/scheduler"
	fpService "letrus_backend/internals/features/finance/financial_plans/service"
	payRepo "letrus_backend/internals/features/finance/payments/repository"
	payService "letrus_backend/internals/features/finance/payments/service"
	feeRepo "letrus_backend/internals/features/finance/tuition_fees/repository"
	feeService "letrus_backend/internals/features/finance/tuition_fees/service"
	classRepo "letrus_backend/internals/features/school/classes/repository"
	courseRepo "letrus_backend/internals/features/school/courses/repository"
	courseService "letrus_backend/internals/features/school/courses/service"
	enrollRepo "letrus_backend/internals/features/school/enrollments/repository"
	enrollService "letrus_backend/internals/features/school/enrollments/service"
	syRepo "letrus_backend/internals/features/school/school_years/repository"
	syService "letrus_backend/internals/features/school/school_years/service"
	studentRepo "letrus_backend/internals/features/school/students/repository"
	authRepo "letrus_backend/internals/features/users/auth/repository"
	authScheduler "letrus_backend/internals/features/users/auth/scheduler"
	authService "letrus_backend/internals/features/users/auth/service"
	"letrus_backend/internals/helpers/dbtime"
	"letrus_backend/internals/helpers/redislock"
)

type Container struct {
	Config *configs.Config
	Log    *logrus.Logger
	DB     *gorm.DB
	Redis  *redis.Client // nil when REDIS_ADDR is empty
	Loc    *time.Location
	Clock  dbtime.Clock

	Classes     classRepo.Repository
	Students    studentRepo.Repository
	Enrollments enrollRepo.Repository
	Plans       fpRepo.Repository
	Payments    payRepo.Repository

	Ledger       *feeService.Ledger
	SchoolYears  *syService.Service
	Courses      *courseService.Service
	Generator    *fpService.Generator
	PlanQuery    *fpService.PlanQuery
	Intake       *enrollService.Service
	Reconciler   *payService.Reconciler
	Materializer *payService.Materializer
	PaymentQuery *payService.PaymentQuery
	Dashboard    *dashService.Service
	Auth         *authService.Service

	Sweeper          *fpScheduler.OverdueSweeper
	BlacklistCleanup *authScheduler.BlacklistCleanup
}

func New(cfg *configs.Config, db *gorm.DB, rdb *redis.Client, loc *time.Location, log *logrus.Logger) *Container {
	c := &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Redis:  rdb,
		Loc:    loc,
		Clock:  dbtime.SystemClock,

		Classes:     classRepo.New(db),
		Students:    studentRepo.New(db),
		Enrollments: enrollRepo.New(db),
		Plans:       fpRepo.New(db),
		Payments:    payRepo.New(db),
	}

	c.Ledger = feeService.NewLedger(feeRepo.New(db), log, c.Clock)
	c.SchoolYears = syService.New(syRepo.New(db), log)
	c.Courses = courseService.New(courseRepo.New(db), c.Ledger, log)

	c.Generator = fpService.NewGenerator(c.Plans, c.SchoolYears, c.Classes, c.Ledger, loc, log)
	c.PlanQuery = fpService.NewPlanQuery(c.Plans)
	c.Intake = enrollService.New(c.Enrollments, c.Students, c.Generator, c.Clock, log)

	c.Reconciler = payService.NewReconciler(c.Payments, payService.NewReceiptNumberer(rdb), c.Clock, log)
	c.Materializer = payService.NewMaterializer(c.Ledger, c.SchoolYears, loc)
	c.PaymentQuery = payService.NewPaymentQuery(c.Payments)

	c.Dashboard = dashService.New(dashRepo.New(db), loc, c.Clock, log)

	auths := authRepo.New(db)
	var sender authService.OTPSender = authService.LogSender{Log: log}
	c.Auth = authService.New(auths, sender, authService.Options{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
		OTPTTL: cfg.OTPTTL,
	}, c.Clock, log)

	c.Sweeper = fpScheduler.NewOverdueSweeper(c.Plans, loc, c.Clock, log)
	if rdb != nil {
		c.Sweeper.WithLocker(redislock.New(rdb))
	}
	c.BlacklistCleanup = authScheduler.NewBlacklistCleanup(auths, cfg.TokenBlacklistTTLDays, c.Clock, log)
	return c
}
