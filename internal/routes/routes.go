package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinica-scheduler/internal/config"
	"github.com/BruksfildServices01/clinica-scheduler/internal/handlers"
	"github.com/BruksfildServices01/clinica-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/clinica-scheduler/internal/usecase/appointment"
	ucReport "github.com/BruksfildServices01/clinica-scheduler/internal/usecase/report"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, infra *Infra, cfg *config.Config, log *logrus.Logger) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	appointmentDeps := ucAppointment.Deps{
		Repo:     infra.Repo,
		Audit:    infra.Audit,
		Notifier: infra.Notifier,
		Log:      log,
		Opts: ucAppointment.Options{
			Timezone:     cfg.Scheduling.Timezone,
			BlocksOccupy: cfg.Scheduling.BlocksOccupy,
		},
	}

	reportDeps := ucReport.Deps{
		Repo:     infra.Repo,
		Storage:  infra.Storage,
		Log:      log,
		Timezone: cfg.Scheduling.Timezone,
	}

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(appointmentDeps)
	workingHoursHandler := handlers.NewWorkingHoursHandler(appointmentDeps)
	reportHandler := handlers.NewReportHandler(reportDeps)
	auditLogsHandler := handlers.NewAuditLogsHandler(infra.AuditLog)
	healthHandler := handlers.NewHealthHandler(db)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Check)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.List)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.PATCH("/appointments/:id", appointmentHandler.Update)
			secured.DELETE("/appointments/:id", appointmentHandler.Delete)
			secured.PATCH("/appointments/:id/schedule", appointmentHandler.Schedule)
			secured.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/appointments/:id/attendance", appointmentHandler.Attendance)

			// ------------------------------
			// SERIES
			// ------------------------------
			secured.PATCH("/series/:groupId", appointmentHandler.UpdateSeries)
			secured.PATCH("/series/:groupId/reschedule", appointmentHandler.RescheduleSeries)
			secured.DELETE("/series/:groupId", appointmentHandler.DeleteSeries)

			// ------------------------------
			// AGENDA
			// ------------------------------
			secured.GET("/availability", appointmentHandler.Availability)
			secured.GET("/working-hours", workingHoursHandler.Get)
			secured.PUT("/working-hours", workingHoursHandler.Update)

			// ------------------------------
			// REPORTS
			// ------------------------------
			secured.GET("/reports/financial", reportHandler.Financial)
			secured.POST("/reports/financial/export", reportHandler.Export)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
