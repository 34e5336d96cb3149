package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/petcare-scheduler/internal/civildate"
	"github.com/BruksfildServices01/petcare-scheduler/internal/config"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/handlers"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/usecase/calendar"
	ucPayment "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/payment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/validators"
)

// Backend is the upstream surface the routes need; satisfied by
// *repository.AppointmentHTTPRepository.
type Backend interface {
	domain.Repository
	ucPayment.Gateway
}

// Deps are the singletons built by main.
type Deps struct {
	Config   *config.Config
	Backend  Backend
	Bus      *events.Bus
	Views    *calendar.Views
	Days     calendar.DayFetcher
	Location *time.Location
	Now      func() time.Time

	// Optional; nil disables the feature.
	Changes handlers.ChangeLister
	Archive ucPayment.Archive
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(d.Config.CORSOrigins))

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validators.Register(v)
	}

	// ======================================================
	// USE CASES
	// ======================================================
	listMineUC := ucAppointment.NewListMyAppointments(d.Backend)
	createAppointmentUC := ucAppointment.NewCreateAppointment(d.Backend, d.Bus, d.Now)
	updateAppointmentUC := ucAppointment.NewUpdateAppointment(d.Backend, d.Bus, d.Now)
	deleteAppointmentUC := ucAppointment.NewDeleteAppointment(d.Backend, d.Bus)
	availabilityUC := ucAppointment.NewGetAvailability(d.Backend, domain.DefaultOpeningHours)

	uploadSlipUC := ucPayment.NewUploadSlip(d.Backend, d.Archive, d.Bus)
	markPaidUC := ucPayment.NewMarkPaid(d.Backend, d.Bus)

	// ======================================================
	// HANDLERS
	// ======================================================
	calendarHandler := handlers.NewCalendarHandler(
		d.Views,
		d.Days,
		d.Location,
		civildate.ParseWeekday(d.Config.CalendarWeekStart),
		d.Config.CalendarMaxDays,
		d.Now,
	)

	appointmentHandler := handlers.NewAppointmentHandler(
		listMineUC,
		createAppointmentUC,
		updateAppointmentUC,
		deleteAppointmentUC,
		availabilityUC,
	)

	paymentHandler := handlers.NewPaymentHandler(listMineUC, uploadSlipUC, markPaidUC)
	staffHandler := handlers.NewStaffHandler(d.Bus, d.Changes, d.Location)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "views": d.Views.Len()})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// CALENDAR
		// ------------------------------
		cal := api.Group("/calendar")
		{
			cal.GET("", calendarHandler.Range)
			cal.GET("/month", calendarHandler.Month)
			cal.GET("/state", calendarHandler.State)
			cal.GET("/day", calendarHandler.Day)
			cal.POST("/select", calendarHandler.Select)

			cal.POST("/views", calendarHandler.OpenView)
			cal.DELETE("/views/:id", calendarHandler.CloseView)
			cal.GET("/views/:id/events", calendarHandler.Events)
		}

		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/slots", appointmentHandler.Slots)
		api.GET("/pricing", appointmentHandler.Pricing)

		// ------------------------------
		// CUSTOMER (token forwarded)
		// ------------------------------
		customer := api.Group("/")
		customer.Use(middleware.RequireCustomerToken())
		{
			customer.GET("/me/appointments", appointmentHandler.ListMine)
			customer.PUT("/me/appointments/:service/:id", appointmentHandler.Update)
			customer.DELETE("/me/appointments/:service/:id", appointmentHandler.Delete)
			customer.POST("/:service/appointments", appointmentHandler.Create)

			customer.POST("/orders/preview", paymentHandler.Preview)
			customer.POST("/payments/upload-slip", paymentHandler.UploadSlip)
			customer.POST("/payments/mark-paid", paymentHandler.MarkPaid)
		}

		// ------------------------------
		// STAFF (JWT)
		// ------------------------------
		staff := api.Group("/staff")
		staff.Use(middleware.AuthMiddleware(d.Config))
		{
			staff.POST("/appointments/changed", staffHandler.Changed)
			staff.GET("/changes", staffHandler.Changes)
		}
	}
}
