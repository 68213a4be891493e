package api

import (
	v1 "github.com/feesync/feesync/internal/api/v1"
	"github.com/feesync/feesync/internal/auth"
	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/logger"
	"github.com/feesync/feesync/internal/rest/middleware"
	"github.com/feesync/feesync/internal/sentry"
	"github.com/feesync/feesync/internal/types"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

type Handlers struct {
	fx.In

	Health       *v1.HealthHandler
	Auth         *v1.AuthHandler
	Student      *v1.StudentHandler
	Zoho         *v1.ZohoHandler
	Customer     *v1.CustomerHandler
	Invoice      *v1.InvoiceHandler
	Payment      *v1.PaymentHandler
	Dashboard    *v1.DashboardHandler
	Reminder     *v1.ReminderHandler
	Notification *v1.NotificationHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, provider auth.Provider, reporter *sentry.Service) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggerMiddleware(logger),
		middleware.ErrorHandler(logger, reporter),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")

	adminOnly := middleware.AuthenticateMiddleware(provider, logger, types.RoleAdmin)
	studentOnly := middleware.AuthenticateMiddleware(provider, logger, types.RoleStudent)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", handlers.Auth.Register)
		authRoutes.POST("/login", handlers.Auth.Login)
		authRoutes.POST("/send-otp", handlers.Auth.SendOTP)
		authRoutes.POST("/verify-otp", handlers.Auth.VerifyOTP)
		authRoutes.POST("/forgot-password", handlers.Auth.ForgotPassword)
		authRoutes.POST("/reset-password", handlers.Auth.ResetPassword)
	}

	student := api.Group("/student")
	{
		student.POST("/login", handlers.Student.Login)
		student.POST("/send-otp", handlers.Student.SendOTP)
		student.POST("/verify-otp", handlers.Student.VerifyOTP)
		student.POST("/forgot-password", handlers.Student.ForgotPassword)
		student.POST("/reset-password", handlers.Student.ResetPassword)

		student.GET("/me", studentOnly, handlers.Student.Me)
		student.POST("/set-password", studentOnly, handlers.Student.SetPassword)
	}

	// the provider redirects the admin's browser here without our token
	api.GET("/zoho/callback", handlers.Zoho.Callback)

	admin := api.Group("", adminOnly)

	zoho := admin.Group("/zoho")
	{
		zoho.GET("/auth-url", handlers.Zoho.AuthURL)
		zoho.POST("/refresh-token", handlers.Zoho.RefreshToken)
		zoho.GET("/customers", handlers.Zoho.ListCustomers)
		zoho.GET("/invoices", handlers.Zoho.ListInvoices)
		zoho.GET("/payments", handlers.Zoho.ListPayments)
	}
	admin.GET("/token/status", handlers.Zoho.TokenStatus)
	admin.POST("/sync-zoho-to-mongo", handlers.Zoho.Sync)
	admin.GET("/sync/logs", handlers.Zoho.ListSyncLogs)

	mongo := admin.Group("/mongo")
	{
		mongo.GET("/customers", handlers.Customer.GetCustomers)
		mongo.POST("/customers", handlers.Customer.CreateCustomer)
		mongo.GET("/customers/:id", handlers.Customer.GetCustomer)
		mongo.PATCH("/customers/:id", handlers.Customer.UpdateCustomer)
		mongo.DELETE("/customers/:id", handlers.Customer.DeleteCustomer)

		mongo.GET("/invoices", handlers.Invoice.ListInvoices)
		mongo.GET("/invoices/:id", handlers.Invoice.GetInvoice)

		mongo.GET("/payments", handlers.Payment.ListPayments)
		mongo.POST("/payments", handlers.Payment.CreatePayment)
		mongo.GET("/payments/:id", handlers.Payment.GetPayment)
		mongo.PATCH("/payments/:id", handlers.Payment.UpdatePayment)
		mongo.DELETE("/payments/:id", handlers.Payment.DeletePayment)
	}

	dashboard := admin.Group("/dashboard")
	{
		dashboard.GET("/kpis", handlers.Dashboard.GetKPIs)
		dashboard.GET("/outstanding/:customer_id", handlers.Dashboard.GetOutstanding)
		dashboard.GET("/monthly-paid", handlers.Dashboard.GetMonthlyPaid)
	}

	sms := admin.Group("/sms")
	{
		sms.POST("/unpaid-students", handlers.Reminder.ListUnpaidStudents)
		sms.POST("/send-reminder", handlers.Reminder.SendReminder)
		sms.POST("/send-bulk-reminders", handlers.Reminder.SendBulkReminders)
	}

	notifications := admin.Group("/notifications")
	{
		notifications.GET("", handlers.Notification.List)
		notifications.PATCH("/read-all", handlers.Notification.MarkAllRead)
		notifications.PATCH("/:id/read", handlers.Notification.MarkRead)
	}

	return router
}
