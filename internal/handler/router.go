package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-portal-api/internal/middleware"
	"github.com/noah-isme/college-portal-api/internal/models"
	"github.com/noah-isme/college-portal-api/internal/service"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Students      *StudentHandler
	Summaries     *SummaryHandler
	Scholarships  *ScholarshipHandler
	Certificates  *CertificateHandler
	Reports       *ReportHandler
	Configuration *ConfigurationHandler
	Clerks        *ClerkHandler
	Dashboard     *DashboardHandler
	Metrics       *MetricsHandler

	AuthService      *service.AuthService
	DashboardService *service.DashboardService
}

// Register mounts all routes under the given prefix.
func Register(r *gin.Engine, prefix string, h Handlers) {
	if prefix == "" {
		prefix = "/api/v1"
	}

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(h.AuthService))
		authed.POST("/logout", h.Auth.Logout)
		authed.POST("/change-password", h.Auth.ChangePassword)
		authed.GET("/me", h.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(h.AuthService))

	staff := protected.Group("")
	staff.Use(middleware.RequireRoles(models.RoleClerk))
	{
		staff.GET("/students", h.Students.List)
		staff.POST("/students", invalidateDashboard(h.DashboardService), h.Students.Create)
		staff.GET("/students/:roll", h.Students.Get)
		staff.PUT("/students/id/:id", invalidateDashboard(h.DashboardService), h.Students.Update)
		staff.DELETE("/students/id/:id", invalidateDashboard(h.DashboardService), h.Students.Deactivate)

		staff.GET("/students/:roll/summary", h.Summaries.Get)

		staff.GET("/students/:roll/scholarship", h.Scholarships.GetLedger)
		staff.POST("/students/:roll/scholarship/sanction", invalidateDashboard(h.DashboardService), h.Scholarships.RecordSanction)
		staff.POST("/students/:roll/scholarship/payment", invalidateDashboard(h.DashboardService), h.Scholarships.RecordPayment)

		staff.GET("/students/:roll/certificates", h.Certificates.ListByStudent)
		staff.POST("/students/:roll/certificates", h.Certificates.Issue)

		staff.POST("/reports", h.Reports.Create)
		staff.GET("/reports/:id", h.Reports.Status)
	}

	admin := protected.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/clerks", h.Clerks.List)
		admin.POST("/clerks", h.Clerks.Create)
		admin.GET("/clerks/:id", h.Clerks.Get)
		admin.PUT("/clerks/:id", h.Clerks.Update)
		admin.DELETE("/clerks/:id", h.Clerks.Delete)

		admin.GET("/configuration", h.Configuration.Effective)
		admin.GET("/configuration/:key", h.Configuration.Get)
		admin.PUT("/configuration", h.Configuration.UpdateCalendar)

		admin.GET("/dashboard", h.Dashboard.Overview)
		admin.POST("/dashboard/refresh", h.Dashboard.Refresh)
		admin.GET("/dashboard/metrics", h.Dashboard.SystemMetrics)
	}

	// download endpoints authenticate via the signed token in the URL, not
	// via JWT, so certificate links can be opened from a browser
	api.GET("/certificates/download", h.Certificates.Download)
	api.GET("/reports/download", h.Reports.Download)
}

// invalidateDashboard drops the cached overview after a successful write.
func invalidateDashboard(dashboard *service.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if dashboard == nil || c.Writer.Status() >= 400 {
			return
		}
		dashboard.InvalidateCache(c.Request.Context())
	}
}
