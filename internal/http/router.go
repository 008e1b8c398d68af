package api

import (
	"log"
	stdhttp "net/http"

	intconfig "sitebackend/internal/config"
	h "sitebackend/internal/http/handlers"
	"sitebackend/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env, hs *h.Handlers, parser middleware.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
		middleware.AuthOptional(parser),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if env.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if env.UploadDir != "" {
		files := r.Group("/", middleware.UploadHeaders())
		files.Static("/uploads", env.UploadDir)
	}

	admin := middleware.RequireAdmin()

	api := r.Group("/api")
	{
		api.GET("/health", hs.Health)
		api.GET("/db-check", hs.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/login", hs.Login)
		auth.POST("/logout", hs.Logout)
		auth.GET("/me", admin, hs.Me)

		blogs := api.Group("/blogs")
		blogs.GET("", hs.ListBlogs)
		blogs.POST("", admin, hs.CreateBlog)
		blogs.GET("/:id", hs.GetBlog)
		blogs.PUT("/:id", admin, hs.UpdateBlog)
		blogs.DELETE("/:id", admin, hs.DeleteBlog)
		blogs.POST("/:id/view", hs.BlogView)

		cases := api.Group("/case-studies")
		cases.GET("", hs.ListCaseStudies)
		cases.POST("", admin, hs.CreateCaseStudy)
		cases.GET("/:id", hs.GetCaseStudy)
		cases.PUT("/:id", admin, hs.UpdateCaseStudy)
		cases.DELETE("/:id", admin, hs.DeleteCaseStudy)
		cases.POST("/:id/view", hs.CaseStudyView)

		// Self-service routes are keyed by token, not session.
		bookings := api.Group("/bookings")
		bookings.POST("", hs.CreateBooking)
		bookings.POST("/cancel", hs.CancelBooking)
		bookings.POST("/reschedule", hs.RescheduleBooking)
		bookings.GET("/verify-token", hs.VerifyBookingToken)

		bookings.GET("", admin, hs.ListBookings)
		bookings.GET("/export", admin, hs.ExportBookings)
		bookings.POST("/trigger-email", admin, hs.TriggerBookingEmail)
		bookings.GET("/:id", admin, hs.GetBooking)
		bookings.PATCH("/:id", admin, hs.UpdateBooking)
		bookings.DELETE("/:id", admin, hs.DeleteBooking)
		bookings.GET("/:id/confirmation", admin, hs.BookingConfirmationPDF)

		uploads := api.Group("/uploads", admin)
		uploads.POST("", hs.Upload)
		uploads.DELETE("", hs.DeleteUpload)
	}

	return r
}
