package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "sitebackend/internal/config"
	"sitebackend/internal/db"
	router "sitebackend/internal/http"
	"sitebackend/internal/http/handlers"
	"sitebackend/internal/metrics"
	"sitebackend/internal/notify"
	"sitebackend/internal/repositories"
	"sitebackend/internal/services"
	"sitebackend/internal/validation"
	"sitebackend/internal/viewmark"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	conn := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(bootCtx, conn); err != nil {
		log.Fatalf("failed to prepare schema: %v", err)
	}

	if env.MetricsEnabled {
		metrics.Register()
	}

	var marker viewmark.Marker = viewmark.NewMemoryMarker(env.ViewMarkSize, env.ViewMarkTTL)
	if rdb := intconfig.NewRedisClient(env); rdb != nil {
		if err := intconfig.PingRedis(bootCtx, rdb); err != nil {
			log.Printf("warning: %v; repeat-view throttling falls back to memory", err)
		} else {
			marker = viewmark.NewRedisMarker(rdb)
			log.Printf("connected to redis at %s", env.RedisAddr)
		}
		defer rdb.Close()
	}

	sinks := []notify.Sink{notify.NewWebhookSink(map[notify.Kind]string{
		notify.KindNewBooking:         env.Webhooks.NewBooking,
		notify.KindBookingCancelled:   env.Webhooks.CancelBooking,
		notify.KindBookingRescheduled: env.Webhooks.RescheduleBooking,
		notify.KindCustomEmail:        env.Webhooks.Email,
	})}
	if env.RabbitURL != "" {
		amqpSink, err := notify.NewAMQPSink(env.RabbitURL, env.RabbitExchange)
		if err != nil {
			log.Printf("warning: rabbitmq unavailable, events go to webhooks only: %v", err)
		} else {
			sinks = append(sinks, amqpSink)
			defer amqpSink.Close()
		}
	}
	dispatcher := notify.NewDispatcher(sinks...)

	v := validation.New(nil)
	bookingRepo := repositories.BookingRepo{DB: conn}
	uploads := services.UploadService{Dir: env.UploadDir, MaxBytes: env.UploadMaxBytes}
	auth := services.AuthService{
		Admins:    repositories.AdminRepo{DB: conn},
		Secret:    []byte(env.JWTSecret),
		TTL:       env.JWTTTL,
		Validator: v,
	}
	if err := auth.SeedAdmin(bootCtx, env.AdminEmail, env.AdminPassword, env.AdminName); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	bootCancel()

	hs := &handlers.Handlers{
		Bookings: services.BookingService{Store: bookingRepo, Notifier: dispatcher, Validator: v, BaseURL: env.BaseURL},
		Content: services.ContentService{
			Blogs:       repositories.BlogRepo{DB: conn},
			CaseStudies: repositories.CaseStudyRepo{DB: conn},
			Images:      uploads,
			Validator:   v,
			ListTimeout: env.ListTimeout,
		},
		Views:         services.ViewService{Counter: repositories.ViewCounter{DB: conn}, Marker: marker},
		Auth:          auth,
		Uploads:       uploads,
		Docs:          services.DocsService{Bookings: bookingRepo, BaseURL: env.BaseURL},
		Export:        services.ExportService{Bookings: bookingRepo},
		Ping:          intconfig.PingDB,
		SecureCookies: gin.Mode() == gin.ReleaseMode,
	}

	r := router.NewRouter(env, hs, auth)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	if err := dispatcher.Wait(ctx); err != nil {
		log.Printf("notifications still in flight at exit: %v", err)
	}

	log.Println("server stopped")
}
