package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/cache"
	"github.com/iliyamo/online-course-platform/internal/config"
	"github.com/iliyamo/online-course-platform/internal/database"
	"github.com/iliyamo/online-course-platform/internal/handler"
	"github.com/iliyamo/online-course-platform/internal/mailer"
	"github.com/iliyamo/online-course-platform/internal/media"
	"github.com/iliyamo/online-course-platform/internal/middleware"
	"github.com/iliyamo/online-course-platform/internal/queue"
	"github.com/iliyamo/online-course-platform/internal/repository"
	"github.com/iliyamo/online-course-platform/internal/router"
	"github.com/iliyamo/online-course-platform/internal/session"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Sessions live in Redis; without it no token can be validated.
		log.Fatal("redis: connection failed")
	}

	sessions := session.NewRedisStore(rdb, cfg.RefreshTTL)
	courseCache := cache.New(config.LoadCacheConfig(), rdb)

	var mail mailer.Sender
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		log.Println("mailer: RESEND_API_KEY not set, logging mail instead")
		mail = mailer.NewLogSender()
	}

	var uploader media.Uploader
	if cfg.CloudName != "" {
		uploader, err = media.NewCloudinary(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret)
		if err != nil {
			log.Fatalf("media: %v", err)
		}
	} else {
		log.Println("media: Cloudinary not configured, uploads disabled")
		uploader = media.NewDisabled()
	}

	publisher := queue.NewAMQPPublisher()
	go queue.StartNotificationConsumer(mail)

	users := handler.NewUserHandler(cfg, repository.NewUserRepo(db), sessions, mail, uploader)
	courses := handler.NewCourseHandler(repository.NewCourseRepo(db), courseCache, uploader, publisher, cfg.AdminEmail)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     corsOrigins(cfg.Origin),
		AllowCredentials: cfg.Origin != "",
	}))

	auth := middleware.Authenticate(cfg.AccessSecret, sessions)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.Register(e, users, courses, auth, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func corsOrigins(origin string) []string {
	if origin == "" {
		return []string{"*"}
	}
	return []string{origin}
}
