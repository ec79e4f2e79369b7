package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/campus-resource-booking/internal/api"
	"github.com/nekogravitycat/campus-resource-booking/internal/auth"
	"github.com/nekogravitycat/campus-resource-booking/internal/booking"
	"github.com/nekogravitycat/campus-resource-booking/internal/config"
	"github.com/nekogravitycat/campus-resource-booking/internal/file"
	"github.com/nekogravitycat/campus-resource-booking/internal/notification"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/storage"
	"github.com/nekogravitycat/campus-resource-booking/internal/resource"
	"github.com/nekogravitycat/campus-resource-booking/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	StoragePath     string
	SMTP            config.SMTPConfig
	NotifyQueueSize int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Dispatcher *notification.Dispatcher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	log := cfg.Logger

	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, log.Named("user"))

	// Booking repository doubles as the resource module's active booking counter.
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo, bookingRepo)

	// File Module
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	fileRepo := file.NewPgxRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, store, log.Named("file"))

	// Notifications
	var sender notification.Sender = notification.NewLogSender(log.Named("mail"))
	if cfg.SMTP.Enabled() {
		sender = notification.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Info("SMTP not configured, booking notifications will only be logged")
	}
	dispatcher := notification.NewDispatcher(sender, cfg.NotifyQueueSize, log.Named("notification"))

	// Booking Module
	bookingService := booking.NewService(bookingRepo, resService, dispatcher, log.Named("booking"))

	router, err := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         log.Named("http"),
		JWTManager:     jwtManager,
		UserService:    userService,
		ResService:     resService,
		BookingService: bookingService,
		FileService:    fileService,
	})
	if err != nil {
		_ = dispatcher.Close(context.Background())
		return nil, err
	}

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Dispatcher: dispatcher,
	}, nil
}
