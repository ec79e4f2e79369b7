package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/campus-resource-booking/internal/auth"
	"github.com/nekogravitycat/campus-resource-booking/internal/booking"
	bookingHttp "github.com/nekogravitycat/campus-resource-booking/internal/booking/http"
	"github.com/nekogravitycat/campus-resource-booking/internal/file"
	fileHttp "github.com/nekogravitycat/campus-resource-booking/internal/file/http"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/request"
	"github.com/nekogravitycat/campus-resource-booking/internal/resource"
	resourceHttp "github.com/nekogravitycat/campus-resource-booking/internal/resource/http"
	"github.com/nekogravitycat/campus-resource-booking/internal/user"
	userHttp "github.com/nekogravitycat/campus-resource-booking/internal/user/http"
)

// Config carries everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string // comma separated
	Logger       *zap.Logger

	JWTManager     *auth.JWTManager
	UserService    user.Service
	ResService     resource.Service
	BookingService booking.Service
	FileService    file.Service
}

// devOrigins are allowed outside production (local frontends, Swagger UI).
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8081",
}

// Login and registration are throttled per client IP.
const (
	authRequestsPerMinute = 10
	authBurst             = 5
)

// NewRouter assembles middleware and registers every module under /v1.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := request.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(RequestLogger(cfg.Logger), Recovery(cfg.Logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = devOrigins
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager, ActiveUser(cfg.UserService))
	adminMiddleware := RequireAdmin(cfg.UserService)
	authLimiter := NewIPRateLimiter(authRequestsPerMinute, authBurst, 10*time.Minute)

	fileHandler := fileHttp.NewHandler(cfg.FileService)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	resourceHandler := resourceHttp.NewHandler(cfg.ResService, fileHandler)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	r.GET("/healthz", Health)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware, authLimiter.Middleware())
		resourceHttp.RegisterRoutes(v1, resourceHandler, authMiddleware, adminMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
	}

	return r, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
