package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"smartstart-backend/controllers"
	"smartstart-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controllers into the gin engine.
func SetupRouter(
	lc *controllers.LegalController,
	dc *controllers.DocumentController,
	ac *controllers.AuditController,
	db *gorm.DB,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	authMiddleware := middleware.NewAuthMiddleware(db)

	r.Use(reqMiddleware.ProcessRequest())
	r.Use(reqMiddleware.RecoverPanic())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
		}

		legal := api.Group("/legal")
		legal.Use(authMiddleware.RequireAuth())
		{
			legal.GET("/required", lc.GetRequired)
			legal.POST("/sign", lc.Sign)
			legal.GET("/status", lc.Status)
		}

		documents := api.Group("/documents")
		documents.Use(authMiddleware.RequireAuth())
		{
			documents.GET("", dc.List)
			documents.POST("", dc.Create)
		}

		audit := api.Group("/audit")
		audit.Use(authMiddleware.RequireAuth())
		{
			audit.GET("", ac.List)
		}
	}

	return r
}
