package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	ServiceName    string
	JWTSecret      string
	AllowedOrigins []string
}

// NewRouter wires the API routes onto a gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api", Authenticate(cfg.JWTSecret))
	api.POST("/quizzes", RequireRole(RoleTeacher, RoleAdmin), h.CreateQuiz)
	api.GET("/quizzes/:quizID", h.GetQuiz)
	api.POST("/quizzes/:quizID/submit", h.Submit)
	api.GET("/quizzes/:quizID/submission", h.GetSubmission)
	api.GET("/students/me/badges", h.ListBadges)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-User-ID", "X-User-Role"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
