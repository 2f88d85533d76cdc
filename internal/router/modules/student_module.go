package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/languagebridge/admin-api/internal/container"
	"github.com/languagebridge/admin-api/internal/domain/entity"
	handlers "github.com/languagebridge/admin-api/internal/interface/http"
	"github.com/languagebridge/admin-api/internal/interface/middleware"
	"github.com/languagebridge/admin-api/pkg/helpers"
)

// StudentModule wires the student CRUD handlers into routes.
// All routes require an authenticated session; deletion additionally
// requires the admin role because it cascades across the whole aggregate.
type StudentModule struct {
	Handler *handlers.StudentHandler
	JWT     *helpers.JWTManager
}

func NewStudentModule(h *handlers.StudentHandler, jwt *helpers.JWTManager) *StudentModule {
	return &StudentModule{Handler: h, JWT: jwt}
}

func (m *StudentModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/students")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("", m.Handler.Create)
		auth.GET("", m.Handler.List)
		auth.GET("/:id", m.Handler.GetByID)
		auth.GET("/ward/:wardId", m.Handler.GetByWard)
		auth.GET("/user/:userId", m.Handler.GetByUser)
		auth.PUT("/:id", m.Handler.Update)
		auth.PUT("/upload/:id", m.Handler.Upload)
		auth.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), m.Handler.Delete)
	}
}
