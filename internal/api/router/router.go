package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ai2sql/internal/api/handler"
	"ai2sql/internal/api/middleware"
	"ai2sql/internal/pkg/config"
	"ai2sql/internal/pkg/jwt"
	"ai2sql/internal/service"
)

// Setup builds the HTTP engine
func Setup(cfg *config.Config, services *service.Services, jwtManager *jwt.Manager) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := handler.NewAuthHandler(services.Auth)
	userHandler := handler.NewUserHandler(services.User)
	projectHandler := handler.NewProjectHandler(services.Project)
	memberHandler := handler.NewMemberHandler(services.Member)
	chatHandler := handler.NewChatHandler(services.Chat)
	noteHandler := handler.NewNoteHandler(services.Note)
	exampleHandler := handler.NewSQLExampleHandler(services.Example)
	connectionHandler := handler.NewConnectionHandler(services.Connection)
	metadataHandler := handler.NewMetadataHandler(services.Metadata)
	settingsHandler := handler.NewSettingsHandler(services.Settings)

	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
		}

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtManager))
		{
			authed.GET("/auth/me", authHandler.Me)
			authed.POST("/auth/logout", authHandler.Logout)

			authed.PUT("/profile", userHandler.UpdateProfile)

			users := authed.Group("/users")
			{
				users.GET("", userHandler.List)
				users.GET("/search", userHandler.Search)
				users.PUT("/:id/role", userHandler.SetRole)
				users.PUT("/:id/status", userHandler.SetStatus)
				users.GET("/:id/projects", userHandler.Memberships)
			}

			authed.GET("/settings", settingsHandler.Get)
			authed.PUT("/settings", settingsHandler.Update)

			projects := authed.Group("/projects")
			{
				projects.GET("", projectHandler.List)
				projects.POST("", projectHandler.Create)
				projects.GET("/current", projectHandler.Current)
				projects.PUT("/current", projectHandler.Select)
				projects.GET("/:id", projectHandler.Get)
				projects.PUT("/:id", projectHandler.Update)
				projects.DELETE("/:id", projectHandler.Delete)

				projects.GET("/:id/members", memberHandler.List)
				projects.POST("/:id/members", memberHandler.Add)
				projects.PUT("/:id/members/:user_id", memberHandler.UpdateRole)
				projects.DELETE("/:id/members/:user_id", memberHandler.Remove)

				projects.GET("/:id/chats", chatHandler.List)
				projects.POST("/:id/chats", chatHandler.Create)
				projects.GET("/:id/chats/:chat_id", chatHandler.Get)
				projects.PUT("/:id/chats/:chat_id", chatHandler.Rename)
				projects.DELETE("/:id/chats/:chat_id", chatHandler.Delete)
				projects.POST("/:id/chats/:chat_id/messages", chatHandler.SendMessage)
				projects.POST("/:id/chats/:chat_id/regenerate", chatHandler.Regenerate)

				projects.GET("/:id/notes", noteHandler.List)
				projects.POST("/:id/notes", noteHandler.Create)
				projects.GET("/:id/notes/:note_id", noteHandler.Get)
				projects.PUT("/:id/notes/:note_id", noteHandler.Update)
				projects.DELETE("/:id/notes/:note_id", noteHandler.Delete)

				projects.GET("/:id/examples", exampleHandler.List)
				projects.POST("/:id/examples", exampleHandler.Create)
				projects.GET("/:id/examples/search", exampleHandler.Search)
				projects.GET("/:id/examples/export", exampleHandler.Export)
				projects.POST("/:id/examples/import", exampleHandler.Import)
				projects.GET("/:id/examples/:example_id", exampleHandler.Get)
				projects.PUT("/:id/examples/:example_id", exampleHandler.Update)
				projects.DELETE("/:id/examples/:example_id", exampleHandler.Delete)

				projects.GET("/:id/connection", connectionHandler.Get)
				projects.POST("/:id/connection", connectionHandler.Create)
				projects.PUT("/:id/connection", connectionHandler.Update)
				projects.DELETE("/:id/connection", connectionHandler.Delete)
				projects.POST("/:id/connection/test", connectionHandler.Test)

				projects.GET("/:id/metadata", metadataHandler.List)
				projects.POST("/:id/metadata/extract", metadataHandler.Extract)
				projects.PUT("/:id/metadata/:table_id", metadataHandler.Update)
			}
		}
	}

	return r
}
