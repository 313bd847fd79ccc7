package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/constants"
	"github.com/taskdesk/taskdesk-api/internal/database"
	"github.com/taskdesk/taskdesk-api/internal/handlers"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"github.com/taskdesk/taskdesk-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()
	r.Use(middleware.RequestID())

	// Setup session middleware: Redis-backed when configured, cookie
	// otherwise.
	store, err := buildSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Notification hub
	hub := services.NewHub()
	go hub.Run()

	// Services
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}
	tokenService := services.NewTokenService(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, taskRepo)
	clientService := services.NewClientService(clientRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, clientRepo, hub, aiService)

	// Overdue sweep
	sweeper := services.NewOverdueSweeper(taskService, cfg.OverdueSweepEvery)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start overdue sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenService)
	userHandler := handlers.NewUserHandler(userService)
	clientHandler := handlers.NewClientHandler(clientService)
	taskHandler := handlers.NewTaskHandler(taskService)
	wsHandler := handlers.NewWSHandler(hub)

	requireAuth := middleware.RequireAuth(userRepo, tokenService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TaskDesk API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		api.PUT("/profile", requireAuth, authHandler.UpdateProfile)

		// Admin user management
		users := api.Group("/users")
		users.Use(requireAuth, middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		// Client routes (protected)
		clients := api.Group("/clients")
		clients.Use(requireAuth)
		{
			clients.POST("", clientHandler.CreateClient)
			clients.GET("", clientHandler.ListClients)
			clients.GET("/:id", clientHandler.GetClient)
			clients.PUT("/:id", clientHandler.UpdateClient)
			clients.DELETE("/:id", clientHandler.DeleteClient)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/stats", middleware.RequireAdmin(), taskHandler.TaskStatistics)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Notification stream (protected)
		api.GET("/ws", requireAuth, wsHandler.Subscribe)
	}

	// Start server behind the CORS layer
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", constants.HeaderRequestID},
		AllowCredentials: true,
	}).Handler(r)

	log.Printf("Server starting on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, corsHandler); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildSessionStore(cfg *config.Config) (sessions.Store, error) {
	isProduction := cfg.GinMode == "release"
	options := sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		store, err := redisStore.NewStore(10, "tcp", redisAddr, "", "", []byte(cfg.SessionSecret))
		if err != nil {
			return nil, err
		}
		store.Options(options)
		return store, nil
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(options)
	return store, nil
}
