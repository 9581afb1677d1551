package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/freelancehub/backend/internal/config"
	"github.com/freelancehub/backend/internal/db"
	"github.com/freelancehub/backend/internal/handlers"
	"github.com/freelancehub/backend/internal/middleware"
	"github.com/freelancehub/backend/internal/services/inbox"
	"github.com/freelancehub/backend/internal/services/lifecycle"
	"github.com/freelancehub/backend/internal/services/messaging"
	"github.com/freelancehub/backend/internal/services/notify"
	"github.com/freelancehub/backend/internal/services/review"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Println("Redis unavailable, lifecycle events will not be published:", err)
		rdb = nil
	}

	dispatcher := notify.NewDispatcher(rdb)
	lifecycleSvc := lifecycle.NewService(gdb, dispatcher)
	reviewSvc := review.NewService(gdb, dispatcher)
	messagingSvc := messaging.NewService(gdb)
	inboxSvc := inbox.NewService(gdb)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:             gdb,
		JWTSecret:      cfg.JWTSecret,
		Expires:        cfg.JWTExpiresMin,
		GoogleClientID: cfg.GoogleClientID,
		GoogleSecret:   cfg.GoogleSecret,
		GoogleRedirect: cfg.GoogleRedirect,
		AppBaseURL:     cfg.AppBaseURL,
	}
	projectH := handlers.NewProjectHandler(gdb)
	proposalH := handlers.NewProposalHandler(gdb, lifecycleSvc)
	reviewH := handlers.NewReviewHandler(gdb, reviewSvc)
	chatH := handlers.NewChatHandler(gdb, messagingSvc, inboxSvc, cfg.UploadDir, cfg.AppBaseURL)
	profileH := handlers.NewProfileHandler(gdb)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/skills", profileH.ListSkills)
	api.Get("/projects", projectH.List)
	api.Get("/projects/:id", projectH.Detail)
	api.Get("/freelancers", profileH.BrowseFreelancers)

	// protected (JWT in cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/profile/:username", profileH.View)
	protected.Patch("/profile", profileH.Update)

	// client only
	protected.Post("/projects",
		middleware.RequireRoles("client"),
		projectH.Create,
	)
	protected.Get("/client/projects",
		middleware.RequireRoles("client"),
		projectH.Mine,
	)
	protected.Get("/projects/:id/proposals",
		middleware.RequireRoles("client"),
		projectH.Proposals,
	)
	protected.Post("/proposals/:id/accept",
		middleware.RequireRoles("client"),
		proposalH.Accept,
	)
	protected.Post("/proposals/:id/reject",
		middleware.RequireRoles("client"),
		proposalH.Reject,
	)
	protected.Post("/proposals/:id/review",
		middleware.RequireRoles("client"),
		reviewH.Submit,
	)

	// freelancer only
	protected.Post("/projects/:id/proposals",
		middleware.RequireRoles("freelancer"),
		proposalH.Submit,
	)
	protected.Get("/freelancer/proposals",
		middleware.RequireRoles("freelancer"),
		proposalH.Mine,
	)
	protected.Get("/freelancer/reviews",
		middleware.RequireRoles("freelancer"),
		reviewH.Received,
	)

	// chat
	chat := protected.Group("/chat")
	chat.Get("/", chatH.GetInbox)
	chat.Get("/:username", chatH.GetThread)
	chat.Post("/:username", chatH.SendMessage)

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
