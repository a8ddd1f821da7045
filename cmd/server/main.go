package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/limbahku/backend/internal/config"
	"github.com/limbahku/backend/internal/handlers"
	appMiddleware "github.com/limbahku/backend/internal/middleware"
	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Storage-backed services. MONGO_URI selects persistent storage; without
	// it the server runs fully in memory, which is what local dev uses.
	var (
		catalog  services.CatalogService
		profiles services.ProfileService
		txStore  services.TransactionStore
	)
	if cfg.MongoURI != "" {
		mongoCatalog, err := services.NewMongoCatalogService(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("mongo catalog init failed: %v", err)
		}
		defer mongoCatalog.Close(ctx)
		if err := mongoCatalog.SeedItems(ctx, models.DefaultItems()...); err != nil {
			log.Printf("Warning: catalog seed failed: %v", err)
		}

		mongoProfiles, err := services.NewMongoProfileService(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("mongo profile init failed: %v", err)
		}
		defer mongoProfiles.Close(ctx)

		mongoTx, err := services.NewMongoTransactionStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("mongo transaction init failed: %v", err)
		}
		defer mongoTx.Close(ctx)

		catalog, profiles, txStore = mongoCatalog, mongoProfiles, mongoTx
	} else {
		log.Printf("MONGO_URI not set, using in-memory storage")
		memCatalog := services.NewMemoryCatalogService()
		memCatalog.SeedItems(models.DefaultItems()...)
		catalog = memCatalog
		profiles = services.NewMemoryProfileService()
		txStore = services.NewMemoryTransactionStore()
	}

	// External clients
	distance := services.NewGoogleDistanceClient(cfg.GoogleMapsAPIKey)
	geocoder := services.NewGoogleGeocodingClient(cfg.GoogleMapsAPIKey)
	uploader := services.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset)
	gemini := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	// Domain services
	authService := services.NewAuthService(profiles)
	matching := services.NewMatchingService(catalog, profiles, distance)
	transactions := services.NewTransactionService(txStore, catalog, profiles)
	assistant := services.NewAssistantService(gemini)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecret, cfg.JWTExpiration)
	catalogHandler := handlers.NewCatalogHandler(catalog)
	quoteHandler := handlers.NewQuoteHandler(matching, profiles)
	transactionHandler := handlers.NewTransactionHandler(transactions)
	profileHandler := handlers.NewProfileHandler(profiles)
	geocodeHandler := handlers.NewGeocodeHandler(geocoder)
	uploadHandler := handlers.NewUploadHandler(uploader, cfg.MaxUploadSizeMB)
	chatHandler := handlers.NewChatHandler(assistant)

	// Firebase Auth when configured, local JWT otherwise.
	authMiddleware := appMiddleware.JWTAuth(cfg.JWTSecret)
	if cfg.FirebaseProjectID != "" {
		authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
		})
		if err != nil {
			log.Fatalf("firebase auth init failed: %v", err)
		}
		authMiddleware = appMiddleware.FirebaseAuth(authClient)
	} else {
		log.Printf("FIREBASE_PROJECT_ID not set, using local JWT auth")
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/chat", chatHandler.Chat)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", catalogHandler.ListItems)
				r.Get("/categories", catalogHandler.ListCategories)
				r.Route("/{itemId}", func(r chi.Router) {
					r.Get("/", catalogHandler.GetItem)
					r.Get("/listing", catalogHandler.GetListing)
					r.Put("/listing", catalogHandler.UpdateListing)
					r.Get("/quote", quoteHandler.GetQuote)
				})
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", transactionHandler.CreateTransaction)
				r.Get("/", transactionHandler.ListTransactions)
				r.Get("/stream", transactionHandler.StreamTransactions)
				r.Patch("/{transactionId}/status", transactionHandler.AdvanceStatus)
			})

			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile/addresses", profileHandler.UpdateAddresses)
			r.Get("/collectors", profileHandler.ListCollectors)

			r.Get("/geocode", geocodeHandler.Forward)
			r.Get("/geocode/reverse", geocodeHandler.Reverse)

			r.Post("/upload", uploadHandler.UploadImage)
		})
	})

	log.Printf("LimbahKu API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
