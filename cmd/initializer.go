package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"goaltips/internal/config"
	"goaltips/internal/handlers"
	"goaltips/internal/repositories"
	"goaltips/internal/services"
	"goaltips/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	userRepo         *repositories.UserRepository
	subscriptionRepo *repositories.SubscriptionRepository

	userHandler         *handlers.UserHandler
	matchHandler        *handlers.MatchHandler
	tipHandler          *handlers.TipHandler
	packageHandler      *handlers.PackageHandler
	paymentHandler      *handlers.PaymentHandler
	subscriptionHandler *handlers.SubscriptionHandler
	ticketHandler       *handlers.TicketHandler
	fcmHandler          *handlers.FCMHandler

	tipFeedHub *TipFeedHub
}

func initializeApp(db *sql.DB, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	matchRepo := repositories.MatchRepository{DB: db}
	tipRepo := repositories.TipRepository{DB: db}
	packageRepo := repositories.PackageRepository{DB: db}
	transactionRepo := repositories.TransactionRepository{DB: db}
	subscriptionRepo := repositories.SubscriptionRepository{DB: db}
	ticketRepo := repositories.TicketRepository{DB: db}

	tokenManager, err := utils.NewManager(jwtSecret())
	if err != nil {
		errorLog.Fatal(err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})

	gateway, err := services.NewMpesaService(services.MpesaConfig{
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.Shortcode,
		BaseURL:        cfg.Mpesa.BaseURL,
		CallbackURL:    cfg.Mpesa.CallbackURL,
		Logger:         slog.New(slog.NewTextHandler(os.Stdout, nil)),
	})
	if err != nil {
		errorLog.Fatal(err)
	}

	// Services
	userService := &services.UserService{UserRepo: &userRepo, Tokens: tokenManager}
	matchService := &services.MatchService{MatchRepo: &matchRepo}
	tipService := &services.TipService{
		TipRepo:          &tipRepo,
		SubscriptionRepo: &subscriptionRepo,
		Redis:            redisClient,
		ErrorLog:         errorLog,
	}
	packageService := &services.PackageService{PackageRepo: &packageRepo}
	subscriptionService := &services.SubscriptionService{
		SubscriptionRepo: &subscriptionRepo,
		PackageRepo:      &packageRepo,
	}
	ticketService := &services.TicketService{TicketRepo: &ticketRepo}
	paymentService := &services.PaymentService{
		Gateway:      gateway,
		Transactions: &transactionRepo,
		Packages:     &packageRepo,
	}
	webhookService := &services.PaymentWebhookService{
		Transactions:  &transactionRepo,
		Packages:      &packageRepo,
		Subscriptions: &subscriptionRepo,
		InfoLog:       infoLog,
		ErrorLog:      errorLog,
	}

	fcmHandler := handlers.NewFCMHandler(newMessagingClient(cfg, errorLog), db, errorLog)

	hub := NewTipFeedHub()

	// Handlers
	app := &application{
		errorLog:            errorLog,
		infoLog:             infoLog,
		db:                  db,
		userRepo:            &userRepo,
		subscriptionRepo:    &subscriptionRepo,
		userHandler:         &handlers.UserHandler{Service: userService},
		matchHandler:        &handlers.MatchHandler{Service: matchService},
		packageHandler:      &handlers.PackageHandler{Service: packageService},
		paymentHandler:      &handlers.PaymentHandler{Service: paymentService, Webhook: webhookService},
		subscriptionHandler: &handlers.SubscriptionHandler{Service: subscriptionService},
		ticketHandler:       &handlers.TicketHandler{Service: ticketService},
		fcmHandler:          fcmHandler,
		tipFeedHub:          hub,
	}
	app.tipHandler = &handlers.TipHandler{
		Service:   tipService,
		FCM:       fcmHandler,
		Broadcast: hub.Broadcast,
	}
	return app
}

// newMessagingClient returns nil when firebase is not configured; push
// notifications are then silently disabled.
func newMessagingClient(cfg config.Config, errorLog *log.Logger) *messaging.Client {
	credentials := cfg.Firebase.CredentialsFile
	if credentials == "" {
		return nil
	}

	ctx := context.Background()
	fbApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentials))
	if err != nil {
		errorLog.Printf("firebase init: %v", err)
		return nil
	}
	client, err := fbApp.Messaging(ctx)
	if err != nil {
		errorLog.Printf("firebase messaging init: %v", err)
		return nil
	}
	return client
}

func jwtSecret() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return "dev-only-signing-key"
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
