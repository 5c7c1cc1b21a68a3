package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/clearbooks/backend/internal/config"
	"github.com/clearbooks/backend/internal/database"
	"github.com/clearbooks/backend/internal/handlers"
	mW "github.com/clearbooks/backend/internal/middleware"
	"github.com/clearbooks/backend/internal/services"
)

func main() {
	config.Init()

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}
	reportCache := services.NewReportCache(redisClient)

	accountService := services.NewAccountService(db)
	payeeService := services.NewPayeeService(db)
	classService := services.NewClassService(db)
	ledgerService := services.NewLedgerService(db, reportCache)
	reportService := services.NewReportService(db, accountService, reportCache)
	importService := services.NewImportService(accountService, payeeService, classService, ledgerService)

	accountHandler := handlers.NewAccountHandler(accountService)
	payeeHandler := handlers.NewPayeeHandler(payeeService)
	classHandler := handlers.NewClassHandler(classService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	reportHandler := handlers.NewReportHandler(reportService)
	importHandler := handlers.NewImportHandler(importService)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.OrganizationMiddleware)

		r.Post("/imports/accounts", importHandler.ImportAccounts)
		r.Post("/imports/payees", importHandler.ImportPayees)
		r.Post("/imports/classes", importHandler.ImportClasses)
		r.Post("/imports/ledger", importHandler.ImportLedger)

		r.Get("/reports/balance-sheet", reportHandler.BalanceSheet)
		r.Get("/reports/profit-and-loss", reportHandler.ProfitAndLoss)

		r.Get("/transactions", transactionHandler.List)
		r.Post("/transactions", transactionHandler.Create)
		r.Get("/transactions/{id}", transactionHandler.Get)
		r.Put("/transactions/{id}", transactionHandler.Update)
		r.Delete("/transactions/{id}", transactionHandler.Delete)

		r.Get("/accounts", accountHandler.List)
		r.Post("/accounts", accountHandler.Create)
		r.Put("/accounts/{id}", accountHandler.Update)

		r.Get("/payees", payeeHandler.List)
		r.Post("/payees", payeeHandler.Create)
		r.Put("/payees/{id}", payeeHandler.Update)

		r.Get("/classes", classHandler.List)
		r.Post("/classes", classHandler.Create)
		r.Put("/classes/{id}", classHandler.Update)
	})

	port := viper.GetString("server.port")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
