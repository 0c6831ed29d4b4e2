package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendora/config"
	"vendora/internal/database"
	"vendora/internal/jobs"
	"vendora/internal/repository"
	"vendora/internal/router"
	"vendora/internal/service"
	"vendora/pkg/cloudinary"
	"vendora/pkg/gateway"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}
	provider := gateway.NewPaystackProvider(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paymentRepo := repository.NewPaymentRepository(db)
	fileRepo := repository.NewFileRepository(db)
	chatRepo := repository.NewChatRepository(db)
	settleSvc := service.NewSettlementService(paymentRepo, fileRepo, chatRepo)
	reconciler := jobs.NewReconciler(paymentRepo, settleSvc, provider, cfg.Reconcile.Interval, cfg.Reconcile.StaleAfter)
	go reconciler.Start(rootCtx)

	engine := router.Setup(cfg, db, cloud, provider)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	cancel()
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
