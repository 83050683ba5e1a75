package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hospital-bed-management/internal/config"
	"hospital-bed-management/internal/database"
	"hospital-bed-management/internal/handler"
	"hospital-bed-management/internal/middleware"
	"hospital-bed-management/internal/repository"
	"hospital-bed-management/internal/service"
	"hospital-bed-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("Configuration loaded successfully")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 3. Initialize database connection
	db := database.Connect(cfg)

	// 4. Initialize repositories
	wardRepo := repository.NewWardRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	bedRepo := repository.NewBedRepo(db)
	rateRepo := repository.NewRateRepo(db)
	admissionRepo := repository.NewAdmissionRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// 5. Initialize external ports
	patients := service.NewPatientClient(cfg.PatientService.BaseURL, cfg.PatientService.Timeout)
	capabilities := service.NewRoleCapabilityChecker()

	// 6. Initialize services
	authService := service.NewAuthService(userRepo, auditRepo)
	inventoryService := service.NewInventoryService(wardRepo, roomRepo, bedRepo, rateRepo, auditRepo)
	admissionService := service.NewAdmissionService(db, admissionRepo, bedRepo, transferRepo, patients, auditRepo)
	transferService := service.NewTransferService(db, transferRepo, admissionRepo, bedRepo, admissionService, auditRepo)
	chargeService := service.NewChargeService(admissionRepo, transferRepo, rateRepo)
	sweeperService := service.NewSweeperService(bedRepo, cfg.Sweeper.Interval)

	// 7. Start reservation sweeper in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeperService.Start(ctx)

	// 8. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	r.Use(middleware.CORS(cfg))

	// 9. Register handlers
	authHandler := handler.NewAuthHandler(authService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	admissionHandler := handler.NewAdmissionHandler(admissionService)
	transferHandler := handler.NewTransferHandler(transferService)
	chargeHandler := handler.NewChargeHandler(chargeService)

	// 10. Define routes
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "hospital-bed-management",
		})
	})

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// API routes (authenticated); each mutating route is gated by its own
	// capability
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		manageInventory := middleware.RequireCapability(capabilities, service.CapManageInventory)

		api.GET("/wards", inventoryHandler.GetWards)
		api.POST("/wards", manageInventory, inventoryHandler.CreateWard)
		api.PUT("/wards/:id", manageInventory, inventoryHandler.UpdateWard)
		api.DELETE("/wards/:id", manageInventory, inventoryHandler.DeleteWard)

		api.GET("/rooms", inventoryHandler.GetRooms)
		api.POST("/rooms", manageInventory, inventoryHandler.CreateRoom)
		api.PUT("/rooms/:id", manageInventory, inventoryHandler.UpdateRoom)
		api.DELETE("/rooms/:id", manageInventory, inventoryHandler.DeleteRoom)

		api.GET("/beds", inventoryHandler.GetBeds)
		api.POST("/beds", manageInventory, inventoryHandler.CreateBed)
		api.PUT("/beds/:id", manageInventory, inventoryHandler.UpdateBed)
		api.DELETE("/beds/:id", manageInventory, inventoryHandler.DeleteBed)
		api.POST("/beds/:id/state", manageInventory, inventoryHandler.SetBedState)

		api.GET("/bed-rates", inventoryHandler.GetBedRates)
		api.POST("/bed-rates", manageInventory, inventoryHandler.CreateBedRate)

		admitPatient := middleware.RequireCapability(capabilities, service.CapAdmitPatient)

		api.GET("/admissions", admissionHandler.ListAdmissions)
		api.POST("/admissions", admitPatient, admissionHandler.CreateAdmission)
		api.GET("/admissions/:id", admissionHandler.GetAdmission)
		api.PUT("/admissions/:id", admitPatient, admissionHandler.UpdateAdmission)
		api.POST("/admissions/:id/discharge", admitPatient, admissionHandler.DischargeAdmission)
		api.POST("/admissions/:id/cancel", admitPatient, admissionHandler.CancelAdmission)
		api.GET("/admissions/:id/transfers", transferHandler.ListTransfersByAdmission)
		api.GET("/admissions/:id/charges", chargeHandler.PreviewBedCharges)

		api.POST("/transfers",
			middleware.RequireCapability(capabilities, service.CapTransferCreate),
			transferHandler.RequestTransfer)
		api.GET("/transfers/:id", transferHandler.GetTransfer)
		api.GET("/transfers/:id/events", transferHandler.ListTransferEvents)
		api.POST("/transfers/:id/approve",
			middleware.RequireCapability(capabilities, service.CapTransferApprove),
			transferHandler.ApproveTransfer)
		api.POST("/transfers/:id/assign-bed",
			middleware.RequireCapability(capabilities, service.CapTransferApprove),
			transferHandler.AssignTransferBed)
		api.POST("/transfers/:id/complete",
			middleware.RequireCapability(capabilities, service.CapTransferComplete),
			transferHandler.CompleteTransfer)
		api.POST("/transfers/:id/cancel",
			middleware.RequireCapability(capabilities, service.CapTransferCancel),
			transferHandler.CancelTransfer)
	}

	// 11. Setup graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel sweeper context
	cancel()
	log.Println("Server exited")
}
