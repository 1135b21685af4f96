package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medishare-backend-go/internal/api"
	"medishare-backend-go/internal/config"
	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/messaging"
	"medishare-backend-go/internal/middleware"
	"medishare-backend-go/internal/storage"
	"medishare-backend-go/internal/token"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	encryptionKey, err := appConfig.DecodedEncryptionKey()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid encryption key", zap.Error(err))
	}

	// --- 3. Initialize Firestore ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore", zap.Error(err))
	}
	firestoreClient := db.GetFirestoreClient()
	if firestoreClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore client is nil after initialization. Application cannot start.")
	}
	zapLogger.Info("Firestore client initialized successfully.")

	// --- 4. Initialize Media Storage, Tokens and Messaging ---
	mediaStore, err := storage.NewMediaStore(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize media storage", zap.Error(err))
	}
	defer mediaStore.Close()

	tokenManager, err := token.NewManager(appConfig.JWTSecret)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize token manager", zap.Error(err))
	}

	// Messaging is optional: without Twilio credentials, shares still work
	// but codes and QR links are not dispatched anywhere.
	var sender core.MessageSender
	if appConfig.MessagingConfigured() {
		whatsapp, err := messaging.NewWhatsAppSender(appConfig.TwilioAccountSID, appConfig.TwilioAuthToken, appConfig.TwilioWhatsAppFrom)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize WhatsApp sender", zap.Error(err))
		}
		sender = whatsapp
		zapLogger.Info("WhatsApp messaging enabled.")
	} else {
		zapLogger.Warn("WhatsApp messaging DISABLED: Twilio credentials are not configured.")
	}

	// --- 5. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	reportRepo := db.NewFirestoreReportRepository(firestoreClient)
	sharedRepo := db.NewFirestoreSharedReportRepository(firestoreClient)
	otpRepo := db.NewFirestoreOtpShareRepository(firestoreClient)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 6. Initialize Services ---
	auditService := core.NewAuditService(auditRepo, reportRepo, sharedRepo, userRepo, zapLogger)
	faceVerifier := core.NewFaceVerifier(userRepo, encryptionKey)
	authService := core.NewAuthService(userRepo, tokenManager, mediaStore, encryptionKey)
	userService := core.NewUserService(userRepo, mediaStore, encryptionKey)
	reportService := core.NewReportService(reportRepo, sharedRepo, userRepo, mediaStore, faceVerifier, auditService, zapLogger)
	shareService := core.NewShareService(reportRepo, userRepo, sharedRepo, otpRepo, tokenManager, sender, mediaStore, appConfig.ClientURL, zapLogger)
	accessService := core.NewAccessService(reportRepo, userRepo, tokenManager, mediaStore, auditService)
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Setup Gin HTTP Engine ---
	releaseMode := strings.ToLower(appConfig.GinMode) == "release"
	if releaseMode {
		gin.SetMode(gin.ReleaseMode)
		zapLogger.Info("Gin mode set to 'release'.")
	} else {
		gin.SetMode(gin.DebugMode)
		zapLogger.Info("Gin mode set to 'debug'.")
	}
	router := gin.New()

	// --- 8. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	// --- 9. Setup API Routes ---
	api.SetupRoutes(
		router,
		zapLogger,
		tokenManager,
		releaseMode, // secure cookies whenever we are behind TLS
		authService,
		userService,
		reportService,
		shareService,
		accessService,
		auditService,
		faceVerifier,
	)

	// --- 10. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
