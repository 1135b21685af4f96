package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/middleware"
	"medishare-backend-go/internal/token"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (Logging, Recovery, CORS) are applied to the
// router instance before this function is called, typically in main.go.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	tokens *token.Manager,
	cookieSecure bool,
	authService core.AuthService,
	userService core.UserService,
	reportService core.ReportService,
	shareService core.ShareService,
	accessService core.AccessService,
	auditService core.AuditService,
	faceVerifier core.FaceVerifier,
) {
	authMW := middleware.NewAuthMiddleware(tokens)

	authHandler := NewAuthHandler(authService, cookieSecure)
	userHandler := NewUserHandler(userService)
	reportHandler := NewReportHandler(reportService)
	shareHandler := NewShareHandler(shareService)
	faceHandler := NewFaceHandler(faceVerifier)
	accessHandler := NewAccessHandler(accessService)
	auditHandler := NewAuditHandler(auditService)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}

		usersGroup := apiV1.Group("/users", authMW.VerifySession())
		{
			usersGroup.GET("/me", userHandler.GetCurrentUser)
			usersGroup.PATCH("/me", userHandler.UpdateCurrentUser)
		}

		reportsGroup := apiV1.Group("/reports", authMW.VerifySession())
		{
			reportsGroup.POST("", reportHandler.CreateReport)
			reportsGroup.GET("", reportHandler.ListReports)
			// The static segment must be registered before the :reportId
			// parameter would otherwise swallow it.
			reportsGroup.GET("/shared", reportHandler.ListSharedReports)
			reportsGroup.GET("/:reportId", reportHandler.GetReport)
			reportsGroup.PATCH("/:reportId", reportHandler.UpdateReport)
			reportsGroup.POST("/:reportId/comments", reportHandler.AddComment)
			reportsGroup.POST("/:reportId/share", shareHandler.ShareReport)
			reportsGroup.POST("/:reportId/verify-face", faceHandler.SubmitFrame)
			reportsGroup.DELETE("/:reportId/verify-face", faceHandler.StopVerification)
		}

		apiV1.GET("/auditlog", authMW.VerifySession(), auditHandler.ListAuditLog)

		// Public redemption endpoints: the share token is the credential,
		// so no session middleware here.
		apiV1.POST("/otp-access", accessHandler.OtpAccess)
		apiV1.POST("/qr-validate", accessHandler.QrValidate)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "MediShare backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
