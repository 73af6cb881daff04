package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/documents"
	"peoplehub/hr-portal/hr-portal-backend/internal/middleware"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

// OnboardingAPI holds the onboarding API handlers
type OnboardingAPI struct {
	Onboarding *onboarding.Handler
	Documents  *documents.Handler
}

// SetupOnboardingAPI builds the handlers over already wired services
func SetupOnboardingAPI(service *onboarding.Service, dispatcher *documents.Dispatcher, logger *zap.Logger) *OnboardingAPI {
	return &OnboardingAPI{
		Onboarding: onboarding.NewHandler(service, logger.Named("http")),
		Documents:  documents.NewHandler(dispatcher),
	}
}

// RegisterOnboardingRoutes mounts the handlers under /api/v1 behind the actor middleware.
// An empty jwtSecret falls back to X-User-ID and X-Organization-ID headers.
func RegisterOnboardingRoutes(router *gin.Engine, api *OnboardingAPI, jwtSecret string) *gin.RouterGroup {
	group := router.Group("/api/v1")
	group.Use(middleware.Actor(jwtSecret))
	api.Onboarding.RegisterRoutes(group)
	api.Documents.RegisterRoutes(group)
	return group
}
