package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/payfi/payfi-backend/internal/middleware"
	"github.com/dafibh/payfi/payfi-backend/internal/policy"
	"github.com/dafibh/payfi/payfi-backend/internal/service"
	"github.com/dafibh/payfi/payfi-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const testOwnerID = "auth0|owner-1"

// setupAuthContext marks the request as authenticated for ownerID
func setupAuthContext(c echo.Context, ownerID string) {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: ownerID},
		CustomClaims:     &middleware.CustomClaims{Email: "owner@example.com"},
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.OwnerIDKey, ownerID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// newAgentRequest builds an authenticated context for an /agents/:agentId route
func newAgentRequest(e *echo.Echo, method, target, agentID, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("agentId")
	c.SetParamValues(agentID)
	setupAuthContext(c, testOwnerID)
	return c, rec
}

type handlerFixture struct {
	policyRepo      *testutil.MockAgentPolicyRepository
	exportRepo      *testutil.MockExportRepository
	policyService   *service.AgentPolicyService
	spendingService *service.SpendingService
	policyHandler   *AgentPolicyHandler
	spendingHandler *SpendingHandler
}

func newHandlerFixture() *handlerFixture {
	policyRepo := testutil.NewMockAgentPolicyRepository()
	exportRepo := testutil.NewMockExportRepository()
	trackers := policy.NewTrackerRegistry(0, policy.WithLocation(time.UTC))

	policyService := service.NewAgentPolicyService(policyRepo, nil)
	spendingService := service.NewSpendingService(policyService, trackers, zerolog.Nop())
	spendingService.SetExportRepository(exportRepo)

	return &handlerFixture{
		policyRepo:      policyRepo,
		exportRepo:      exportRepo,
		policyService:   policyService,
		spendingService: spendingService,
		policyHandler:   NewAgentPolicyHandler(policyService),
		spendingHandler: NewSpendingHandler(spendingService),
	}
}
