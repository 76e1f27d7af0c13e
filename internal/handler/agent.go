package handler

import (
	"github.com/dafibh/payfi/payfi-backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// agentScope resolves the authenticated owner and the :agentId path parameter.
// On failure it writes the problem response and returns ok=false.
func agentScope(c echo.Context) (ownerID string, agentID uuid.UUID, ok bool, err error) {
	ownerID = middleware.GetOwnerID(c)
	if ownerID == "" {
		return "", uuid.Nil, false, NewUnauthorizedError(c, "Authentication required")
	}

	agentID, parseErr := uuid.Parse(c.Param("agentId"))
	if parseErr != nil {
		return "", uuid.Nil, false, NewValidationError(c, "Invalid agent ID", []ValidationError{
			{Field: "agentId", Message: "Must be a valid UUID"},
		})
	}

	return ownerID, agentID, true, nil
}
