package middleware

import (
	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequireOpenCashSession gates checkout endpoints: the authenticated user
// must have an open cash-drawer session. The session is not re-validated
// inside the sale transaction.
func RequireOpenCashSession(cashRepo repository.CashRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(apierror.Status(apierror.ErrCashSessionClosed), apierror.New(apierror.ErrCashSessionClosed.Error()))
			return
		}
		if _, err := cashRepo.FindOpenByUser(c.Request.Context(), userID); err != nil {
			c.AbortWithStatusJSON(apierror.Status(apierror.ErrCashSessionClosed), apierror.New(apierror.ErrCashSessionClosed.Error()))
			return
		}
		c.Next()
	}
}
