package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearbook/internal/app/commands"
	RentalApp "gearbook/internal/app/handlers/rental"
	domainuser "gearbook/internal/domain/user"
)

type AdminHandler struct {
	Commands commands.Bus
}

type refundRequest struct {
	Reason string `json:"reason"`
}

func (h AdminHandler) Refund(c *gin.Context) {
	if _, ok := requirePrincipal(c, domainuser.RoleAdmin); !ok {
		return
	}
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := RentalApp.AdminRefundCommand{
		RentalID: c.Param("id"),
		Reason:   req.Reason,
		IdemKey:  c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[RentalApp.AdminRefundCommand, *RentalApp.AdminRefundResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ReleasePayout(c *gin.Context) {
	if _, ok := requirePrincipal(c, domainuser.RoleAdmin); !ok {
		return
	}
	cmd := RentalApp.ReleasePayoutCommand{
		RentalID: c.Param("id"),
		IdemKey:  c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[RentalApp.ReleasePayoutCommand, *RentalApp.ReleasePayoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
