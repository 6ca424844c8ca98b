package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearbook/internal/app/dto"
	EarningsApp "gearbook/internal/app/handlers/earnings"
	"gearbook/internal/app/queries"
)

type EarningsHandler struct {
	Queries queries.Bus
}

func (h EarningsHandler) Owner(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	ownerID := user.UserID
	if requested := c.Query("owner_id"); requested != "" && user.IsAdmin() {
		ownerID = requested
	}
	q := EarningsApp.OwnerEarningsQuery{OwnerID: ownerID}
	view, err := queries.Ask[EarningsApp.OwnerEarningsQuery, dto.EarningsView](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

var _ EarningsHTTP = EarningsHandler{}
