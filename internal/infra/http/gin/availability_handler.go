package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gearbook/internal/app/commands"
	"gearbook/internal/app/dto"
	AvailabilityApp "gearbook/internal/app/handlers/availability"
	"gearbook/internal/app/queries"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Calendar returns held days in a window. Defaults to the next 90 days
// when the query string omits the range.
func (h AvailabilityHandler) Calendar(c *gin.Context) {
	callerID := ""
	if p, ok := currentPrincipal(c); ok {
		callerID = p.UserID
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 3, 0)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		to = parsed
	}

	q := AvailabilityApp.GetCalendarQuery{
		ItemID:   c.Param("id"),
		From:     from,
		To:       to,
		CallerID: callerID,
	}
	view, err := queries.Ask[AvailabilityApp.GetCalendarQuery, dto.CalendarView](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type blockDatesRequest struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	BlockRef string    `json:"block_ref"`
}

func (h AvailabilityHandler) Block(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	var req blockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BlockRef == "" {
		req.BlockRef = "block-" + uuid.NewString()
	}
	cmd := AvailabilityApp.BlockDatesCommand{
		ItemID:   c.Param("id"),
		OwnerID:  user.UserID,
		Start:    req.Start,
		End:      req.End,
		BlockRef: req.BlockRef,
	}
	result, err := commands.Dispatch[AvailabilityApp.BlockDatesCommand, *AvailabilityApp.BlockDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type unblockDatesRequest struct {
	BlockRef string `json:"block_ref"`
}

func (h AvailabilityHandler) Unblock(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	var req unblockDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BlockRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "block_ref is required"})
		return
	}
	cmd := AvailabilityApp.UnblockDatesCommand{
		ItemID:   c.Param("id"),
		OwnerID:  user.UserID,
		BlockRef: req.BlockRef,
	}
	result, err := commands.Dispatch[AvailabilityApp.UnblockDatesCommand, *AvailabilityApp.BlockDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
