package ginserver

import (
	"fmt"
	"net/http"
	"path"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gearbook/internal/app/commands"
	"gearbook/internal/app/dto"
	RentalApp "gearbook/internal/app/handlers/rental"
	"gearbook/internal/app/queries"
	domainpricing "gearbook/internal/domain/pricing"
	domainrental "gearbook/internal/domain/rental"
	"gearbook/internal/infra/storage/s3"
)

type RentalHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Uploader s3.Uploader
}

type createRentalRequest struct {
	ItemID      string    `json:"item_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	BillingMode string    `json:"billing_mode"`
	Protection  string    `json:"protection"`
}

func (h RentalHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode := domainpricing.BillingMode(req.BillingMode)
	if mode == "" {
		mode = domainpricing.BillDaily
	}
	tier := domainpricing.ProtectionTier(req.Protection)
	if tier == "" {
		tier = domainpricing.TierNone
	}
	cmd := RentalApp.RequestRentalCommand{
		CommandID:   uuid.NewString(),
		ItemID:      req.ItemID,
		RenterID:    user.UserID,
		Start:       req.Start,
		End:         req.End,
		BillingMode: mode,
		Protection:  tier,
		IdemKey:     c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[RentalApp.RequestRentalCommand, *RentalApp.RequestRentalResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h RentalHandler) Get(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	q := RentalApp.GetRentalQuery{RentalID: c.Param("id"), CallerID: user.UserID}
	view, err := queries.Ask[RentalApp.GetRentalQuery, dto.RentalView](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h RentalHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

func (h RentalHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h RentalHandler) decide(c *gin.Context, approve bool) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	var result *RentalApp.DecideRentalResult
	var err error
	if approve {
		cmd := RentalApp.ApproveRentalCommand{RentalID: c.Param("id"), OwnerID: user.UserID}
		result, err = commands.Dispatch[RentalApp.ApproveRentalCommand, *RentalApp.DecideRentalResult](c.Request.Context(), h.Commands, cmd)
	} else {
		cmd := RentalApp.RejectRentalCommand{RentalID: c.Param("id"), OwnerID: user.UserID}
		result, err = commands.Dispatch[RentalApp.RejectRentalCommand, *RentalApp.DecideRentalResult](c.Request.Context(), h.Commands, cmd)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RentalHandler) Cancel(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	cmd := RentalApp.CancelRentalCommand{RentalID: c.Param("id"), RenterID: user.UserID}
	result, err := commands.Dispatch[RentalApp.CancelRentalCommand, *RentalApp.CancelRentalResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RentalHandler) StartPayment(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	cmd := RentalApp.StartPaymentSessionCommand{
		RentalID: c.Param("id"),
		RenterID: user.UserID,
		IdemKey:  c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[RentalApp.StartPaymentSessionCommand, *RentalApp.StartPaymentSessionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type submitInspectionRequest struct {
	Stage     string    `json:"stage"`
	PhotoKeys []string  `json:"photo_keys"`
	Notes     string    `json:"notes"`
	WaiverBy  string    `json:"waiver_by"`
	WaiverAt  time.Time `json:"waiver_at"`
}

func (h RentalHandler) SubmitInspection(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	var req submitInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := RentalApp.SubmitInspectionCommand{
		RentalID:    c.Param("id"),
		SubmittedBy: user.UserID,
		Stage:       domainrental.Stage(req.Stage),
		PhotoKeys:   req.PhotoKeys,
		Notes:       req.Notes,
		WaiverBy:    req.WaiverBy,
		WaiverAt:    req.WaiverAt,
	}
	result, err := commands.Dispatch[RentalApp.SubmitInspectionCommand, *RentalApp.SubmitInspectionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadInspectionPhoto streams a photo to object storage and returns the
// key to include in the inspection submission.
func (h RentalHandler) UploadInspectionPhoto(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads unavailable"})
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("inspections/%s/%s/%s%s", c.Param("id"), user.UserID, uuid.NewString(), path.Ext(header.Filename))
	url, err := h.Uploader.Upload(c.Request.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key, "url": url})
}

func (h RentalHandler) MyRentals(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	q := RentalApp.RenterRentalsQuery{RenterID: user.UserID}
	views, err := queries.Ask[RentalApp.RenterRentalsQuery, []dto.RentalView](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h RentalHandler) OwnerRentals(c *gin.Context) {
	user, ok := requirePrincipal(c, "")
	if !ok {
		return
	}
	q := RentalApp.OwnerRentalsQuery{OwnerID: user.UserID}
	views, err := queries.Ask[RentalApp.OwnerRentalsQuery, []dto.RentalView](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

var _ RentalHTTP = RentalHandler{}
