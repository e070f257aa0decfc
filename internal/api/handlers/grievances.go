package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/api/flash"
	"github.com/gurkanbulca/grievanceportal/internal/middleware"
	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/internal/service"
)

type GrievanceHandler struct {
	grievanceService *service.GrievanceService
	logger           *zap.Logger
}

func NewGrievanceHandler(grievanceService *service.GrievanceService, logger *zap.Logger) *GrievanceHandler {
	return &GrievanceHandler{
		grievanceService: grievanceService,
		logger:           logger.With(zap.String("handler", "grievances")),
	}
}

func views(grievances []*models.Grievance) []models.GrievanceView {
	out := make([]models.GrievanceView, len(grievances))
	for i, g := range grievances {
		out[i] = g.View()
	}
	return out
}

func (gh *GrievanceHandler) portalData(c *gin.Context, title string) gin.H {
	ctx := c.Request.Context()
	account, _ := middleware.CurrentAccount(c)

	data := gin.H{
		"Title":      title,
		"Username":   account.Username,
		"Grievances": views(gh.grievanceService.ListAll(ctx)),
		"Stats":      gh.grievanceService.Stats(ctx),
		"Statuses":   models.Statuses,
		"Priorities": models.Priorities,
	}
	if notice, ok := flash.ReadAndClear(c); ok {
		data["Flash"] = notice
	}
	return data
}

// WifePortal shows the submission form and every grievance.
func (gh *GrievanceHandler) WifePortal(c *gin.Context) {
	c.HTML(http.StatusOK, "portal.html", gh.portalData(c, "Grievance Portal"))
}

// HusbandPortal shows every grievance with update controls.
func (gh *GrievanceHandler) HusbandPortal(c *gin.Context) {
	c.HTML(http.StatusOK, "husband_portal.html", gh.portalData(c, "Husband Portal"))
}

// Submit stores a grievance from the wife's form and notifies the husband.
func (gh *GrievanceHandler) Submit(c *gin.Context) {
	account, _ := middleware.CurrentAccount(c)

	outcome, err := gh.grievanceService.SubmitGrievance(c.Request.Context(), &service.CreateGrievanceRequest{
		GrievanceType:     c.PostForm("grievance_type"),
		Priority:          c.PostForm("priority"),
		Description:       c.PostForm("description"),
		AdditionalContext: c.PostForm("additional_context"),
		SubmittedBy:       account.Username,
	})

	var ve *service.ValidationError
	switch {
	case err == nil:
		flash.Success(c, outcome.Message())
	case errors.As(err, &ve) && ve.Field == "description":
		flash.Error(c, "Please provide a description of your grievance.")
	case errors.As(err, &ve):
		flash.Error(c, "Error submitting grievance: "+ve.Message)
	default:
		gh.logger.Error("Failed to submit grievance", zap.Error(err))
		flash.Error(c, "Error submitting grievance. Please try again.")
	}
	c.Redirect(http.StatusSeeOther, "/portal")
}

// grievanceID accepts the id as a JSON number or a numeric string.
type grievanceID struct {
	value int64
	set   bool
}

func (id *grievanceID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n = json.Number(s)
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return err
	}
	id.value, id.set = v, true
	return nil
}

type updateGrievanceBody struct {
	ID     grievanceID `json:"id"`
	Status *string     `json:"status"`
	Notes  string      `json:"notes"`
}

// Update applies the husband's status and notes.
func (gh *GrievanceHandler) Update(c *gin.Context) {
	var body updateGrievanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !body.ID.set || body.Status == nil || *body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and status are required"})
		return
	}

	g, err := gh.grievanceService.UpdateStatus(c.Request.Context(), &service.UpdateGrievanceRequest{
		ID:     body.ID.value,
		Status: *body.Status,
		Notes:  body.Notes,
	})

	var ve *service.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Grievance updated successfully!",
			"grievance": g.View(),
		})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	default:
		gh.logger.Error("Failed to update grievance", zap.Int64("grievance_id", body.ID.value), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating grievance"})
	}
}

// List returns every grievance as JSON.
func (gh *GrievanceHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"grievances": views(gh.grievanceService.ListAll(c.Request.Context()))})
}
