package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/clinica-scheduler/internal/usecase/appointment"
)

type WorkingHoursHandler struct {
	uc *ucAppointment.WorkingHours
}

func NewWorkingHoursHandler(deps ucAppointment.Deps) *WorkingHoursHandler {
	return &WorkingHoursHandler{uc: ucAppointment.NewWorkingHours(deps)}
}

type WorkingDayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHoursUpdateRequest struct {
	ProfessionalID string             `json:"professional_id"`
	Days           []WorkingDayConfig `json:"days" binding:"required,dive"`
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	professionalID := c.Query("professional_id")
	if professionalID == "" {
		professionalID = p.ProfessionalID
	}

	hours, err := h.uc.List(c.Request.Context(), p, professionalID)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, hours)
}

func (h *WorkingHoursHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if req.ProfessionalID == "" {
		req.ProfessionalID = p.ProfessionalID
	}

	days := make([]ucAppointment.WorkingDay, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, ucAppointment.WorkingDay(d))
	}

	hours, err := h.uc.Save(c.Request.Context(), p, req.ProfessionalID, days)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, hours)
}
