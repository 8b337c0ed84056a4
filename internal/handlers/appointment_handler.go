package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/clinica-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *ucAppointment.CreateAppointment
	list         *ucAppointment.ListAppointments
	get          *ucAppointment.GetAppointment
	update       *ucAppointment.UpdateOccurrence
	updateSeries *ucAppointment.UpdateSeries
	reschedule   *ucAppointment.RescheduleSeries
	changeStatus *ucAppointment.ChangeStatus
	attendance   *ucAppointment.SetAttendance
	remove       *ucAppointment.DeleteAppointment
	availability *ucAppointment.GetAvailability
}

func NewAppointmentHandler(deps ucAppointment.Deps) *AppointmentHandler {
	return &AppointmentHandler{
		create:       ucAppointment.NewCreateAppointment(deps),
		list:         ucAppointment.NewListAppointments(deps),
		get:          ucAppointment.NewGetAppointment(deps),
		update:       ucAppointment.NewUpdateOccurrence(deps),
		updateSeries: ucAppointment.NewUpdateSeries(deps),
		reschedule:   ucAppointment.NewRescheduleSeries(deps),
		changeStatus: ucAppointment.NewChangeStatus(deps),
		attendance:   ucAppointment.NewSetAttendance(deps),
		remove:       ucAppointment.NewDeleteAppointment(deps),
		availability: ucAppointment.NewGetAvailability(deps),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ProfessionalID string   `json:"professional_id"`
	ClientID       string   `json:"client_id"`
	ServiceID      string   `json:"service_id"`
	ServiceIDs     []string `json:"service_ids"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	PriceCents        *int64  `json:"price_cents"`
	CommissionPercent float64 `json:"commission_percent"`
	PaymentMethod     string  `json:"payment_method"`

	IsBlock          bool   `json:"is_block"`
	BlockScope       string `json:"block_scope"`
	BlockDescription string `json:"block_description"`

	Notes        string `json:"notes"`
	NotifyClient *bool  `json:"notify_client"`

	// "pending" cria aguardando aprovação; vazio = scheduled
	Status string `json:"status"`

	Recurrence      *domain.RecurrenceRequest `json:"recurrence"`
	SkipConflicting bool                      `json:"skip_conflicting"`
}

type SeriesPatchRequest struct {
	ProfessionalID    *string  `json:"professional_id"`
	ClientID          *string  `json:"client_id"`
	ServiceID         *string  `json:"service_id"`
	ServiceIDs        []string `json:"service_ids"`
	PriceCents        *int64   `json:"price_cents"`
	CommissionPercent *float64 `json:"commission_percent"`
	Notes             *string  `json:"notes"`
	NotifyClient      *bool    `json:"notify_client"`
}

func (r SeriesPatchRequest) toPatch() ucAppointment.SeriesPatch {
	return ucAppointment.SeriesPatch{
		ProfessionalID:    r.ProfessionalID,
		ClientID:          r.ClientID,
		ServiceID:         r.ServiceID,
		ServiceIDs:        r.ServiceIDs,
		PriceCents:        r.PriceCents,
		CommissionPercent: r.CommissionPercent,
		Notes:             r.Notes,
		NotifyClient:      r.NotifyClient,
	}
}

type UpdateAppointmentRequest struct {
	SeriesPatchRequest
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`

	// tira a ocorrência da série
	Detach bool `json:"detach"`
}

type UpdateSeriesRequest struct {
	SeriesPatchRequest
	FromOrder int `json:"from_order" binding:"min=0"`
}

// RescheduleSeriesRequest regera a série a partir de from_order.
type RescheduleSeriesRequest struct {
	FromOrder       int                       `json:"from_order" binding:"min=0"`
	Start           time.Time                 `json:"start" binding:"required"`
	End             time.Time                 `json:"end" binding:"required"`
	Recurrence      *domain.RecurrenceRequest `json:"recurrence"`
	SkipConflicting bool                      `json:"skip_conflicting"`
}

type CompleteAppointmentRequest struct {
	PaidCents     *int64 `json:"paid_cents"`
	PaymentMethod string `json:"payment_method"`
	ClientPresent *bool  `json:"client_present"`
}

type AttendanceRequest struct {
	ClientPresent *bool `json:"client_present" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	result, err := h.create.Execute(c.Request.Context(), p, ucAppointment.CreateAppointmentInput{
		Booking: domain.BookingRequest{
			ProfessionalID:    req.ProfessionalID,
			ClientID:          req.ClientID,
			ServiceID:         req.ServiceID,
			ServiceIDs:        req.ServiceIDs,
			Start:             req.Start,
			End:               req.End,
			PriceCents:        req.PriceCents,
			CommissionPercent: req.CommissionPercent,
			PaymentMethod:     req.PaymentMethod,
			IsBlock:           req.IsBlock,
			BlockScope:        req.BlockScope,
			BlockDescription:  req.BlockDescription,
			Notes:             req.Notes,
			NotifyClient:      req.NotifyClient,
			Status:            domain.Status(req.Status),
			Recurrence:        req.Recurrence,
		},
		SkipConflicting: req.SkipConflicting,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, result)
}

// ======================================================
// LIST / GET
// ======================================================

// List aceita ?date=YYYY-MM-DD ou ?year=&month=.
func (h *AppointmentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	professionalID := c.Query("professional_id")

	if date := c.Query("date"); date != "" {
		items, err := h.list.ByDate(c.Request.Context(), p, professionalID, date)
		if err != nil {
			writeError(c, err)
			return
		}
		httpresp.List(c, items)
		return
	}

	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		httperr.BadRequest(c, "invalid_period", "Informe date ou year e month.")
		return
	}

	items, err := h.list.ByMonth(c.Request.Context(), p, professionalID, year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, items)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// ======================================================
// UPDATE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), p, c.Param("id"), ucAppointment.OccurrencePatch{
		SeriesPatch: req.toPatch(),
		Start:       req.Start,
		End:         req.End,
	}, req.Detach)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) UpdateSeries(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	items, err := h.updateSeries.Execute(c.Request.Context(), p, c.Param("groupId"), req.toPatch(), req.FromOrder)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, items)
}

func (h *AppointmentHandler) RescheduleSeries(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req RescheduleSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	result, err := h.reschedule.Execute(c.Request.Context(), p, c.Param("groupId"), ucAppointment.RescheduleSeriesInput{
		FromOrder:       req.FromOrder,
		Start:           req.Start,
		End:             req.End,
		Recurrence:      req.Recurrence,
		SkipConflicting: req.SkipConflicting,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, result)
}

// ======================================================
// STATUS
// ======================================================

// Schedule aprova um agendamento pendente (pending -> scheduled).
func (h *AppointmentHandler) Schedule(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ap, err := h.changeStatus.Schedule(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ap, err := h.changeStatus.Confirm(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ap, err := h.changeStatus.Cancel(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// Complete exige o pagamento, exceto com client_present=false (falta).
func (h *AppointmentHandler) Complete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req CompleteAppointmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
			return
		}
	}

	ap, err := h.changeStatus.Complete(c.Request.Context(), p, c.Param("id"), domain.TransitionInput{
		PaidCents:     req.PaidCents,
		PaymentMethod: req.PaymentMethod,
		ClientPresent: req.ClientPresent,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Attendance(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.attendance.Execute(c.Request.Context(), p, c.Param("id"), *req.ClientPresent)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// ======================================================
// DELETE
// ======================================================

func (h *AppointmentHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.remove.Occurrence(c.Request.Context(), p, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AppointmentHandler) DeleteSeries(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	deleted, err := h.remove.Series(c.Request.Context(), p, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	duration, err := strconv.Atoi(c.Query("duration_min"))
	if err != nil {
		httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
		return
	}

	professionalID := c.Query("professional_id")
	if professionalID == "" {
		professionalID = p.ProfessionalID
	}

	slots, err := h.availability.Execute(c.Request.Context(), p, ucAppointment.AvailabilityInput{
		ProfessionalID: professionalID,
		Date:           c.Query("date"),
		DurationMin:    duration,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, slots)
}
