package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/middleware"
)

// writeError traduz os erros de domínio para status + corpo JSON.
func writeError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		transition *domain.TransitionError
	)

	switch {
	case errors.As(err, &validation):
		httperr.WriteDetails(c, http.StatusUnprocessableEntity,
			validation.Code(), "Dados do agendamento inválidos.",
			gin.H{"violations": validation.Violations})

	case errors.As(err, &conflict):
		httperr.WriteDetails(c, http.StatusConflict,
			conflict.Code(), "Horário indisponível.",
			gin.H{"occurrences": conflict.Occurrences})

	case errors.As(err, &transition):
		httperr.WriteDetails(c, http.StatusConflict,
			transition.Code(), "Mudança de status não permitida.",
			gin.H{"from": transition.From, "to": transition.To})

	case errors.Is(err, domain.ErrRecurrenceBoundsExceeded):
		httperr.Unprocessable(c, "recurrence_bounds_exceeded", "Recorrência fora dos limites.")

	case errors.Is(err, domain.ErrNotFound):
		httperr.NotFound(c, "appointment_not_found", "Agendamento não encontrado.")

	case errors.Is(err, domain.ErrWorkingHoursNotFound):
		httperr.NotFound(c, "working_hours_not_found", "Expediente não configurado.")

	case errors.Is(err, access.ErrForbidden):
		httperr.Forbidden(c, "forbidden", "Sem permissão para esta operação.")

	default:
		if code, ok := httperr.CodeOf(err); ok {
			httperr.BadRequest(c, code, "Requisição inválida.")
			return
		}
		_ = c.Error(err)
		httperr.Internal(c, "internal_error", "Erro interno.")
	}
}

// principal devolve o ator autenticado ou responde 401.
func principal(c *gin.Context) (access.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		httperr.Unauthorized(c, "unauthorized", "Não autenticado.")
	}
	return p, ok
}
