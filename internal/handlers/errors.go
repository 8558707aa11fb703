package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

type engineError struct {
	status  int
	message string
}

var engineErrors = map[string]engineError{
	httperr.CodeInvalidScheduleConfig: {http.StatusBadRequest, "Configuração de agenda inválida."},
	httperr.CodeDayClosed:             {http.StatusBadRequest, "A barbearia não atende nesta data."},
	httperr.CodeInvalidSlot:           {http.StatusBadRequest, "Horário inválido."},
	httperr.CodeInvalidState:          {http.StatusBadRequest, "Operação não permitida no estado atual do agendamento."},
	httperr.CodeInvalidInput:          {http.StatusBadRequest, "Dados inválidos."},

	httperr.CodeBarbershopNotFound:  {http.StatusNotFound, "Barbearia não encontrada."},
	httperr.CodeBarberNotFound:      {http.StatusNotFound, "Barbeiro não encontrado."},
	httperr.CodeServiceNotFound:     {http.StatusNotFound, "Serviço não encontrado."},
	httperr.CodeAppointmentNotFound: {http.StatusNotFound, "Agendamento não encontrado."},
	httperr.CodeClientNotFound:      {http.StatusNotFound, "Cliente não encontrado."},

	httperr.CodeSlotNoLongerAvailable: {http.StatusConflict, "Este horário acabou de ser reservado."},
	httperr.CodeNoBarberAvailable:     {http.StatusConflict, "Nenhum barbeiro disponível neste horário."},
	httperr.CodeLockTimeout:           {http.StatusConflict, "Agenda ocupada, tente novamente."},

	httperr.CodeHoldExpired:        {http.StatusGone, "A reserva expirou antes do pagamento."},
	httperr.CodePaymentNotApproved: {http.StatusPaymentRequired, "Pagamento não aprovado."},
}

// mapEngineError turns a use case error into the HTTP status, code and
// message the API answers with.
func mapEngineError(err error) (int, string, string) {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		if known, ok := engineErrors[be.Code]; ok {
			msg := known.message
			if be.Detail != "" && known.status != http.StatusNotFound {
				msg = be.Detail
			}
			return known.status, be.Code, msg
		}
		return http.StatusBadRequest, be.Code, be.Error()
	}

	if httperr.IsStorage(err) {
		return http.StatusServiceUnavailable, httperr.CodeStorageUnavailable, "Serviço temporariamente indisponível."
	}

	return http.StatusInternalServerError, "internal_error", "Erro interno."
}

func writeEngineError(c *gin.Context, err error) {
	status, code, msg := mapEngineError(err)
	_ = c.Error(err)
	httperr.Write(c, status, code, msg)
}
