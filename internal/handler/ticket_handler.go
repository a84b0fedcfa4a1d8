package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tedxecu/registration-api/internal/service"
	"github.com/tedxecu/registration-api/pkg/response"
)

// TicketHandler serves the public printable ticket page.
type TicketHandler struct {
	tickets *service.TicketService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Show godoc
// @Summary View a ticket
// @Description Render the printable HTML ticket for a confirmed registration
// @Tags Tickets
// @Produce html
// @Param ticketId path string true "Six digit ticket number"
// @Success 200 {string} string "HTML ticket page"
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tickets/{ticketId} [get]
func (h *TicketHandler) Show(c *gin.Context) {
	page, err := h.tickets.RenderPage(c.Request.Context(), c.Param("ticketId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
