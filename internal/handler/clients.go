package handler

import (
	"net/http"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClientsHandler struct{ svc service.ClientService }

func NewClientsHandler(svc service.ClientService) *ClientsHandler {
	return &ClientsHandler{svc: svc}
}

// Create godoc
// @Summary      Crear cliente de cuenta corriente
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateClientRequest true "Cliente"
// @Success      201  {object} dto.ClientResponse
// @Router       /api/clients [post]
func (h *ClientsHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetByID godoc
// @Summary      Obtener cliente por ID
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del cliente"
// @Success      200 {object} dto.ClientResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/clients/{id} [get]
func (h *ClientsHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      Listar clientes activos
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Nombre o CUIT parcial"
// @Success      200 {array} dto.ClientResponse
// @Router       /api/clients [get]
func (h *ClientsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Actualizar cliente
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "UUID del cliente"
// @Param        body body dto.UpdateClientRequest true "Campos a modificar"
// @Success      200  {object} dto.ClientResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/clients/{id} [put]
func (h *ClientsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Desactivar cliente
// @Tags         clientes
// @Security     BearerAuth
// @Param        id path string true "UUID del cliente"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /api/clients/{id} [delete]
func (h *ClientsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Movements godoc
// @Summary      Libro mayor del cliente
// @Description  Retorna el cliente con sus últimos movimientos de cuenta corriente (ventas a crédito y pagos).
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del cliente"
// @Success      200 {object} dto.ClientMovementsResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/clients/{id}/movements [get]
func (h *ClientsHandler) Movements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Movements(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterPayment godoc
// @Summary      Registrar pago de cuenta corriente
// @Description  Baja el saldo del cliente y registra el pago en el libro mayor; pagos en efectivo impactan la caja abierta.
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "UUID del cliente"
// @Param        body body dto.RegisterPaymentRequest true "Pago"
// @Success      200  {object} dto.ClientResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/clients/{id}/payments [post]
func (h *ClientsHandler) RegisterPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.RegisterPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterPayment(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
