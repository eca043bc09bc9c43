package handler

import (
	"net/http"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CashHandler struct{ svc service.CashService }

func NewCashHandler(svc service.CashService) *CashHandler { return &CashHandler{svc: svc} }

// Open godoc
// @Summary      Abrir caja
// @Description  Abre una sesión de caja para el usuario autenticado. Falla con 409 si ya tiene una abierta.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenCashSessionRequest true "Monto inicial"
// @Success      201  {object} dto.CashSessionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /api/cash/open [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req dto.OpenCashSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), actorID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary      Cerrar caja
// @Description  Cierra la sesión abierta del usuario registrando el arqueo final y el desvío contra lo esperado.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CloseCashSessionRequest true "Monto final contado"
// @Success      200  {object} dto.CashSessionResponse
// @Failure      403  {object} apierror.APIError
// @Router       /api/cash/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	var req dto.CloseCashSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), actorID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current godoc
// @Summary      Caja activa
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CashSessionResponse
// @Failure      403 {object} apierror.APIError
// @Router       /api/cash/current [get]
func (h *CashHandler) Current(c *gin.Context) {
	resp, err := h.svc.Current(c.Request.Context(), actorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detail godoc
// @Summary      Detalle de sesión de caja
// @Description  Retorna la sesión con todos sus movimientos en orden cronológico.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la sesión"
// @Success      200 {object} dto.CashSessionDetailResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/cash/{id} [get]
func (h *CashHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Detail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Historial de sesiones de caja
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.CashSessionResponse
// @Router       /api/cash [get]
func (h *CashHandler) History(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
