package handler

import (
	"net/http"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary      Registrar una nueva venta
// @Description  Crea una venta ACID: descuenta stock, registra movimientos de caja y cuenta corriente, y factura contra AFIP si se solicita.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Detalle de la venta"
// @Success      201  {object} dto.CreateSaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), actorID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetByID godoc
// @Summary      Obtener venta por ID
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la venta"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      Listar ventas
// @Description  Retorna lista paginada de ventas filtrada por fecha y medio de pago. Sin fecha lista las de hoy.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        date           query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Param        payment_method query string false "Cash | CreditAccount | Card | Transfer"
// @Param        page           query int    false "Página (default 1)"
// @Param        limit          query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RetryInvoice godoc
// @Summary      Reintentar facturación
// @Description  Re-emite la factura de una venta cuyo intento anterior falló. Una factura ya aprobada se retorna sin re-emitir.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RetryInvoiceRequest true "Venta a refacturar"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/sales/retry-invoice [post]
func (h *SalesHandler) RetryInvoice(c *gin.Context) {
	var req dto.RetryInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid saleId"))
		return
	}
	resp, err := h.svc.RetryInvoice(c.Request.Context(), actorID(c), saleID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
