package handler

import (
	"net/http"
	"strconv"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// SalesSummary godoc
// @Summary      Resumen de ventas
// @Description  Totales por medio de pago y contadores de facturación para un rango de fechas. Sin rango reporta hoy.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "Fecha desde YYYY-MM-DD"
// @Param        to   query string false "Fecha hasta YYYY-MM-DD"
// @Success      200  {object} dto.SalesSummaryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/reports/sales [get]
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	var filter dto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.SalesSummary(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        from  query string false "Fecha desde YYYY-MM-DD"
// @Param        to    query string false "Fecha hasta YYYY-MM-DD"
// @Param        limit query int    false "Máximo de filas (default 10)"
// @Success      200   {object} dto.TopProductsResponse
// @Router       /api/reports/top-products [get]
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	var filter dto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.svc.TopProducts(c.Request.Context(), filter, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SalesByUser godoc
// @Summary      Ventas por usuario
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "Fecha desde YYYY-MM-DD"
// @Param        to   query string false "Fecha hasta YYYY-MM-DD"
// @Success      200  {object} dto.SalesByUserResponse
// @Router       /api/reports/sales-by-user [get]
func (h *ReportsHandler) SalesByUser(c *gin.Context) {
	var filter dto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.SalesByUser(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AuditLog godoc
// @Summary      Consulta de auditoría
// @Description  Lista paginada del log de auditoría filtrable por acción, usuario y rango de fechas.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        action  query string false "SALE_CREATED | STOCK_OUT | CLIENT_PAYMENT | ..."
// @Param        user_id query string false "UUID del usuario"
// @Param        from    query string false "Fecha desde YYYY-MM-DD"
// @Param        to      query string false "Fecha hasta YYYY-MM-DD"
// @Success      200     {object} dto.AuditListResponse
// @Router       /api/reports/audit [get]
func (h *ReportsHandler) AuditLog(c *gin.Context) {
	var filter dto.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.AuditLog(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
