package service

import (
	"time"

	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
)

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:        inv.ID.String(),
		SaleID:    inv.SaleID.String(),
		CAE:       inv.CAE,
		CbteTipo:  inv.CbteTipo,
		PtoVta:    inv.PtoVta,
		CbteNro:   inv.CbteNro,
		DocTipo:   inv.DocTipo,
		DocNro:    inv.DocNro,
		Total:     inv.Total,
		Status:    inv.Status,
		AFIPError: inv.AFIPError,
	}
	if inv.CAEExpiration != nil {
		s := inv.CAEExpiration.Format("2006-01-02")
		resp.CAEExpiration = &s
	}
	return resp
}

func saleToResponse(s *model.Sale, inv *dto.InvoiceResponse) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:              s.ID.String(),
		Subtotal:        s.Subtotal,
		DiscountPercent: s.DiscountPercent,
		Discount:        s.Discount,
		Total:           s.Total,
		PaymentMethod:   s.PaymentMethod,
		ClientName:      s.ClientName,
		UserID:          s.UserID.String(),
		Items:           make([]dto.SaleItemResponse, 0, len(s.Items)),
		Invoice:         inv,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
	if s.ClientID != nil {
		id := s.ClientID.String()
		resp.ClientID = &id
	}
	for _, item := range s.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID:   item.ProductID.String(),
			Product:     name,
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
			Subtotal:    item.Subtotal,
		})
	}
	return resp
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Unit:     p.Unit,
		IsActive: p.IsActive,
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		resp.CategoryID = &id
	}
	if p.Category != nil {
		name := p.Category.Name
		resp.Category = &name
	}
	return resp
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:                    c.ID.String(),
		Name:                  c.Name,
		TaxID:                 c.TaxID,
		TaxType:               c.TaxType,
		Phone:                 c.Phone,
		Address:               c.Address,
		CurrentAccountBalance: c.CurrentAccountBalance,
		IsActive:              c.IsActive,
	}
}

func cashSessionToResponse(s *model.CashSession) *dto.CashSessionResponse {
	resp := &dto.CashSessionResponse{
		ID:            s.ID.String(),
		UserID:        s.UserID.String(),
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
		InitialAmount: s.InitialAmount,
		FinalAmount:   s.FinalAmount,
		TotalSales:    s.TotalSales,
		Status:        s.Status,
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	expected := s.InitialAmount.Add(s.TotalSales)
	resp.ExpectedAmount = &expected
	if s.Status == model.CashSessionClosed && s.FinalAmount != nil {
		deviation := s.FinalAmount.Sub(expected)
		resp.Deviation = &deviation
	}
	return resp
}
