package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/shopspring/decimal"
)

type ReportService interface {
	SalesSummary(ctx context.Context, filter dto.ReportFilter) (*dto.SalesSummaryResponse, error)
	TopProducts(ctx context.Context, filter dto.ReportFilter, limit int) (*dto.TopProductsResponse, error)
	SalesByUser(ctx context.Context, filter dto.ReportFilter) (*dto.SalesByUserResponse, error)
	AuditLog(ctx context.Context, filter dto.AuditFilter) (*dto.AuditListResponse, error)
}

type reportService struct {
	repo      repository.ReportRepository
	auditRepo repository.AuditRepository
}

func NewReportService(repo repository.ReportRepository, auditRepo repository.AuditRepository) ReportService {
	return &reportService{repo: repo, auditRepo: auditRepo}
}

// resolveRange turns the YYYY-MM-DD inclusive filter into a [from, to)
// half-open window. Empty bounds default to today.
func resolveRange(filter dto.ReportFilter) (time.Time, time.Time, error) {
	today := time.Now().Truncate(24 * time.Hour)
	from, to := today, today

	if filter.From != "" {
		t, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return time.Time{}, time.Time{}, apierror.InvalidInput("invalid 'from' date: %s", filter.From)
		}
		from = t
	}
	if filter.To != "" {
		t, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return time.Time{}, time.Time{}, apierror.InvalidInput("invalid 'to' date: %s", filter.To)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apierror.InvalidInput("'to' date precedes 'from'")
	}
	return from, to.AddDate(0, 0, 1), nil
}

func (s *reportService) SalesSummary(ctx context.Context, filter dto.ReportFilter) (*dto.SalesSummaryResponse, error) {
	from, to, err := resolveRange(filter)
	if err != nil {
		return nil, err
	}

	byPayment, err := s.repo.SalesByPayment(ctx, from, to)
	if err != nil {
		return nil, err
	}
	approved, failed, err := s.repo.InvoiceCounts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.SalesSummaryResponse{
		From:           from.Format("2006-01-02"),
		To:             to.AddDate(0, 0, -1).Format("2006-01-02"),
		ByPayment:      make(map[string]decimal.Decimal, len(byPayment)),
		InvoicedCount:  approved,
		InvoicedErrors: failed,
	}
	for _, row := range byPayment {
		resp.SaleCount += row.Count
		resp.Total = resp.Total.Add(row.Total)
		resp.ByPayment[row.PaymentMethod] = row.Total
	}
	return resp, nil
}

func (s *reportService) TopProducts(ctx context.Context, filter dto.ReportFilter, limit int) (*dto.TopProductsResponse, error) {
	from, to, err := resolveRange(filter)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := s.repo.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.TopProductsResponse{
		From: from.Format("2006-01-02"),
		To:   to.AddDate(0, 0, -1).Format("2006-01-02"),
		Data: make([]dto.TopProductEntry, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Data = append(resp.Data, dto.TopProductEntry{
			ProductID: row.ProductID,
			Name:      row.Name,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue,
		})
	}
	return resp, nil
}

func (s *reportService) SalesByUser(ctx context.Context, filter dto.ReportFilter) (*dto.SalesByUserResponse, error) {
	from, to, err := resolveRange(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.SalesByUser(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.SalesByUserResponse{
		From: from.Format("2006-01-02"),
		To:   to.AddDate(0, 0, -1).Format("2006-01-02"),
		Data: make([]dto.UserSalesEntry, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Data = append(resp.Data, dto.UserSalesEntry{
			UserID:   row.UserID,
			Username: row.Username,
			Count:    row.Count,
			Total:    row.Total,
		})
	}
	return resp, nil
}

func (s *reportService) AuditLog(ctx context.Context, filter dto.AuditFilter) (*dto.AuditListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}

	logs, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.AuditListResponse{
		Data:  make([]dto.AuditEntryResponse, 0, len(logs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, l := range logs {
		entry := dto.AuditEntryResponse{
			ID:        l.ID.String(),
			UserID:    l.UserID.String(),
			Action:    l.Action,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		}
		if l.EntityID != nil {
			id := l.EntityID.String()
			entry.EntityID = &id
		}
		if len(l.Details) > 0 {
			var details any
			if err := json.Unmarshal(l.Details, &details); err == nil {
				entry.Details = details
			}
		}
		resp.Data = append(resp.Data, entry)
	}
	return resp, nil
}
