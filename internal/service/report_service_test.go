package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReportRepo struct {
	byPayment []repository.PaymentTotal
	top       []repository.ProductTotal
	byUser    []repository.UserTotal
	approved  int64
	failed    int64

	lastFrom, lastTo time.Time
	lastLimit        int
}

func (r *stubReportRepo) SalesByPayment(_ context.Context, from, to time.Time) ([]repository.PaymentTotal, error) {
	r.lastFrom, r.lastTo = from, to
	return r.byPayment, nil
}

func (r *stubReportRepo) TopProducts(_ context.Context, from, to time.Time, limit int) ([]repository.ProductTotal, error) {
	r.lastFrom, r.lastTo, r.lastLimit = from, to, limit
	return r.top, nil
}

func (r *stubReportRepo) SalesByUser(_ context.Context, from, to time.Time) ([]repository.UserTotal, error) {
	r.lastFrom, r.lastTo = from, to
	return r.byUser, nil
}

func (r *stubReportRepo) InvoiceCounts(_ context.Context, _, _ time.Time) (int64, int64, error) {
	return r.approved, r.failed, nil
}

var _ repository.ReportRepository = (*stubReportRepo)(nil)

func TestSalesSummaryAggregates(t *testing.T) {
	repo := &stubReportRepo{
		byPayment: []repository.PaymentTotal{
			{PaymentMethod: model.PaymentCash, Count: 3, Total: dec("33600")},
			{PaymentMethod: model.PaymentCard, Count: 1, Total: dec("11200")},
		},
		approved: 3,
		failed:   1,
	}
	svc := NewReportService(repo, &stubAuditRepo{})

	resp, err := svc.SalesSummary(context.Background(), dto.ReportFilter{From: "2026-08-01", To: "2026-08-31"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.SaleCount)
	assert.True(t, resp.Total.Equal(dec("44800")))
	assert.True(t, resp.ByPayment[model.PaymentCash].Equal(dec("33600")))
	assert.Equal(t, int64(3), resp.InvoicedCount)
	assert.Equal(t, int64(1), resp.InvoicedErrors)
	assert.Equal(t, "2026-08-01", resp.From)
	assert.Equal(t, "2026-08-31", resp.To)

	// The repo sees a half-open range one day past the inclusive end.
	assert.True(t, repo.lastTo.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSalesSummaryRejectsBadRange(t *testing.T) {
	svc := NewReportService(&stubReportRepo{}, &stubAuditRepo{})

	for _, filter := range []dto.ReportFilter{
		{From: "31-08-2026"},
		{To: "not-a-date"},
		{From: "2026-08-31", To: "2026-08-01"},
	} {
		_, err := svc.SalesSummary(context.Background(), filter)
		var invalid *apierror.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	}
}

func TestSalesByUser(t *testing.T) {
	repo := &stubReportRepo{byUser: []repository.UserTotal{
		{UserID: "u1", Username: "admin", Count: 5, Total: dec("56000")},
		{UserID: "u2", Username: "caja1", Count: 2, Total: dec("11200")},
	}}
	svc := NewReportService(repo, &stubAuditRepo{})

	resp, err := svc.SalesByUser(context.Background(), dto.ReportFilter{From: "2026-08-01", To: "2026-08-31"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "admin", resp.Data[0].Username)
	assert.Equal(t, int64(5), resp.Data[0].Count)
	assert.True(t, resp.Data[1].Total.Equal(dec("11200")))
}

func TestTopProductsClampsLimit(t *testing.T) {
	repo := &stubReportRepo{top: []repository.ProductTotal{
		{ProductID: "p1", Name: "Pollo entero", Quantity: dec("12"), Revenue: dec("67200")},
	}}
	svc := NewReportService(repo, &stubAuditRepo{})

	resp, err := svc.TopProducts(context.Background(), dto.ReportFilter{From: "2026-08-01", To: "2026-08-31"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Pollo entero", resp.Data[0].Name)

	_, err = svc.TopProducts(context.Background(), dto.ReportFilter{From: "2026-08-01", To: "2026-08-31"}, 500)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)

	_, err = svc.TopProducts(context.Background(), dto.ReportFilter{From: "2026-08-01", To: "2026-08-31"}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)
}
