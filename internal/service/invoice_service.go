package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresbsn/polleria/internal/afip"
	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/audit"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Voucher types: 1 = Factura A, 6 = Factura B. DocTipo 80 = CUIT,
// 99 = consumer final.
const (
	CbteTipoFacturaA = 1
	CbteTipoFacturaB = 6

	DocTipoCUIT          = 80
	DocTipoConsumerFinal = 99
)

// FiscalClient is the authority protocol consumed by the invoice pipeline.
// *afip.Client implements it; tests substitute a stub.
type FiscalClient interface {
	LastVoucher(ctx context.Context, ptoVta, cbteTipo int) (int64, error)
	RequestCAE(ctx context.Context, req afip.CAERequest) (afip.CAEResult, error)
}

// EmitParams describes one voucher to authorize for a committed sale.
type EmitParams struct {
	SaleID   uuid.UUID
	UserID   uuid.UUID
	Total    decimal.Decimal
	DocTipo  int
	DocNro   int64
	PtoVta   int
	CbteTipo int
}

type InvoiceService interface {
	// Emit runs the voucher numbering protocol and records the outcome.
	// The returned invoice is persisted even when err is non-nil; a nil
	// invoice with an error means the attempt failed before a voucher
	// number was assigned.
	Emit(ctx context.Context, p EmitParams) (*model.Invoice, error)

	// EmitForSale fills consumer-final defaults and promotes the voucher
	// type to Factura A when the receiver identifies with a CUIT.
	EmitForSale(ctx context.Context, sale *model.Sale, userID uuid.UUID, docTipo int, docNro int64, ptoVta int) (*model.Invoice, error)
}

type invoiceService struct {
	fiscal        FiscalClient
	locker        afip.VoucherLocker
	invoiceRepo   repository.InvoiceRepository
	auditRepo     repository.AuditRepository
	defaultPtoVta int
	log           zerolog.Logger
}

func NewInvoiceService(
	fiscal FiscalClient,
	locker afip.VoucherLocker,
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	defaultPtoVta int,
	log zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		fiscal:        fiscal,
		locker:        locker,
		invoiceRepo:   invoiceRepo,
		auditRepo:     auditRepo,
		defaultPtoVta: defaultPtoVta,
		log:           log.With().Str("component", "invoice").Logger(),
	}
}

func (s *invoiceService) EmitForSale(ctx context.Context, sale *model.Sale, userID uuid.UUID, docTipo int, docNro int64, ptoVta int) (*model.Invoice, error) {
	if docTipo == 0 {
		docTipo = DocTipoConsumerFinal
		docNro = 0
	}
	if ptoVta == 0 {
		ptoVta = s.defaultPtoVta
	}
	cbteTipo := CbteTipoFacturaB
	if docTipo == DocTipoCUIT {
		cbteTipo = CbteTipoFacturaA
	}
	return s.Emit(ctx, EmitParams{
		SaleID:   sale.ID,
		UserID:   userID,
		Total:    sale.Total,
		DocTipo:  docTipo,
		DocNro:   docNro,
		PtoVta:   ptoVta,
		CbteTipo: cbteTipo,
	})
}

func (s *invoiceService) Emit(ctx context.Context, p EmitParams) (*model.Invoice, error) {
	// The read-last, submit-next sequence must not interleave across
	// requests for the same voucher series.
	release, err := s.locker.Lock(ctx, p.PtoVta, p.CbteTipo)
	if err != nil {
		return nil, apierror.Fiscal("transport", err)
	}
	defer release()

	last, err := s.fiscal.LastVoucher(ctx, p.PtoVta, p.CbteTipo)
	if err != nil {
		return nil, apierror.Fiscal("transport", err)
	}

	// Mock sessions always report 0; local history keeps dev numbering
	// monotonic so a voucher slot is never reused.
	localMax, err := s.invoiceRepo.MaxLocalNumber(ctx, p.PtoVta, p.CbteTipo)
	if err != nil {
		return nil, apierror.Fiscal("transport", err)
	}
	next := last + 1
	if localMax >= next {
		next = localMax + 1
	}

	result, err := s.fiscal.RequestCAE(ctx, afip.CAERequest{
		PtoVta:   p.PtoVta,
		CbteTipo: p.CbteTipo,
		DocTipo:  p.DocTipo,
		DocNro:   p.DocNro,
		CbteNro:  next,
		Total:    p.Total,
	})
	if err != nil {
		// Transport or parse failure. The slot is recorded as consumed with
		// ERROR status to preserve correlative numbering.
		inv := s.record(ctx, p, next, nil, err.Error())
		return inv, apierror.Fiscal("transport", err)
	}
	if !result.Approved {
		inv := s.record(ctx, p, next, nil, result.Message)
		return inv, apierror.Fiscal("rejected", errors.New(result.Message))
	}

	inv := s.record(ctx, p, next, &result, "")
	s.log.Info().
		Str("sale_id", p.SaleID.String()).
		Int64("cbte_nro", next).
		Str("cae", result.CAE).
		Msg("invoice approved")
	return inv, nil
}

// record upserts the invoice row and writes the audit entry. Persistence
// failures here are logged, not raised: the fiscal verdict already happened
// and the caller needs it either way.
func (s *invoiceService) record(ctx context.Context, p EmitParams, cbteNro int64, result *afip.CAEResult, afipError string) *model.Invoice {
	inv := &model.Invoice{
		SaleID:   p.SaleID,
		CbteTipo: p.CbteTipo,
		PtoVta:   p.PtoVta,
		CbteNro:  cbteNro,
		DocTipo:  p.DocTipo,
		DocNro:   p.DocNro,
		Total:    p.Total,
		Status:   model.InvoiceError,
	}
	if result != nil && result.Approved {
		inv.Status = model.InvoiceApproved
		cae := result.CAE
		exp := result.CAEExpiration
		inv.CAE = &cae
		inv.CAEExpiration = &exp
	}
	if afipError != "" {
		msg := afipError
		inv.AFIPError = &msg
	}

	if err := s.invoiceRepo.Upsert(ctx, inv); err != nil {
		s.log.Error().Err(err).
			Str("sale_id", p.SaleID.String()).
			Int64("cbte_nro", cbteNro).
			Msg("failed to persist invoice record")
	}

	saleID := p.SaleID
	if err := s.auditRepo.Write(ctx, p.UserID, &saleID, audit.InvoiceAttempt{
		SaleID:  p.SaleID,
		PtoVta:  p.PtoVta,
		CbteNro: cbteNro,
		Status:  inv.Status,
		Error:   afipError,
	}); err != nil {
		s.log.Error().Err(err).Msg("failed to write invoice audit entry")
	}
	return inv
}

// FindForSale returns the most recent invoice for a sale, nil when none.
func FindForSale(ctx context.Context, repo repository.InvoiceRepository, saleID uuid.UUID) (*model.Invoice, error) {
	inv, err := repo.FindBySaleID(ctx, saleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find invoice for sale %s: %w", saleID, err)
	}
	return inv, nil
}
