package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/audit"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"
	"github.com/andresbsn/polleria/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	// CreateSale commits the checkout atomically, then requests the fiscal
	// invoice outside the transaction when asked to. A fiscal failure never
	// rolls back the committed sale.
	CreateSale(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error)

	// RetryInvoice re-submits invoicing for a committed sale. An already
	// approved invoice short-circuits without resubmitting.
	RetryInvoice(ctx context.Context, userID, saleID uuid.UUID) (*dto.InvoiceResponse, error)

	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	txm         repository.TxManager
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	cashRepo    repository.CashRepository
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	invoices    InvoiceService
	dispatcher  *worker.Dispatcher
	log         zerolog.Logger
}

func NewSaleService(
	txm repository.TxManager,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	cashRepo repository.CashRepository,
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	invoices InvoiceService,
	dispatcher *worker.Dispatcher,
	log zerolog.Logger,
) SaleService {
	return &saleService{
		txm:         txm,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		cashRepo:    cashRepo,
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		invoices:    invoices,
		dispatcher:  dispatcher,
		log:         log.With().Str("component", "sales").Logger(),
	}
}

var percentHundred = decimal.NewFromInt(100)

// ── CreateSale ───────────────────────────────────────────────────────────────
// Single all-or-nothing transaction:
//   1. compute subtotal / discount / total, validate discount bounds
//   2. CreditAccount: lock client row, raise balance
//   3. insert sale header
//   4. cash-affecting payment + active session: cash movement + session total
//   5. audit entry for the sale
//   6. CreditAccount: client ledger movement
//   7. per cart line in order: item insert, product row lock, stock check,
//      stock write, stock-out audit
// Post-commit, best-effort: fiscal invoice, receipt email job.

func (s *saleService) CreateSale(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(percentHundred) {
		return nil, apierror.InvalidInput("discount_percent must be between 0 and 100")
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		if item.Quantity.Sign() <= 0 {
			return nil, apierror.InvalidInput("quantity must be positive")
		}
		subtotal = subtotal.Add(item.Price.Mul(item.Quantity))
	}
	discount := subtotal.Mul(req.DiscountPercent).Div(percentHundred).Round(2)
	total := subtotal.Sub(discount)

	var clientID *uuid.UUID
	if req.PaymentMethod == model.PaymentCreditAccount {
		if req.ClientID == nil {
			return nil, apierror.InvalidInput("client required for credit account sales")
		}
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, apierror.InvalidInput("invalid client_id")
		}
		clientID = &id
	} else if req.ClientID != nil {
		if id, err := uuid.Parse(*req.ClientID); err == nil {
			clientID = &id
		}
	}

	// Active session lookup happens up front; inside the tx we only touch it
	// when the payment is cash-affecting.
	session, err := s.cashRepo.FindOpenByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = nil
	} else if err != nil {
		return nil, fmt.Errorf("find open cash session: %w", err)
	}

	sale := &model.Sale{
		ID:              uuid.New(),
		Subtotal:        subtotal,
		DiscountPercent: req.DiscountPercent,
		Discount:        discount,
		Total:           total,
		PaymentMethod:   req.PaymentMethod,
		ClientName:      req.ClientName,
		ClientID:        clientID,
		UserID:          userID,
	}

	err = s.txm.Do(ctx, func(tx *gorm.DB) error {
		var balanceAfter decimal.Decimal
		if req.PaymentMethod == model.PaymentCreditAccount {
			client, err := s.clientRepo.LockForUpdateTx(tx, *clientID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("client", clientID.String())
			}
			if err != nil {
				return err
			}
			balanceAfter = client.CurrentAccountBalance.Add(total)
			if err := s.clientRepo.UpdateBalanceTx(tx, client.ID, balanceAfter); err != nil {
				return err
			}
		}

		if err := s.saleRepo.CreateTx(tx, sale); err != nil {
			return err
		}

		if req.PaymentMethod != model.PaymentCreditAccount && session != nil {
			saleID := sale.ID
			if err := s.cashRepo.CreateMovementTx(tx, &model.CashMovement{
				SessionID:      session.ID,
				UserID:         userID,
				Type:           model.CashMovementSale,
				Amount:         total,
				Description:    fmt.Sprintf("Sale %s (%s)", sale.ID, req.PaymentMethod),
				ReferenceTable: "sales",
				ReferenceID:    &saleID,
			}); err != nil {
				return err
			}
			if err := s.cashRepo.AddSaleTx(tx, session.ID, total); err != nil {
				return err
			}
		}

		saleID := sale.ID
		if err := s.auditRepo.WriteTx(tx, userID, &saleID, audit.SaleCreated{
			SaleID:        sale.ID,
			Total:         total,
			PaymentMethod: req.PaymentMethod,
			ItemCount:     len(req.Items),
		}); err != nil {
			return err
		}

		if req.PaymentMethod == model.PaymentCreditAccount {
			if err := s.clientRepo.CreateMovementTx(tx, &model.ClientMovement{
				ClientID:     *clientID,
				Type:         model.ClientMovementSale,
				Amount:       total,
				BalanceAfter: balanceAfter,
				Description:  fmt.Sprintf("Credit sale %s", sale.ID),
				ReferenceID:  &saleID,
				UserID:       userID,
			}); err != nil {
				return err
			}
		}

		// Stock checks run in cart order; the first short line aborts the
		// whole transaction.
		for _, line := range req.Items {
			productID, err := uuid.Parse(line.ProductID)
			if err != nil {
				return apierror.InvalidInput("invalid product_id %s", line.ProductID)
			}
			lineSubtotal := line.Price.Mul(line.Quantity)
			if err := s.saleRepo.CreateItemTx(tx, &model.SaleItem{
				SaleID:      sale.ID,
				ProductID:   productID,
				Quantity:    line.Quantity,
				PriceAtSale: line.Price,
				Subtotal:    lineSubtotal,
			}); err != nil {
				return err
			}

			product, err := s.productRepo.LockForUpdateTx(tx, productID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("product", line.ProductID)
			}
			if err != nil {
				return err
			}

			newStock := product.Stock.Sub(line.Quantity)
			if newStock.IsNegative() {
				return &apierror.InsufficientStockError{
					ProductID: productID,
					Available: product.Stock,
					Requested: line.Quantity,
				}
			}
			if err := s.productRepo.UpdateStockTx(tx, productID, newStock); err != nil {
				return err
			}

			pid := productID
			if err := s.auditRepo.WriteTx(tx, userID, &pid, audit.StockOut{
				ProductID:   productID,
				ProductName: product.Name,
				SaleID:      sale.ID,
				Quantity:    line.Quantity,
				StockBefore: product.Stock,
				StockAfter:  newStock,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.CreateSaleResponse{
		SaleID:  sale.ID.String(),
		Message: "sale registered",
	}

	// Fiscal invoicing happens outside the commit boundary. The sale stands
	// whatever happens here; failures degrade to a retryable warning.
	if req.ShouldInvoice {
		inv, ferr := s.invoices.EmitForSale(ctx, sale, userID, req.ClientDocTipo, req.ClientDocNro, req.PtoVta)
		if ferr != nil {
			s.log.Warn().Err(ferr).Str("sale_id", sale.ID.String()).Msg("invoicing failed after committed sale")
			resp.Message = fmt.Sprintf("sale registered, invoicing failed: %v", ferr)
			if inv != nil {
				resp.Invoice = invoiceToResponse(inv)
			}
		} else {
			resp.Invoice = invoiceToResponse(inv)
		}
	}

	if req.ClientEmail != nil && s.dispatcher != nil {
		if err := s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJob{
			SaleID: sale.ID.String(),
			Email:  *req.ClientEmail,
		}); err != nil {
			s.log.Warn().Err(err).Msg("failed to enqueue receipt email")
		}
	}

	full, err := s.saleRepo.FindByID(ctx, sale.ID)
	if err != nil {
		// The sale committed; fall back to the in-memory snapshot.
		full = sale
	}
	resp.Sale = *saleToResponse(full, resp.Invoice)
	return resp, nil
}

func (s *saleService) RetryInvoice(ctx context.Context, userID, saleID uuid.UUID) (*dto.InvoiceResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("sale", saleID.String())
	}
	if err != nil {
		return nil, err
	}

	// Idempotent short-circuit: an approved invoice is never resubmitted.
	if approved, err := s.invoiceRepo.FindApprovedBySaleID(ctx, saleID); err == nil {
		return invoiceToResponse(approved), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Prior attempt fixes the fiscal parameters; otherwise consumer-final
	// defaults apply.
	docTipo, ptoVta := 0, 0
	var docNro int64
	if prior, err := FindForSale(ctx, s.invoiceRepo, saleID); err == nil && prior != nil {
		docTipo, docNro, ptoVta = prior.DocTipo, prior.DocNro, prior.PtoVta
	}

	inv, ferr := s.invoices.EmitForSale(ctx, sale, userID, docTipo, docNro, ptoVta)
	if ferr != nil {
		return nil, ferr
	}
	return invoiceToResponse(inv), nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("sale", id.String())
	}
	if err != nil {
		return nil, err
	}

	var invResp *dto.InvoiceResponse
	if inv, err := FindForSale(ctx, s.invoiceRepo, id); err == nil && inv != nil {
		invResp = invoiceToResponse(inv)
	}
	return saleToResponse(sale, invResp), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, 0, len(sales)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range sales {
		var invResp *dto.InvoiceResponse
		if inv, err := FindForSale(ctx, s.invoiceRepo, sales[i].ID); err == nil && inv != nil {
			invResp = invoiceToResponse(inv)
		}
		resp.Data = append(resp.Data, *saleToResponse(&sales[i], invResp))
	}
	return resp, nil
}
