package worker

// receipt_worker.go
// Renders the receipt PDF for a committed sale and mails it to the customer.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andresbsn/polleria/internal/infra"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ReceiptWorker struct {
	saleRepo    repository.SaleRepository
	invoiceRepo repository.InvoiceRepository
	mailer      *infra.Mailer
	shopName    string
	storagePath string
}

func NewReceiptWorker(
	saleRepo repository.SaleRepository,
	invoiceRepo repository.InvoiceRepository,
	mailer *infra.Mailer,
	shopName, storagePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		saleRepo:    saleRepo,
		invoiceRepo: invoiceRepo,
		mailer:      mailer,
		shopName:    shopName,
		storagePath: storagePath,
	}
}

// Process renders and sends one receipt. Errors bubble up so the pool can
// retry and eventually dead-letter the job.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}
	if payload.Email == "" {
		log.Warn().Msg("receipt_worker: empty email, skipping")
		return nil
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: invalid sale_id %q: %w", payload.SaleID, err)
	}

	sale, err := w.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale: %w", err)
	}

	// Invoice block is optional: non-invoiced sales still get a receipt.
	inv, err := w.invoiceRepo.FindBySaleID(ctx, saleID)
	if err != nil {
		inv = nil
	}

	names := make(map[string]string, len(sale.Items))
	for _, item := range sale.Items {
		if item.Product != nil {
			names[item.ProductID.String()] = item.Product.Name
		}
	}

	pdfPath, err := infra.GenerateReceiptPDF(w.shopName, sale, names, inv, w.storagePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: generate pdf: %w", err)
	}

	if inv != nil {
		if err := w.invoiceRepo.UpdatePDFPath(ctx, inv.ID, pdfPath); err != nil {
			log.Error().Err(err).Msg("receipt_worker: failed to store pdf path")
		}
	}

	subject := fmt.Sprintf("Su comprobante de %s", w.shopName)
	body := fmt.Sprintf("Gracias por su compra. Adjuntamos el comprobante por $%s.", sale.Total.StringFixed(2))
	if err := w.mailer.SendReceipt(payload.Email, subject, body, pdfPath); err != nil {
		return fmt.Errorf("receipt_worker: send email: %w", err)
	}

	log.Info().Str("to", payload.Email).Str("sale_id", payload.SaleID).Msg("receipt_worker: receipt sent")
	return nil
}
