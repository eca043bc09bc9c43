package service

import (
	"context"
	"errors"
	"testing"

	"github.com/andresbsn/polleria/internal/afip"
	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvoiceFixture(fiscal *stubFiscalClient) (InvoiceService, *stubInvoiceRepo, *stubAuditRepo) {
	invoices := &stubInvoiceRepo{}
	auditLog := &stubAuditRepo{}
	svc := NewInvoiceService(fiscal, afip.NewLocalVoucherLocker(), invoices, auditLog, 1, zerolog.Nop())
	return svc, invoices, auditLog
}

func emitParams(total string) EmitParams {
	return EmitParams{
		SaleID:   uuid.New(),
		UserID:   uuid.New(),
		Total:    dec(total),
		DocTipo:  DocTipoConsumerFinal,
		DocNro:   0,
		PtoVta:   1,
		CbteTipo: CbteTipoFacturaB,
	}
}

func TestEmitNumbersVouchersCorrelatively(t *testing.T) {
	fiscal := &stubFiscalClient{lastVoucher: 41}
	svc, invoices, _ := newInvoiceFixture(fiscal)

	first, err := svc.Emit(context.Background(), emitParams("1000"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), first.CbteNro)

	second, err := svc.Emit(context.Background(), emitParams("2000"))
	require.NoError(t, err)
	assert.Equal(t, int64(43), second.CbteNro)

	assert.Len(t, invoices.invoices, 2)
}

func TestEmitMockNumberingUsesLocalHistory(t *testing.T) {
	// A mock authority always reports 0; the local maximum keeps numbering
	// monotonic across restarts instead of reusing slot 1 forever.
	fiscal := &stubFiscalClient{lastVoucher: 0}
	svc, invoices, _ := newInvoiceFixture(fiscal)
	invoices.invoices = append(invoices.invoices, model.Invoice{
		ID: uuid.New(), SaleID: uuid.New(), PtoVta: 1, CbteTipo: CbteTipoFacturaB,
		CbteNro: 7, Status: model.InvoiceApproved,
	})

	inv, err := svc.Emit(context.Background(), emitParams("1000"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), inv.CbteNro)
}

func TestEmitRejectionConsumesSlot(t *testing.T) {
	fiscal := &stubFiscalClient{rejectMsg: "10048: CUIT not authorized"}
	svc, invoices, auditLog := newInvoiceFixture(fiscal)

	inv, err := svc.Emit(context.Background(), emitParams("1000"))

	var fiscalErr *apierror.FiscalError
	require.ErrorAs(t, err, &fiscalErr)
	assert.Equal(t, "rejected", fiscalErr.Stage)

	require.NotNil(t, inv, "ERROR row returned alongside the error")
	assert.Equal(t, model.InvoiceError, inv.Status)
	assert.Equal(t, int64(1), inv.CbteNro)
	require.NotNil(t, inv.AFIPError)

	// The failed slot is burned: the next attempt takes the next number.
	fiscal.rejectMsg = ""
	next, err := svc.Emit(context.Background(), emitParams("1000"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.CbteNro)

	assert.Contains(t, auditLog.actions(), "INVOICE_ATTEMPT")
	assert.Len(t, invoices.invoices, 2)
}

func TestEmitTransportFailureIsDistinctFromRejection(t *testing.T) {
	fiscal := &stubFiscalClient{caeErr: errors.New("dial tcp: i/o timeout")}
	svc, _, _ := newInvoiceFixture(fiscal)

	inv, err := svc.Emit(context.Background(), emitParams("1000"))

	var fiscalErr *apierror.FiscalError
	require.ErrorAs(t, err, &fiscalErr)
	assert.Equal(t, "transport", fiscalErr.Stage)
	require.NotNil(t, inv)
	assert.Equal(t, model.InvoiceError, inv.Status)
}

func TestEmitLastVoucherFailureAssignsNoSlot(t *testing.T) {
	fiscal := &stubFiscalClient{lastErr: errors.New("authority down")}
	svc, invoices, _ := newInvoiceFixture(fiscal)

	inv, err := svc.Emit(context.Background(), emitParams("1000"))
	require.Error(t, err)
	assert.Nil(t, inv, "no voucher number was assigned, nothing to persist")
	assert.Empty(t, invoices.invoices)
}
