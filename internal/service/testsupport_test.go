package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/andresbsn/polleria/internal/afip"
	"github.com/andresbsn/polleria/internal/audit"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Fake transaction manager ──────────────────────────────────────────────────

// restorable lets a stub participate in fake transactions: snapshot returns
// a closure that restores the pre-transaction state.
type restorable interface {
	snapshot() func()
}

// fakeTxManager runs the transaction body with a nil *gorm.DB (stubs ignore
// it) and rolls every registered stub back when the body errors. This mirrors
// the all-or-nothing contract of the real gorm transaction.
type fakeTxManager struct {
	participants []restorable
}

func (m *fakeTxManager) Do(_ context.Context, fn func(tx *gorm.DB) error) error {
	restores := make([]func(), 0, len(m.participants))
	for _, p := range m.participants {
		restores = append(restores, p.snapshot())
	}
	if err := fn(nil); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

var _ repository.TxManager = (*fakeTxManager)(nil)

// ── Sale repository stub ──────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales map[uuid.UUID]model.Sale
	items []model.SaleItem
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]model.Sale)}
}

func (r *stubSaleRepo) snapshot() func() {
	sales := make(map[uuid.UUID]model.Sale, len(r.sales))
	for k, v := range r.sales {
		sales[k] = v
	}
	items := append([]model.SaleItem(nil), r.items...)
	return func() { r.sales, r.items = sales, items }
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales[s.ID] = *s
	return nil
}

func (r *stubSaleRepo) CreateItemTx(_ *gorm.DB, item *model.SaleItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, item := range r.items {
		if item.SaleID == id {
			s.Items = append(s.Items, item)
		}
	}
	return &s, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Product repository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]model.Product)}
}

func (r *stubProductRepo) snapshot() func() {
	products := make(map[uuid.UUID]model.Product, len(r.products))
	for k, v := range r.products {
		products[k] = v
	}
	return func() { r.products = products }
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = false
	r.products[id] = p
	return nil
}

func (r *stubProductRepo) LockForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, newStock decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	r.products[id] = p
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Client repository stub ────────────────────────────────────────────────────

type stubClientRepo struct {
	clients   map[uuid.UUID]model.Client
	movements []model.ClientMovement
	payments  []model.ClientPayment
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]model.Client)}
}

func (r *stubClientRepo) snapshot() func() {
	clients := make(map[uuid.UUID]model.Client, len(r.clients))
	for k, v := range r.clients {
		clients[k] = v
	}
	movements := append([]model.ClientMovement(nil), r.movements...)
	payments := append([]model.ClientPayment(nil), r.payments...)
	return func() { r.clients, r.movements, r.payments = clients, movements, payments }
}

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = *c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubClientRepo) List(_ context.Context, _ string) ([]model.Client, error) {
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = *c
	return nil
}

func (r *stubClientRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.clients[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.IsActive = false
	r.clients[id] = c
	return nil
}

func (r *stubClientRepo) LockForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubClientRepo) UpdateBalanceTx(_ *gorm.DB, id uuid.UUID, newBalance decimal.Decimal) error {
	c, ok := r.clients[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.CurrentAccountBalance = newBalance
	r.clients[id] = c
	return nil
}

func (r *stubClientRepo) CreateMovementTx(_ *gorm.DB, m *model.ClientMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubClientRepo) CreatePaymentTx(_ *gorm.DB, p *model.ClientPayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubClientRepo) ListMovements(_ context.Context, clientID uuid.UUID, _ int) ([]model.ClientMovement, error) {
	var out []model.ClientMovement
	for _, m := range r.movements {
		if m.ClientID == clientID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

// ── Cash repository stub ──────────────────────────────────────────────────────

type stubCashRepo struct {
	sessions  map[uuid.UUID]model.CashSession
	movements []model.CashMovement
}

func newStubCashRepo() *stubCashRepo {
	return &stubCashRepo{sessions: make(map[uuid.UUID]model.CashSession)}
}

func (r *stubCashRepo) snapshot() func() {
	sessions := make(map[uuid.UUID]model.CashSession, len(r.sessions))
	for k, v := range r.sessions {
		sessions[k] = v
	}
	movements := append([]model.CashMovement(nil), r.movements...)
	return func() { r.sessions, r.movements = sessions, movements }
}

func (r *stubCashRepo) Create(_ context.Context, s *model.CashSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *stubCashRepo) CreateTx(_ *gorm.DB, s *model.CashSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for _, existing := range r.sessions {
		if existing.UserID == s.UserID && existing.Status == model.CashSessionOpen {
			return errors.New("duplicate key value violates unique constraint \"idx_cash_sessions_one_open\"")
		}
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *stubCashRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *stubCashRepo) FindOpenByUser(_ context.Context, userID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status == model.CashSessionOpen {
			found := s
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCashRepo) LockForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *stubCashRepo) AddSaleTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	s, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.TotalSales = s.TotalSales.Add(amount)
	r.sessions[id] = s
	return nil
}

func (r *stubCashRepo) CloseTx(_ *gorm.DB, id uuid.UUID, finalAmount decimal.Decimal, closedAt time.Time) error {
	s, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = model.CashSessionClosed
	s.FinalAmount = &finalAmount
	s.ClosedAt = &closedAt
	r.sessions[id] = s
	return nil
}

func (r *stubCashRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubCashRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubCashRepo) ListSessions(_ context.Context, _ int) ([]model.CashSession, error) {
	out := make([]model.CashSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, nil
}

var _ repository.CashRepository = (*stubCashRepo)(nil)

// ── Invoice repository stub ───────────────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices []model.Invoice
}

func (r *stubInvoiceRepo) Upsert(_ context.Context, inv *model.Invoice) error {
	for i := range r.invoices {
		existing := &r.invoices[i]
		if existing.PtoVta == inv.PtoVta && existing.CbteTipo == inv.CbteTipo && existing.CbteNro == inv.CbteNro {
			// Conflict: only the fiscal outcome fields move, totals and
			// receiver document fields stay as first written.
			existing.CAE = inv.CAE
			existing.CAEExpiration = inv.CAEExpiration
			existing.Status = inv.Status
			existing.AFIPError = inv.AFIPError
			inv.ID = existing.ID
			return nil
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices = append(r.invoices, *inv)
	return nil
}

func (r *stubInvoiceRepo) MaxLocalNumber(_ context.Context, ptoVta, cbteTipo int) (int64, error) {
	var max int64
	for _, inv := range r.invoices {
		if inv.PtoVta == ptoVta && inv.CbteTipo == cbteTipo && inv.CbteNro > max {
			max = inv.CbteNro
		}
	}
	return max, nil
}

func (r *stubInvoiceRepo) FindBySaleID(_ context.Context, saleID uuid.UUID) (*model.Invoice, error) {
	for i := len(r.invoices) - 1; i >= 0; i-- {
		if r.invoices[i].SaleID == saleID {
			inv := r.invoices[i]
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) FindApprovedBySaleID(_ context.Context, saleID uuid.UUID) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.SaleID == saleID && inv.Status == model.InvoiceApproved {
			found := inv
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) UpdatePDFPath(_ context.Context, id uuid.UUID, path string) error {
	for i := range r.invoices {
		if r.invoices[i].ID == id {
			r.invoices[i].PDFPath = &path
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── Audit repository stub ─────────────────────────────────────────────────────

type auditEntry struct {
	userID  uuid.UUID
	payload audit.Payload
}

type stubAuditRepo struct {
	entries []auditEntry
}

func (r *stubAuditRepo) snapshot() func() {
	entries := append([]auditEntry(nil), r.entries...)
	return func() { r.entries = entries }
}

func (r *stubAuditRepo) WriteTx(_ *gorm.DB, userID uuid.UUID, _ *uuid.UUID, payload audit.Payload) error {
	r.entries = append(r.entries, auditEntry{userID: userID, payload: payload})
	return nil
}

func (r *stubAuditRepo) Write(_ context.Context, userID uuid.UUID, _ *uuid.UUID, payload audit.Payload) error {
	r.entries = append(r.entries, auditEntry{userID: userID, payload: payload})
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, _ dto.AuditFilter) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

func (r *stubAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.payload.Action())
	}
	return out
}

var _ repository.AuditRepository = (*stubAuditRepo)(nil)

// ── Fiscal client stub ────────────────────────────────────────────────────────

type stubFiscalClient struct {
	lastVoucher int64
	lastErr     error
	caeErr      error
	rejectMsg   string
	requests    []afip.CAERequest
}

func (c *stubFiscalClient) LastVoucher(_ context.Context, _, _ int) (int64, error) {
	if c.lastErr != nil {
		return 0, c.lastErr
	}
	return c.lastVoucher, nil
}

func (c *stubFiscalClient) RequestCAE(_ context.Context, req afip.CAERequest) (afip.CAEResult, error) {
	c.requests = append(c.requests, req)
	if c.caeErr != nil {
		return afip.CAEResult{}, c.caeErr
	}
	if c.rejectMsg != "" {
		return afip.CAEResult{Approved: false, Message: c.rejectMsg}, nil
	}
	return afip.CAEResult{
		Approved:      true,
		CAE:           "75123456789012",
		CAEExpiration: time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC),
	}, nil
}

var _ FiscalClient = (*stubFiscalClient)(nil)
