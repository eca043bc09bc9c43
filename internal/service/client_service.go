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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, search string) ([]dto.ClientResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Movements(ctx context.Context, id uuid.UUID) (*dto.ClientMovementsResponse, error)

	// RegisterPayment lowers the client balance atomically: payment row,
	// ledger movement, optional cash-drawer movement, audit entry.
	RegisterPayment(ctx context.Context, userID, clientID uuid.UUID, req dto.RegisterPaymentRequest) (*dto.ClientResponse, error)
}

type clientService struct {
	txm       repository.TxManager
	repo      repository.ClientRepository
	cashRepo  repository.CashRepository
	auditRepo repository.AuditRepository
}

func NewClientService(
	txm repository.TxManager,
	repo repository.ClientRepository,
	cashRepo repository.CashRepository,
	auditRepo repository.AuditRepository,
) ClientService {
	return &clientService{txm: txm, repo: repo, cashRepo: cashRepo, auditRepo: auditRepo}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	c := &model.Client{
		ID:       uuid.New(),
		Name:     req.Name,
		TaxID:    req.TaxID,
		TaxType:  req.TaxType,
		Phone:    req.Phone,
		Address:  req.Address,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("client", id.String())
	}
	if err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

func (s *clientService) List(ctx context.Context, search string) ([]dto.ClientResponse, error) {
	clients, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, *clientToResponse(&clients[i]))
	}
	return resp, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("client", id.String())
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.TaxID != nil {
		c.TaxID = *req.TaxID
	}
	if req.TaxType != nil {
		c.TaxType = *req.TaxType
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

func (s *clientService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("client", id.String())
	} else if err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *clientService) Movements(ctx context.Context, id uuid.UUID) (*dto.ClientMovementsResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("client", id.String())
	}
	if err != nil {
		return nil, err
	}

	movs, err := s.repo.ListMovements(ctx, id, 200)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClientMovementsResponse{
		Client:    *clientToResponse(c),
		Movements: make([]dto.ClientMovementResponse, 0, len(movs)),
	}
	for _, m := range movs {
		mr := dto.ClientMovementResponse{
			ID:           m.ID.String(),
			Type:         m.Type,
			Amount:       m.Amount,
			BalanceAfter: m.BalanceAfter,
			Description:  m.Description,
			CreatedAt:    m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			mr.ReferenceID = &ref
		}
		resp.Movements = append(resp.Movements, mr)
	}
	return resp, nil
}

func (s *clientService) RegisterPayment(ctx context.Context, userID, clientID uuid.UUID, req dto.RegisterPaymentRequest) (*dto.ClientResponse, error) {
	if req.Amount.Sign() <= 0 {
		return nil, apierror.InvalidInput("amount must be positive")
	}

	var updated *model.Client
	err := s.txm.Do(ctx, func(tx *gorm.DB) error {
		client, err := s.repo.LockForUpdateTx(tx, clientID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("client", clientID.String())
		}
		if err != nil {
			return err
		}

		newBalance := client.CurrentAccountBalance.Sub(req.Amount)
		if err := s.repo.UpdateBalanceTx(tx, clientID, newBalance); err != nil {
			return err
		}

		payment := &model.ClientPayment{
			ID:            uuid.New(),
			ClientID:      clientID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			Description:   req.Description,
			UserID:        userID,
		}
		if err := s.repo.CreatePaymentTx(tx, payment); err != nil {
			return err
		}

		payID := payment.ID
		if err := s.repo.CreateMovementTx(tx, &model.ClientMovement{
			ClientID:     clientID,
			Type:         model.ClientMovementPayment,
			Amount:       req.Amount.Neg(),
			BalanceAfter: newBalance,
			Description:  fmt.Sprintf("Payment (%s)", req.PaymentMethod),
			ReferenceID:  &payID,
			UserID:       userID,
		}); err != nil {
			return err
		}

		// Cash payments land in the open drawer when there is one.
		if req.PaymentMethod == model.PaymentCash {
			if session, err := s.cashRepo.FindOpenByUser(ctx, userID); err == nil {
				if err := s.cashRepo.CreateMovementTx(tx, &model.CashMovement{
					SessionID:      session.ID,
					UserID:         userID,
					Type:           model.CashMovementPayment,
					Amount:         req.Amount,
					Description:    fmt.Sprintf("Client payment %s", client.Name),
					ReferenceTable: "client_payments",
					ReferenceID:    &payID,
				}); err != nil {
					return err
				}
			}
		}

		cid := clientID
		if err := s.auditRepo.WriteTx(tx, userID, &cid, audit.ClientPaymentReceived{
			ClientID:     clientID,
			Amount:       req.Amount,
			BalanceAfter: newBalance,
		}); err != nil {
			return err
		}

		client.CurrentAccountBalance = newBalance
		updated = client
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clientToResponse(updated), nil
}
