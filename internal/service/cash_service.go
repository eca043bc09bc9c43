package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/audit"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CashService interface {
	Open(ctx context.Context, userID uuid.UUID, req dto.OpenCashSessionRequest) (*dto.CashSessionResponse, error)
	Close(ctx context.Context, userID uuid.UUID, req dto.CloseCashSessionRequest) (*dto.CashSessionResponse, error)
	// Current returns apierror.ErrCashSessionClosed when the user has no
	// open session.
	Current(ctx context.Context, userID uuid.UUID) (*dto.CashSessionResponse, error)
	Detail(ctx context.Context, id uuid.UUID) (*dto.CashSessionDetailResponse, error)
	List(ctx context.Context) ([]dto.CashSessionResponse, error)
}

type cashService struct {
	txm       repository.TxManager
	repo      repository.CashRepository
	auditRepo repository.AuditRepository
}

func NewCashService(txm repository.TxManager, repo repository.CashRepository, auditRepo repository.AuditRepository) CashService {
	return &cashService{txm: txm, repo: repo, auditRepo: auditRepo}
}

func (s *cashService) Open(ctx context.Context, userID uuid.UUID, req dto.OpenCashSessionRequest) (*dto.CashSessionResponse, error) {
	if req.InitialAmount.Sign() < 0 {
		return nil, apierror.InvalidInput("initial amount cannot be negative")
	}
	if _, err := s.repo.FindOpenByUser(ctx, userID); err == nil {
		return nil, apierror.Conflict("user already has an open cash session")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &model.CashSession{
		ID:            uuid.New(),
		UserID:        userID,
		OpenedAt:      time.Now(),
		InitialAmount: req.InitialAmount,
		Status:        model.CashSessionOpen,
	}
	err := s.txm.Do(ctx, func(tx *gorm.DB) error {
		// The partial unique index on (user_id) WHERE status='OPEN' makes
		// a concurrent double-open fail here regardless of the check above.
		if err := s.repo.CreateTx(tx, session); err != nil {
			return err
		}
		if err := s.repo.CreateMovementTx(tx, &model.CashMovement{
			SessionID:   session.ID,
			UserID:      userID,
			Type:        model.CashMovementOpen,
			Amount:      req.InitialAmount,
			Description: "Cash session opened",
		}); err != nil {
			return err
		}
		sid := session.ID
		return s.auditRepo.WriteTx(tx, userID, &sid, audit.CashSessionEvent{
			SessionID: session.ID,
			Operation: "OPEN",
			Amount:    req.InitialAmount,
		})
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apierror.Conflict("user already has an open cash session")
		}
		return nil, err
	}
	return cashSessionToResponse(session), nil
}

func (s *cashService) Close(ctx context.Context, userID uuid.UUID, req dto.CloseCashSessionRequest) (*dto.CashSessionResponse, error) {
	open, err := s.repo.FindOpenByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.ErrCashSessionClosed
	}
	if err != nil {
		return nil, err
	}

	var closed *model.CashSession
	err = s.txm.Do(ctx, func(tx *gorm.DB) error {
		session, err := s.repo.LockForUpdateTx(tx, open.ID)
		if err != nil {
			return err
		}
		if session.Status != model.CashSessionOpen {
			return apierror.Conflict("cash session already closed")
		}

		now := time.Now()
		if err := s.repo.CloseTx(tx, session.ID, req.FinalAmount, now); err != nil {
			return err
		}
		if err := s.repo.CreateMovementTx(tx, &model.CashMovement{
			SessionID:   session.ID,
			UserID:      userID,
			Type:        model.CashMovementClose,
			Amount:      req.FinalAmount,
			Description: "Cash session closed",
		}); err != nil {
			return err
		}

		expected := session.InitialAmount.Add(session.TotalSales)
		deviation := req.FinalAmount.Sub(expected)
		sid := session.ID
		if err := s.auditRepo.WriteTx(tx, userID, &sid, audit.CashSessionEvent{
			SessionID: session.ID,
			Operation: "CLOSE",
			Amount:    req.FinalAmount,
			Deviation: &deviation,
		}); err != nil {
			return err
		}

		fa := req.FinalAmount
		session.Status = model.CashSessionClosed
		session.FinalAmount = &fa
		session.ClosedAt = &now
		closed = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cashSessionToResponse(closed), nil
}

func (s *cashService) Current(ctx context.Context, userID uuid.UUID) (*dto.CashSessionResponse, error) {
	session, err := s.repo.FindOpenByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.ErrCashSessionClosed
	}
	if err != nil {
		return nil, err
	}
	return cashSessionToResponse(session), nil
}

func (s *cashService) Detail(ctx context.Context, id uuid.UUID) (*dto.CashSessionDetailResponse, error) {
	session, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("cash_session", id.String())
	}
	if err != nil {
		return nil, err
	}

	movs, err := s.repo.ListMovements(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.CashSessionDetailResponse{
		Session:   *cashSessionToResponse(session),
		Movements: make([]dto.CashMovementResponse, 0, len(movs)),
	}
	for _, m := range movs {
		mr := dto.CashMovementResponse{
			ID:          m.ID.String(),
			Type:        m.Type,
			Amount:      m.Amount,
			Description: m.Description,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			mr.ReferenceID = &ref
		}
		resp.Movements = append(resp.Movements, mr)
	}
	return resp, nil
}

func (s *cashService) List(ctx context.Context) ([]dto.CashSessionResponse, error) {
	sessions, err := s.repo.ListSessions(ctx, 100)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CashSessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, *cashSessionToResponse(&sessions[i]))
	}
	return resp, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "SQLSTATE 23505")
}
