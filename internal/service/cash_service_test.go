package service

import (
	"context"
	"errors"
	"testing"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCashFixture() (CashService, *stubCashRepo, *stubAuditRepo) {
	cash := newStubCashRepo()
	auditLog := &stubAuditRepo{}
	txm := &fakeTxManager{participants: []restorable{cash, auditLog}}
	return NewCashService(txm, cash, auditLog), cash, auditLog
}

func TestOpenCashSession(t *testing.T) {
	svc, cash, auditLog := newCashFixture()
	userID := uuid.New()

	resp, err := svc.Open(context.Background(), userID, dto.OpenCashSessionRequest{InitialAmount: dec("5000")})
	require.NoError(t, err)
	assert.Equal(t, model.CashSessionOpen, resp.Status)
	assert.True(t, resp.InitialAmount.Equal(dec("5000")))

	require.Len(t, cash.movements, 1)
	assert.Equal(t, model.CashMovementOpen, cash.movements[0].Type)
	assert.Contains(t, auditLog.actions(), "CASH_SESSION")
}

func TestOpenCashSessionRejectsNegativeAmount(t *testing.T) {
	svc, _, _ := newCashFixture()

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenCashSessionRequest{InitialAmount: dec("-1")})
	var invalid *apierror.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestOpenCashSessionDuplicateConflicts(t *testing.T) {
	svc, _, _ := newCashFixture()
	userID := uuid.New()

	_, err := svc.Open(context.Background(), userID, dto.OpenCashSessionRequest{InitialAmount: dec("5000")})
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), userID, dto.OpenCashSessionRequest{InitialAmount: dec("3000")})
	var conflict *apierror.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCloseCashSessionComputesDeviation(t *testing.T) {
	svc, cash, _ := newCashFixture()
	userID := uuid.New()

	opened, err := svc.Open(context.Background(), userID, dto.OpenCashSessionRequest{InitialAmount: dec("5000")})
	require.NoError(t, err)

	sessionID := uuid.MustParse(opened.ID)
	require.NoError(t, cash.AddSaleTx(nil, sessionID, dec("11200")))

	// Counted 16000 against an expected 16200: 200 short.
	closed, err := svc.Close(context.Background(), userID, dto.CloseCashSessionRequest{FinalAmount: dec("16000")})
	require.NoError(t, err)

	assert.Equal(t, model.CashSessionClosed, closed.Status)
	require.NotNil(t, closed.ExpectedAmount)
	assert.True(t, closed.ExpectedAmount.Equal(dec("16200")))
	require.NotNil(t, closed.Deviation)
	assert.True(t, closed.Deviation.Equal(dec("-200")))

	// Session is terminal: a second close finds nothing open.
	_, err = svc.Close(context.Background(), userID, dto.CloseCashSessionRequest{FinalAmount: dec("16000")})
	assert.ErrorIs(t, err, apierror.ErrCashSessionClosed)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(`duplicate key value violates unique constraint "idx_cash_sessions_one_open"`)))
	assert.True(t, isUniqueViolation(errors.New("ERROR: conflicto (SQLSTATE 23505)")))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestCurrentWithoutOpenSession(t *testing.T) {
	svc, _, _ := newCashFixture()
	_, err := svc.Current(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apierror.ErrCashSessionClosed)
}
