package service

import (
	"context"
	"testing"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture() (ProductService, *stubProductRepo, *stubAuditRepo) {
	products := newStubProductRepo()
	auditLog := &stubAuditRepo{}
	return NewProductService(products, auditLog), products, auditLog
}

func TestCreateProduct(t *testing.T) {
	svc, products, auditLog := newProductFixture()

	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateProductRequest{
		Name:  "Pollo entero",
		Price: dec("5600"),
		Stock: dec("10"),
		Unit:  model.UnitKg,
	})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(dec("5600")))
	assert.True(t, resp.IsActive)
	assert.Len(t, products.products, 1)
	assert.Contains(t, auditLog.actions(), "PRODUCT_CHANGED")
}

func TestCreateProductRejectsBadValues(t *testing.T) {
	svc, _, _ := newProductFixture()

	cases := []dto.CreateProductRequest{
		{Name: "x", Price: dec("0"), Stock: dec("1"), Unit: model.UnitKg},
		{Name: "x", Price: dec("-10"), Stock: dec("1"), Unit: model.UnitKg},
		{Name: "x", Price: dec("10"), Stock: dec("-1"), Unit: model.UnitKg},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), uuid.New(), req)
		var invalid *apierror.InvalidInputError
		require.ErrorAs(t, err, &invalid)
	}
}

func TestUpdateProductAuditsFieldDiff(t *testing.T) {
	svc, products, auditLog := newProductFixture()
	id := uuid.New()
	products.products[id] = model.Product{
		ID:       id,
		Name:     "Pollo entero",
		Price:    dec("5600"),
		Stock:    dec("10"),
		Unit:     model.UnitKg,
		IsActive: true,
	}

	newPrice := dec("6200")
	resp, err := svc.Update(context.Background(), uuid.New(), id, dto.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(dec("6200")))

	require.Len(t, auditLog.entries, 1)
	assert.Equal(t, "PRODUCT_CHANGED", auditLog.entries[0].payload.Action())
	stored := products.products[id]
	assert.True(t, stored.Price.Equal(dec("6200")))
}

func TestUpdateProductNoopSkipsAudit(t *testing.T) {
	svc, products, auditLog := newProductFixture()
	id := uuid.New()
	products.products[id] = model.Product{
		ID: id, Name: "Pollo entero", Price: dec("5600"), Stock: dec("10"), Unit: model.UnitKg, IsActive: true,
	}

	samePrice := dec("5600")
	_, err := svc.Update(context.Background(), uuid.New(), id, dto.UpdateProductRequest{Price: &samePrice})
	require.NoError(t, err)
	assert.Empty(t, auditLog.entries)
}

func TestUpdateProductRejectsNegativeStock(t *testing.T) {
	svc, products, _ := newProductFixture()
	id := uuid.New()
	products.products[id] = model.Product{
		ID: id, Name: "Pollo entero", Price: dec("5600"), Stock: dec("10"), Unit: model.UnitKg, IsActive: true,
	}

	bad := decimal.RequireFromString("-1")
	_, err := svc.Update(context.Background(), uuid.New(), id, dto.UpdateProductRequest{Stock: &bad})
	var invalid *apierror.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestDeactivateProduct(t *testing.T) {
	svc, products, _ := newProductFixture()
	id := uuid.New()
	products.products[id] = model.Product{
		ID: id, Name: "Pollo entero", Price: dec("5600"), Stock: dec("10"), Unit: model.UnitKg, IsActive: true,
	}

	require.NoError(t, svc.Deactivate(context.Background(), uuid.New(), id))
	assert.False(t, products.products[id].IsActive)

	var notFound *apierror.NotFoundError
	require.ErrorAs(t, svc.Deactivate(context.Background(), uuid.New(), uuid.New()), &notFound)
}
