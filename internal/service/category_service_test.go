package service

import (
	"context"
	"testing"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubCategoryRepo struct {
	categories    map[uuid.UUID]model.Category
	productCounts map[uuid.UUID]int64
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		categories:    make(map[uuid.UUID]model.Category),
		productCounts: make(map[uuid.UUID]int64),
	}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	r.categories[c.ID] = *c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.Category) error {
	r.categories[c.ID] = *c
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.categories, id)
	return nil
}

func (r *stubCategoryRepo) CountProducts(_ context.Context, id uuid.UUID) (int64, error) {
	return r.productCounts[id], nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

func TestCategoryLifecycle(t *testing.T) {
	repo := newStubCategoryRepo()
	auditLog := &stubAuditRepo{}
	svc := NewCategoryService(repo, auditLog)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, dto.CreateCategoryRequest{Name: "Achuras"})
	require.NoError(t, err)

	id := uuid.MustParse(created.ID)
	updated, err := svc.Update(ctx, userID, id, dto.CreateCategoryRequest{Name: "Aves"})
	require.NoError(t, err)
	assert.Equal(t, "Aves", updated.Name)

	require.NoError(t, svc.Delete(ctx, userID, id))
	assert.Empty(t, repo.categories)
	assert.Equal(t, []string{"CATEGORY_CHANGED", "CATEGORY_CHANGED", "CATEGORY_CHANGED"}, auditLog.actions())
}

func TestCategoryDeleteWithProductsConflicts(t *testing.T) {
	repo := newStubCategoryRepo()
	svc := NewCategoryService(repo, &stubAuditRepo{})
	id := uuid.New()
	repo.categories[id] = model.Category{ID: id, Name: "Aves"}
	repo.productCounts[id] = 4

	err := svc.Delete(context.Background(), uuid.New(), id)
	var conflict *apierror.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Len(t, repo.categories, 1)
}
