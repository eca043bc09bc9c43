package service

import (
	"context"
	"errors"

	"github.com/andresbsn/polleria/internal/apierror"
	"github.com/andresbsn/polleria/internal/audit"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type categoryService struct {
	repo      repository.CategoryRepository
	auditRepo repository.AuditRepository
}

func NewCategoryService(repo repository.CategoryRepository, auditRepo repository.AuditRepository) CategoryService {
	return &categoryService{repo: repo, auditRepo: auditRepo}
}

func (s *categoryService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	c := &model.Category{ID: uuid.New(), Name: req.Name}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	cid := c.ID
	if err := s.auditRepo.Write(ctx, userID, &cid, audit.CategoryChanged{
		CategoryID: c.ID,
		Operation:  "CREATE",
		Name:       c.Name,
	}); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID.String(), Name: c.Name}, nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, dto.CategoryResponse{ID: c.ID.String(), Name: c.Name})
	}
	return resp, nil
}

func (s *categoryService) Update(ctx context.Context, userID, id uuid.UUID, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("category", id.String())
	}
	if err != nil {
		return nil, err
	}

	c.Name = req.Name
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	cid := c.ID
	if err := s.auditRepo.Write(ctx, userID, &cid, audit.CategoryChanged{
		CategoryID: c.ID,
		Operation:  "UPDATE",
		Name:       c.Name,
	}); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID.String(), Name: c.Name}, nil
}

// Delete refuses to remove a category that still has products.
func (s *categoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("category", id.String())
	}
	if err != nil {
		return err
	}

	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.Conflict("category has products assigned")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	cid := id
	return s.auditRepo.Write(ctx, userID, &cid, audit.CategoryChanged{
		CategoryID: id,
		Operation:  "DELETE",
		Name:       c.Name,
	})
}
