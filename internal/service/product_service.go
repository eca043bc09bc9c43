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

type ProductService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
}

type productService struct {
	repo      repository.ProductRepository
	auditRepo repository.AuditRepository
}

func NewProductService(repo repository.ProductRepository, auditRepo repository.AuditRepository) ProductService {
	return &productService{repo: repo, auditRepo: auditRepo}
}

func (s *productService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.Sign() <= 0 {
		return nil, apierror.InvalidInput("price must be positive")
	}
	if req.Stock.IsNegative() {
		return nil, apierror.InvalidInput("stock cannot be negative")
	}

	p := &model.Product{
		ID:       uuid.New(),
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		Unit:     req.Unit,
		IsActive: true,
	}
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apierror.InvalidInput("invalid category_id")
		}
		p.CategoryID = &cid
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	pid := p.ID
	if err := s.auditRepo.Write(ctx, userID, &pid, audit.ProductChanged{
		ProductID: p.ID,
		Operation: "CREATE",
	}); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("product", id.String())
	}
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		resp.Data = append(resp.Data, *productToResponse(&products[i]))
	}
	return resp, nil
}

// Update applies only the fields present in the request and audits a
// per-field before/after diff.
func (s *productService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.NotFound("product", id.String())
	}
	if err != nil {
		return nil, err
	}

	changes := map[string]audit.FieldChange{}

	if req.Name != nil && *req.Name != p.Name {
		changes["name"] = audit.FieldChange{From: p.Name, To: *req.Name}
		p.Name = *req.Name
	}
	if req.Price != nil && !req.Price.Equal(p.Price) {
		if req.Price.Sign() <= 0 {
			return nil, apierror.InvalidInput("price must be positive")
		}
		changes["price"] = audit.FieldChange{From: p.Price, To: *req.Price}
		p.Price = *req.Price
	}
	if req.Stock != nil && !req.Stock.Equal(p.Stock) {
		if req.Stock.IsNegative() {
			return nil, apierror.InvalidInput("stock cannot be negative")
		}
		changes["stock"] = audit.FieldChange{From: p.Stock, To: *req.Stock}
		p.Stock = *req.Stock
	}
	if req.Unit != nil && *req.Unit != p.Unit {
		changes["unit"] = audit.FieldChange{From: p.Unit, To: *req.Unit}
		p.Unit = *req.Unit
	}
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apierror.InvalidInput("invalid category_id")
		}
		if p.CategoryID == nil || *p.CategoryID != cid {
			changes["category_id"] = audit.FieldChange{From: p.CategoryID, To: cid}
			p.CategoryID = &cid
			p.Category = nil
		}
	}
	if req.IsActive != nil && *req.IsActive != p.IsActive {
		changes["is_active"] = audit.FieldChange{From: p.IsActive, To: *req.IsActive}
		p.IsActive = *req.IsActive
	}

	if len(changes) == 0 {
		return productToResponse(p), nil
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	pid := p.ID
	if err := s.auditRepo.Write(ctx, userID, &pid, audit.ProductChanged{
		ProductID: p.ID,
		Operation: "UPDATE",
		Changes:   changes,
	}); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("product", id.String())
	} else if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	pid := id
	return s.auditRepo.Write(ctx, userID, &pid, audit.ProductChanged{
		ProductID: id,
		Operation: "DEACTIVATE",
	})
}
