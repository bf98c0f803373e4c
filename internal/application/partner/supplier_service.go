package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/partner"
	"github.com/mystock/backend/internal/domain/shared"
)

// SupplierService handles supplier operations
type SupplierService struct {
	suppliers partner.SupplierRepository
	logger    *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(suppliers partner.SupplierRepository, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{
		suppliers: suppliers,
		logger:    logger.Named("suppliers"),
	}
}

// Create creates a new supplier. Tax IDs are unique.
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.TradeName, req.TaxID, req.Phone, req.Address, req.City)
	if err != nil {
		return nil, err
	}

	if existing, err := s.suppliers.FindByTaxID(ctx, supplier.TaxID); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	supplier.Email = req.Email
	supplier.ContactName = req.ContactName

	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}

	s.logger.Info("supplier created",
		zap.String("tax_id", supplier.TaxID),
		zap.String("supplier_id", supplier.ID.String()),
	)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, filter PartnerListFilter) ([]SupplierResponse, int64, error) {
	domainFilter := buildPartnerFilter(filter)

	suppliers, err := s.suppliers.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.suppliers.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSupplierResponses(suppliers), total, nil
}

// Update updates a supplier. The tax ID is immutable once created.
func (s *SupplierService) Update(ctx context.Context, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if req.TradeName != nil {
		if *req.TradeName == "" {
			return nil, shared.NewDomainError("INVALID_TRADE_NAME", "Trade name cannot be empty")
		}
		supplier.TradeName = *req.TradeName
	}

	email := supplier.Email
	phone := supplier.Phone
	contactName := supplier.ContactName
	if req.Email != nil {
		email = *req.Email
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
		}
		phone = *req.Phone
	}
	if req.ContactName != nil {
		contactName = *req.ContactName
	}
	supplier.UpdateContact(email, phone, contactName)

	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.City != nil {
		supplier.City = *req.City
	}

	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Deactivate marks a supplier inactive, keeping its order history
func (s *SupplierService) Deactivate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	supplier.Deactivate()

	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Delete removes a supplier record entirely
func (s *SupplierService) Delete(ctx context.Context, supplierID uuid.UUID) error {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return err
	}
	return s.suppliers.Delete(ctx, supplierID)
}
