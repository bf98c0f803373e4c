package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mystock/backend/internal/domain/partner"
	"github.com/mystock/backend/internal/domain/shared"
)

// CustomerService handles customer operations
type CustomerService struct {
	customers partner.CustomerRepository
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customers partner.CustomerRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customers: customers,
		logger:    logger.Named("customers"),
	}
}

// Create creates a new customer. Tax IDs are unique.
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.TradeName, req.TaxID, req.Phone, req.BillingAddress, req.BillingCity)
	if err != nil {
		return nil, err
	}

	if existing, err := s.customers.FindByTaxID(ctx, customer.TaxID); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	customer.Email = req.Email
	if req.DeliveryAddress != "" || req.DeliveryCity != "" {
		customer.SetDeliveryAddress(req.DeliveryAddress, req.DeliveryCity)
	}

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("tax_id", customer.TaxID),
		zap.String("customer_id", customer.ID.String()),
	)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter PartnerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := buildPartnerFilter(filter)

	customers, err := s.customers.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customers.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer. The tax ID is immutable once created.
func (s *CustomerService) Update(ctx context.Context, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if req.TradeName != nil {
		if *req.TradeName == "" {
			return nil, shared.NewDomainError("INVALID_TRADE_NAME", "Trade name cannot be empty")
		}
		customer.TradeName = *req.TradeName
	}

	email := customer.Email
	phone := customer.Phone
	if req.Email != nil {
		email = *req.Email
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			return nil, shared.NewDomainError("INVALID_PHONE", "Phone cannot be empty")
		}
		phone = *req.Phone
	}
	customer.UpdateContact(email, phone)

	if req.BillingAddress != nil {
		customer.BillingAddress = *req.BillingAddress
	}
	if req.BillingCity != nil {
		customer.BillingCity = *req.BillingCity
	}
	if req.DeliveryAddress != nil || req.DeliveryCity != nil {
		address := customer.DeliveryAddress
		city := customer.DeliveryCity
		if req.DeliveryAddress != nil {
			address = *req.DeliveryAddress
		}
		if req.DeliveryCity != nil {
			city = *req.DeliveryCity
		}
		customer.SetDeliveryAddress(address, city)
	}

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Deactivate marks a customer inactive, keeping its order history
func (s *CustomerService) Deactivate(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	customer.Deactivate()

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer record entirely
func (s *CustomerService) Delete(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return err
	}
	return s.customers.Delete(ctx, customerID)
}

// buildPartnerFilter converts the list filter to a domain filter
func buildPartnerFilter(filter PartnerListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	return domainFilter
}
