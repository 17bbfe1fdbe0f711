package partner

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/domain/partner"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=30"`
	Zone    string `json:"zone" binding:"max=100"`
	Address string `json:"address" binding:"max=255"`
	Notes   string `json:"notes"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=30"`
	Zone    string `json:"zone" binding:"max=100"`
	Address string `json:"address" binding:"max=255"`
	Notes   string `json:"notes"`
}

// ListFilter represents filter options for client lists
type ListFilter struct {
	Search   string `form:"search"`
	Zone     string `form:"zone"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Zone      string    `json:"zone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToClientResponse converts a client to its response form
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Zone:      c.Zone,
		Address:   c.Address,
		Notes:     c.Notes,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Service handles client operations
type Service struct {
	clientRepo partner.ClientRepository
}

// NewService creates a new partner Service
func NewService(clientRepo partner.ClientRepository) *Service {
	return &Service{clientRepo: clientRepo}
}

// Create creates a new client
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, req.Phone, req.Zone)
	if err != nil {
		return nil, err
	}
	client.Address = req.Address
	client.Notes = req.Notes

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	resp := ToClientResponse(client)
	return &resp, nil
}

// GetByID retrieves a client by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// List retrieves clients with filtering and pagination
func (s *Service) List(ctx context.Context, filter ListFilter) ([]ClientResponse, int64, error) {
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
		Filters:  map[string]interface{}{},
	}
	if filter.Zone != "" {
		domainFilter.Filters["zone"] = filter.Zone
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]ClientResponse, 0, len(clients))
	for idx := range clients {
		items = append(items, ToClientResponse(&clients[idx]))
	}
	return items, total, nil
}

// Update updates a client's contact information
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := client.Update(req.Name, req.Phone, req.Zone, req.Address); err != nil {
		return nil, err
	}
	client.Notes = req.Notes

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	resp := ToClientResponse(client)
	return &resp, nil
}

// Deactivate soft-deactivates a client
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	client.Deactivate()
	return s.clientRepo.Save(ctx, client)
}

// Activate re-enables a deactivated client
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	client.Activate()
	return s.clientRepo.Save(ctx, client)
}
