package partner

import (
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
)

// Client represents a customer of the distribution business
type Client struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(200);not null"`
	Phone   string `gorm:"type:varchar(30);index"`
	Zone    string `gorm:"type:varchar(100);index"` // Delivery zone / neighborhood
	Address string `gorm:"type:varchar(255)"`
	Notes   string `gorm:"type:text"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client
func NewClient(name, phone, zone string) (*Client, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot exceed 200 characters")
	}

	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Zone:              zone,
		Active:            true,
	}, nil
}

// Update updates the client's contact information
func (c *Client) Update(name, phone, zone, address string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}

	c.Name = name
	c.Phone = phone
	c.Zone = zone
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate soft-deactivates the client, preserving order history
func (c *Client) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate re-enables a deactivated client
func (c *Client) Activate() {
	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
