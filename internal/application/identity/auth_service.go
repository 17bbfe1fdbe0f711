package identity

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Issue(userID uuid.UUID, username string, role identity.Role) (token string, expiresAt time.Time, err error)
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	Password string `json:"password" binding:"required,min=1"`
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// CreateUserRequest represents a request to create a staff account
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	FullName string `json:"full_name" binding:"required,min=1,max=200"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin salesperson deliverer"`
	Phone    string `json:"phone" binding:"max=30"`
}

// UpdatePreferencesRequest sets which events notify the user
type UpdatePreferencesRequest struct {
	OrderValidated bool `json:"order_validated"`
	OrderConverted bool `json:"order_converted"`
	LowStock       bool `json:"low_stock"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID               `json:"id"`
	Username    string                  `json:"username"`
	FullName    string                  `json:"full_name"`
	Role        string                  `json:"role"`
	Phone       string                  `json:"phone,omitempty"`
	Active      bool                    `json:"active"`
	Preferences PreferencesResponse     `json:"preferences"`
	LastLoginAt *time.Time              `json:"last_login_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// PreferencesResponse represents notification preferences in API responses
type PreferencesResponse struct {
	OrderValidated bool `json:"order_validated"`
	OrderConverted bool `json:"order_converted"`
	LowStock       bool `json:"low_stock"`
}

// ToUserResponse converts a user to its response form
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role.String(),
		Phone:    u.Phone,
		Active:   u.Active,
		Preferences: PreferencesResponse{
			OrderValidated: u.Preferences.OrderValidated,
			OrderConverted: u.Preferences.OrderConverted,
			LowStock:       u.Preferences.LowStock,
		},
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// Service handles authentication and staff account management
type Service struct {
	userRepo identity.UserRepository
	issuer   TokenIssuer
}

// NewService creates a new identity Service
func NewService(userRepo identity.UserRepository, issuer TokenIssuer) *Service {
	return &Service{userRepo: userRepo, issuer: issuer}
}

// Login authenticates a user and issues a token. Failed lookups and wrong
// passwords return the same error so usernames cannot be probed.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}
	if !user.Active || !user.CheckPassword(req.Password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	token, expiresAt, err := s.issuer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(time.Now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      ToUserResponse(user),
	}, nil
}

// CreateUser creates a staff account
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	taken, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("DUPLICATE_USERNAME", "Username is already taken")
	}

	user, err := identity.NewUser(req.Username, req.FullName, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	user.Phone = req.Phone

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListByRole retrieves active users holding a role
func (s *Service) ListByRole(ctx context.Context, role identity.Role) ([]UserResponse, error) {
	users, err := s.userRepo.FindByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, 0, len(users))
	for idx := range users {
		items = append(items, ToUserResponse(&users[idx]))
	}
	return items, nil
}

// ChangePassword changes the caller's password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := user.ChangePassword(req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// UpdatePreferences replaces the caller's notification preferences
func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, req UpdatePreferencesRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.SetPreferences(identity.NotificationPreferences{
		OrderValidated: req.OrderValidated,
		OrderConverted: req.OrderConverted,
		LowStock:       req.LowStock,
	})

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// DeactivateUser disables a staff account
func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Deactivate()
	return s.userRepo.Save(ctx, user)
}
