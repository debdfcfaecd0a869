package sellerlegend

import (
	"context"
	"encoding/json"
)

// UserService reads the authenticated user's profile and connected selling
// accounts.
type UserService struct {
	client *Client
}

// Me reads the profile of the user the token belongs to.
func (s *UserService) Me(ctx context.Context) (json.RawMessage, error) {
	var profile json.RawMessage
	if err := s.client.get(ctx, "user/me", nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Accounts lists the selling accounts connected to the user.
func (s *UserService) Accounts(ctx context.Context) (*Page, error) {
	return s.client.page(ctx, "user/accounts", nil)
}
