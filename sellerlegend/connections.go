package sellerlegend

import (
	"context"
	"net/url"
)

// ConnectionsService reads the state of the account's marketplace
// connections.
type ConnectionsService struct {
	client *Client
}

// List reads the connection status of every linked selling account.
func (s *ConnectionsService) List(ctx context.Context, account *AccountFilter) (*Page, error) {
	query := url.Values{}
	if account != nil {
		if err := account.validate(); err != nil {
			return nil, err
		}
		account.apply(query)
	}
	return s.client.page(ctx, "connections/list", query)
}
