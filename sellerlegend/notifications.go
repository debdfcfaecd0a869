package sellerlegend

import (
	"context"
	"net/url"

	"github.com/sellerlegend/go-sellerlegend/internal/validate"
)

// NotificationsService reads platform notifications.
type NotificationsService struct {
	client *Client
}

// List reads notifications of one type, e.g. "low_stock".
func (s *NotificationsService) List(ctx context.Context, notificationType string) (*Page, error) {
	if err := validate.Required(notificationType, "notification_type"); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("notification_type", notificationType)
	return s.client.page(ctx, "notifications/list", query)
}
