package client

import (
	"encoding/json"
	"fmt"

	"storefront_backend/internal/models"
)

// RouteFor maps a notification to the admin panel page its click-through
// should open. The switch is exhaustive over the notification types;
// anything unrecognized lands on the notification center itself rather
// than a broken link.
func RouteFor(n *models.Notification) string {
	data := deepLinks(n)

	switch n.Type {
	case models.TypeOrderPlaced:
		return "/orders/" + n.TargetID

	case models.TypeProductReview:
		if productID, ok := data["product_id"]; ok {
			return fmt.Sprintf("/products/%s/reviews", productID)
		}
		return "/reviews/" + n.TargetID

	case models.TypeProductQuestion:
		if productID, ok := data["product_id"]; ok {
			return fmt.Sprintf("/products/%s/questions", productID)
		}
		return "/questions/" + n.TargetID

	case models.TypeReviewReply:
		if replyID, ok := data["reply_id"]; ok {
			return fmt.Sprintf("/reviews/%s?reply=%s", n.TargetID, replyID)
		}
		return "/reviews/" + n.TargetID

	case models.TypeLowStockAlert:
		if productID, ok := data["product_id"]; ok {
			return fmt.Sprintf("/products/%s/inventory", productID)
		}
		return "/inventory"
	}

	return "/notifications"
}

// deepLinks flattens the notification's data payload to strings for
// route interpolation.
func deepLinks(n *models.Notification) map[string]string {
	out := make(map[string]string)
	if len(n.Data) == 0 {
		return out
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(n.Data, &raw); err != nil {
		return out
	}

	for key, value := range raw {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64:
			out[key] = fmt.Sprintf("%.0f", v)
		}
	}
	return out
}
