package client

import (
	"testing"

	"storefront_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestRouteForEveryType(t *testing.T) {
	tests := []struct {
		name string
		n    models.Notification
		want string
	}{
		{
			name: "order placed",
			n: models.Notification{
				Type:     models.TypeOrderPlaced,
				TargetID: "ord-42",
			},
			want: "/orders/ord-42",
		},
		{
			name: "product review with deep link",
			n: models.Notification{
				Type:     models.TypeProductReview,
				TargetID: "rev-7",
				Data:     datatypes.JSON(`{"product_id":"prod-3","review_id":"rev-7"}`),
			},
			want: "/products/prod-3/reviews",
		},
		{
			name: "product review without deep link",
			n: models.Notification{
				Type:     models.TypeProductReview,
				TargetID: "rev-7",
			},
			want: "/reviews/rev-7",
		},
		{
			name: "product question",
			n: models.Notification{
				Type:     models.TypeProductQuestion,
				TargetID: "q-9",
				Data:     datatypes.JSON(`{"product_id":"prod-3"}`),
			},
			want: "/products/prod-3/questions",
		},
		{
			name: "review reply",
			n: models.Notification{
				Type:     models.TypeReviewReply,
				TargetID: "rev-7",
				Data:     datatypes.JSON(`{"review_id":"rev-7","reply_id":"rep-12"}`),
			},
			want: "/reviews/rev-7?reply=rep-12",
		},
		{
			name: "low stock with product",
			n: models.Notification{
				Type:     models.TypeLowStockAlert,
				TargetID: "prod-5",
				Data:     datatypes.JSON(`{"product_id":"prod-5","quantity":2}`),
			},
			want: "/products/prod-5/inventory",
		},
		{
			name: "unknown type falls back to the center",
			n: models.Notification{
				Type: models.NotificationType("SOMETHING_NEW"),
			},
			want: "/notifications",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteFor(&tt.n))
		})
	}
}

func TestRouteForNumericDeepLinkIDs(t *testing.T) {
	n := models.Notification{
		Type:     models.TypeReviewReply,
		TargetID: "rev-7",
		Data:     datatypes.JSON(`{"reply_id":12}`),
	}
	assert.Equal(t, "/reviews/rev-7?reply=12", RouteFor(&n))
}
