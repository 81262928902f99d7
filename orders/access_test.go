package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"arcane/globals"
	"arcane/models"
)

func authedRequest(userID string, roles []string) *http.Request {
	r := httptest.NewRequest("GET", "/api/orders/abc", nil)
	ctx := r.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, globals.UserIDKey, userID)
	}
	if roles != nil {
		ctx = context.WithValue(ctx, globals.RolesKey, roles)
	}
	return r.WithContext(ctx)
}

func TestCanAccessOrder(t *testing.T) {
	owned := &models.Order{ID: "abc", UserID: "user-42"}
	guest := &models.Order{ID: "def"}

	cases := []struct {
		name   string
		userID string
		roles  []string
		order  *models.Order
		want   bool
	}{
		{"owner reads own", "user-42", []string{"user"}, owned, true},
		{"other user denied", "user-7", []string{"user"}, owned, false},
		{"admin reads any", "user-7", []string{"admin"}, owned, true},
		{"guest order denied to users", "user-42", []string{"user"}, guest, false},
		{"guest order allowed to admin", "user-7", []string{"admin"}, guest, true},
		{"no identity denied", "", nil, guest, false},
	}
	for _, tc := range cases {
		req := authedRequest(tc.userID, tc.roles)
		if got := canAccessOrder(req, tc.order); got != tc.want {
			t.Errorf("%s: canAccessOrder = %v, want %v", tc.name, got, tc.want)
		}
	}
}
