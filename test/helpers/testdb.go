package helpers

import (
	"encoding/json"
	"net/http"
	"testing"

	"storefront_backend/internal/auth"
	"storefront_backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser inserts a user with a properly hashed password.
func CreateUser(t *testing.T, db *gorm.DB, name, email, password, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error, "creating test user %s", email)
	return user
}

// CreateAndLoginUser creates the user and logs in over the API,
// returning the bearer token.
func CreateAndLoginUser(t *testing.T, ts *TestServer, name, email, password, role string) (string, *models.User) {
	t.Helper()

	user := CreateUser(t, ts.DB, name, email, password, role)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "login should succeed, got: %s", body)

	var loginResponse struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &loginResponse))
	require.NotEmpty(t, loginResponse.Token)

	return loginResponse.Token, user
}

// CreateNotification inserts a notification row directly.
func CreateNotification(t *testing.T, db *gorm.DB, n *models.Notification) *models.Notification {
	t.Helper()
	if n.Status == "" {
		n.Status = models.StatusUnread
	}
	if n.Category == "" {
		n.Category = models.CategoryGeneral
	}
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	require.NoError(t, db.Create(n).Error)
	return n
}
