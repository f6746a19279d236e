package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tair/library-service/internal/borrow/domain"
	"github.com/tair/library-service/pkg/logger"
)

// UserServiceClient resolves user roles over the user service HTTP API.
// It implements domain.UserDirectory for the admin on-behalf-of flow.
type UserServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewUserServiceClient creates a new user service HTTP client
func NewUserServiceClient(baseURL string) *UserServiceClient {
	logger.Logger.Info().
		Str("base_url", baseURL).
		Msg("User service client initialized")

	return &UserServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

// RoleOf resolves the role of a user by ID
func (c *UserServiceClient) RoleOf(userID uint) (string, error) {
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/internal/users/%d/role", c.baseURL, userID))
	if err != nil {
		return "", fmt.Errorf("failed to reach user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode user service response: %w", err)
	}

	return body.Role, nil
}

var _ domain.UserDirectory = (*UserServiceClient)(nil)
