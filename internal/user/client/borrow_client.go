package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// BorrowServiceClient queries the borrow service over HTTP. It backs the
// domain.LoanGuard check that blocks deleting users with outstanding loans.
type BorrowServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBorrowServiceClient creates a new borrow service client
func NewBorrowServiceClient(baseURL string) *BorrowServiceClient {
	return &BorrowServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

type activeCountResponse struct {
	ActiveRecords int64 `json:"active_records"`
}

// ActiveRecordCount returns how many active borrow records the user holds.
func (c *BorrowServiceClient) ActiveRecordCount(userID uint) (int64, error) {
	url := fmt.Sprintf("%s/borrow/internal/active-count?user_id=%d", c.baseURL, userID)

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to call borrow service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("borrow service returned status %d", resp.StatusCode)
	}

	var result activeCountResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode borrow service response: %w", err)
	}

	return result.ActiveRecords, nil
}
