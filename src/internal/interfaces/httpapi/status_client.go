package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	checkinapp "github.com/jackyeh168/salon_crm/src/internal/application/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
)

// StatusClient 透過 HTTP 查詢報到碼狀態，供員工端 ConfirmationWatcher 輪詢
type StatusClient struct {
	baseURL string
	bearer  string
	client  *http.Client
}

// NewStatusClient 建立 client；httpClient 為 nil 時使用 5 秒逾時
func NewStatusClient(baseURL, bearer string, httpClient *http.Client) *StatusClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &StatusClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		bearer:  bearer,
		client:  httpClient,
	}
}

// FetchStatus 實現 checkinapp.StatusFetcher
func (c *StatusClient) FetchStatus(ctx context.Context, token string) (*checkinapp.VisitTokenStatus, error) {
	endpoint := fmt.Sprintf("%s/api/visit-tokens/%s/status", c.baseURL, url.PathEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch token status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body errorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			return nil, fmt.Errorf("fetch token status: unexpected status %d", resp.StatusCode)
		}
		return nil, (&checkin.DomainError{
			Code:    checkin.ErrorCode(body.Error),
			Message: body.Message,
		}).WithContext("status", resp.StatusCode)
	}

	var body tokenStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode token status: %w", err)
	}
	return &checkinapp.VisitTokenStatus{
		State:     checkin.TokenState(body.State),
		ExpiresAt: body.ExpiresAt,
		UsedAt:    body.UsedAt,
		Remaining: time.Duration(body.RemainingSeconds) * time.Second,
	}, nil
}
