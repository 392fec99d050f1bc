package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

const (
	connectTimeout = 60 * time.Second
	requestTimeout = 120 * time.Second
)

// ManageIQClient submits templated service orders to a ManageIQ-style
// orchestration platform. A client is built fresh for each provisioning
// attempt from the settings store; nothing is cached between attempts.
type ManageIQClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewManageIQClient creates a client for one provisioning attempt.
func NewManageIQClient(baseURL, username, password string) *ManageIQClient {
	return &ManageIQClient{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
			},
		},
	}
}

// ServiceOrderResult is one entry of the platform's results array.
type ServiceOrderResult struct {
	ID json.Number `json:"id"`
}

// ServiceOrderResponse is the platform's acknowledgement of an order.
type ServiceOrderResponse struct {
	StatusCode int
	RawBody    json.RawMessage
	Results    []ServiceOrderResult
}

// OrderService POSTs an order payload to the catalog's service_templates
// endpoint. A transport failure returns a nil response. A response whose
// body cannot be parsed is returned together with the decode error so the
// caller can still audit the raw acknowledgement.
func (c *ManageIQClient) OrderService(ctx context.Context, serviceCatalogID string, payload interface{}) (*ServiceOrderResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/service_catalogs/%s/service_templates", c.baseURL, serviceCatalogID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	result := &ServiceOrderResponse{
		StatusCode: resp.StatusCode,
		RawBody:    json.RawMessage(respBody),
	}

	var parsed struct {
		Results []ServiceOrderResult `json:"results"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return result, fmt.Errorf("decode response: %w", err)
	}
	result.Results = parsed.Results

	log.Printf("[ManageIQClient] Order submitted to catalog %s: status=%d", serviceCatalogID, resp.StatusCode)
	return result, nil
}
