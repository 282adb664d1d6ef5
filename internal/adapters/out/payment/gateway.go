// Package payment verifies payment references with the payment gateway.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/errs"
)

const defaultTimeout = 10 * time.Second

// ErrGateway marks gateway failures: transport errors, non-2xx answers and
// bodies that cannot be decoded.
var ErrGateway = ports.ErrPaymentGateway

// verifyResponse is the gateway's verify answer. Amounts are in minor units.
type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string                `json:"reference"`
		Status    string                `json:"status"`
		Amount    int64                 `json:"amount"`
		Channel   string                `json:"channel"`
		Metadata  ports.PaymentMetadata `json:"metadata"`
	} `json:"data"`
}

// GatewayClient implements ports.PaymentVerifier over the gateway's REST API.
type GatewayClient struct {
	baseURL string
	secret  string
	http    *http.Client
}

var _ ports.PaymentVerifier = (*GatewayClient)(nil)

// NewGatewayClient creates a client for baseURL authenticated with secret.
// A nil httpClient gets a client with a 10 second timeout.
func NewGatewayClient(baseURL, secret string, httpClient *http.Client) *GatewayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    httpClient,
	}
}

// Verify asks the gateway for the state of reference.
func (c *GatewayClient) Verify(ctx context.Context, reference string) (ports.PaymentVerification, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return ports.PaymentVerification{}, errs.NewValueIsRequiredError("payment reference")
	}

	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.PaymentVerification{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.PaymentVerification{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ports.PaymentVerification{}, errs.NewObjectNotFoundError("payment", reference)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ports.PaymentVerification{}, fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.PaymentVerification{}, fmt.Errorf("%w: decode verify response: %w", ErrGateway, err)
	}
	if !out.Status {
		return ports.PaymentVerification{}, fmt.Errorf("%w: %s", ErrGateway, out.Message)
	}

	return ports.PaymentVerification{
		Reference: out.Data.Reference,
		Status:    strings.ToLower(out.Data.Status),
		Amount:    kernel.Money(out.Data.Amount),
		Channel:   out.Data.Channel,
		Metadata:  out.Data.Metadata,
	}, nil
}
