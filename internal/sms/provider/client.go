package provider

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var ErrGatewayFailure = errors.New("sms gateway reported failure")

// Client talks to the external SMS gateway over plain HTTP GET requests
// with query parameters.
type Client struct {
	logger       *slog.Logger
	httpClient   *http.Client
	customSMSURL string
	bomberURL    string
}

// NewClient builds a gateway client. insecureTLS disables certificate
// verification toward the gateway; leave it off unless the gateway's cert
// chain is known-broken.
func NewClient(logger *slog.Logger, customSMSURL, bomberURL string, insecureTLS bool, httpClient *http.Client) *Client {
	if httpClient == nil {
		transport := http.DefaultTransport
		if insecureTLS {
			transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
		}
		httpClient = &http.Client{Timeout: 15 * time.Second, Transport: transport}
	}
	return &Client{
		logger:       logger.With("provider", "sms_gateway"),
		httpClient:   httpClient,
		customSMSURL: customSMSURL,
		bomberURL:    bomberURL,
	}
}

// gatewayResponse is the custom-sms endpoint's envelope. APIResponse nests
// the upstream provider's own response, shape not guaranteed.
type gatewayResponse struct {
	Status      string          `json:"status"`
	APIResponse json.RawMessage `json:"api_response"`
}

type providerDetail struct {
	MessageID string `json:"message_id"`
}

func (c *Client) SendOTP(ctx context.Context, phone, code string) error {
	text := fmt.Sprintf("Your verification code is %s. It expires in 15 minutes.", code)
	outcome, err := c.SendCustom(ctx, phone, text)
	if err != nil {
		return err
	}
	if !outcome.Success {
		return ErrGatewayFailure
	}
	return nil
}

func (c *Client) SendCustom(ctx context.Context, phone, text string) (*SendOutcome, error) {
	params := url.Values{}
	params.Set("phone", phone)
	params.Set("message", text)

	body, status, err := c.get(ctx, c.customSMSURL, params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.WarnContext(ctx, "Gateway returned non-OK status", "status", status, "phone", phone)
		return &SendOutcome{Success: false}, nil
	}

	var resp gatewayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.WarnContext(ctx, "Failed to decode gateway response", "error", err)
		return &SendOutcome{Success: false}, nil
	}
	if resp.Status != "success" {
		return &SendOutcome{Success: false}, nil
	}

	outcome := &SendOutcome{Success: true}
	// The nested provider response is free-form; a missing or malformed
	// message id does not fail the send.
	var detail providerDetail
	if len(resp.APIResponse) > 0 && json.Unmarshal(resp.APIResponse, &detail) == nil {
		outcome.ProviderMessageID = detail.MessageID
	}
	return outcome, nil
}

func (c *Client) SendBomber(ctx context.Context, phone string, repeat int) error {
	params := url.Values{}
	params.Set("mobile", phone)
	params.Set("repeat", strconv.Itoa(repeat))

	_, status, err := c.get(ctx, c.bomberURL, params)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		c.logger.WarnContext(ctx, "Bomber endpoint returned non-OK status", "status", status, "phone", phone)
		return ErrGatewayFailure
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating gateway request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Gateway request failed", "error", err, "endpoint", endpoint)
		return nil, 0, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading gateway response: %w", err)
	}
	return body, resp.StatusCode, nil
}
