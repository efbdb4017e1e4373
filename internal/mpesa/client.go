package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gopay/internal/config"
)

// Result codes echoed by the gateway in callbacks and status queries.
const (
	// ResultCodeSuccess indicates the passenger authorized the payment.
	ResultCodeSuccess = 0

	// ResultCodeCancelled indicates the passenger dismissed the STK prompt.
	ResultCodeCancelled = 1032
)

// StatusResult is the outcome of an STK push status query.
type StatusResult struct {
	ResultCode int
	ResultDesc string
	Receipt    string
	// Pending is true while the gateway is still awaiting the passenger.
	Pending bool
}

// Client is an HTTP client for the M-Pesa Daraja STK push API.
type Client struct {
	cfg        config.MpesaConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new Daraja client. All requests apply cfg.Timeout.
func NewClient(cfg config.MpesaConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorMessage        string `json:"errorMessage"`
}

// STKPush asks the gateway to prompt the passenger's device for the amount.
// Returns the gateway-issued checkout request ID used to correlate the
// asynchronous result callback.
func (c *Client) STKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102150405")
	body := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            strconv.Itoa(int(amount)),
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}

	var resp stkPushResponse
	if err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", token, body, &resp); err != nil {
		return "", err
	}

	if resp.ResponseCode != "0" || resp.CheckoutRequestID == "" {
		return "", fmt.Errorf("%w: %s", ErrGatewayRejected, firstNonEmpty(resp.ErrorMessage, resp.ResponseDescription))
	}

	return resp.CheckoutRequestID, nil
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResponse struct {
	ResultCode   string `json:"ResultCode"`
	ResultDesc   string `json:"ResultDesc"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// stillProcessing is Daraja's error code for a push the passenger has not
// answered yet.
const stillProcessing = "500.001.1001"

// QueryStatus asks the gateway for the outcome of a previously initiated
// push. A still-pending push is reported with Pending set, not an error.
func (c *Client) QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	body := stkQueryRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var resp stkQueryResponse
	if err := c.post(ctx, "/mpesa/stkpushquery/v1/query", token, body, &resp); err != nil {
		if resp.ErrorCode == stillProcessing {
			return &StatusResult{Pending: true, ResultDesc: resp.ErrorMessage}, nil
		}
		return nil, err
	}

	code, err := strconv.Atoi(resp.ResultCode)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable result code %q", ErrGatewayRejected, resp.ResultCode)
	}

	return &StatusResult{ResultCode: code, ResultDesc: resp.ResultDesc}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// token returns a cached OAuth access token, refreshing it when stale.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token request returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	lifetime := 3600
	if secs, err := strconv.Atoi(tok.ExpiresIn); err == nil {
		lifetime = secs
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early so in-flight requests never carry a dead token.
	c.tokenExpiry = time.Now().Add(time.Duration(lifetime-60) * time.Second)

	return c.accessToken, nil
}

// post sends an authenticated JSON request and decodes the response into
// out. Server errors and transport failures map to ErrGatewayUnavailable,
// client errors to ErrGatewayRejected; out is populated in both cases when
// the gateway returned a decodable body.
func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	_ = json.Unmarshal(raw, out)

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: status %d: %s", ErrGatewayRejected, resp.StatusCode, raw)
	}

	return nil
}

func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.Passkey + timestamp))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
