package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ゲートウェイと通信できない（ネットワーク・タイムアウト・パース失敗）
var ErrUnavailable = errors.New("payment gateway unavailable")

// ゲートウェイが明示的に拒否した
type RejectedError struct {
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("gateway rejected: %d %s", e.Code, e.Message)
}

func AsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	ok := errors.As(err, &re)
	return re, ok
}

// 受理コード。requestもverifyも100が成功。
const codeAccepted = 100

// トマン→リアル。ゲートウェイのwireは最小単位。
const minorUnitFactor = 10

// ClientはZarinpalのrequest/verify APIを包む。
type Client struct {
	merchantID  string
	apiURL      string
	startPayURL string
	http        *http.Client
}

func NewClient(merchantID string, apiURL string, startPayURL string) *Client {
	return &Client{
		merchantID:  merchantID,
		apiURL:      strings.TrimRight(apiURL, "/"),
		startPayURL: strings.TrimRight(startPayURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RequestInputの金額はトマン。変換はClientが行う。
type RequestInput struct {
	Amount      int64
	Description string
	CallbackURL string
	Mobile      string
	Email       string
}

type requestPayload struct {
	MerchantID  string          `json:"merchant_id"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	CallbackURL string          `json:"callback_url"`
	Metadata    requestMetadata `json:"metadata"`
}

type requestMetadata struct {
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

type verifyPayload struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

type gatewayResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type gatewayData struct {
	Code      int         `json:"code"`
	Authority string      `json:"authority"`
	RefID     json.Number `json:"ref_id"`
}

type gatewayError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Requestは決済リクエストを開き、相関トークン（authority）を返す。
func (c *Client) Request(ctx context.Context, in RequestInput) (string, error) {
	payload := requestPayload{
		MerchantID:  c.merchantID,
		Amount:      in.Amount * minorUnitFactor,
		Description: in.Description,
		CallbackURL: in.CallbackURL,
		Metadata: requestMetadata{
			Mobile: in.Mobile,
			Email:  in.Email,
		},
	}

	data, err := c.post(ctx, "/payment/request.json", payload)
	if err != nil {
		return "", err
	}
	if data.Code != codeAccepted || data.Authority == "" {
		return "", &RejectedError{Code: data.Code, Message: "request not accepted"}
	}
	return data.Authority, nil
}

// Verifyは決済結果を照会し、追跡番号（ref_id）を返す。
// 金額はトマンで受け取り、requestと同じ変換をかける。
func (c *Client) Verify(ctx context.Context, amount int64, authority string) (string, error) {
	payload := verifyPayload{
		MerchantID: c.merchantID,
		Amount:     amount * minorUnitFactor,
		Authority:  authority,
	}

	data, err := c.post(ctx, "/payment/verify.json", payload)
	if err != nil {
		return "", err
	}
	if data.Code != codeAccepted {
		return "", &RejectedError{Code: data.Code, Message: "verify not accepted"}
	}
	return data.RefID.String(), nil
}

// StartPayURLはホスト型決済ページへのリダイレクト先
func (c *Client) StartPayURL(authority string) string {
	return c.startPayURL + "/" + authority
}

func (c *Client) post(ctx context.Context, path string, payload any) (gatewayData, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return gatewayData{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return gatewayData{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gatewayData{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return gatewayData{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	//dataが空objectや空arrayで返ることがあるので緩く読む
	var data gatewayData
	if len(out.Data) > 0 && out.Data[0] == '{' {
		if err := json.Unmarshal(out.Data, &data); err != nil {
			return gatewayData{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if data.Code == codeAccepted {
		return data, nil
	}

	//errorsはobjectのこともarrayのこともある
	var gwErr gatewayError
	if len(out.Errors) > 0 && out.Errors[0] == '{' {
		if err := json.Unmarshal(out.Errors, &gwErr); err == nil && gwErr.Code != 0 {
			return gatewayData{}, &RejectedError{Code: gwErr.Code, Message: gwErr.Message}
		}
	}
	return data, nil
}

// Descriptionは明細書に出る説明文
func Description(amount int64) string {
	return "پرداخت سفارش - مبلغ: " + strconv.FormatInt(amount, 10) + " تومان"
}
