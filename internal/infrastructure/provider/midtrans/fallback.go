package midtrans

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/midtrans/midtrans-go/snap"
	"go.uber.org/zap"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/provider"
)

type snapHTTPResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

// createWithHTTP posts the Snap request directly to the transactions endpoint.
// POST {snap_url}
func (m *MidtransProvider) createWithHTTP(ctx context.Context, req *snap.Request) (*provider.ChargeToken, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeInvalidRequest,
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.SnapURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeInvalidRequest,
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}

	auth := base64.StdEncoding.EncodeToString([]byte(m.cfg.ServerKey + ":"))
	httpReq.Header.Set("Authorization", "Basic "+auth)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		code := provider.CodeAPIError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			code = provider.CodeTimeout
		}
		return nil, &provider.ProviderError{
			Code:    code,
			Message: "Midtrans Snap request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeAPIError,
			Message: "Failed to read response",
			Details: err.Error(),
		}
	}

	var result snapHTTPResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.CodeParseError,
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || result.Token == "" {
		m.logger.Error("MidtransProvider: Snap HTTP request rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.Strings("error_messages", result.ErrorMessages))
		return nil, &provider.ProviderError{
			Code:    provider.CodeAPIError,
			Message: "Midtrans Snap returned no token",
			Details: strings.Join(result.ErrorMessages, "; "),
		}
	}

	return &provider.ChargeToken{
		Token:       result.Token,
		RedirectURL: result.RedirectURL,
	}, nil
}
