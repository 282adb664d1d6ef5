package http

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderWebhookSignature carries the hex HMAC-SHA512 of the raw webhook
	// body keyed with the shared webhook secret.
	HeaderWebhookSignature = "X-Webhook-Signature"

	webhookChargeSuccess = "charge.success"
	maxWebhookBody       = 1 << 20
)

// CreateSettlement handles POST /api/v1/settlements for internal callers that
// verified the payment themselves.
func (s *Server) CreateSettlement(c echo.Context) error {
	var req SettlementRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid request body")
	}

	params, err := req.toParams()
	if err != nil {
		return s.handleError(c, err)
	}

	cmd, err := commands.NewMaterializeFromPaymentCommand(params)
	if err != nil {
		return s.handleError(c, err)
	}

	result, err := s.handlers.Materialize.Handle(c.Request().Context(), cmd)
	return s.settlementResponse(c, result, err)
}

// VerifyPayment handles POST /api/v1/payments/:reference/verify, called by the
// checkout page after the student paid. Calling it again is safe.
func (s *Server) VerifyPayment(c echo.Context) error {
	actor, _ := actorFrom(c)

	cmd, err := commands.NewSettlePaymentCommand(c.Param("reference"), &actor)
	if err != nil {
		return s.handleError(c, err)
	}

	result, err := s.handlers.Settle.Handle(c.Request().Context(), cmd)
	return s.settlementResponse(c, result, err)
}

// PaymentWebhook handles POST /api/v1/payments/webhook. Only charge.success
// events are settled; everything else is acknowledged and ignored. The
// gateway retries on any non-2xx answer.
func (s *Server) PaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid request body")
	}

	if !validSignature(s.opts.WebhookSecret, body, c.Request().Header.Get(HeaderWebhookSignature)) {
		return writeError(c, http.StatusUnauthorized, "invalid webhook signature")
	}

	var event WebhookEvent
	if err = json.Unmarshal(body, &event); err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid request body")
	}
	if event.Event != webhookChargeSuccess {
		return c.NoContent(http.StatusOK)
	}

	cmd, err := commands.NewSettlePaymentCommand(event.Data.Reference, nil)
	if err != nil {
		return s.handleError(c, err)
	}

	result, err := s.handlers.Settle.Handle(c.Request().Context(), cmd)
	return s.settlementResponse(c, result, err)
}

// settlementResponse answers 201 when orders were created, 200 for a replay,
// 200 with failed[] for a partial success and 503 when every group failed.
func (s *Server) settlementResponse(c echo.Context, result commands.MaterializationResult, err error) error {
	metrics.RecordOrderOperation("settle", err == nil)

	var partial *commands.PartialMaterializationError
	if errors.As(err, &partial) {
		s.logger.WarnContext(c.Request().Context(), "Settlement partially failed", "error", err)
		if len(result.Orders) == 0 {
			return c.JSON(http.StatusServiceUnavailable, toSettlementResponse(result))
		}
		return c.JSON(http.StatusOK, toSettlementResponse(result))
	}
	if err != nil {
		return s.handleError(c, err)
	}

	status := http.StatusCreated
	if result.Replayed || len(result.Orders) == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, toSettlementResponse(result))
}

func validSignature(secret, body []byte, signature string) bool {
	if len(secret) == 0 || signature == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
