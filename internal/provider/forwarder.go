package provider

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go-topup-store/internal/models"

	"gorm.io/gorm"
)

// Result is what forwarding reports back to the state machine. Forwarding
// never returns an error: every failure mode becomes a Result plus an
// ApiOrderLog row, because a provider outage must not fail the local
// status transition.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client performs outbound calls to fulfillment partners with a bounded
// timeout so a slow provider cannot hang a status-update request.
type Client struct {
	http *http.Client
}

// NewClient reads PROVIDER_TIMEOUT_SECONDS from the environment
// (default 15).
func NewClient() *Client {
	timeout := 15 * time.Second
	if raw := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// NewClientWithHTTP is used by tests to control the underlying transport.
func NewClientWithHTTP(h *http.Client) *Client {
	return &Client{http: h}
}

// ForwardOrder sends an order to the partner mapped to its service.
//
// The partner protocol is a form-encoded POST:
//
//	request=neworder&service=<external id>&reference=<order id>&player_id=...
//
// with either player_id or email depending on what the customer supplied,
// plus zone/server when present.
func (c *Client) ForwardOrder(db *gorm.DB, order *models.Order) Result {
	// 1. Find an active mapping for the service
	var mapping models.ApiServiceMapping
	err := db.Where("service_id = ? AND active = ?", order.ServiceID, true).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{Success: false, Message: "no active provider mapping for this service"}
		}
		return Result{Success: false, Message: "failed to look up provider mapping"}
	}

	var prov models.ApiProvider
	if err := db.Where("id = ? AND active = ?", mapping.ProviderID, true).First(&prov).Error; err != nil {
		return Result{Success: false, Message: "provider is missing or disabled"}
	}

	// 2. Build the form payload
	input, err := ParseOrderInput(order.UserInputID)
	if err != nil {
		return c.logAndReturn(db, order.ID, prov.ID, "", err.Error(), "error",
			Result{Success: false, Message: "order has an unusable input identifier"})
	}

	form := url.Values{}
	form.Set("request", "neworder")
	form.Set("service", mapping.ExternalServiceID)
	form.Set("reference", strconv.FormatUint(uint64(order.ID), 10))
	if input.Email != "" {
		form.Set("email", input.Email)
	} else if input.PlayerID != "" {
		form.Set("player_id", input.PlayerID)
	} else {
		form.Set("player_id", input.Username)
	}
	if input.Zone != "" {
		form.Set("zone", input.Zone)
	}
	if input.Server != "" {
		form.Set("server", input.Server)
	}
	requestLog := form.Encode()

	// 3. Send it, with the provider's configured authentication
	req, err := http.NewRequest(http.MethodPost, prov.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return c.logAndReturn(db, order.ID, prov.ID, requestLog, err.Error(), "error",
			Result{Success: false, Message: "failed to build provider request"})
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	switch prov.AuthType {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+prov.Token)
	default: // 'basic'
		req.SetBasicAuth(prov.Username, prov.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Connection errors (refused, timeout, DNS) land here
		return c.logAndReturn(db, order.ID, prov.ID, requestLog, err.Error(), "error",
			Result{Success: false, Message: "provider unreachable: " + err.Error()})
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	responseLog := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.logAndReturn(db, order.ID, prov.ID, requestLog, responseLog, "failed",
			Result{Success: false, Message: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)})
	}

	return c.logAndReturn(db, order.ID, prov.ID, requestLog, responseLog, "success",
		Result{Success: true, Message: "order forwarded to " + prov.Name})
}

// logAndReturn records the attempt in api_order_logs. The log write itself
// is best effort.
func (c *Client) logAndReturn(db *gorm.DB, orderID, providerID uint, request, response, status string, result Result) Result {
	err := db.Create(&models.ApiOrderLog{
		OrderID:    orderID,
		ProviderID: providerID,
		Request:    request,
		Response:   response,
		Status:     status,
	}).Error
	if err != nil {
		log.Printf("Warning: failed to write api order log for order %d: %v", orderID, err)
	}
	return result
}

// MapWebhookStatus translates a partner's callback status into one of our
// order statuses. The second return is false for statuses we ignore
// (e.g. their own "processing" pings).
func MapWebhookStatus(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "complete", "success", "done":
		return models.OrderCompleted, true
	case "rejected", "failed", "canceled", "cancelled", "refunded":
		return models.OrderRejected, true
	default:
		return "", false
	}
}
