package orders

import (
	"errors"
	"fmt"
	"log"

	"go-topup-store/internal/database"
	"go-topup-store/internal/ledger"
	"go-topup-store/internal/models"
	"go-topup-store/internal/notify"
	"go-topup-store/internal/provider"
	"go-topup-store/internal/wallet"

	"gorm.io/gorm"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// validTransitions is the full state machine. Resets back to pending are
// admin-driven re-processing of finished orders.
var validTransitions = map[string][]string{
	models.OrderPending:    {models.OrderProcessing, models.OrderCompleted, models.OrderRejected},
	models.OrderProcessing: {models.OrderCompleted, models.OrderRejected},
	models.OrderCompleted:  {models.OrderPending},
	models.OrderRejected:   {models.OrderPending},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SideEffects reports what happened around a status transition. The
// transition itself (plus any balance movement) is atomic; everything in
// here is explicitly best-effort, so callers and tests can see partial
// outcomes instead of having them swallowed.
type SideEffects struct {
	Notified       bool     `json:"notified"`
	Refunded       bool     `json:"refunded"`
	Redebited      bool     `json:"redebited"`
	Forwarded      bool     `json:"forwarded"`
	ForwardMessage string   `json:"forward_message,omitempty"`
	Journaled      bool     `json:"journaled"`
	JournalSkipped string   `json:"journal_skipped,omitempty"`
	Failures       []string `json:"failures,omitempty"`
}

func (e *SideEffects) fail(context string, err error) {
	e.Failures = append(e.Failures, context+": "+err.Error())
	log.Printf("Warning: %s: %v", context, err)
}

// UpdateStatus drives the order state machine.
//
// The status change and its paired balance movement (refund on rejection,
// re-debit on reset from rejected) commit in one transaction. After the
// commit, notifications, provider forwarding (into processing) and the
// automatic revenue entry (into completed) run best-effort: their failures
// are recorded in SideEffects and the server log, never surfaced as an
// error.
//
// client may be nil, in which case forwarding is skipped entirely.
func UpdateStatus(db *gorm.DB, client *provider.Client, orderID uint, newStatus, reason string) (*models.Order, *SideEffects, error) {
	if !isKnownStatus(newStatus) {
		return nil, nil, ErrInvalidTransition
	}

	var order models.Order
	effects := &SideEffects{}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		from := order.Status
		if !transitionAllowed(from, newStatus) {
			return ErrInvalidTransition
		}

		// Balance movements pair exactly: one refund per entry into
		// rejected, one re-debit per reset out of rejected. A
		// rejected -> pending -> rejected cycle therefore nets to zero.
		if order.PaidFromBalance {
			if newStatus == models.OrderRejected {
				if err := wallet.Adjust(tx, order.UserID, order.Price); err != nil {
					return err
				}
				effects.Refunded = true
			}
			if from == models.OrderRejected && newStatus == models.OrderPending {
				if err := wallet.Adjust(tx, order.UserID, -order.Price); err != nil {
					return err
				}
				effects.Redebited = true
			}
		}

		order.Status = newStatus
		if newStatus == models.OrderRejected {
			order.RejectionReason = reason
		} else {
			order.RejectionReason = ""
		}
		return tx.Save(&order).Error
	})

	if err != nil {
		return nil, nil, err
	}

	// --- Post-commit fan-out (best effort from here on) ---

	runNotifications(db, &order, effects)

	if newStatus == models.OrderProcessing && client != nil {
		result := client.ForwardOrder(db, &order)
		effects.Forwarded = result.Success
		effects.ForwardMessage = result.Message
	}

	if newStatus == models.OrderCompleted {
		_, err := ledger.PostOrderRevenue(db, &order)
		switch {
		case errors.Is(err, ledger.ErrPeriodClosed):
			// Closed period is a soft skip: the order still completes
			effects.JournalSkipped = "accounting period is closed"
			log.Printf("Warning: revenue entry for order %d skipped: period closed", order.ID)
		case err != nil:
			effects.fail(fmt.Sprintf("revenue entry for order %d", order.ID), err)
		default:
			effects.Journaled = true
		}
	}

	return &order, effects, nil
}

func isKnownStatus(status string) bool {
	switch status {
	case models.OrderPending, models.OrderProcessing, models.OrderCompleted, models.OrderRejected:
		return true
	}
	return false
}

// runNotifications tells the user what happened. One notification always
// describes the new state; refunds and re-debits get their own message so
// the balance change is never silent.
func runNotifications(db *gorm.DB, order *models.Order, effects *SideEffects) {
	var title, message, ntype string
	switch order.Status {
	case models.OrderPending:
		title = "Order re-opened"
		message = fmt.Sprintf("Your order #%d was reset and is pending again.", order.ID)
		ntype = notify.TypeInfo
	case models.OrderProcessing:
		title = "Order processing"
		message = fmt.Sprintf("Your order #%d is being processed.", order.ID)
		ntype = notify.TypeOrder
	case models.OrderCompleted:
		title = "Order completed"
		message = fmt.Sprintf("Your order #%d was completed successfully.", order.ID)
		ntype = notify.TypeSuccess
	case models.OrderRejected:
		title = "Order rejected"
		message = fmt.Sprintf("Your order #%d was rejected. Reason: %s", order.ID, order.RejectionReason)
		ntype = notify.TypeError
	}

	if err := notify.PushOrder(db, order.UserID, order.ID, ntype, title, message); err != nil {
		effects.fail(fmt.Sprintf("notification for order %d", order.ID), err)
	} else {
		effects.Notified = true
	}

	if effects.Refunded {
		msg := fmt.Sprintf("%.2f was refunded to your balance for order #%d.", order.Price, order.ID)
		if err := notify.PushOrder(db, order.UserID, order.ID, notify.TypeInfo, "Balance refunded", msg); err != nil {
			effects.fail(fmt.Sprintf("refund notification for order %d", order.ID), err)
		}
	}
	if effects.Redebited {
		msg := fmt.Sprintf("%.2f was deducted from your balance to re-process order #%d.", order.Price, order.ID)
		if err := notify.PushOrder(db, order.UserID, order.ID, notify.TypeInfo, "Balance deducted", msg); err != nil {
			effects.fail(fmt.Sprintf("re-debit notification for order %d", order.ID), err)
		}
	}
}
