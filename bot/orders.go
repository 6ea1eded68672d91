package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pos-analytics/logging"
	"pos-analytics/models"
	"pos-analytics/services"
)

// orderReply maps order workflow errors to chat replies. ok is false for
// errors that are not the user's doing.
func orderReply(err error) (string, bool) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return "You are not allowed to do that.", true
	case errors.Is(err, services.ErrOrderNotFound):
		return "Order not found.", true
	case errors.Is(err, services.ErrInvoiceNotFound):
		return "Invoice not found.", true
	case errors.Is(err, services.ErrAlreadyPlaced):
		return "This invoice was already sent to the kitchen.", true
	case errors.Is(err, services.ErrOrderLocked):
		return "Already in the kitchen; record a /note instead.", true
	case errors.Is(err, services.ErrItemNotFound):
		return "That item is not on the order.", true
	case errors.Is(err, services.ErrReasonRequired):
		return "A reason is required.", true
	case errors.Is(err, services.ErrInvalidTransition):
		return err.Error(), true
	}
	return "", false
}

// replyOrderError sends the reply for err, logging unexpected ones.
func (b *Bot) replyOrderError(chatID int64, op string, err error) {
	if text, ok := orderReply(err); ok {
		b.send(chatID, text)
		return
	}
	b.logger.Error().Err(err).Int64(logging.CHAT, chatID).Str("op", op).Msg("order command failed")
	b.send(chatID, "Something went wrong, please try again.")
}

// parseItemEdit reads "<id> <item_id> <qty>".
func parseItemEdit(args []string) (id, itemID string, qty float64, err error) {
	if len(args) != 3 {
		return "", "", 0, errors.New("expected <id> <item_id> <quantity>")
	}
	qty, err = strconv.ParseFloat(args[2], 64)
	if err != nil || qty < 0 {
		return "", "", 0, fmt.Errorf("quantity %q must be a number >= 0", args[2])
	}
	return args[0], args[1], qty, nil
}

func (b *Bot) handlePlace(chatID, userID int64, args []string) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	if len(args) != 1 {
		b.send(chatID, "Usage: /place <invoice_id>")
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	o, err := services.PlaceOrder(ctx, s, args[0])
	if err != nil {
		b.replyOrderError(chatID, "place", err)
		return
	}
	b.send(chatID, "Sent to the kitchen.\n\n"+b.render.order(o))
}

func (b *Bot) handleOrder(chatID, userID int64, args []string) {
	if s := b.requireSession(chatID, userID); s == nil {
		return
	}
	if len(args) != 1 {
		b.send(chatID, "Usage: /order <order_id>")
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	o, err := services.GetOrder(ctx, args[0])
	if err != nil {
		b.replyOrderError(chatID, "get", err)
		return
	}
	b.send(chatID, b.render.order(o))
}

// handleEdit changes one line of an order that has not reached the kitchen.
func (b *Bot) handleEdit(chatID, userID int64, args []string) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	orderID, itemID, qty, err := parseItemEdit(args)
	if err != nil {
		b.send(chatID, "Usage: /edit <order_id> <item_id> <quantity>\n"+err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	o, err := services.GetOrder(ctx, orderID)
	if err != nil {
		b.replyOrderError(chatID, "edit", err)
		return
	}
	if o.SentToKitchen {
		b.replyOrderError(chatID, "edit", services.ErrOrderLocked)
		return
	}
	items, err := services.SetItemQuantity(o.Items, itemID, qty)
	if err == nil {
		err = services.UpdateOrderItems(ctx, s, orderID, items)
	}
	if err != nil {
		b.replyOrderError(chatID, "edit", err)
		return
	}
	b.send(chatID, "Order updated.")
}

// handleInvoice changes one line of an invoice that has not been placed.
func (b *Bot) handleInvoice(chatID, userID int64, args []string) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	invoiceID, itemID, qty, err := parseItemEdit(args)
	if err != nil {
		b.send(chatID, "Usage: /invoice <invoice_id> <item_id> <quantity>\n"+err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	current, placed, err := services.InvoiceItems(ctx, invoiceID)
	if err != nil {
		b.replyOrderError(chatID, "invoice", err)
		return
	}
	if placed {
		b.replyOrderError(chatID, "invoice", services.ErrOrderLocked)
		return
	}
	items, err := services.SetItemQuantity(current, itemID, qty)
	if err == nil {
		err = services.UpdateInvoiceItems(ctx, s, invoiceID, items)
	}
	if err != nil {
		b.replyOrderError(chatID, "invoice", err)
		return
	}
	b.send(chatID, "Invoice updated.")
}

func (b *Bot) handleStatus(chatID, userID int64, args []string) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	if len(args) != 2 {
		b.send(chatID, "Usage: /status <order_id> <preparing|ready|delivered|completed|cancelled>")
		return
	}
	to := models.ParseOrderStatus(args[1])
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	if err := services.UpdateOrderStatus(ctx, s, args[0], to); err != nil {
		b.replyOrderError(chatID, "status", err)
		return
	}
	b.send(chatID, fmt.Sprintf("Order %s is now %s.", args[0], to))
}

func (b *Bot) handleNote(chatID, userID int64, args []string) {
	s := b.requireSession(chatID, userID)
	if s == nil {
		return
	}
	if len(args) < 2 {
		b.send(chatID, "Usage: /note <order_id> <reason>")
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, loadTimeout)
	defer cancel()

	_, err := services.RecordModification(ctx, s, args[0], models.ModificationNote, "", strings.Join(args[1:], " "))
	if err != nil {
		b.replyOrderError(chatID, "note", err)
		return
	}
	b.send(chatID, "Noted.")
}
