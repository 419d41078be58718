package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"storefront-engine/internal/domain"
)

// Mailer sends order notifications over SMTP.
type Mailer struct {
	addr string
	auth smtp.Auth
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer builds a Mailer. Host may be empty, in which case every send is a
// silent no-op (useful for local development).
func NewMailer(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{
		from: from,
		send: smtp.SendMail,
	}
	if host != "" {
		m.addr = fmt.Sprintf("%s:%d", host, port)
		if username != "" {
			m.auth = smtp.PlainAuth("", username, password, host)
		}
	}
	return m
}

func (m *Mailer) OrderStatus(ctx context.Context, ev OrderEvent) error {
	if m.addr == "" || ev.Email == "" {
		return nil
	}
	subject, body := composeOrderMessage(ev)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", ev.Email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := m.send(m.addr, m.auth, m.from, []string{ev.Email}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send order mail: %w", err)
	}
	return nil
}

func composeOrderMessage(ev OrderEvent) (subject, body string) {
	ref := shortRef(ev.OrderID)
	name := ev.CustomerName
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	switch ev.Status {
	case domain.OrderCreated:
		subject = fmt.Sprintf("Order Confirmed - #%s", ref)
		fmt.Fprintf(&b, "Thank you for your order, %s!\n\nYour order #%s has been placed and is being processed.\n", name, ref)
	case domain.OrderProcessing:
		subject = fmt.Sprintf("Order Processing - #%s", ref)
		fmt.Fprintf(&b, "Hi %s, we're getting your order #%s ready for shipment.\n", name, ref)
	case domain.OrderShipped:
		subject = fmt.Sprintf("Order Shipped - #%s", ref)
		fmt.Fprintf(&b, "Great news, %s! Your order #%s has been shipped.\n", name, ref)
		if ev.TrackingID != "" {
			fmt.Fprintf(&b, "\nTracking ID: %s\n", ev.TrackingID)
			if ev.Courier != "" {
				fmt.Fprintf(&b, "Courier: %s\n", ev.Courier)
			}
			if ev.TrackingURL != "" {
				fmt.Fprintf(&b, "Track your order: %s\n", ev.TrackingURL)
			}
		}
	case domain.OrderDelivered:
		subject = fmt.Sprintf("Order Delivered - #%s", ref)
		fmt.Fprintf(&b, "Hi %s, your order #%s has been delivered. Enjoy!\n", name, ref)
	case domain.OrderCancelled:
		subject = fmt.Sprintf("Order Cancelled - #%s", ref)
		fmt.Fprintf(&b, "Hi %s, your order #%s has been cancelled.\n", name, ref)
	default:
		subject = fmt.Sprintf("Order Update - #%s", ref)
		fmt.Fprintf(&b, "Hi %s, your order #%s has an update: %s.\n", name, ref, ev.Status)
	}

	if len(ev.Items) > 0 {
		b.WriteString("\nItems:\n")
		for _, it := range ev.Items {
			label := it.ProductName
			if label == "" {
				label = it.ProductID
			}
			fmt.Fprintf(&b, "  %d x %s\n", it.Quantity, label)
		}
	}
	if ev.TotalCents > 0 {
		fmt.Fprintf(&b, "\nOrder total: %d.%02d\n", ev.TotalCents/100, ev.TotalCents%100)
	}
	if ev.ConvertToken != "" {
		fmt.Fprintf(&b, "\nCreate an account to track this order using token %s (valid for 7 days).\n", ev.ConvertToken)
	}
	return subject, b.String()
}

func shortRef(orderID string) string {
	id := strings.ToUpper(orderID)
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
