package notify

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"storefront-engine/internal/domain"
)

func TestOrderStatus_NoHostIsNoop(t *testing.T) {
	m := NewMailer("", 587, "", "", "no-reply@example.com")
	called := false
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	err := m.OrderStatus(context.Background(), OrderEvent{Email: "u@example.com", Status: domain.OrderCreated})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("no mail must be sent without an SMTP host")
	}
}

func TestOrderStatus_SendsMessage(t *testing.T) {
	m := NewMailer("smtp.example.com", 587, "user", "pass", "no-reply@example.com")
	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := m.OrderStatus(context.Background(), OrderEvent{
		OrderID:      "a1b2c3d4-rest-of-uuid",
		Email:        "u@example.com",
		CustomerName: "U One",
		Status:       domain.OrderCreated,
		Items:        []domain.OrderItem{{ProductName: "Shirt", Quantity: 2}},
		TotalCents:   5075,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("addr = %q", gotAddr)
	}
	if len(gotTo) != 1 || gotTo[0] != "u@example.com" {
		t.Fatalf("to = %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Order Confirmed - #A1B2C3D4") {
		t.Fatalf("message missing confirmation subject:\n%s", gotMsg)
	}
	if !strings.Contains(gotMsg, "2 x Shirt") {
		t.Fatalf("message missing item line:\n%s", gotMsg)
	}
	if !strings.Contains(gotMsg, "Order total: 50.75") {
		t.Fatalf("message missing total:\n%s", gotMsg)
	}
}

func TestComposeOrderMessage_ShippedIncludesTracking(t *testing.T) {
	subject, body := composeOrderMessage(OrderEvent{
		OrderID:     "deadbeef99",
		Status:      domain.OrderShipped,
		TrackingID:  "TRK42",
		Courier:     "DHL",
		TrackingURL: "https://track.example/TRK42",
	})
	if subject != "Order Shipped - #DEADBEEF" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{"TRK42", "DHL", "https://track.example/TRK42"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestComposeOrderMessage_GuestConvertToken(t *testing.T) {
	_, body := composeOrderMessage(OrderEvent{
		OrderID:      "abc",
		Status:       domain.OrderCreated,
		ConvertToken: "tok123",
	})
	if !strings.Contains(body, "tok123") {
		t.Fatalf("body missing convert token:\n%s", body)
	}
}
