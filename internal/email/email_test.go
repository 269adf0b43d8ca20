package email

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func sampleOrder() models.Order {
	return models.Order{
		ID:           primitive.NewObjectID(),
		Date:         time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		Status:       models.OrderStatusComplete,
		CustomerName: "사용자",
		CompanyName:  "고객사",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Widget", Quantity: 3, RegistDate: "2025-01-02", Note: "rush"},
			{ProductID: "p2", Name: "Gadget", Quantity: 1},
		},
	}
}

func TestRenderOrdersHTMLIncludesItems(t *testing.T) {
	order := sampleOrder()

	html := renderOrdersHTML([]models.Order{order})

	for _, want := range []string{order.ID.Hex(), "사용자", "고객사", "Widget", "Gadget", "rush", "완료 처리된 주문 내역"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered html missing %q", want)
		}
	}
}

func TestRenderOrdersHTMLDashesEmptyFields(t *testing.T) {
	order := sampleOrder()

	html := renderOrdersHTML([]models.Order{order})

	// The second item has no registDate/note; both cells render as a dash.
	if strings.Count(html, ">-</td>") < 2 {
		t.Fatalf("expected dashed empty cells in:\n%s", html)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage("발주시스템", "from@example.com", "to@example.com", "주문 내역", "<p>body</p>")

	for _, want := range []string{
		"From: 발주시스템 <from@example.com>\r\n",
		"To: to@example.com\r\n",
		"Subject: 주문 내역\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing header %q in:\n%s", want, msg)
		}
	}
	if !strings.HasSuffix(msg, "<p>body</p>") {
		t.Fatalf("message body missing:\n%s", msg)
	}
}

func TestSendOrderCompletionRejectsEmptyOrders(t *testing.T) {
	m := NewMailer("smtp.example.com", "587", "u", "p", "발주시스템", "ops@example.com")
	if err := m.SendOrderCompletion(nil, ""); err == nil {
		t.Fatal("expected error for empty order list")
	}
}

func TestSendOrderCompletionRequiresRecipient(t *testing.T) {
	m := NewMailer("smtp.example.com", "587", "u", "p", "발주시스템", "")
	if err := m.SendOrderCompletion([]models.Order{sampleOrder()}, ""); err == nil {
		t.Fatal("expected error when no recipient is configured")
	}
}

func TestSendOrderCompletionSkipsWithoutCredentials(t *testing.T) {
	// Development setups have no SMTP account; the mailer logs and moves on.
	m := NewMailer("smtp.example.com", "587", "", "", "발주시스템", "ops@example.com")
	if err := m.SendOrderCompletion([]models.Order{sampleOrder()}, ""); err != nil {
		t.Fatalf("expected silent skip without credentials, got %v", err)
	}
}
