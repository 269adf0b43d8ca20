package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestBuildDirectOrderDefaultsToPending(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Name: "사용자", CompanyName: "고객사"}
	req := createOrderRequest{
		Items: []orderItemRequest{{ProductID: "p1", Name: "Widget", Quantity: 2}},
	}

	order, err := buildDirectOrder(user, req)
	if err != nil {
		t.Fatalf("buildDirectOrder returned error: %v", err)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected default status %q, got %q", models.OrderStatusPending, order.Status)
	}
	if order.CustomerID != user.ID {
		t.Fatal("order must snapshot the caller as customer")
	}
	if order.CustomerName != "사용자" || order.CompanyName != "고객사" {
		t.Fatalf("order must snapshot caller identity, got %+v", order)
	}
}

func TestBuildDirectOrderExplicitStatusAndName(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Name: "관리자"}
	req := createOrderRequest{
		Items:        []orderItemRequest{{ProductID: "p1", Name: "Widget", Quantity: 1}},
		CustomerName: "직접 입력",
		Status:       models.OrderStatusComplete,
	}

	order, err := buildDirectOrder(user, req)
	if err != nil {
		t.Fatalf("buildDirectOrder returned error: %v", err)
	}
	if order.Status != models.OrderStatusComplete {
		t.Fatalf("expected status %q, got %q", models.OrderStatusComplete, order.Status)
	}
	if order.CustomerName != "직접 입력" {
		t.Fatalf("expected explicit customer name, got %q", order.CustomerName)
	}
}

func TestBuildDirectOrderRejectsEmptyItems(t *testing.T) {
	_, err := buildDirectOrder(models.User{}, createOrderRequest{})
	if err == nil {
		t.Fatal("expected error for empty item list")
	}
}

func TestBuildDirectOrderRejectsNonPositiveQuantity(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		req := createOrderRequest{
			Items: []orderItemRequest{{ProductID: "p1", Name: "Widget", Quantity: quantity}},
		}
		if _, err := buildDirectOrder(models.User{}, req); err == nil {
			t.Fatalf("expected error for quantity=%d", quantity)
		}
	}
}

func TestBuildDirectOrderRejectsUnknownStatus(t *testing.T) {
	req := createOrderRequest{
		Items:  []orderItemRequest{{ProductID: "p1", Name: "Widget", Quantity: 1}},
		Status: "shipped",
	}
	if _, err := buildDirectOrder(models.User{}, req); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseCartItemIDsDropsMalformedEntries(t *testing.T) {
	valid := primitive.NewObjectID()

	ids := parseCartItemIDs([]string{valid.Hex(), "not-an-id", "", " "})
	if len(ids) != 1 || ids[0] != valid {
		t.Fatalf("expected only the valid id, got %v", ids)
	}
}

func TestParseCartItemIDsAllInvalidYieldsEmpty(t *testing.T) {
	ids := parseCartItemIDs([]string{"nope", "also-nope"})
	if len(ids) != 0 {
		t.Fatalf("expected empty result, got %v", ids)
	}
}
