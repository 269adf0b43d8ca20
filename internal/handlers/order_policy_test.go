package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestOrderListFilterAdminSeesAll(t *testing.T) {
	admin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	filter := orderListFilter(admin)
	if len(filter) != 0 {
		t.Fatalf("expected empty filter for admin, got %v", filter)
	}
}

func TestOrderListFilterUserScopedToOwnOrders(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}

	filter := orderListFilter(user)
	if got := filter["customerId"]; got != user.ID {
		t.Fatalf("expected customerId filter %v, got %v", user.ID, got)
	}
}

func TestCanViewOrder(t *testing.T) {
	owner := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	stranger := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	admin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	order := models.Order{CustomerID: owner.ID}

	if !canViewOrder(owner, order) {
		t.Fatal("owner must be able to view their order")
	}
	if canViewOrder(stranger, order) {
		t.Fatal("foreign user must not view the order")
	}
	if !canViewOrder(admin, order) {
		t.Fatal("admin must be able to view any order")
	}
}

func TestCanDeleteOrder(t *testing.T) {
	owner := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	stranger := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	admin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	order := models.Order{CustomerID: owner.ID}

	if !canDeleteOrder(owner, order) {
		t.Fatal("owner must be able to delete their order")
	}
	if canDeleteOrder(stranger, order) {
		t.Fatal("foreign user must not delete the order")
	}
	if !canDeleteOrder(admin, order) {
		t.Fatal("admin must be able to delete any order")
	}
}

func TestStatusEscalationIsAdminOnly(t *testing.T) {
	if canChangeOrderStatus(models.User{Role: models.RoleUser}) {
		t.Fatal("non-admin must not change order status")
	}
	if !canChangeOrderStatus(models.User{Role: models.RoleAdmin}) {
		t.Fatal("admin must be able to change order status")
	}
}

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusComplete, true},
		{models.OrderStatusComplete, models.OrderStatusPending, false},
		{models.OrderStatusComplete, models.OrderStatusComplete, false},
		{models.OrderStatusPending, models.OrderStatusPending, false},
	}

	for _, tt := range tests {
		if got := validStatusTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("validStatusTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestNoteEditPolicy(t *testing.T) {
	owner := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	admin := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	pending := models.Order{CustomerID: owner.ID, Status: models.OrderStatusPending}
	complete := models.Order{CustomerID: owner.ID, Status: models.OrderStatusComplete}

	if !canEditOrderNote(owner, pending) {
		t.Fatal("owner must edit the note while the order is pending")
	}
	if canEditOrderNote(owner, complete) {
		t.Fatal("owner must not edit the note after completion")
	}
	if !canEditOrderNote(admin, complete) {
		t.Fatal("admin must edit the note regardless of status")
	}
}

func TestBuildOrderItemsSnapshotsCartLines(t *testing.T) {
	cartItems := []models.CartItem{
		{ProductID: "p1", Name: "Widget", Quantity: 3, RegistDate: "2024-01-02", Note: "rush"},
		{ProductID: "p2", Name: "Gadget", Quantity: 1},
	}

	items := buildOrderItems(cartItems)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ProductID != "p1" || items[0].Name != "Widget" || items[0].Quantity != 3 || items[0].Note != "rush" {
		t.Fatalf("first snapshot mismatch: %+v", items[0])
	}
	if items[1].ProductID != "p2" || items[1].Quantity != 1 {
		t.Fatalf("second snapshot mismatch: %+v", items[1])
	}
}

func TestOrderSnapshotIsACopy(t *testing.T) {
	cartItems := []models.CartItem{
		{ProductID: "p1", Name: "Widget", Quantity: 3},
	}

	items := buildOrderItems(cartItems)
	cartItems[0].Name = "Renamed"
	cartItems[0].Quantity = 99

	if items[0].Name != "Widget" || items[0].Quantity != 3 {
		t.Fatalf("snapshot must not track source edits: %+v", items[0])
	}
}
