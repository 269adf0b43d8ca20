package handlers

import (
	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/models"
)

// Authorization rules for the order lifecycle. Kept as pure functions so the
// policy is testable without a database:
//   - admins see and delete everything; users only their own orders
//   - 대기 -> 완료 is the only status transition and it is admin-only
//   - note edits: admin always, owner only while the order is still 대기

func orderListFilter(user models.User) bson.M {
	if user.IsAdmin() {
		return bson.M{}
	}
	return bson.M{"customerId": user.ID}
}

func canViewOrder(user models.User, order models.Order) bool {
	return user.IsAdmin() || order.CustomerID == user.ID
}

func canDeleteOrder(user models.User, order models.Order) bool {
	return user.IsAdmin() || order.CustomerID == user.ID
}

func canChangeOrderStatus(user models.User) bool {
	return user.IsAdmin()
}

// validStatusTransition permits only the 대기 -> 완료 escalation; 완료 is
// terminal.
func validStatusTransition(from, to string) bool {
	return from == models.OrderStatusPending && to == models.OrderStatusComplete
}

func canEditOrderNote(user models.User, order models.Order) bool {
	if user.IsAdmin() {
		return true
	}
	return order.CustomerID == user.ID && order.Status == models.OrderStatusPending
}

func validOrderStatus(status string) bool {
	return status == models.OrderStatusPending || status == models.OrderStatusComplete
}

// buildOrderItems snapshots cart lines into order lines. The order keeps
// its own copy of name/quantity so later catalog edits cannot rewrite
// history.
func buildOrderItems(cartItems []models.CartItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		items = append(items, models.OrderItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			RegistDate: item.RegistDate,
			Note:       item.Note,
		})
	}
	return items
}
