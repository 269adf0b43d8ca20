package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/email"
	"backend/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type orderItemRequest struct {
	ProductID  string `json:"productId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	RegistDate string `json:"registDate"`
	Note       string `json:"note"`
}

type createOrderRequest struct {
	Items        []orderItemRequest `json:"items" binding:"required"`
	CustomerName string             `json:"customerName"`
	Note         string             `json:"note"`
	Status       string             `json:"status"`
}

type checkoutRequest struct {
	CartItemIDs []string `json:"cartItemIds" binding:"required"`
	Note        string   `json:"note"`
}

type updateOrderRequest struct {
	Status *string `json:"status"`
	Note   *string `json:"note"`
}

/* =========================
   ERRORS
========================= */

type cartConsumedError struct {
	Expected int64
	Deleted  int64
}

func (e cartConsumedError) Error() string {
	return "cart items changed during checkout"
}

/* =========================
   BUILD
========================= */

func buildDirectOrder(user models.User, req createOrderRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, errors.New("주문 항목이 없습니다.")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return models.Order{}, errors.New("수량은 1 이상이어야 합니다.")
		}
		items = append(items, models.OrderItem{
			ProductID:  strings.TrimSpace(item.ProductID),
			Name:       strings.TrimSpace(item.Name),
			Quantity:   item.Quantity,
			RegistDate: strings.TrimSpace(item.RegistDate),
			Note:       strings.TrimSpace(item.Note),
		})
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.OrderStatusPending
	}
	if !validOrderStatus(status) {
		return models.Order{}, errors.New("잘못된 주문 상태입니다.")
	}

	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		customerName = user.Name
	}

	now := time.Now()
	return models.Order{
		Date:         now,
		Status:       status,
		CustomerID:   user.ID,
		CustomerName: customerName,
		CompanyName:  user.CompanyName,
		Items:        items,
		Note:         strings.TrimSpace(req.Note),
		UpdatedAt:    now,
	}, nil
}

// parseCartItemIDs keeps only well-formed ids; malformed entries are
// dropped rather than failing the whole request, and an all-invalid list
// ends up empty, which checkout rejects.
func parseCartItemIDs(raw []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, value := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

/* =========================
   CREATE (DIRECT)
========================= */

func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := buildDirectOrder(user, req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "주문을 추가하는 중 오류가 발생했습니다.")
			return
		}

		id, _ := res.InsertedID.(primitive.ObjectID)
		log.Println("[ORDER] [INFO] order created for user:", user.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"success": true, "id": id.Hex()})
	}
}

/* =========================
   CHECKOUT
========================= */

// Checkout converts the selected cart items into a completed order. The
// order insert and the cart deletion run in one transaction: the delete
// must consume exactly the items that were snapshotted, otherwise the
// whole transaction aborts. Two concurrent checkouts over overlapping
// selections therefore cannot both commit.
func Checkout(db *mongo.Database, mailer *email.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/checkout"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "서버 오류가 발생했습니다.")
			return
		}

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		itemIDs := parseCartItemIDs(req.CartItemIDs)
		if len(itemIDs) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "선택된 장바구니 항목이 없습니다.")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}
		defer session.EndSession(ctx)

		var order models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			// Ownership is re-checked server-side; foreign ids simply
			// fall out of the selection.
			cursor, err := db.Collection("cartItems").Find(sessCtx, bson.M{
				"_id":    bson.M{"$in": itemIDs},
				"userId": user.ID,
			})
			if err != nil {
				return nil, err
			}

			var cartItems []models.CartItem
			if err := cursor.All(sessCtx, &cartItems); err != nil {
				return nil, err
			}
			if len(cartItems) == 0 {
				return nil, errEmptySelection
			}

			now := time.Now()
			order = models.Order{
				Date:         now,
				Status:       models.OrderStatusComplete,
				CustomerID:   user.ID,
				CustomerName: user.Name,
				CompanyName:  user.CompanyName,
				Items:        buildOrderItems(cartItems),
				Note:         strings.TrimSpace(req.Note),
				UpdatedAt:    now,
			}

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				order.ID = id
			}

			// Delete exactly the consumed items, not the whole cart. A
			// shortfall means another request consumed some of them first.
			consumed := make([]primitive.ObjectID, 0, len(cartItems))
			for _, item := range cartItems {
				consumed = append(consumed, item.ID)
			}

			del, err := db.Collection("cartItems").DeleteMany(sessCtx, bson.M{
				"_id":    bson.M{"$in": consumed},
				"userId": user.ID,
			})
			if err != nil {
				return nil, err
			}
			if del.DeletedCount != int64(len(consumed)) {
				return nil, cartConsumedError{Expected: int64(len(consumed)), Deleted: del.DeletedCount}
			}

			return nil, nil
		})
		if err != nil {
			if errors.Is(err, errEmptySelection) {
				respondWithError(c, http.StatusBadRequest, route, "선택된 장바구니 항목이 없습니다.")
				return
			}
			var consumedErr cartConsumedError
			if errors.As(err, &consumedErr) {
				log.Printf("[ORDER] [ERROR] checkout aborted, cart changed: expected %d deleted %d",
					consumedErr.Expected, consumedErr.Deleted)
				respondWithError(c, http.StatusConflict, route, "장바구니가 변경되어 주문을 완료할 수 없습니다. 다시 시도해주세요.")
				return
			}
			log.Println("[ORDER] [ERROR] checkout transaction failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "주문 완료 처리 중 오류가 발생했습니다.")
			return
		}

		log.Println("[ORDER] [INFO] checkout completed for user:", user.ID.Hex())

		// The order is committed; the notification is best-effort and its
		// failure is only reported, never rolled back into the order.
		response := gin.H{"success": true, "orderId": order.ID.Hex()}
		if mailer != nil {
			if err := mailer.SendOrderCompletion([]models.Order{order}, ""); err != nil {
				log.Println("[EMAIL] [ERROR] completion email failed:", err)
				response["emailError"] = err.Error()
			}
		}

		c.JSON(http.StatusCreated, response)
	}
}

var errEmptySelection = errors.New("empty checkout selection")

/* =========================
   LIST
========================= */

func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, orderListFilter(user), opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "주문 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "주문 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func GetRecentOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/recent"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		limit, err := parseLimitParam(c.Query("limit"), 5, 50)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다."})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "date", Value: -1}}).
			SetLimit(limit)
		cursor, err := db.Collection("orders").Find(ctx, orderListFilter(user), opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "주문 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "주문 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

/* =========================
   GET ONE
========================= */

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		orderID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "주문을 찾을 수 없습니다.")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "주문을 가져오는 중 오류가 발생했습니다.")
			return
		}

		if !canViewOrder(user, order) {
			respondWithError(c, http.StatusForbidden, route, "이 주문에 접근할 권한이 없습니다.")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   UPDATE (STATUS / NOTE)
========================= */

func UpdateOrder(db *mongo.Database, mailer *email.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		orderID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Status == nil && req.Note == nil {
			respondWithError(c, http.StatusBadRequest, route, "잘못된 요청입니다.")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "주문을 찾을 수 없습니다.")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		completed := false

		if req.Status != nil {
			status := strings.TrimSpace(*req.Status)
			if !validOrderStatus(status) {
				respondWithError(c, http.StatusBadRequest, route, "잘못된 주문 상태입니다.")
				return
			}
			if !canChangeOrderStatus(user) {
				respondWithError(c, http.StatusForbidden, route, "주문 상태를 변경할 권한이 없습니다.")
				return
			}
			if !validStatusTransition(order.Status, status) {
				respondWithError(c, http.StatusConflict, route, "이미 완료된 주문입니다.")
				return
			}
			set["status"] = status
			completed = status == models.OrderStatusComplete
		}

		if req.Note != nil {
			if !canEditOrderNote(user, order) {
				respondWithError(c, http.StatusForbidden, route, "주문 메모를 수정할 권한이 없습니다.")
				return
			}
			set["note"] = strings.TrimSpace(*req.Note)
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{"$set": set}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "주문 상태를 업데이트하는 중 오류가 발생했습니다.")
			return
		}

		response := gin.H{"success": true}

		if completed {
			order.Status = models.OrderStatusComplete
			if note, ok := set["note"].(string); ok {
				order.Note = note
			}
			if mailer != nil {
				if err := mailer.SendOrderCompletion([]models.Order{order}, ""); err != nil {
					log.Println("[EMAIL] [ERROR] completion email failed:", err)
					response["emailError"] = err.Error()
				}
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

/* =========================
   DELETE
========================= */

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:id"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		orderID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "주문을 찾을 수 없습니다.")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}

		if !canDeleteOrder(user, order) {
			respondWithError(c, http.StatusForbidden, route, "주문을 삭제할 권한이 없습니다.")
			return
		}

		res, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "주문을 삭제하는 중 오류가 발생했습니다.")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "주문을 찾을 수 없습니다.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
