package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type addToCartRequest struct {
	ProductID  string `json:"productId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	RegistDate string `json:"registDate"`
	Note       string `json:"note"`
}

type cartNoteRequest struct {
	Note string `json:"note"`
}

/* =========================
   HELPERS
========================= */

func validateCartAdd(user models.User, req addToCartRequest) (string, int) {
	if req.Quantity <= 0 {
		return "수량은 1 이상이어야 합니다.", http.StatusBadRequest
	}
	if !user.Entitled(strings.TrimSpace(req.ProductID)) {
		return "주문 권한이 없는 제품입니다.", http.StatusForbidden
	}
	return "", 0
}

// cartDeleteStatus maps the delete outcome to an HTTP status. A zero count
// means another request removed the item after the ownership check; the
// caller sees the same not-found as a missing or foreign item.
func cartDeleteStatus(deleted int64) int {
	if deleted == 0 {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// findOwnedCartItem enforces the ownership invariant: only the owner may
// touch a cart item. Not-found and foreign items are indistinguishable to
// the caller.
func findOwnedCartItem(ctx context.Context, db *mongo.Database, itemID, userID primitive.ObjectID) (models.CartItem, error) {
	var item models.CartItem
	err := db.Collection("cartItems").FindOne(ctx, bson.M{
		"_id":    itemID,
		"userId": userID,
	}).Decode(&item)
	return item, err
}

/* =========================
   LIST
========================= */

func GetCartItems(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("cartItems").Find(ctx, bson.M{"userId": user.ID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "장바구니 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.CartItem, 0)
		if err := cursor.All(ctx, &items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "장바구니 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

/* =========================
   ADD
========================= */

func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if msg, status := validateCartAdd(user, req); msg != "" {
			respondWithError(c, status, route, msg)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Every add is a new line; duplicates are never merged.
		now := time.Now()
		item := models.CartItem{
			UserID:     user.ID,
			ProductID:  strings.TrimSpace(req.ProductID),
			Name:       strings.TrimSpace(req.Name),
			Quantity:   req.Quantity,
			RegistDate: strings.TrimSpace(req.RegistDate),
			Note:       strings.TrimSpace(req.Note),
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		res, err := db.Collection("cartItems").InsertOne(ctx, item)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "장바구니에 추가하는데 실패했습니다.")
			return
		}

		id, _ := res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, gin.H{"success": true, "id": id.Hex()})
	}
}

/* =========================
   NOTE EDIT
========================= */

func UpdateCartItemNote(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/:id/note"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		itemID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		var req cartNoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := findOwnedCartItem(ctx, db, itemID, user.ID); err != nil {
			respondWithError(c, http.StatusNotFound, route, "장바구니 항목을 찾을 수 없거나 권한이 없습니다.")
			return
		}

		_, err := db.Collection("cartItems").UpdateByID(ctx, itemID, bson.M{
			"$set": bson.M{"note": strings.TrimSpace(req.Note), "updatedAt": time.Now()},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "메모 업데이트에 실패했습니다.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

/* =========================
   REMOVE
========================= */

func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:id"
		defer handlePanic(c, route)

		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		itemID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := findOwnedCartItem(ctx, db, itemID, user.ID); err != nil {
			respondWithError(c, http.StatusNotFound, route, "장바구니 항목을 찾을 수 없거나 권한이 없습니다.")
			return
		}

		res, err := db.Collection("cartItems").DeleteOne(ctx, bson.M{"_id": itemID, "userId": user.ID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "장바구니에서 삭제하는데 실패했습니다.")
			return
		}
		if cartDeleteStatus(res.DeletedCount) == http.StatusNotFound {
			respondWithError(c, http.StatusNotFound, route, "장바구니 항목을 찾을 수 없거나 권한이 없습니다.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
