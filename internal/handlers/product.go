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

type createProductRequest struct {
	Name       string `json:"name" binding:"required"`
	Code       string `json:"code" binding:"required"`
	RegistDate string `json:"registDate"`
}

type updateProductRequest struct {
	Name       *string `json:"name"`
	Code       *string `json:"code"`
	RegistDate *string `json:"registDate"`
}

/* =========================
   HELPERS
========================= */

// catalogFilter scopes the product list: admins browse the whole catalog,
// everyone else only their entitled products.
func catalogFilter(user models.User) bson.M {
	if user.IsAdmin() {
		return bson.M{}
	}

	ids := make([]primitive.ObjectID, 0, len(user.ProductIDs))
	for _, raw := range user.ProductIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return bson.M{"_id": bson.M{"$in": ids}}
}

func productUpdateDocument(req updateProductRequest) bson.M {
	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		set["code"] = strings.TrimSpace(*req.Code)
	}
	if req.RegistDate != nil {
		set["registDate"] = strings.TrimSpace(*req.RegistDate)
	}
	return set
}

/* =========================
   LIST
========================= */

func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := db.Collection("products").Find(ctx, catalogFilter(user), opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "제품 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "제품 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

/* =========================
   CREATE (ADMIN)
========================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		code := strings.TrimSpace(req.Code)
		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"code": code})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "이미 존재하는 제품 코드입니다.")
			return
		}

		registDate := strings.TrimSpace(req.RegistDate)
		if registDate == "" {
			registDate = time.Now().Format("2006-01-02")
		}

		now := time.Now()
		product := models.Product{
			Name:       strings.TrimSpace(req.Name),
			Code:       code,
			RegistDate: registDate,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			// Unique index on code backs the pre-check under races.
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "이미 존재하는 제품 코드입니다.")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "제품을 추가하는 중 오류가 발생했습니다.")
			return
		}

		id, _ := res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, gin.H{"success": true, "id": id.Hex()})
	}
}

/* =========================
   UPDATE (ADMIN)
========================= */

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Code-uniqueness check excludes the record being updated.
		if req.Code != nil {
			count, err := db.Collection("products").CountDocuments(ctx, bson.M{
				"code": strings.TrimSpace(*req.Code),
				"_id":  bson.M{"$ne": productID},
			})
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
				return
			}
			if count > 0 {
				respondWithError(c, http.StatusConflict, route, "이미 존재하는 제품 코드입니다.")
				return
			}
		}

		res, err := db.Collection("products").UpdateByID(ctx, productID, bson.M{
			"$set": productUpdateDocument(req),
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "제품을 업데이트하는 중 오류가 발생했습니다.")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "제품을 찾을 수 없습니다.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

/* =========================
   DELETE (ADMIN)
========================= */

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		productID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Refuse while any order line still references the product. The
		// reference is matched on the stored productId field, never on
		// display strings.
		referenced := db.Collection("orders").FindOne(ctx, bson.M{
			"items.productId": productID.Hex(),
		})
		if referenced.Err() == nil {
			respondWithError(c, http.StatusConflict, route, "이 제품이 포함된 주문이 있어 삭제할 수 없습니다.")
			return
		}
		if referenced.Err() != mongo.ErrNoDocuments {
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "제품을 삭제하는 중 오류가 발생했습니다.")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "제품을 찾을 수 없습니다.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
