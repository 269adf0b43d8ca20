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
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type createUserRequest struct {
	Username       string   `json:"username" binding:"required"`
	Password       string   `json:"password" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	CompanyName    string   `json:"companyName" binding:"required"`
	BusinessNumber string   `json:"businessNumber" binding:"required"`
	Phone          string   `json:"phone" binding:"required"`
	Address        string   `json:"address" binding:"required"`
	ProductIDs     []string `json:"productIds"`
	Status         string   `json:"status"`
	Role           string   `json:"role"`
}

type updateUserRequest struct {
	Username       string   `json:"username" binding:"required"`
	Password       string   `json:"password"`
	Name           string   `json:"name" binding:"required"`
	CompanyName    string   `json:"companyName" binding:"required"`
	BusinessNumber string   `json:"businessNumber" binding:"required"`
	Phone          string   `json:"phone" binding:"required"`
	Address        string   `json:"address" binding:"required"`
	ProductIDs     []string `json:"productIds"`
	Status         string   `json:"status" binding:"required"`
	Role           string   `json:"role" binding:"required"`
}

/* =========================
   HELPERS
========================= */

func normalizeUserStatus(status string) string {
	if status == models.UserStatusBlocked {
		return models.UserStatusBlocked
	}
	return models.UserStatusAllowed
}

func normalizeUserRole(role string) string {
	if role == models.RoleAdmin {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// userUpdateDocument builds the $set document for an account edit. The
// password is re-hashed only when a new one is supplied; an empty field
// preserves the stored hash untouched.
func userUpdateDocument(req updateUserRequest) (bson.M, error) {
	set := bson.M{
		"username":       strings.TrimSpace(req.Username),
		"name":           strings.TrimSpace(req.Name),
		"companyName":    strings.TrimSpace(req.CompanyName),
		"businessNumber": strings.TrimSpace(req.BusinessNumber),
		"phone":          strings.TrimSpace(req.Phone),
		"address":        strings.TrimSpace(req.Address),
		"productIds":     normalizeProductIDs(req.ProductIDs),
		"status":         normalizeUserStatus(req.Status),
		"role":           normalizeUserRole(req.Role),
		"updatedAt":      time.Now(),
	}

	if password := strings.TrimSpace(req.Password); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		set["password"] = string(hash)
	}

	return set, nil
}

// demotesAdmin reports whether an edit would remove the target from the
// active admin pool, either by role demotion or by blocking the account.
// Paired with an admin count it guards the same invariant as DeleteUser:
// at least one admin must exist at all times.
func demotesAdmin(target models.User, newRole, newStatus string) bool {
	if !target.IsAdmin() {
		return false
	}
	return newRole != models.RoleAdmin || newStatus == models.UserStatusBlocked
}

func normalizeProductIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		out = append(out, id)
	}
	return out
}

/* =========================
   LIST (ADMIN)
========================= */

func GetAllUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "사용자 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}
		defer cursor.Close(ctx)

		// models.User never serializes the password hash.
		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "사용자 목록을 가져오는 중 오류가 발생했습니다."})
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

/* =========================
   CREATE (ADMIN)
========================= */

func CreateUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/users"
		defer handlePanic(c, route)

		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		username := strings.TrimSpace(req.Username)
		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"username": username})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "이미 사용 중인 계정 아이디입니다.")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}

		now := time.Now()
		user := models.User{
			Username:       username,
			Password:       string(hash),
			Name:           strings.TrimSpace(req.Name),
			CompanyName:    strings.TrimSpace(req.CompanyName),
			BusinessNumber: strings.TrimSpace(req.BusinessNumber),
			Phone:          strings.TrimSpace(req.Phone),
			Address:        strings.TrimSpace(req.Address),
			ProductIDs:     normalizeProductIDs(req.ProductIDs),
			Status:         normalizeUserStatus(req.Status),
			Role:           normalizeUserRole(req.Role),
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "이미 사용 중인 계정 아이디입니다.")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "사용자 추가에 실패했습니다.")
			return
		}

		id, _ := res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, gin.H{"success": true, "id": id.Hex()})
	}
}

/* =========================
   UPDATE (ADMIN)
========================= */

func UpdateUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/users/:id"
		defer handlePanic(c, route)

		userID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var target models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&target); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "사용자를 찾을 수 없습니다.")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}

		// Demoting or blocking the sole admin would leave zero active
		// admins, the same state the delete guard refuses.
		if demotesAdmin(target, normalizeUserRole(req.Role), normalizeUserStatus(req.Status)) {
			admins, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
				return
			}
			if admins <= 1 {
				respondWithError(c, http.StatusConflict, route, "마지막 관리자 계정의 역할이나 상태는 변경할 수 없습니다.")
				return
			}
		}

		// Duplicate-username check excludes the record being updated.
		count, err := db.Collection("users").CountDocuments(ctx, bson.M{
			"username": strings.TrimSpace(req.Username),
			"_id":      bson.M{"$ne": userID},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "이미 사용 중인 계정 아이디입니다.")
			return
		}

		set, err := userUpdateDocument(req)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "사용자 수정에 실패했습니다.")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "사용자를 찾을 수 없습니다.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

/* =========================
   DELETE (ADMIN)
========================= */

func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/users/:id"
		defer handlePanic(c, route)

		userID, ok := parseObjectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var target models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&target); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "사용자를 찾을 수 없습니다.")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
			return
		}

		// At least one admin must exist at all times.
		if target.IsAdmin() {
			admins, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "서버 오류가 발생했습니다.")
				return
			}
			if admins <= 1 {
				respondWithError(c, http.StatusConflict, route, "마지막 관리자 계정은 삭제할 수 없습니다.")
				return
			}
		}

		res, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": userID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "사용자 삭제에 실패했습니다.")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "사용자를 찾을 수 없습니다.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
