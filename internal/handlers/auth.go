package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(db *mongo.Database, jwtSecret string, sessionTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "아이디와 비밀번호를 입력해주세요."})
			return
		}

		username := strings.TrimSpace(req.Username)
		if username == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "아이디와 비밀번호를 입력해주세요."})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
			if err == mongo.ErrNoDocuments {
				log.Println("[AUTH] [ERROR] login unknown username:", username)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "아이디 또는 비밀번호가 올바르지 않습니다."})
				return
			}
			log.Println("[AUTH] [ERROR] login user lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다."})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials:", username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "아이디 또는 비밀번호가 올바르지 않습니다."})
			return
		}

		// Blocked accounts are rejected at credential-check time with a
		// distinct message.
		if user.Status == models.UserStatusBlocked {
			log.Println("[AUTH] [ERROR] login blocked account:", username)
			c.JSON(http.StatusForbidden, gin.H{"error": "차단된 계정입니다. 관리자에게 문의하세요."})
			return
		}

		token, err := issueSessionToken(user, jwtSecret, sessionTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다."})
			return
		}

		now := time.Now()
		if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{"lastLogin": now, "updatedAt": now},
		}); err != nil {
			log.Println("[AUTH] [ERROR] lastLogin update failed:", err)
		}

		log.Println("[AUTH] [INFO] login succeeded:", username)
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":             user.ID.Hex(),
				"username":       user.Username,
				"name":           user.Name,
				"role":           user.Role,
				"companyName":    user.CompanyName,
				"businessNumber": user.BusinessNumber,
				"phone":          user.Phone,
				"address":        user.Address,
			},
		})
	}
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// issueSessionToken signs the opaque session artifact: identity plus the
// profile fields the portal shows without a round trip.
func issueSessionToken(user models.User, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId":         user.ID.Hex(),
		"role":           user.Role,
		"username":       user.Username,
		"name":           user.Name,
		"companyName":    user.CompanyName,
		"businessNumber": user.BusinessNumber,
		"phone":          user.Phone,
		"address":        user.Address,
		"exp":            time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseObjectIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다."})
		return primitive.NilObjectID, false
	}
	return id, true
}
