package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// currentUser resolves the calling session into a fresh user record.
// Role and status come from the database, never from client input. On
// failure it writes the response itself and returns ok=false; handlers
// must not proceed.
func currentUser(c *gin.Context, db *mongo.Database) (models.User, bool) {
	userIDValue, exists := c.Get("userId")
	if !exists {
		log.Println("[AUTH] [ERROR] userId missing in context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "인증되지 않은 사용자입니다."})
		return models.User{}, false
	}

	userID, ok := userIDValue.(primitive.ObjectID)
	if !ok {
		log.Println("[AUTH] [ERROR] userId claim has unexpected type")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "인증되지 않은 사용자입니다."})
		return models.User{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		log.Println("[AUTH] [ERROR] session user lookup failed:", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "인증되지 않은 사용자입니다."})
		return models.User{}, false
	}

	if user.Status == models.UserStatusBlocked {
		log.Println("[AUTH] [ERROR] blocked account rejected:", user.Username)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "차단된 계정입니다. 관리자에게 문의하세요."})
		return models.User{}, false
	}

	return user, true
}
