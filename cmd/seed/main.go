package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/models"
)

// Seeds the default admin and a sample customer account. Existing accounts
// are left untouched, so the binary is safe to re-run.
func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			log.Println("disconnect failed:", err)
		}
	}()

	db := client.Database(config.AppEnv.DBName)

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}

	seedUser(db.Collection("users"), models.User{
		Username:       "admin",
		Name:           "관리자",
		Role:           models.RoleAdmin,
		Status:         models.UserStatusAllowed,
		CompanyName:    "바이오맥스",
		BusinessNumber: "123-45-67890",
		Phone:          "02-1234-5678",
		Address:        "서울특별시",
		ProductIDs:     []string{},
	}, "1234")

	seedUser(db.Collection("users"), models.User{
		Username:       "user1",
		Name:           "사용자",
		Role:           models.RoleUser,
		Status:         models.UserStatusAllowed,
		CompanyName:    "고객사",
		BusinessNumber: "123-45-67890",
		Phone:          "010-1234-5678",
		Address:        "서울특별시",
		ProductIDs:     []string{},
	}, "1234")
}

func seedUser(users *mongo.Collection, user models.User, password string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := users.CountDocuments(ctx, bson.M{"username": user.Username})
	if err != nil {
		log.Fatalf("seed lookup failed for %s: %v", user.Username, err)
	}
	if count > 0 {
		log.Printf("account %s already exists, skipping", user.Username)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("password hash failed for %s: %v", user.Username, err)
	}

	now := time.Now()
	user.Password = string(hash)
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := users.InsertOne(ctx, user)
	if err != nil {
		log.Fatalf("seed insert failed for %s: %v", user.Username, err)
	}

	log.Printf("account %s created: %v", user.Username, res.InsertedID)
}
