package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserStatusAllowed = "allowed"
	UserStatusBlocked = "blocked"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Password       string             `bson:"password" json:"-"`
	Name           string             `bson:"name" json:"name"`
	CompanyName    string             `bson:"companyName" json:"companyName"`
	BusinessNumber string             `bson:"businessNumber" json:"businessNumber"`
	Phone          string             `bson:"phone" json:"phone"`
	Address        string             `bson:"address" json:"address"`
	ProductIDs     []string           `bson:"productIds" json:"productIds"`
	Status         string             `bson:"status" json:"status"`
	Role           string             `bson:"role" json:"role"`
	LastLogin      *time.Time         `bson:"lastLogin" json:"lastLogin"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Entitled reports whether the user may order the given product.
// Admins bypass the entitlement list.
func (u User) Entitled(productID string) bool {
	if u.IsAdmin() {
		return true
	}
	for _, id := range u.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
