package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending  = "대기"
	OrderStatusComplete = "완료"
)

// OrderItem is a snapshot of a cart line at checkout time. It keeps the
// product name and quantity as they were; later catalog edits never touch it.
type OrderItem struct {
	ProductID  string `bson:"productId" json:"productId"`
	Name       string `bson:"name" json:"name"`
	Quantity   int    `bson:"quantity" json:"quantity"`
	RegistDate string `bson:"registDate,omitempty" json:"registDate,omitempty"`
	Note       string `bson:"note,omitempty" json:"note,omitempty"`
}

type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date         time.Time          `bson:"date" json:"date"`
	Status       string             `bson:"status" json:"status"`
	CustomerID   primitive.ObjectID `bson:"customerId" json:"customerId"`
	CustomerName string             `bson:"customerName" json:"customerName"`
	CompanyName  string             `bson:"companyName,omitempty" json:"companyName,omitempty"`
	Items        []OrderItem        `bson:"items" json:"items"`
	Note         string             `bson:"note,omitempty" json:"note,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
