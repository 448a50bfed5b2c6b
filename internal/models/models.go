package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// NewID returns a 24-char hex ObjectID. IDs sort in insertion order, so
// "id DESC" lists the newest records first on every backend.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// Slugify replaces spaces with hyphens. It is applied once, when a product is
// created; renames keep the original slug.
func Slugify(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

type Product struct {
	ID           string    `gorm:"primaryKey;size:24"     bson:"_id"          json:"_id"`
	Name         string    `gorm:"not null"               bson:"name"         json:"name"`
	Slug         string    `gorm:"index;not null"         bson:"slug"         json:"slug"`
	Image        string    `                              bson:"image"        json:"image"`
	Brand        string    `                              bson:"brand"        json:"brand"`
	Category     string    `gorm:"index"                  bson:"category"     json:"category"`
	Description  string    `                              bson:"description"  json:"description"`
	Price        float64   `gorm:"not null;default:0"     bson:"price"        json:"price"`
	CountInStock int       `gorm:"not null;default:0"     bson:"countInStock" json:"countInStock"`
	Rating       float64   `gorm:"not null;default:0"     bson:"rating"       json:"rating"`
	NumReviews   int       `gorm:"not null;default:0"     bson:"numReviews"   json:"numReviews"`
	Featured     bool      `gorm:"not null;default:false" bson:"featured"     json:"featured"`
	CreatedAt    time.Time `                              bson:"createdAt"    json:"createdAt"`
	UpdatedAt    time.Time `                              bson:"updatedAt"    json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

type User struct {
	ID        string    `gorm:"primaryKey;size:24"     bson:"_id"       json:"_id"`
	Name      string    `gorm:"not null"               bson:"name"      json:"name"`
	Email     string    `gorm:"uniqueIndex;not null"   bson:"email"     json:"email"`
	Password  string    `gorm:"not null"               bson:"password"  json:"-"`
	IsAdmin   bool      `gorm:"not null;default:false" bson:"isAdmin"   json:"isAdmin"`
	IsOwner   bool      `gorm:"not null;default:false" bson:"isOwner"   json:"isOwner"`
	CreatedAt time.Time `                              bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `                              bson:"updatedAt" json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

type OrderItem struct {
	ProductID string  `bson:"productId" json:"product"`
	Name      string  `bson:"name"      json:"name"`
	Slug      string  `bson:"slug"      json:"slug"`
	Image     string  `bson:"image"     json:"image"`
	Quantity  int     `bson:"quantity"  json:"quantity"`
	Price     float64 `bson:"price"     json:"price"`
}

type Order struct {
	ID             string      `gorm:"primaryKey;size:24"     bson:"_id"            json:"_id"`
	UserID         string      `gorm:"index;not null;size:24" bson:"user"           json:"user"`
	Items          []OrderItem `gorm:"serializer:json"        bson:"orderItems"     json:"orderItems"`
	ItemsPrice     float64     `gorm:"not null;default:0"     bson:"itemsPrice"     json:"itemsPrice"`
	ShippingPrice  float64     `gorm:"not null;default:0"     bson:"shippingPrice"  json:"shippingPrice"`
	TotalPrice     float64     `gorm:"not null;default:0"     bson:"totalPrice"     json:"totalPrice"`
	IsPaid         bool        `gorm:"not null;default:false" bson:"isPaid"         json:"isPaid"`
	IsDelivered    bool        `gorm:"not null;default:false" bson:"isDelivered"    json:"isDelivered"`
	TrackingNumber string      `                              bson:"trackingNumber" json:"trackingNumber"`
	CreatedAt      time.Time   `                              bson:"createdAt"      json:"createdAt"`
	UpdatedAt      time.Time   `                              bson:"updatedAt"      json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}
