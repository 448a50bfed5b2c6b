package transport

import "github.com/Skotchmaster/storefront/internal/service"

type ProductRequest struct {
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	ImageBase64  string  `json:"imageBase64"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Rating       float64 `json:"rating"`
	NumReviews   int     `json:"numReviews"`
	Featured     bool    `json:"featured"`
}

// EditProductRequest names the product by _id in the body, as PUT
// /products/edit has no path parameter.
type EditProductRequest struct {
	ID string `json:"_id"`
	ProductRequest
}

func (r ProductRequest) Input() service.ProductInput {
	return service.ProductInput{
		Name:         r.Name,
		Image:        r.Image,
		ImageBase64:  r.ImageBase64,
		Brand:        r.Brand,
		Category:     r.Category,
		Description:  r.Description,
		Price:        r.Price,
		CountInStock: r.CountInStock,
		Rating:       r.Rating,
		NumReviews:   r.NumReviews,
		Featured:     r.Featured,
	}
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OrderItemRequest struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	OrderItems []OrderItemRequest `json:"orderItems"`
}

func (r PlaceOrderRequest) Lines() []service.OrderLine {
	out := make([]service.OrderLine, 0, len(r.OrderItems))
	for _, it := range r.OrderItems {
		out = append(out, service.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

type TrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type EmailResponse struct {
	Email string `json:"email"`
}
