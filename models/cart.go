package models

// CartItem is one line of a user's cart snapshot, stored in Redis as the
// live side-channel the dashboard reads cart value from.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CartAddRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type CartRemoveRequest struct {
	ProductID string `json:"productId" binding:"required"`
}
