package model

import "time"

// Rule is a user-authored override mapping a merchant key to a category.
type Rule struct {
	UpdatedAt     time.Time `json:"updated_at"`
	MerchantKey   string    `json:"merchant_key"`
	CategoryName  string    `json:"category_name"`
	CreatedByUser bool      `json:"created_by_user"`
}
