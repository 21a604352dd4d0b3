package domain

import "time"

// Question is one quiz question within a category.
type Question struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CategoryID string    `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
