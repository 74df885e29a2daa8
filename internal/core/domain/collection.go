package domain

import "time"

// Collection is a named group of saved requests owned by exactly one user.
type Collection struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	OwnerID      string       `json:"userId"`
	RequestCount int64        `json:"requestCount"`
	Requests     []APIRequest `json:"requests,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// OwnedBy reports whether userID owns the collection.
func (c *Collection) OwnedBy(userID string) bool {
	return c != nil && userID != "" && c.OwnerID == userID
}
