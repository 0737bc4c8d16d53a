package model

import "time"

// User is a customer known to the system. The ID is assigned externally and a User record is
// created implicitly the first time an order is placed for it.
type User struct {
	ID        string
	CreatedAt time.Time
}
