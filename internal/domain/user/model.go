package user

import "time"

// User is a registered end user of the site this service fronts.
type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	DisplayName  string    `db:"display_name"`
	RegisteredAt time.Time `db:"registered_at"`
}
