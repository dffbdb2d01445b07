package secretkey

import "time"

// SecretKey is the single opaque credential a user holds for authenticating
// verification requests. At most one per user; regeneration overwrites it.
type SecretKey struct {
	UserID      int64     `db:"user_id"`
	Value       string    `db:"key_value"`
	GeneratedAt time.Time `db:"generated_at"`
}

const (
	// KeyLength is the length of a generated key value.
	KeyLength = 32

	// KeyAlphabet excludes visually ambiguous characters (0/O, 1/l/I).
	KeyAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)
