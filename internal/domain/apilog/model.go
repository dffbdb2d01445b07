package apilog

import (
	"time"

	"github.com/google/uuid"
)

// SystemUserID marks entries produced by unauthenticated or internal calls.
const SystemUserID int64 = 0

// Entry is one immutable record of an API interaction. Entries are never
// updated or deleted; the table is append-only.
type Entry struct {
	ID           int64     `db:"id"`
	RequestID    uuid.UUID `db:"request_id"`
	UserID       int64     `db:"user_id"`
	Endpoint     string    `db:"endpoint"`
	Headers      string    `db:"headers"`
	RequestData  string    `db:"request_data"`
	ResponseData string    `db:"response_data"`
	StatusCode   int       `db:"status_code"`
	CreatedAt    time.Time `db:"created_at"`
}

// Filter narrows a log listing. Zero values mean "no constraint".
// DateFrom/DateTo carry calendar dates; the repository widens the range to
// cover the full days (00:00:00 through 23:59:59).
type Filter struct {
	Endpoint   string
	StatusCode int
	DateFrom   time.Time
	DateTo     time.Time
}

const DefaultPerPage = 20
