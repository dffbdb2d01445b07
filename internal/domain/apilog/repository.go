package apilog

import "context"

type Repository interface {
	// Insert appends one entry. CreatedAt is store-assigned when zero.
	Insert(ctx context.Context, entry *Entry) error
	// List returns one page of entries matching the filter, newest first,
	// together with the total count of matching rows.
	List(ctx context.Context, filter Filter, page, perPage int) ([]*Entry, int64, error)
}
