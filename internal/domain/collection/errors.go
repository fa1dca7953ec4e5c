package collection

import "errors"

var (
	ErrNilItem     = errors.New("item is nil")
	ErrStaleRecord = errors.New("record does not exist or was changed concurrently")
)
