package cart

import (
	"context"
	"errors"

	"rocketcart/internal/ports"
	"rocketcart/internal/types"
)

// Op names a cart operation for reporting.
type Op int

const (
	OpAdd Op = iota
	OpRemove
	OpUpdate
)

var OpTextMap = map[Op]string{
	OpAdd:    "add_product",
	OpRemove: "remove_product",
	OpUpdate: "update_product_amount",
}

// ErrorKind classifies an operation failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindOutOfStock
	KindNotFound
	KindTransport
	KindPersistence
	KindUnknown
)

const (
	MsgOutOfStock   = "requested quantity out of stock"
	MsgAddFailed    = "error adding product"
	MsgRemoveFailed = "error removing product"
	MsgUpdateFailed = "error updating product quantity"
)

var failureMessages = map[Op]string{
	OpAdd:    MsgAddFailed,
	OpRemove: MsgRemoveFailed,
	OpUpdate: MsgUpdateFailed,
}

// KindOf maps an error returned by Store to its kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, types.ErrOutOfStock):
		return KindOutOfStock
	case errors.Is(err, types.ErrNotFound):
		return KindNotFound
	case errors.Is(err, types.ErrTransport):
		return KindTransport
	case errors.Is(err, types.ErrDataStoreAccess):
		return KindPersistence
	default:
		return KindUnknown
	}
}

// MessageFor returns the shopper-facing message for a failed op, or "" when err is nil.
// Stock shortages share one message; everything else gets the op's generic message.
func MessageFor(op Op, err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindOutOfStock:
		return MsgOutOfStock
	default:
		return failureMessages[op]
	}
}

// Report sends the message for err to n, if any, and returns it.
func Report(ctx context.Context, n ports.Notifier, op Op, err error) string {
	msg := MessageFor(op, err)
	if msg != "" && n != nil {
		n.Error(ctx, msg)
	}
	return msg
}
