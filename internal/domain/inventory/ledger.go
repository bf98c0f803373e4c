// Package inventory implements the reservation and consumption ledger.
//
// The ledger is driven by two kinds of writes coming from the order side:
// line writes (a line item is created, edited or deleted) and order status
// transitions. For each write the reservation engine in this file computes
// the signed inventory delta as a pure function of the before/after
// snapshots; the store then applies every per-product delta under a
// row-scoped lock. Deltas commute, so the per-line applications of one
// transition can run in any order, or concurrently for distinct products,
// as long as each single application is atomic.
package inventory

import (
	"github.com/google/uuid"

	"github.com/mystock/backend/internal/domain/trade"
)

// Delta is a signed adjustment to one product's inventory record
type Delta struct {
	OnHand   int64
	Reserved int64
}

// IsZero reports whether the delta has no effect
func (d Delta) IsZero() bool {
	return d.OnHand == 0 && d.Reserved == 0
}

// Add returns the sum of two deltas
func (d Delta) Add(other Delta) Delta {
	return Delta{OnHand: d.OnHand + other.OnHand, Reserved: d.Reserved + other.Reserved}
}

// ProductDelta couples a delta with the product it applies to
type ProductDelta struct {
	ProductID uuid.UUID
	Delta
}

// LineSnapshot is the before or after image of a sales order line.
// The zero value (nil product) means "no line": it is the before image of a
// freshly created line and the after image of a deleted one.
type LineSnapshot struct {
	ProductID uuid.UUID
	Quantity  int64
}

// Exists reports whether the snapshot captures a persisted line
func (s LineSnapshot) Exists() bool {
	return s.ProductID != uuid.Nil
}

// ReceiptSnapshot is the before or after image of a purchase order line
type ReceiptSnapshot struct {
	ProductID        uuid.UUID
	QuantityOrdered  int64
	QuantityReceived int64
}

// Exists reports whether the snapshot captures a persisted line
func (s ReceiptSnapshot) Exists() bool {
	return s.ProductID != uuid.Nil
}

// SalesLineDeltas computes the reservation deltas for a single sales line
// write (create, edit or delete) performed while the parent order sits in
// the given status.
//
// Only reserving statuses have a ledger effect: a line created while the
// order is already consuming or cancelled reserves nothing, and deleting
// such a line releases nothing. Changing a line's product releases the old
// product's reservation and reserves the new one, so the result can carry
// up to two product deltas.
func SalesLineDeltas(status trade.SalesOrderStatus, before, after LineSnapshot) []ProductDelta {
	if !status.Reserves() {
		return nil
	}

	switch {
	case !before.Exists() && after.Exists():
		// new line
		return []ProductDelta{{ProductID: after.ProductID, Delta: Delta{Reserved: after.Quantity}}}

	case before.Exists() && !after.Exists():
		// deleted line
		return []ProductDelta{{ProductID: before.ProductID, Delta: Delta{Reserved: -before.Quantity}}}

	case before.ProductID != after.ProductID:
		// product swapped: release the old, reserve the new
		return []ProductDelta{
			{ProductID: before.ProductID, Delta: Delta{Reserved: -before.Quantity}},
			{ProductID: after.ProductID, Delta: Delta{Reserved: after.Quantity}},
		}

	case before.Quantity != after.Quantity:
		return []ProductDelta{{ProductID: after.ProductID, Delta: Delta{Reserved: after.Quantity - before.Quantity}}}
	}

	return nil
}

// SalesTransitionDelta computes the per-line delta for a sales order status
// transition. The rule releases whatever the old status held, then applies
// whatever the new status requires:
//
//	old reserving  -> release the reservation
//	old consuming  -> return the quantity to on-hand stock
//	new reserving  -> reserve the quantity
//	new consuming  -> consume the quantity from on-hand stock
//	new cancelled  -> nothing beyond the release above
//
// Equal statuses are a no-op. Reserving->consuming and back are exact
// inverses, which makes the round trip idempotent.
func SalesTransitionDelta(oldStatus, newStatus trade.SalesOrderStatus, quantity int64) Delta {
	if oldStatus == newStatus {
		return Delta{}
	}

	var d Delta
	if oldStatus.Reserves() {
		d.Reserved -= quantity
	}
	if oldStatus.Consumes() {
		d.OnHand += quantity
	}
	if newStatus.Reserves() {
		d.Reserved += quantity
	}
	if newStatus.Consumes() {
		d.OnHand -= quantity
	}
	return d
}

// PurchaseTransitionDelta computes the per-line on-hand delta for a purchase
// order status transition. Purchase orders have no reservation concept; only
// on-hand stock moves.
//
// The returned sync flag tells the caller to overwrite the line's received
// quantity with syncedReceived (fully received forces received == ordered;
// the asymmetric cancel rules are kept as-is).
func PurchaseTransitionDelta(oldStatus, newStatus trade.PurchaseOrderStatus, ordered, received int64) (d Delta, syncedReceived int64, sync bool) {
	if oldStatus == newStatus {
		return Delta{}, 0, false
	}

	switch newStatus {
	case trade.PurchaseOrderStatusFullyReceived:
		switch oldStatus {
		case trade.PurchaseOrderStatusPartiallyReceived:
			// only the outstanding remainder enters stock
			d.OnHand = ordered - received
		case trade.PurchaseOrderStatusPending, trade.PurchaseOrderStatusCancelled:
			d.OnHand = ordered
		}
		return d, ordered, true

	case trade.PurchaseOrderStatusPartiallyReceived:
		switch oldStatus {
		case trade.PurchaseOrderStatusFullyReceived:
			d.OnHand = -(ordered - received)
		case trade.PurchaseOrderStatusPending, trade.PurchaseOrderStatusCancelled:
			d.OnHand = received
		}

	case trade.PurchaseOrderStatusCancelled, trade.PurchaseOrderStatusPending:
		switch oldStatus {
		case trade.PurchaseOrderStatusFullyReceived:
			d.OnHand = -ordered
		case trade.PurchaseOrderStatusPartiallyReceived:
			d.OnHand = -received
		}
		// from pending there is nothing to undo
	}

	return d, 0, false
}

// ReceiptEditDelta computes the on-hand delta for a direct edit of a line's
// received quantity while its order is partially received. The caller is
// responsible for checking the order status; product changes are not part
// of this path.
func ReceiptEditDelta(before, after ReceiptSnapshot) Delta {
	return Delta{OnHand: after.QuantityReceived - before.QuantityReceived}
}
