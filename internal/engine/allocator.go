package engine

import "time"

// AllocateFreeUnits splits a consumable quantity into the free tranche
// granted by the promotion and the remainder that is charged at
// catalog price.  The promotion grants exactly one free unit per paid
// hour purchased in the same cart; it does not accumulate across
// sessions.  For all non-negative inputs:
//
//	free == min(consumableQty, paidHourQty)
//	free + paid == consumableQty
func AllocateFreeUnits(paidHourQty, consumableQty int) (free, paid int) {
	if paidHourQty < 0 {
		paidHourQty = 0
	}
	if consumableQty < 0 {
		consumableQty = 0
	}
	free = consumableQty
	if paidHourQty < free {
		free = paidHourQty
	}
	return free, consumableQty - free
}

// CoffeeCreditBalance is the elapsed-time "banking" view shown on live
// dashboards: whole hours elapsed since the session started minus
// coffees consumed so far, floored at zero.  It intentionally computes
// a different number than AllocateFreeUnits and must never feed the
// authoritative bill; the cart-based allocator is the only pricing
// source.
func CoffeeCreditBalance(start, now time.Time, consumed int) int {
	if now.Before(start) {
		return 0
	}
	credit := int(now.Sub(start)/time.Hour) - consumed
	if credit < 0 {
		return 0
	}
	return credit
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.  It mirrors the SQL predicate used by
// SessionRepo.HasOverlapTx: a session ending exactly when another
// begins does not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
