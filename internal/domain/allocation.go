package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ShareAllocation is the part of a payment applied to one share.
type ShareAllocation struct {
	ShareID   string
	ExpenseID string
	Applied   decimal.Decimal
	NewPaid   decimal.Decimal
	NewStatus ShareStatus
}

// Allocation is the outcome of walking outstanding shares with a payment.
type Allocation struct {
	Shares      []ShareAllocation
	Applied     decimal.Decimal
	Unallocated decimal.Decimal
}

// SortFIFO orders shares oldest first, breaking ties by expense id then share id.
func SortFIFO(shares []*ExpenseShare) {
	sort.SliceStable(shares, func(i, j int) bool {
		a, b := shares[i], shares[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.ExpenseID != b.ExpenseID {
			return a.ExpenseID < b.ExpenseID
		}
		return a.ID < b.ID
	})
}

// AllocateFIFO applies amount to shares oldest debt first.
// Shares with nothing due are skipped. A share that cannot be covered in full is paid
// partially and the walk stops. Whatever is left is reported as Unallocated.
// The input shares are not modified.
func AllocateFIFO(shares []*ExpenseShare, amount decimal.Decimal) Allocation {
	ordered := make([]*ExpenseShare, len(shares))
	copy(ordered, shares)
	SortFIFO(ordered)

	result := Allocation{Applied: decimal.Zero}
	remaining := amount

	for _, share := range ordered {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		due := share.Due()
		if due.LessThanOrEqual(decimal.Zero) {
			continue
		}

		applied := due
		status := ShareStatusSettled
		if remaining.LessThan(due) {
			applied = remaining
			status = ShareStatusOwed
		}

		result.Shares = append(result.Shares, ShareAllocation{
			ShareID:   share.ID,
			ExpenseID: share.ExpenseID,
			Applied:   applied,
			NewPaid:   share.PaidAmount.Add(applied),
			NewStatus: status,
		})
		result.Applied = result.Applied.Add(applied)
		remaining = remaining.Sub(applied)
	}

	if remaining.IsPositive() {
		result.Unallocated = remaining
	} else {
		result.Unallocated = decimal.Zero
	}

	return result
}

// Outstanding sums what is still due across shares.
func Outstanding(shares []*ExpenseShare) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		if s.Status != ShareStatusOwed {
			continue
		}
		if due := s.Due(); due.IsPositive() {
			total = total.Add(due)
		}
	}
	return total
}
