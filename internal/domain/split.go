package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimal places money is stored with.
const AmountPlaces = 2

// ShareSplit is one computed share before it is persisted.
type ShareSplit struct {
	UserID      string
	ShareAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Status      ShareStatus
}

// SplitEvenly divides total across the participants.
//
// Every participant gets total/n truncated to cents. The leftover cents (always fewer
// than n) go to the payer, whose share is settled from the start, so debtors always
// owe the same amount and the shares sum to total exactly.
// Duplicate participant ids are collapsed, keeping first-seen order. A zero share
// (total smaller than one cent per head) carries no debt and starts settled.
func SplitEvenly(total decimal.Decimal, participantIDs []string, payerID string) ([]ShareSplit, error) {
	if err := ValidateAmount(total); err != nil {
		return nil, err
	}

	participants, err := uniqueParticipants(participantIDs)
	if err != nil {
		return nil, err
	}

	payerIdx := -1
	for i, id := range participants {
		if id == payerID {
			payerIdx = i
			break
		}
	}
	if payerIdx < 0 {
		return nil, ErrPayerNotParticipant
	}

	// Work in minor units so the division is exact integer arithmetic.
	n := int64(len(participants))
	minor := total.Shift(AmountPlaces).IntPart()
	base := decimal.New(minor/n, -AmountPlaces)
	remainder := decimal.New(minor%n, -AmountPlaces)

	status := ShareStatusOwed
	if base.IsZero() {
		status = ShareStatusSettled
	}

	splits := make([]ShareSplit, len(participants))
	for i, id := range participants {
		splits[i] = ShareSplit{
			UserID:      id,
			ShareAmount: base,
			PaidAmount:  decimal.Zero,
			Status:      status,
		}
	}

	payer := &splits[payerIdx]
	payer.ShareAmount = payer.ShareAmount.Add(remainder)
	payer.PaidAmount = payer.ShareAmount
	payer.Status = ShareStatusSettled

	return splits, nil
}

func uniqueParticipants(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyParticipants
	}

	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, ErrInvalidParticipant
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out, nil
}
