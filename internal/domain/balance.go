package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnknownUserName is shown for counterparties the directory cannot name.
const UnknownUserName = "Unknown"

// CounterpartyBalance is the amount outstanding between the user and one counterparty.
type CounterpartyBalance struct {
	UserID   string
	UserName string
	Amount   decimal.Decimal
}

// BalanceSummary is the derived position of a user across all counterparties.
// OweList holds creditors the user owes; OwedList holds debtors who owe the user.
// NetList holds owed minus owe per counterparty, positive when the counterparty owes the user.
type BalanceSummary struct {
	UserID    string
	TotalOwe  decimal.Decimal
	TotalOwed decimal.Decimal
	OweList   []CounterpartyBalance
	OwedList  []CounterpartyBalance
	NetList   []CounterpartyBalance
}

// AggregateBalances derives a balance summary for userID from outstanding shares.
// Each share must carry its CreditorID. Shares not involving userID, settled shares,
// and the user's own share on their expenses are ignored. Sums are taken over
// ShareAmount − PaidAmount and rounded to cents only for the output.
func AggregateBalances(userID string, shares []*ExpenseShare, names map[string]string) *BalanceSummary {
	owe := make(map[string]decimal.Decimal)
	owed := make(map[string]decimal.Decimal)
	seen := make(map[string]struct{}, len(shares))

	for _, s := range shares {
		if s.Status != ShareStatusOwed {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}

		due := s.Due()
		if !due.IsPositive() {
			continue
		}

		switch {
		case s.UserID == userID && s.CreditorID != userID:
			owe[s.CreditorID] = owe[s.CreditorID].Add(due)
		case s.CreditorID == userID && s.UserID != userID:
			owed[s.UserID] = owed[s.UserID].Add(due)
		}
	}

	net := make(map[string]decimal.Decimal, len(owe)+len(owed))
	for id, amt := range owed {
		net[id] = net[id].Add(amt)
	}
	for id, amt := range owe {
		net[id] = net[id].Sub(amt)
	}

	summary := &BalanceSummary{
		UserID:   userID,
		OweList:  toCounterparties(owe, names),
		OwedList: toCounterparties(owed, names),
		NetList:  toCounterparties(net, names),
	}
	summary.TotalOwe = sumRounded(owe)
	summary.TotalOwed = sumRounded(owed)

	return summary
}

// CounterpartyIDs lists every user a set of shares links userID to.
func CounterpartyIDs(userID string, shares []*ExpenseShare) []string {
	set := make(map[string]struct{})
	for _, s := range shares {
		switch {
		case s.UserID == userID && s.CreditorID != userID:
			set[s.CreditorID] = struct{}{}
		case s.CreditorID == userID && s.UserID != userID:
			set[s.UserID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sumRounded(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amt := range m {
		total = total.Add(amt)
	}
	return total.Round(AmountPlaces)
}

func toCounterparties(m map[string]decimal.Decimal, names map[string]string) []CounterpartyBalance {
	out := make([]CounterpartyBalance, 0, len(m))
	for id, amt := range m {
		name, ok := names[id]
		if !ok || name == "" {
			name = UnknownUserName
		}
		out = append(out, CounterpartyBalance{
			UserID:   id,
			UserName: name,
			Amount:   amt.Round(AmountPlaces),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].UserID < out[j].UserID
	})

	return out
}
