package domain

import "github.com/shopspring/decimal"

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// FeeSchedule prices a token request in SOL.
type FeeSchedule struct {
	Base      decimal.Decimal // always charged
	Increment decimal.Decimal // charged per retained privilege
}

// DefaultFeeSchedule charges 0.2 SOL plus 0.1 SOL per retained privilege.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Base:      decimal.RequireFromString("0.2"),
		Increment: decimal.RequireFromString("0.1"),
	}
}

// Fee is a quoted fee in both units.
type Fee struct {
	SOL      decimal.Decimal
	Lamports uint64
}

// Quote computes the fee for a form. One increment is added for each of:
// creator metadata modification, keeping freeze authority, keeping mint
// authority and keeping update authority.
func (s FeeSchedule) Quote(form *TokenForm) Fee {
	sol := s.Base
	for _, charged := range []bool{
		form.ModifyCreatorData,
		!form.RevokeFreeze,
		!form.RevokeMint,
		!form.RevokeUpdate,
	} {
		if charged {
			sol = sol.Add(s.Increment)
		}
	}

	return Fee{
		SOL:      sol,
		Lamports: uint64(sol.Shift(9).IntPart()),
	}
}
