package policy

// BidAdmissionPolicy defines the admission rules a bid must clear before
// any wallet or aggregate mutation happens.
type BidAdmissionPolicy struct {
	PartyMinimum  int64 `json:"party_minimum"`   // minor units; from the party row
	SingleBidMax  int64 `json:"single_bid_max"`  // 0 = unlimited
	HighValueMark int64 `json:"high_value_mark"` // bids at or above trigger an alert event
}

// DefaultBidAdmission returns the platform-wide admission defaults; the
// party minimum is always overlaid from the party row.
func DefaultBidAdmission(partyMinimum int64) BidAdmissionPolicy {
	return BidAdmissionPolicy{
		PartyMinimum:  partyMinimum,
		SingleBidMax:  1_000_000, // 10,000.00 in minor units
		HighValueMark: 100_000,   // 1,000.00
	}
}

// Breached rule names. The first two are input validation (the caller sent
// an amount the party's contract rejects outright); single_bid_max is a
// platform policy cap on an otherwise valid amount.
const (
	RulePositiveAmount = "positive_amount"
	RulePartyMinimum   = "party_minimum"
	RuleSingleBidMax   = "single_bid_max"
)

// BidEvaluation holds the result of an admission check.
type BidEvaluation struct {
	Allowed      bool   `json:"allowed"`
	BreachedRule string `json:"breached_rule,omitempty"`
	RuleValue    int64  `json:"rule_value,omitempty"`
	HighValue    bool   `json:"high_value,omitempty"`
}

// EvaluateBidAdmission checks a bid amount against the admission policy.
func EvaluateBidAdmission(policy BidAdmissionPolicy, amount int64) BidEvaluation {
	if amount <= 0 {
		return BidEvaluation{Allowed: false, BreachedRule: RulePositiveAmount, RuleValue: 0}
	}

	if amount < policy.PartyMinimum {
		return BidEvaluation{Allowed: false, BreachedRule: RulePartyMinimum, RuleValue: policy.PartyMinimum}
	}

	if policy.SingleBidMax > 0 && amount > policy.SingleBidMax {
		return BidEvaluation{Allowed: false, BreachedRule: RuleSingleBidMax, RuleValue: policy.SingleBidMax}
	}

	return BidEvaluation{
		Allowed:   true,
		HighValue: policy.HighValueMark > 0 && amount >= policy.HighValueMark,
	}
}
