/*
payout.go - Evaluating a single rule block

PURPOSE:

	Computes one rule's payout given the aggregated buckets, the matched
	tier (if any), and any per-record flag overrides. Produces the dollar
	amount plus an audit detail string that reconstructs the number.

EVALUATION ORDER:
 1. Re-validate the rule (defense-in-depth; bad stored config must not
    silently compute a wrong payout).
 2. ACTIVITY_PAY short-circuits: amount x activity count per item.
 3. Threshold gate on the gating metric (tier basis if tiered, the
    rule's own metric otherwise).
 4. Rate selection: base rate, or bracket lookup on the tier basis.
 5. Apply per payout type. Percent rules with flag overrides abandon
    the aggregate sum and iterate the underlying sold-product records,
    because a per-record rate substitution cannot be expressed as
    aggregate-then-multiply.

AGGREGATE VS RECORD-LEVEL:

	The dual path is deliberate and designed-in: every percent rule can
	run off the aggregate bucket sum UNTIL an override exists, at which
	point the evaluator walks the in-scope records and prices each one
	individually.
*/
package comp

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RuleResult is one rule block's evaluated outcome.
type RuleResult struct {
	Payout Money
	Detail string

	// Err is non-nil for configuration errors; the payout is forced to
	// zero and the engine records the diagnostic without aborting.
	Err error
}

func zeroResult(detail string, err error) RuleResult {
	return RuleResult{Payout: ZeroMoney(), Detail: detail, Err: err}
}

// PayoutEvaluator computes payouts for individual rule blocks.
type PayoutEvaluator struct{}

// Evaluate computes the rule's payout against an aggregation snapshot.
// Never panics and never returns a Go error to the caller: problems are
// reported through RuleResult.Err so a misconfigured rule cannot block
// the rest of the plan.
func (pe *PayoutEvaluator) Evaluate(rule RuleBlock, agg *Aggregation, catalog *Catalog, defs []BucketDef) RuleResult {
	if err := rule.Validate(); err != nil {
		return zeroResult("invalid configuration: "+err.Error(), err)
	}

	if rule.PayoutType == PayoutActivity {
		return pe.evaluateActivity(rule, agg)
	}

	scope := ApplicableProducts(rule.Scope, catalog, defs)

	// The rule's own metric: a named bucket, or derived from in-scope
	// records when no bucket is configured.
	units, premium, metricErr := pe.ruleMetrics(rule, agg, scope)
	if metricErr != nil {
		return zeroResult(metricErr.Error(), metricErr)
	}

	// Gating metric: tier basis drives both the bracket lookup and the
	// threshold when tiered; otherwise the rule's own metric gates.
	gating := units
	if rule.PayoutType == PayoutPercentOfMetric {
		gating = premium
	}
	if rule.Tiered() {
		basis, ok := agg.Bucket(rule.TierBasis)
		if !ok {
			err := fmt.Errorf("%w: tier basis %q", ErrUnknownBucket, rule.TierBasis)
			return zeroResult(err.Error(), err)
		}
		gating = basis
	}

	if rule.MinThreshold != nil && gating.LessThan(*rule.MinThreshold) {
		return RuleResult{
			Payout: ZeroMoney(),
			Detail: fmt.Sprintf("gated: %s below minimum %s", gating.String(), rule.MinThreshold.String()),
		}
	}

	// Rate selection.
	rate := rule.BaseRate
	tierLabel := ""
	if rule.Tiered() {
		tier, ok := ResolveTier(rule.Tiers, gating)
		if !ok {
			return RuleResult{
				Payout: ZeroMoney(),
				Detail: fmt.Sprintf("no tier matched: %s below all tiers", gating.String()),
			}
		}
		rate = tier.Rate
		tierLabel = tier.Label()
	}

	switch rule.PayoutType {
	case PayoutFlatPerUnit:
		payout := MoneyFromDecimal(rate.Mul(units))
		detail := fmt.Sprintf("%s/unit x %s units = %s", MoneyFromDecimal(rate), units.String(), payout)
		if tierLabel != "" {
			detail = fmt.Sprintf("tier %s at %s", tierLabel, detail)
		}
		return RuleResult{Payout: payout, Detail: detail}

	case PayoutPercentOfMetric:
		if len(rule.FlagOverrides) > 0 {
			return pe.evaluatePerRecord(rule, agg, catalog, defs, scope, rate, tierLabel)
		}
		payout := MoneyFromDecimal(rate.Mul(premium))
		detail := fmt.Sprintf("%s x %s premium = %s", percentString(rate), MoneyFromDecimal(premium), payout)
		if tierLabel != "" {
			detail = fmt.Sprintf("tier %s at %s", tierLabel, detail)
		}
		return RuleResult{Payout: payout, Detail: detail}

	case PayoutFlatLumpSum:
		// Rate once, independent of bucket size.
		payout := MoneyFromDecimal(rate)
		detail := fmt.Sprintf("lump sum %s", payout)
		if tierLabel != "" {
			detail = fmt.Sprintf("tier %s: %s", tierLabel, detail)
		}
		if rule.MinThreshold != nil {
			detail += fmt.Sprintf(" (threshold %s met: %s)", rule.MinThreshold.String(), gating.String())
		}
		return RuleResult{Payout: payout, Detail: detail}

	default:
		err := fmt.Errorf("%w: payout type %q", ErrInvalidRule, rule.PayoutType)
		return zeroResult(err.Error(), err)
	}
}

// ruleMetrics returns the unit count and premium sum the rule is keyed
// on. A named bucket serves as both; otherwise both are derived from the
// in-scope sold products.
func (pe *PayoutEvaluator) ruleMetrics(rule RuleBlock, agg *Aggregation, scope ProductSet) (units, premium decimal.Decimal, err error) {
	if rule.Bucket != "" {
		v, ok := agg.Bucket(rule.Bucket)
		if !ok {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownBucket, rule.Bucket)
		}
		return v, v, nil
	}

	for _, sp := range agg.Products {
		if !scope.Contains(sp) {
			continue
		}
		units = units.Add(decimal.NewFromInt(1))
		premium = premium.Add(sp.Premium)
	}
	return units, premium, nil
}

// evaluatePerRecord prices each in-scope record individually: the first
// override whose flag is set on the record substitutes its percent,
// otherwise the rule's normal (tiered or base) percent applies.
func (pe *PayoutEvaluator) evaluatePerRecord(rule RuleBlock, agg *Aggregation, catalog *Catalog, defs []BucketDef, scope ProductSet, baseRate decimal.Decimal, tierLabel string) RuleResult {
	include := scope.Contains

	// When the rule is keyed on a bucket but has no apply-scope
	// selectors, the record set is exactly the records that produced
	// the bucket value. The aggregation's contributor sets cover both
	// built-in and custom buckets; a custom bucket definition serves as
	// fallback when the aggregation carries no contributor tracking.
	// Never widen to all records: a rule keyed on health_premium must
	// not price an unrelated auto sale.
	if rule.Scope.IsEmpty() && rule.Bucket != "" {
		if ids, ok := agg.BucketContributors(rule.Bucket); ok {
			include = func(sp SoldProduct) bool { return ids[sp.ID] }
		} else if members, ok := bucketMembership(rule.Bucket, catalog, defs); ok {
			include = members.Contains
		} else {
			include = func(SoldProduct) bool { return false }
		}
	}

	total := decimal.Zero
	overridden := 0
	records := 0

	for _, sp := range agg.Products {
		if !include(sp) {
			continue
		}
		records++
		rate := baseRate
		for _, o := range rule.FlagOverrides {
			if sp.HasFlag(o.FlagField) {
				rate = o.Percent
				overridden++
				break
			}
		}
		total = total.Add(sp.Premium.Mul(rate))
	}

	payout := MoneyFromDecimal(total)
	detail := fmt.Sprintf("per-record %s base, %d of %d records overridden = %s",
		percentString(baseRate), overridden, records, payout)
	if tierLabel != "" {
		detail = fmt.Sprintf("tier %s: %s", tierLabel, detail)
	}
	return RuleResult{Payout: payout, Detail: detail}
}

// evaluateActivity handles the distinct ACTIVITY_PAY shape: no tiers, no
// thresholds, no product scope.
func (pe *PayoutEvaluator) evaluateActivity(rule RuleBlock, agg *Aggregation) RuleResult {
	total := ZeroMoney()
	detail := ""
	for i, item := range rule.ActivityItems {
		count := agg.ActivityCount(item.ActivityName)
		amount := MoneyFromDecimal(item.Amount.Mul(count))
		total = total.Add(amount)
		if i > 0 {
			detail += "; "
		}
		detail += fmt.Sprintf("%s: %s x %s = %s",
			item.ActivityName, count.String(), MoneyFromDecimal(item.Amount), amount)
	}
	return RuleResult{Payout: total, Detail: detail}
}

// bucketMembership maps a metric bucket name back to its defining custom
// bucket's product membership, when one exists.
func bucketMembership(bucket BucketName, catalog *Catalog, defs []BucketDef) (ProductSet, bool) {
	for _, def := range defs {
		if bucket == def.ID || bucket == def.ID+"_apps" || bucket == def.ID+"_premium" {
			return ProductSet{IDs: def.Members(catalog)}, true
		}
	}
	return ProductSet{}, false
}

// percentString renders a fraction as a percentage: 0.14 -> "14%".
func percentString(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}
