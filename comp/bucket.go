/*
bucket.go - Aggregating raw records into named metrics

PURPOSE:

	Rule blocks are keyed on named numeric metrics ("buckets"). This file
	turns a person's sold-product and activity records for a period into
	one bucket map, computed once per evaluation and reused by every rule
	block so the record set is only scanned a single time.

BUILT-IN BUCKETS (derived per record from the catalog):

	total_apps, total_premium
	<lob>_apps, <lob>_premium                  e.g. auto_apps, health_premium
	<lob>_<type>_apps                          e.g. auto_personal_apps
	<lob>_<type>_raw_new_apps                  e.g. auto_personal_raw_new_apps
	activity_<name>                            e.g. activity_quotes

CUSTOM BUCKETS:

	Agencies define extra buckets as {includesLobs, includesProducts}
	unions. Membership is tested against each record's product/LoB - never
	by name matching. A custom bucket produces both <id>_apps and
	<id>_premium metrics plus, for rule scoping, its member product set.

SIDE EFFECTS:

	None. Aggregation is read-only over already-persisted facts.
*/
package comp

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// BucketName identifies an aggregate metric.
type BucketName string

// =============================================================================
// CUSTOM BUCKET DEFINITIONS
// =============================================================================

// BucketMetric selects which measure a named custom bucket reports when
// used directly as a rule's metric.
type BucketMetric string

const (
	MetricApps    BucketMetric = "apps"
	MetricPremium BucketMetric = "premium"
)

// BucketDef is a per-agency custom bucket: the union of whole lines of
// business and individually listed products.
type BucketDef struct {
	ID       BucketName
	AgencyID AgencyID
	Name     string
	Metric   BucketMetric

	IncludesLobs     []LobID
	IncludesProducts []ProductID
}

// Contains tests record membership by product/LoB, not by name.
func (d BucketDef) Contains(sp SoldProduct) bool {
	for _, lob := range d.IncludesLobs {
		if sp.LobID == lob {
			return true
		}
	}
	for _, pid := range d.IncludesProducts {
		if sp.ProductID == pid {
			return true
		}
	}
	return false
}

// Members expands the definition to a concrete product-id set against a
// catalog snapshot. Used by rule apply-scopes that target a bucket.
func (d BucketDef) Members(catalog *Catalog) map[ProductID]bool {
	members := make(map[ProductID]bool)
	for _, pid := range d.IncludesProducts {
		members[pid] = true
	}
	for _, p := range catalog.Products {
		for _, lob := range d.IncludesLobs {
			if p.LobID == lob {
				members[p.ID] = true
			}
		}
	}
	return members
}

// =============================================================================
// AGGREGATION RESULT
// =============================================================================

// Aggregation is the computed metric set for one (person, period), plus
// the underlying records so percent rules with flag overrides can fall
// back to per-record iteration.
type Aggregation struct {
	PersonID PersonID
	Period   Period

	Buckets map[BucketName]decimal.Decimal

	// Contributors records which sold products produced each bucket
	// value, keyed by record id. Record-level evaluation paths use it
	// to recover the exact record set behind a bucket.
	Contributors map[BucketName]map[string]bool

	// Raw inputs, retained for record-level evaluation paths.
	Products   []SoldProduct
	Activities []ActivityRecord
}

// Bucket returns the named metric, or (zero, false) if the aggregation
// never produced it.
func (a *Aggregation) Bucket(name BucketName) (decimal.Decimal, bool) {
	v, ok := a.Buckets[name]
	return v, ok
}

// BucketContributors returns the record-id set behind a bucket value,
// and whether contributor tracking produced one for that name.
func (a *Aggregation) BucketContributors(name BucketName) (map[string]bool, bool) {
	ids, ok := a.Contributors[name]
	return ids, ok
}

// ActivityCount returns the summed count for a named activity.
func (a *Aggregation) ActivityCount(name string) decimal.Decimal {
	v, ok := a.Buckets[activityBucket(name)]
	if !ok {
		return decimal.Zero
	}
	return v
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// BucketAggregator scans a person's records for a period and produces
// the bucket map. Construct once per engine; Aggregate once per
// (person, period).
type BucketAggregator struct {
	Records RecordStore
	Catalog CatalogStore
}

// Aggregate computes all built-in and custom buckets in a single pass
// over the period's records.
func (ba *BucketAggregator) Aggregate(ctx context.Context, person Person, period Period) (*Aggregation, error) {
	if !period.IsValid() {
		return nil, ErrInvalidPeriod
	}

	products, err := ba.Records.SoldProductsInRange(ctx, person.ID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	activities, err := ba.Records.ActivitiesInRange(ctx, person.ID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	catalog, err := ba.Catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defs, err := ba.Catalog.BucketDefs(ctx, person.AgencyID)
	if err != nil {
		return nil, err
	}

	agg := &Aggregation{
		PersonID:     person.ID,
		Period:       period,
		Buckets:      make(map[BucketName]decimal.Decimal),
		Contributors: make(map[BucketName]map[string]bool),
		Products:     products,
		Activities:   activities,
	}

	one := decimal.NewFromInt(1)
	for _, sp := range products {
		agg.addRecord("total_apps", one, sp.ID)
		agg.addRecord("total_premium", sp.Premium, sp.ID)

		lobKey := ba.lobKey(catalog, sp.LobID)
		agg.addRecord(BucketName(lobKey+"_apps"), one, sp.ID)
		agg.addRecord(BucketName(lobKey+"_premium"), sp.Premium, sp.ID)

		if p, ok := catalog.Products[sp.ProductID]; ok {
			typeKey := lobKey + "_" + keyify(string(p.Type))
			agg.addRecord(BucketName(typeKey+"_apps"), one, sp.ID)
			if sp.RawNew {
				agg.addRecord(BucketName(typeKey+"_raw_new_apps"), one, sp.ID)
			}
		}

		// Custom buckets: membership test per record.
		for _, def := range defs {
			if def.Contains(sp) {
				agg.addRecord(def.ID+"_apps", one, sp.ID)
				agg.addRecord(def.ID+"_premium", sp.Premium, sp.ID)
			}
		}
	}

	// Make every custom bucket resolvable even with no matching records,
	// so a rule keyed on it reads zero instead of "unknown bucket".
	for _, def := range defs {
		agg.ensure(def.ID + "_apps")
		agg.ensure(def.ID + "_premium")
	}

	for _, ar := range activities {
		agg.add(activityBucket(ar.Name), decimal.NewFromInt(int64(ar.Count)))
	}

	return agg, nil
}

func (a *Aggregation) add(name BucketName, delta decimal.Decimal) {
	a.Buckets[name] = a.Buckets[name].Add(delta)
}

// addRecord adds to a bucket and marks the record as a contributor.
func (a *Aggregation) addRecord(name BucketName, delta decimal.Decimal, recordID string) {
	a.add(name, delta)
	set := a.Contributors[name]
	if set == nil {
		set = make(map[string]bool)
		a.Contributors[name] = set
	}
	set[recordID] = true
}

func (a *Aggregation) ensure(name BucketName) {
	if _, ok := a.Buckets[name]; !ok {
		a.Buckets[name] = decimal.Zero
	}
	if _, ok := a.Contributors[name]; !ok {
		a.Contributors[name] = make(map[string]bool)
	}
}

func (ba *BucketAggregator) lobKey(catalog *Catalog, id LobID) string {
	if lob, ok := catalog.Lobs[id]; ok && lob.Name != "" {
		return keyify(lob.Name)
	}
	return keyify(string(id))
}

func activityBucket(name string) BucketName {
	return BucketName("activity_" + keyify(name))
}

// keyify normalizes display names into bucket-name segments:
// "Auto (Personal)" -> "auto_personal".
func keyify(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
