package dataset

import (
	"fmt"
	"math/rand"
	"time"
)

// eventInstant is the fixed timestamp stamped on every generated event.
// A constant instant keeps the feed byte-reproducible for a given seed.
var eventInstant = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var venues = []string{"LSE", "NYSE", "XETRA"}

var quantities = []int64{100, 200, 500, 1000}

var orphanQuantities = []int64{100, 200, 500}

const isinAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate produces a dataset satisfying spec, drawing all randomness from
// rng. The caller owns rng; two calls with identically seeded sources and
// equal specs produce byte-identical datasets.
//
// The returned oracle reflects what was actually produced: the duplicate
// count is silently capped to the number of events available before
// duplication, so a spec requesting more duplicates than exist does not fail
// and does not inflate the oracle.
func Generate(spec Spec, rng *rand.Rand) (*Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset spec: %w", err)
	}

	obligations := makeObligations(spec.Obligations, rng)

	// Primary MATCHED event per obligation, seq 1 under its message id.
	events := make([]MarketEvent, 0, spec.Events+spec.Duplicates+spec.Orphans)
	lastSeq := make([]int, len(obligations))
	for i, ob := range obligations {
		events = append(events, MarketEvent{
			MsgID:      "M_" + ob.ID,
			Seq:        1,
			Code:       CodeMatched,
			ISIN:       ob.ISIN,
			Account:    ob.Account,
			SettleDate: ob.SettleDate,
			Qty:        ob.IntendedQty,
			At:         eventInstant,
		})
		lastSeq[i] = 1
	}

	// Filler events: random obligation, next sequence number, status cycling
	// by position index.
	for i := 0; i < spec.Events-spec.Obligations; i++ {
		idx := rng.Intn(len(obligations))
		ob := obligations[idx]
		lastSeq[idx]++
		ev := MarketEvent{
			MsgID:      "M_" + ob.ID,
			Seq:        lastSeq[idx],
			ISIN:       ob.ISIN,
			Account:    ob.Account,
			SettleDate: ob.SettleDate,
			At:         eventInstant,
		}
		switch i % 3 {
		case 0:
			ev.Code = CodePartialSettled
			ev.Qty = ob.IntendedQty / 4
		case 1:
			ev.Code = CodeSettled
			ev.Qty = ob.IntendedQty
		default:
			ev.Code = CodeAck
			ev.Qty = ob.IntendedQty
		}
		events = append(events, ev)
	}

	// Duplicates: verbatim copies of already generated events. Requesting
	// more than exist caps silently; the oracle counts what was produced.
	dups := spec.Duplicates
	if dups > len(events) {
		dups = len(events)
	}
	for _, idx := range rng.Perm(len(events))[:dups] {
		events = append(events, events[idx])
	}

	// Orphans: identifiers absent from the obligation set by construction.
	// Accounts ACC1000+ are disjoint from obligation accounts (ACC100-999),
	// so these can never match.
	for i := 0; i < spec.Orphans; i++ {
		events = append(events, MarketEvent{
			MsgID:      fmt.Sprintf("M_FAKE%d", i+1),
			Seq:        1,
			Code:       CodeMatched,
			ISIN:       randISIN(rng),
			Account:    fmt.Sprintf("ACC%d", 1000+i),
			SettleDate: randSettleDate(rng),
			Qty:        orphanQuantities[rng.Intn(len(orphanQuantities))],
			At:         eventInstant,
		})
	}

	// Independent shuffles simulate arrival-order variance.
	rng.Shuffle(len(obligations), func(i, j int) {
		obligations[i], obligations[j] = obligations[j], obligations[i]
	})
	rng.Shuffle(len(events), func(i, j int) {
		events[i], events[j] = events[j], events[i]
	})

	return &Dataset{
		Obligations: obligations,
		Events:      events,
		Expected: Outcome{
			Matches:    spec.Obligations,
			Unmatches:  spec.Orphans,
			Duplicates: dups,
		},
	}, nil
}

func makeObligations(n int, rng *rand.Rand) []Obligation {
	obs := make([]Obligation, n)
	for i := range obs {
		obs[i] = Obligation{
			ID:          fmt.Sprintf("OBL%05d", i+1),
			Venue:       venues[rng.Intn(len(venues))],
			ISIN:        fmt.Sprintf("US%010d", rng.Int63n(10_000_000_000)),
			Account:     fmt.Sprintf("ACC%d", 100+rng.Intn(900)),
			SettleDate:  randSettleDate(rng),
			IntendedQty: quantities[rng.Intn(len(quantities))],
		}
	}
	return obs
}

func randSettleDate(rng *rand.Rand) string {
	return fmt.Sprintf("2024-%02d-%02d", 1+rng.Intn(12), 1+rng.Intn(28))
}

func randISIN(rng *rand.Rand) string {
	b := make([]byte, 12)
	for i := range b {
		b[i] = isinAlphabet[rng.Intn(len(isinAlphabet))]
	}
	return string(b)
}
