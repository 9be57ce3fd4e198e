// Package dataset generates synthetic settlement obligations and market
// events with exact, analytically known cardinalities of matches, duplicates,
// and orphans.
//
// The generator is deterministic: given the same Spec and the same seeded
// random source, it produces byte-identical output sequences. This makes the
// expected engine outcome an oracle that can be computed before the engine
// runs, and makes benchmark inputs reproducible across iterations and hosts.
//
// Generation proceeds in fixed phases:
//
//  1. Obligations with unique identifiers (OBL00001, OBL00002, ...).
//  2. One primary MATCHED event per obligation (seq 1 under msg id M_<id>).
//  3. Filler events up to the requested event count, each appended to a
//     randomly chosen obligation's lifecycle with the next sequence number,
//     cycling through PARTIAL_SETTLED, SETTLED, and ACK by position.
//  4. Verbatim duplicates of previously generated events.
//  5. Orphan events referencing identifiers absent from the obligation set.
//
// Obligations and events are then shuffled independently to simulate
// arrival-order variance.
package dataset
