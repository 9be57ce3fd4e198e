package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Wire formats, one record per line, comma-separated:
//
//	obligation: id,venue,isin,account,settleDate,intendedQty
//	event:      msgId,seq,code,isin,account,settleDate,qty,atISO8601

// EncodeObligation renders an obligation feed line (without newline).
func EncodeObligation(o Obligation) string {
	return fmt.Sprintf("%s,%s,%s,%s,%s,%d",
		o.ID, o.Venue, o.ISIN, o.Account, o.SettleDate, o.IntendedQty)
}

// EncodeEvent renders a market-event feed line (without newline).
func EncodeEvent(e MarketEvent) string {
	return fmt.Sprintf("%s,%d,%s,%s,%s,%s,%d,%s",
		e.MsgID, e.Seq, e.Code, e.ISIN, e.Account, e.SettleDate, e.Qty,
		e.At.UTC().Format(time.RFC3339))
}

// ParseObligation decodes an obligation feed line.
func ParseObligation(line string) (Obligation, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return Obligation{}, fmt.Errorf("obligation line has %d fields, want 6: %q", len(fields), line)
	}
	qty, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return Obligation{}, fmt.Errorf("obligation %s: bad quantity %q: %w", fields[0], fields[5], err)
	}
	return Obligation{
		ID:          fields[0],
		Venue:       fields[1],
		ISIN:        fields[2],
		Account:     fields[3],
		SettleDate:  fields[4],
		IntendedQty: qty,
	}, nil
}

// ParseEvent decodes a market-event feed line.
func ParseEvent(line string) (MarketEvent, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 8 {
		return MarketEvent{}, fmt.Errorf("event line has %d fields, want 8: %q", len(fields), line)
	}
	seq, err := strconv.Atoi(fields[1])
	if err != nil {
		return MarketEvent{}, fmt.Errorf("event %s: bad seq %q: %w", fields[0], fields[1], err)
	}
	if !ValidCode(fields[2]) {
		return MarketEvent{}, fmt.Errorf("event %s: unknown status code %q", fields[0], fields[2])
	}
	qty, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return MarketEvent{}, fmt.Errorf("event %s: bad quantity %q: %w", fields[0], fields[6], err)
	}
	at, err := time.Parse(time.RFC3339, fields[7])
	if err != nil {
		return MarketEvent{}, fmt.Errorf("event %s: bad timestamp %q: %w", fields[0], fields[7], err)
	}
	return MarketEvent{
		MsgID:      fields[0],
		Seq:        seq,
		Code:       StatusCode(fields[2]),
		ISIN:       fields[3],
		Account:    fields[4],
		SettleDate: fields[5],
		Qty:        qty,
		At:         at,
	}, nil
}
