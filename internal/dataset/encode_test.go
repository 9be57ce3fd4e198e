package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeObligation(t *testing.T) {
	o := Obligation{
		ID:          "OBL00001",
		Venue:       "LSE",
		ISIN:        "US0000000042",
		Account:     "ACC123",
		SettleDate:  "2024-03-15",
		IntendedQty: 500,
	}
	assert.Equal(t, "OBL00001,LSE,US0000000042,ACC123,2024-03-15,500", EncodeObligation(o))
}

func TestParseObligation(t *testing.T) {
	o, err := ParseObligation("OBL00001,LSE,US0000000042,ACC123,2024-03-15,500")
	require.NoError(t, err)
	assert.Equal(t, Obligation{
		ID:          "OBL00001",
		Venue:       "LSE",
		ISIN:        "US0000000042",
		Account:     "ACC123",
		SettleDate:  "2024-03-15",
		IntendedQty: 500,
	}, o)
}

func TestParseObligation_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "OBL00001,LSE,US0000000042,ACC123,2024-03-15"},
		{"too many fields", "OBL00001,LSE,US0000000042,ACC123,2024-03-15,500,extra"},
		{"bad quantity", "OBL00001,LSE,US0000000042,ACC123,2024-03-15,lots"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseObligation(tc.line)
			assert.Error(t, err)
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	e := MarketEvent{
		MsgID:      "M_OBL00001",
		Seq:        1,
		Code:       CodeMatched,
		ISIN:       "US0000000042",
		Account:    "ACC123",
		SettleDate: "2024-03-15",
		Qty:        500,
		At:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t,
		"M_OBL00001,1,MATCHED,US0000000042,ACC123,2024-03-15,500,2024-01-01T00:00:00Z",
		EncodeEvent(e))
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent("M_OBL00001,2,PARTIAL_SETTLED,US0000000042,ACC123,2024-03-15,125,2024-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "M_OBL00001", e.MsgID)
	assert.Equal(t, 2, e.Seq)
	assert.Equal(t, CodePartialSettled, e.Code)
	assert.Equal(t, int64(125), e.Qty)
	assert.True(t, e.At.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseEvent_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "M_X,1,MATCHED,US1,ACC1,2024-01-01,100"},
		{"bad seq", "M_X,one,MATCHED,US1,ACC1,2024-01-01,100,2024-01-01T00:00:00Z"},
		{"unknown code", "M_X,1,TELEPORTED,US1,ACC1,2024-01-01,100,2024-01-01T00:00:00Z"},
		{"bad quantity", "M_X,1,MATCHED,US1,ACC1,2024-01-01,many,2024-01-01T00:00:00Z"},
		{"bad timestamp", "M_X,1,MATCHED,US1,ACC1,2024-01-01,100,yesterday"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseEvent(tc.line)
			assert.Error(t, err)
		})
	}
}

func TestValidCode(t *testing.T) {
	for _, code := range []StatusCode{CodeAck, CodeMatched, CodePartialSettled, CodeSettled} {
		assert.True(t, ValidCode(string(code)))
	}
	assert.False(t, ValidCode("MATCHED "))
	assert.False(t, ValidCode(""))
	assert.False(t, ValidCode("matched"))
}
