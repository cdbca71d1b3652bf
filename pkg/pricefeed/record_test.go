package pricefeed

import (
	"testing"
	"time"

	"github.com/sabbanivenugopal/latest-value-price/pkg/pricefeed/perr"
)

func TestNewRecordRejectsEmptyInstrumentID(t *testing.T) {
	_, err := NewRecord("", time.Now(), nil)
	if !perr.IsKind(err, perr.InvalidArgument) {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestNewRecordRejectsZeroTime(t *testing.T) {
	_, err := NewRecord("AAPL", time.Time{}, nil)
	if !perr.IsKind(err, perr.InvalidArgument) {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestNewRecordFields(t *testing.T) {
	now := time.Now()
	payload := Payload{"px": 100.5}
	rec, err := NewRecord("AAPL", now, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.InstrumentID() != "AAPL" {
		t.Errorf("InstrumentID = %q", rec.InstrumentID())
	}
	if !rec.AsOf().Equal(now) {
		t.Errorf("AsOf = %v, want %v", rec.AsOf(), now)
	}
	if rec.Payload()["px"] != 100.5 {
		t.Errorf("Payload = %v", rec.Payload())
	}
}

func TestRecordAfter(t *testing.T) {
	t0 := time.Unix(10, 0)
	t1 := time.Unix(20, 0)
	r0, _ := NewRecord("AAPL", t0, nil)
	r1, _ := NewRecord("AAPL", t1, nil)

	if !r1.after(r0) {
		t.Error("r1 should be after r0")
	}
	if r0.after(r1) {
		t.Error("r0 should not be after r1")
	}
	if r0.after(r0) {
		t.Error("equal timestamps are never 'after'")
	}
}
