package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/paystream/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"LedgerID", id.NewLedgerID, "ldgr_"},
		{"StreamID", id.NewStreamID, "strm_"},
		{"AccountID", id.NewAccountID, "acct_"},
		{"TransferID", id.NewTransferID, "xfer_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixStream)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixStream {
		t.Errorf("expected prefix %q, got %q", id.PrefixStream, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"LedgerID", id.NewLedgerID, id.ParseLedgerID},
		{"StreamID", id.NewStreamID, id.ParseStreamID},
		{"AccountID", id.NewAccountID, id.ParseAccountID},
		{"TransferID", id.NewTransferID, id.ParseTransferID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	streamID := id.NewStreamID()

	if _, err := id.ParseAccountID(streamID.String()); err == nil {
		t.Error("expected error parsing stream ID as account ID")
	}
	if _, err := id.ParseLedgerID(streamID.String()); err == nil {
		t.Error("expected error parsing stream ID as ledger ID")
	}
}

func TestParseAny(t *testing.T) {
	original := id.NewTransferID()
	parsed, err := id.ParseAny(original.String())
	if err != nil {
		t.Fatalf("ParseAny failed: %v", err)
	}
	if parsed.Prefix() != id.PrefixTransfer {
		t.Errorf("expected prefix %q, got %q", id.PrefixTransfer, parsed.Prefix())
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Garbage", "not-a-typeid"},
		{"MissingSuffix", "strm_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("expected error parsing %q", tt.input)
			}
		})
	}
}

func TestNilID(t *testing.T) {
	var nilID id.ID

	if !nilID.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if nilID.String() != "" {
		t.Errorf("nil ID String() should be empty, got %q", nilID.String())
	}
	if nilID.Prefix() != "" {
		t.Errorf("nil ID Prefix() should be empty, got %q", nilID.Prefix())
	}
}

func TestEqual(t *testing.T) {
	a := id.NewStreamID()
	b := id.NewStreamID()

	if !a.Equal(a) {
		t.Error("ID should equal itself")
	}
	if a.Equal(b) {
		t.Error("distinct IDs should not be equal")
	}
	if a.Equal(id.Nil) {
		t.Error("valid ID should not equal Nil")
	}
	if !id.Nil.Equal(id.Nil) {
		t.Error("Nil should equal Nil")
	}
}

func TestTextMarshaling(t *testing.T) {
	original := id.NewLedgerID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if decoded.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", decoded.String(), original.String())
	}
}

func TestScan(t *testing.T) {
	original := id.NewAccountID()

	var fromString id.ID
	if err := fromString.Scan(original.String()); err != nil {
		t.Fatalf("Scan string failed: %v", err)
	}
	if fromString.String() != original.String() {
		t.Errorf("Scan string mismatch: %q != %q", fromString.String(), original.String())
	}

	var fromBytes id.ID
	if err := fromBytes.Scan([]byte(original.String())); err != nil {
		t.Fatalf("Scan bytes failed: %v", err)
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan nil failed: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("Scan nil should produce the Nil ID")
	}

	var fromInt id.ID
	if err := fromInt.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
