package claims

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/riff/internal/shared"
)

func TestOf(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		kind Kind
		text string
	}{
		{name: "nil", in: nil, kind: Null, text: ""},
		{name: "string", in: "hello", kind: String, text: "hello"},
		{name: "int", in: 42, kind: Number, text: "42"},
		{name: "int64", in: int64(1700000000000), kind: Number, text: "1700000000000"},
		{name: "float truncates", in: 1700000000.9, kind: Number, text: "1700000000"},
		{name: "negative float truncates", in: -2.7, kind: Number, text: "-2"},
		{name: "json number", in: json.Number("123"), kind: Number, text: "123"},
		{name: "json fractional number", in: json.Number("12.5"), kind: Number, text: "12"},
		{name: "uint32", in: uint32(7), kind: Number, text: "7"},
		{name: "time", in: at, kind: Time, text: "2024-05-01T10:00:00Z"},
		{name: "time pointer", in: &at, kind: Time, text: "2024-05-01T10:00:00Z"},
		{name: "bool", in: true, kind: String, text: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Of(tt.in)
			if v.Kind() != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, v.Kind())
			}
			if v.String() != tt.text {
				t.Errorf("expected text %q, got %q", tt.text, v.String())
			}
		})
	}
}

func TestClaims(t *testing.T) {
	c := FromMap(map[string]any{
		Subject: "auth0|123",
		Email:   nil,
		"count": 3,
	})

	t.Run("Get", func(t *testing.T) {
		if _, ok := c.Get(Subject); !ok {
			t.Error("expected sub to be present")
		}
		if _, ok := c.Get(Email); ok {
			t.Error("expected null email to be reported absent")
		}
		if _, ok := c.Get(Picture); ok {
			t.Error("expected missing picture to be reported absent")
		}
	})

	t.Run("String", func(t *testing.T) {
		s, ok := c.String("count")
		if !ok || s != "3" {
			t.Errorf("expected \"3\", got %q (%v)", s, ok)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var decoded Claims
		if err := json.Unmarshal([]byte(`{"sub":"abc","updated_at":1700000000123,"email":null}`), &decoded); err != nil {
			t.Fatalf("failed to decode claims: %v", err)
		}

		n, ok := decoded[UpdatedAt].Int()
		if !ok || n != 1700000000123 {
			t.Errorf("expected exact integer, got %d (%v)", n, ok)
		}
		if _, ok := decoded.Get(Email); ok {
			t.Error("expected null email to be absent")
		}

		data, err := json.Marshal(decoded)
		if err != nil {
			t.Fatalf("failed to encode claims: %v", err)
		}

		var again Claims
		if err := json.Unmarshal(data, &again); err != nil {
			t.Fatalf("failed to decode claims: %v", err)
		}
		if again[Subject].String() != "abc" {
			t.Errorf("expected sub abc, got %s", again[Subject].String())
		}
	})

	t.Run("Map", func(t *testing.T) {
		m := c.Map()
		if m[Subject] != "auth0|123" {
			t.Errorf("unexpected sub %v", m[Subject])
		}
		if m["count"] != int64(3) {
			t.Errorf("unexpected count %v", m["count"])
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      Value
		want    time.Time
		wantErr bool
	}{
		{name: "instant", in: TimeValue(at), want: at},
		{name: "seconds", in: NumberValue(1700000000), want: time.Unix(1700000000, 0)},
		{name: "milliseconds", in: NumberValue(1700000000123), want: time.UnixMilli(1700000000123)},
		{name: "threshold is milliseconds", in: NumberValue(1_000_000_000_000), want: time.UnixMilli(1_000_000_000_000)},
		{name: "below threshold is seconds", in: NumberValue(999_999_999_999), want: time.Unix(999_999_999_999, 0)},
		{name: "rfc3339 text", in: StringValue("2024-05-01T10:00:00Z"), want: at},
		{name: "rfc3339 with offset", in: StringValue("2024-05-01T12:00:00+02:00"), want: at},
		{name: "seconds text", in: StringValue("1700000000"), want: time.Unix(1700000000, 0)},
		{name: "padded text", in: StringValue("  1700000000123 "), want: time.UnixMilli(1700000000123)},
		{name: "garbage text", in: StringValue("yesterday"), wantErr: true},
		{name: "empty text", in: StringValue(""), wantErr: true},
		{name: "null", in: Value{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrUnparseableTimestamp) {
					t.Fatalf("expected ErrUnparseableTimestamp, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("UpdatedAt", func(t *testing.T) {
		c := FromMap(map[string]any{UpdatedAt: "1700000000"})
		got, err := c.UpdatedAt()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Unix() != 1700000000 {
			t.Errorf("expected epoch seconds, got %v", got)
		}

		if _, err := (Claims{}).UpdatedAt(); err == nil {
			t.Error("expected error for absent updated_at")
		}
	})
}
