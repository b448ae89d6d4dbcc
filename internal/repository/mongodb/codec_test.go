package mongodb

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/apigest/internal/domain/models"
)

func TestDecimalCodecKeepsPrecision(t *testing.T) {
	registry := newRegistry()
	in := models.Sale{ID: "s1", TotalPrice: decimal.RequireFromString("12.345678901234567890")}

	raw, err := bson.MarshalWithRegistry(registry, in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var stored bson.M
	if err := bson.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if got, ok := stored["totalPrice"].(string); !ok || got != "12.34567890123456789" {
		t.Fatalf("stored totalPrice = %#v, want decimal string", stored["totalPrice"])
	}

	var out models.Sale
	if err := bson.UnmarshalWithRegistry(registry, raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.TotalPrice.Equal(in.TotalPrice) {
		t.Fatalf("TotalPrice = %s, want %s", out.TotalPrice, in.TotalPrice)
	}
}

func TestDecimalCodecReadsNumbers(t *testing.T) {
	registry := newRegistry()
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "double", value: 7.5, want: "7.5"},
		{name: "int32", value: int32(12), want: "12"},
		{name: "int64", value: int64(40), want: "40"},
		{name: "null", value: nil, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"_id": "e1", "amount": tt.value})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out models.Expense
			if err := bson.UnmarshalWithRegistry(registry, raw, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !out.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("Amount = %s, want %s", out.Amount, tt.want)
			}
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "atlas space quota code", err: mongo.CommandError{Code: 8000, Message: "you are over your space quota"}, want: true},
		{name: "quota message", err: mongo.CommandError{Code: 14031, Message: "disk quota reached"}, want: true},
		{name: "duplicate key", err: mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaError(tt.err); got != tt.want {
				t.Fatalf("IsQuotaError() = %v, want %v", got, tt.want)
			}
		})
	}
}
