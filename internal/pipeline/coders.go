package pipeline

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/apache/beam/sdks/v2/go/pkg/beam"
	"github.com/jeovahfialho/txagg/internal/domain"
	"github.com/shopspring/decimal"
)

// Element types carry decimals, whose fields are unexported, so they get
// explicit coders instead of the schema coder.
func init() {
	beam.RegisterCoder(
		reflect.TypeOf((*decimal.Decimal)(nil)).Elem(),
		encodeDecimal,
		decodeDecimal,
	)
	beam.RegisterCoder(
		reflect.TypeOf((*domain.Transaction)(nil)).Elem(),
		encodeTransaction,
		decodeTransaction,
	)
	beam.RegisterCoder(
		reflect.TypeOf((*domain.DatedTransaction)(nil)).Elem(),
		encodeDatedTransaction,
		decodeDatedTransaction,
	)
	beam.RegisterCoder(
		reflect.TypeOf((*domain.DailyTotal)(nil)).Elem(),
		encodeDailyTotal,
		decodeDailyTotal,
	)
}

func encodeDecimal(d decimal.Decimal) []byte {
	return []byte(d.String())
}

func decodeDecimal(in []byte) (decimal.Decimal, error) {
	return decimal.NewFromString(string(in))
}

// Beam needs concrete functions for coders, hence the wrappers around the
// generic helpers.

func encodeTransaction(in domain.Transaction) ([]byte, error) {
	return encodeJSON(in)
}
func decodeTransaction(in []byte) (domain.Transaction, error) {
	return decodeJSON[domain.Transaction](in)
}

func encodeDatedTransaction(in domain.DatedTransaction) ([]byte, error) {
	return encodeJSON(in)
}
func decodeDatedTransaction(in []byte) (domain.DatedTransaction, error) {
	return decodeJSON[domain.DatedTransaction](in)
}

func encodeDailyTotal(in domain.DailyTotal) ([]byte, error) {
	return encodeJSON(in)
}
func decodeDailyTotal(in []byte) (domain.DailyTotal, error) {
	return decodeJSON[domain.DailyTotal](in)
}

func encodeJSON[T any](in T) ([]byte, error) {
	out, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("error encoding %T: %w", in, err)
	}
	return out, nil
}

func decodeJSON[T any](in []byte) (T, error) {
	var out T
	if err := json.Unmarshal(in, &out); err != nil {
		return out, fmt.Errorf("error decoding %T: %w", out, err)
	}
	return out, nil
}
