package domain

import (
	"math/big"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransaction is returned when a transaction record fails validation.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction one on-chain transfer.
type Transaction struct {
	// Hash transaction hash.
	Hash string `json:"hash"`
	// From sender address.
	From string `json:"from"`
	// To recipient address.
	To string `json:"to"`
	// Value transferred amount in the smallest unit (wei), base-10 encoded.
	Value string `json:"value"`
	// TimeStamp Unix seconds, base-10 encoded.
	TimeStamp string `json:"timeStamp"`
}

// Validate checks the fields the views depend on.
func (t Transaction) Validate() error {
	if t.Hash == "" {
		return errors.Wrap(ErrInvalidTransaction, "hash is empty")
	}
	if _, ok := new(big.Int).SetString(t.Value, 10); !ok {
		return errors.Wrapf(ErrInvalidTransaction, "%s: value %q is not an integer", t.Hash, t.Value)
	}
	if _, err := strconv.ParseInt(t.TimeStamp, 10, 64); err != nil {
		return errors.Wrapf(ErrInvalidTransaction, "%s: timestamp %q is not an integer", t.Hash, t.TimeStamp)
	}
	return nil
}

// Amount returns the value in the smallest unit.
func (t Transaction) Amount() (decimal.Decimal, error) {
	v, ok := new(big.Int).SetString(t.Value, 10)
	if !ok {
		return decimal.Zero, errors.Wrapf(ErrInvalidTransaction, "value %q is not an integer", t.Value)
	}
	return decimal.NewFromBigInt(v, 0), nil
}

// Time returns the transaction time.
func (t Transaction) Time() (time.Time, error) {
	sec, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidTransaction, "timestamp %q is not an integer", t.TimeStamp)
	}
	return time.Unix(sec, 0), nil
}

// ValidateTransactions validates every record of a list.
func ValidateTransactions(txs []Transaction) error {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return errors.Wrapf(err, "transaction %d", i)
		}
	}
	return nil
}
