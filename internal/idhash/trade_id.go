// Package idhash derives deterministic identifiers so that re-importing
// the same broker statement never creates duplicate rows.
package idhash

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// ComputeTradeID computes a deterministic trade identifier from the
// account and the trade's first event.
// Formula: base58(SHA256(account|instrument_id|opened_unix_ms)).
func ComputeTradeID(account string, instrumentID int, opened time.Time) string {
	data := fmt.Sprintf("%s|%d|%d", account, instrumentID, opened.UnixMilli())
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// ComputeOrderID computes a deterministic order identifier.
// Formula: base58(SHA256(account|instrument_id|exec_unix_ms|qty|price)).
func ComputeOrderID(account string, instrumentID int, execTime time.Time, quantity, price float64) string {
	data := fmt.Sprintf("%s|%d|%d|%g|%g", account, instrumentID, execTime.UnixMilli(), quantity, price)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// ComputeCashTxID computes a deterministic cash-transaction identifier.
// Formula: base58(SHA256(account|instrument_id|tx_type|tx_unix_ms|amount)).
func ComputeCashTxID(account string, instrumentID int, txType string, txTime time.Time, amount float64) string {
	data := fmt.Sprintf("%s|%d|%s|%d|%g", account, instrumentID, txType, txTime.UnixMilli(), amount)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// ComputeFXTxID computes a deterministic FX-transaction identifier.
// Formula: base58(SHA256(account|currency|tx_unix_ms|amount)).
func ComputeFXTxID(account, currency string, txTime time.Time, amount float64) string {
	data := fmt.Sprintf("%s|%s|%d|%g", account, currency, txTime.UnixMilli(), amount)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
