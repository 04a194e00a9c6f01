/*
Package csvio adapts the payments engine to its CSV wire format.

PURPOSE:
  Decodes input rows into ledger transactions and serializes final
  account snapshots. This is boundary code: it produces and consumes
  the typed entities the ledger package defines and adds no rules of
  its own beyond column mapping and numeric formatting.

INPUT FORMAT:
  Header row, then: type,client,tx,amount
  amount is optional and only meaningful for deposit/withdrawal.
  Column order follows the header, so permuted columns decode fine.

MALFORMED ROWS:
  Rows that fail to decode or validate are skipped, counted, and never
  reach the ledger. A batch run finishes regardless of how many rows
  were dropped.

SEE ALSO:
  - writer.go: Snapshot serialization with 4-digit truncation
  - ledger/types.go: FromRecord validation rules
*/
package csvio

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/payments-engine/ledger"
)

// Reader streams validated transactions out of CSV input.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	skipped int
}

func NewReader(r io.Reader) *Reader {
	c := csv.NewReader(r)
	c.TrimLeadingSpace = true
	c.FieldsPerRecord = -1
	return &Reader{csv: c}
}

// Next returns the next valid transaction. Malformed rows are skipped.
// Returns io.EOF once input is exhausted.
func (r *Reader) Next() (ledger.Transaction, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return ledger.Transaction{}, err
		}
	}

	for {
		row, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ledger.Transaction{}, io.EOF
			}
			// Per-row syntax problems (e.g. bare quotes) drop the row;
			// anything else is an I/O failure worth surfacing.
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				r.skipped++
				continue
			}
			return ledger.Transaction{}, err
		}

		rec, ok := r.decode(row)
		if !ok {
			r.skipped++
			continue
		}

		tx, err := ledger.FromRecord(rec)
		if err != nil {
			r.skipped++
			continue
		}
		return tx, nil
	}
}

// Skipped returns how many rows were dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		return err
	}
	r.columns = make(map[string]int, len(header))
	for i, name := range header {
		r.columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return nil
}

func (r *Reader) field(row []string, name string) (string, bool) {
	i, ok := r.columns[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

func (r *Reader) decode(row []string) (ledger.Record, bool) {
	txType, ok := r.field(row, "type")
	if !ok {
		return ledger.Record{}, false
	}

	clientStr, ok := r.field(row, "client")
	if !ok {
		return ledger.Record{}, false
	}
	client, err := strconv.ParseUint(clientStr, 10, 16)
	if err != nil {
		return ledger.Record{}, false
	}

	txStr, ok := r.field(row, "tx")
	if !ok {
		return ledger.Record{}, false
	}
	txID, err := strconv.ParseUint(txStr, 10, 32)
	if err != nil {
		return ledger.Record{}, false
	}

	rec := ledger.Record{
		Type:   strings.ToLower(txType),
		Client: ledger.ClientID(client),
		Tx:     ledger.TransactionID(txID),
	}

	if amountStr, ok := r.field(row, "amount"); ok && amountStr != "" {
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return ledger.Record{}, false
		}
		rec.Amount = &amount
	}
	return rec, true
}
