// Package statement parses uploaded bank-statement CSV exports into domain
// transactions. Amounts are parsed with decimal arithmetic so malformed or
// out-of-range values are rejected before anything reaches the pipeline.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"finsight/internal/core"
)

// maxRows bounds a single statement upload.
const maxRows = 10000

var (
	ErrEmptyStatement = errors.New("statement contains no transactions")
	ErrTooManyRows    = errors.New("statement exceeds the row limit")
)

// Parse reads a CSV statement with columns
// date,reference,withdraw,deposit[,category]. A header row is detected and
// skipped. Returned transactions are normalized (defaults filled in).
func Parse(r io.Reader) ([]core.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var txs []core.Transaction
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line+1, err)
		}
		line++

		if line == 1 && isHeader(record) {
			continue
		}
		if len(txs) >= maxRows {
			return nil, ErrTooManyRows
		}

		tx, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return nil, ErrEmptyStatement
	}
	return core.Normalize(txs), nil
}

func parseRow(record []string) (core.Transaction, error) {
	if len(record) < 4 {
		return core.Transaction{}, fmt.Errorf("expected at least 4 columns, got %d", len(record))
	}

	date, err := core.ParseDate(strings.TrimSpace(record[0]))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid date %q: %w", record[0], err)
	}

	reference := strings.TrimSpace(record[1])
	if reference == "" {
		return core.Transaction{}, errors.New("empty reference")
	}

	withdraw, err := parseAmount(record[2])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid withdraw %q: %w", record[2], err)
	}
	deposit, err := parseAmount(record[3])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid deposit %q: %w", record[3], err)
	}

	tx := core.Transaction{
		Date:      date,
		Reference: reference,
		Withdraw:  withdraw,
		Deposit:   deposit,
	}
	if len(record) > 4 {
		tx.Category = strings.TrimSpace(record[4])
	}
	return tx, nil
}

// parseAmount accepts an optionally empty, non-negative decimal amount.
// Empty cells mean zero, matching the implicit defaults of the data model.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// Tolerate comma decimal separators from European exports.
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, errors.New("amount must not be negative")
	}
	return d.InexactFloat64(), nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "date")
}
