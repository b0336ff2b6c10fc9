package statement

import (
	"errors"
	"strings"
	"testing"

	"finsight/internal/core"
)

func TestParseWithHeader(t *testing.T) {
	csv := `date,reference,withdraw,deposit,category
2024-12-01,Groceries,3000,0,food
2024-12-02,Salary,0,90000,
2024-12-03,Coffee,4.50,0`

	txs, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("len(txs) = %d, want 3", len(txs))
	}

	if txs[0].Category != "food" || txs[0].Withdraw != 3000 {
		t.Fatalf("txs[0] = %+v", txs[0])
	}
	// Blank category is defaulted during normalization.
	if txs[1].Category != core.DefaultCategory {
		t.Fatalf("txs[1].Category = %q, want %q", txs[1].Category, core.DefaultCategory)
	}
	if txs[2].Withdraw != 4.5 {
		t.Fatalf("txs[2].Withdraw = %v, want 4.5", txs[2].Withdraw)
	}
	if txs[0].Date.Year() != 2024 || txs[0].Date.Month() != 12 {
		t.Fatalf("txs[0].Date = %v", txs[0].Date)
	}
}

func TestParseWithoutHeader(t *testing.T) {
	txs, err := Parse(strings.NewReader("2024-01-05,Rent January,1200,0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 1 || txs[0].Reference != "Rent January" {
		t.Fatalf("txs = %+v", txs)
	}
}

func TestParseCommaDecimalSeparator(t *testing.T) {
	txs, err := Parse(strings.NewReader(`2024-01-05,Cafe,"12,50",0`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if txs[0].Withdraw != 12.5 {
		t.Fatalf("Withdraw = %v, want 12.5", txs[0].Withdraw)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"bad date", "notadate,Shop,10,0\n"},
		{"empty reference", "2024-01-05,,10,0\n"},
		{"negative amount", "2024-01-05,Shop,-10,0\n"},
		{"malformed amount", "2024-01-05,Shop,ten,0\n"},
		{"too few columns", "2024-01-05,Shop\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.csv)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseEmptyStatement(t *testing.T) {
	_, err := Parse(strings.NewReader("date,reference,withdraw,deposit\n"))
	if !errors.Is(err, ErrEmptyStatement) {
		t.Fatalf("err = %v, want ErrEmptyStatement", err)
	}
}

func TestParseEmptyAmountCellsMeanZero(t *testing.T) {
	txs, err := Parse(strings.NewReader("2024-01-05,Adjustment,,\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if txs[0].Withdraw != 0 || txs[0].Deposit != 0 {
		t.Fatalf("amounts = %v/%v, want 0/0", txs[0].Withdraw, txs[0].Deposit)
	}
}
