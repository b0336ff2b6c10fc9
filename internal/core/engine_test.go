package core

import (
	"math"
	"reflect"
	"testing"
)

func expense(category string, withdraw float64) Transaction {
	return Transaction{Reference: "ref", Withdraw: withdraw, Category: category}
}

func deposit(amount float64) Transaction {
	return Transaction{Reference: "salary", Deposit: amount}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestExtractExpenses(t *testing.T) {
	cases := []struct {
		name       string
		txs        []Transaction
		total      float64
		byCategory map[string]float64
	}{
		{
			name:       "empty list",
			txs:        nil,
			total:      0,
			byCategory: map[string]float64{},
		},
		{
			name:       "deposits ignored",
			txs:        []Transaction{deposit(90000), deposit(500)},
			total:      0,
			byCategory: map[string]float64{},
		},
		{
			name: "expenses accumulate per category",
			txs: []Transaction{
				expense("food", 3000),
				expense("food", 1000),
				expense("transport", 500),
				deposit(90000),
			},
			total:      4500,
			byCategory: map[string]float64{"food": 4000, "transport": 500},
		},
		{
			name: "net amount decides direction",
			txs: []Transaction{
				{Withdraw: 100, Deposit: 40, Category: "food"}, // net -60
				{Withdraw: 40, Deposit: 100, Category: "food"}, // net +60, ignored
			},
			total:      60,
			byCategory: map[string]float64{"food": 60},
		},
		{
			name:       "missing category defaults to other",
			txs:        []Transaction{expense("", 250)},
			total:      250,
			byCategory: map[string]float64{DefaultCategory: 250},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, byCategory := extractExpenses(Normalize(tc.txs))
			if !almostEqual(total, tc.total) {
				t.Fatalf("total = %v, want %v", total, tc.total)
			}
			if len(byCategory) != len(tc.byCategory) {
				t.Fatalf("byCategory = %v, want %v", byCategory, tc.byCategory)
			}
			for name, want := range tc.byCategory {
				if !almostEqual(byCategory[name], want) {
					t.Fatalf("byCategory[%s] = %v, want %v", name, byCategory[name], want)
				}
			}
		})
	}
}

func TestExtractDoesNotMutateInput(t *testing.T) {
	txs := []Transaction{{Reference: "COFFEE", Withdraw: 5}}
	before := txs[0]
	GenerateInsights(txs, Params{MonthlyBudget: 100})
	if txs[0] != before {
		t.Fatalf("input transaction mutated: %+v", txs[0])
	}
}

func TestAssessBudget(t *testing.T) {
	cases := []struct {
		name        string
		total       float64
		budget      float64
		left        float64
		usedPercent float64
		status      string
	}{
		{"well under budget", 100, 2000, 1900, 5, BudgetOK},
		{"watch threshold", 1400, 2000, 600, 70, BudgetWatch},
		{"warning threshold", 1800, 2000, 200, 90, BudgetWarning},
		{"overspend", 3000, 2000, -1000, 150, BudgetDanger},
		{"zero budget no expense", 0, 0, 0, 0, BudgetOK},
		{"zero budget with expense", 500, 0, -500, 0, BudgetDanger},
		{"exact budget", 2000, 2000, 0, 100, BudgetWarning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := assessBudget(tc.total, tc.budget)
			if !almostEqual(got.BudgetLeft, tc.left) {
				t.Fatalf("BudgetLeft = %v, want %v", got.BudgetLeft, tc.left)
			}
			if !almostEqual(got.UsedPercent, tc.usedPercent) {
				t.Fatalf("UsedPercent = %v, want %v", got.UsedPercent, tc.usedPercent)
			}
			if got.Status != tc.status {
				t.Fatalf("Status = %q, want %q", got.Status, tc.status)
			}
		})
	}
}

// Overspend must win even when the rounded percentage reads below the
// warning threshold.
func TestAssessBudgetOverspendDominatesRounding(t *testing.T) {
	got := assessBudget(0.004, 0.003)
	if got.BudgetLeft >= 0 {
		t.Fatalf("expected negative budget left, got %v", got.BudgetLeft)
	}
	if got.Status != BudgetDanger {
		t.Fatalf("Status = %q, want %q", got.Status, BudgetDanger)
	}
}

func TestAssessCushion(t *testing.T) {
	cases := []struct {
		name        string
		balance     float64
		avgDaily    float64
		recommended float64
		covered     float64
		status      string
	}{
		{"healthy cushion", 100000, 1000, 30000, 333.33, CushionGood},
		{"exact coverage", 30000, 1000, 30000, 100, CushionGood},
		{"medium coverage", 20000, 1000, 30000, 66.67, CushionMedium},
		{"low coverage", 5000, 1000, 30000, 16.67, CushionLow},
		{"zero average spend trivially satisfied", 0, 0, 0, 100, CushionGood},
		{"debt balance", -500, 100, 3000, -16.67, CushionLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := assessCushion(tc.balance, tc.avgDaily)
			if !almostEqual(got.RecommendedAmount, tc.recommended) {
				t.Fatalf("RecommendedAmount = %v, want %v", got.RecommendedAmount, tc.recommended)
			}
			if !almostEqual(got.CoveredPercent, tc.covered) {
				t.Fatalf("CoveredPercent = %v, want %v", got.CoveredPercent, tc.covered)
			}
			if got.Status != tc.status {
				t.Fatalf("Status = %q, want %q", got.Status, tc.status)
			}
		})
	}
}

func TestSynthesizeMessageOrder(t *testing.T) {
	byCategory := map[string]float64{"food": 3000}
	top, recs := synthesize(BudgetDanger, CushionLow, 3000, byCategory)

	want := []string{
		msgBudgetOverspent,
		msgCushionLow,
		`The highest spending this month is in the "food" category.`,
	}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("recommendations = %v, want %v", recs, want)
	}
	if len(top) != 1 || top[0].Category != "food" {
		t.Fatalf("top = %v", top)
	}
}

func TestSynthesizeBudgetOKSkipsBudgetMessage(t *testing.T) {
	_, recs := synthesize(BudgetOK, CushionGood, 0, nil)
	if len(recs) != 1 || recs[0] != msgCushionGood {
		t.Fatalf("recommendations = %v, want only the cushion message", recs)
	}
}

func TestRankCategories(t *testing.T) {
	byCategory := map[string]float64{
		"food":      4000,
		"transport": 1500,
		"health":    1500,
		"fun":       800,
		"rent":      9000,
		"misc":      100,
	}
	total := 16900.0

	top := rankCategories(byCategory, total)
	if len(top) != maxTopCategories {
		t.Fatalf("len(top) = %d, want %d", len(top), maxTopCategories)
	}

	gotOrder := make([]string, len(top))
	for i, e := range top {
		gotOrder[i] = e.Category
	}
	// health before transport: equal amounts break ties alphabetically.
	wantOrder := []string{"rent", "food", "health", "transport", "fun"}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Fatalf("order = %v, want %v", gotOrder, wantOrder)
	}

	var shareSum float64
	for _, e := range top {
		shareSum += e.Share
	}
	if shareSum >= 100 {
		t.Fatalf("shares of a truncated list must sum below 100, got %v", shareSum)
	}
}

func TestRankCategoriesEmpty(t *testing.T) {
	if got := rankCategories(nil, 0); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", got)
	}
	if got := rankCategories(map[string]float64{}, 100); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", got)
	}
}

func TestGenerateInsightsOverspendScenario(t *testing.T) {
	txs := []Transaction{expense("food", 3000)}
	report := GenerateInsights(txs, Params{MonthlyBudget: 2000})

	if !almostEqual(report.MonthlyExpense, 3000) {
		t.Fatalf("MonthlyExpense = %v, want 3000", report.MonthlyExpense)
	}
	if !almostEqual(report.BudgetLeft, -1000) {
		t.Fatalf("BudgetLeft = %v, want -1000", report.BudgetLeft)
	}
	if report.BudgetStatus != BudgetDanger {
		t.Fatalf("BudgetStatus = %q, want %q", report.BudgetStatus, BudgetDanger)
	}
	if report.Recommendations[0] != msgBudgetOverspent {
		t.Fatalf("first recommendation = %q", report.Recommendations[0])
	}
}

func TestGenerateInsightsHealthyCushionScenario(t *testing.T) {
	report := GenerateInsights(nil, Params{
		CurrentBalance:  100000,
		AvgDailyExpense: 1000,
	})
	if !almostEqual(report.RecommendedCushion, 30000) {
		t.Fatalf("RecommendedCushion = %v, want 30000", report.RecommendedCushion)
	}
	if !almostEqual(report.SafetyPillowPct, 333.33) {
		t.Fatalf("SafetyPillowPct = %v, want 333.33", report.SafetyPillowPct)
	}
	if report.SafetyPillowStatus != CushionGood {
		t.Fatalf("SafetyPillowStatus = %q, want %q", report.SafetyPillowStatus, CushionGood)
	}
}

func TestGenerateInsightsEmptyTransactions(t *testing.T) {
	report := GenerateInsights(nil, Params{MonthlyBudget: 1000, CurrentBalance: 500, AvgDailyExpense: 10})

	if len(report.Categories) != 0 {
		t.Fatalf("Categories = %v, want empty map", report.Categories)
	}
	if report.Categories == nil {
		t.Fatal("Categories must be an empty map, not nil")
	}
	if len(report.TopCategories) != 0 || report.TopCategories == nil {
		t.Fatalf("TopCategories = %v, want empty list", report.TopCategories)
	}
	// Exactly the cushion message: no budget message, no top-category message.
	if len(report.Recommendations) != 1 {
		t.Fatalf("Recommendations = %v, want exactly one entry", report.Recommendations)
	}
}

func TestGenerateInsightsZeroBudget(t *testing.T) {
	txs := []Transaction{expense("food", 100)}
	report := GenerateInsights(txs, Params{MonthlyBudget: 0})

	if report.BudgetUsedPct != 0 {
		t.Fatalf("BudgetUsedPct = %v, want 0", report.BudgetUsedPct)
	}
	if report.BudgetStatus != BudgetDanger {
		t.Fatalf("BudgetStatus = %q, want %q (budget_left < 0)", report.BudgetStatus, BudgetDanger)
	}
}

func TestGenerateInsightsIdempotent(t *testing.T) {
	txs := []Transaction{
		expense("food", 1234.56),
		expense("transport", 78.9),
		deposit(5000),
		expense("", 10),
	}
	p := Params{MonthlyBudget: 2000, CurrentBalance: 10000, AvgDailyExpense: 45.67}

	first := GenerateInsights(txs, p)
	second := GenerateInsights(txs, p)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("engine is not deterministic:\n%+v\n%+v", first, second)
	}
}

// Every counted expense is attributed to exactly one category.
func TestGenerateInsightsConservation(t *testing.T) {
	txs := []Transaction{
		expense("a", 10.10),
		expense("b", 20.25),
		expense("", 5.55),
		{Withdraw: 3, Deposit: 10}, // net deposit, ignored
	}
	report := GenerateInsights(txs, Params{})

	var sum float64
	for _, v := range report.Categories {
		sum += v
	}
	if !almostEqual(report.MonthlyExpense, round2(sum)) {
		t.Fatalf("MonthlyExpense = %v, category sum = %v", report.MonthlyExpense, sum)
	}
	if report.MonthlyExpense < 0 || report.RecommendedCushion < 0 {
		t.Fatal("non-negativity violated")
	}
	for name, v := range report.Categories {
		if v < 0 {
			t.Fatalf("negative category total %s = %v", name, v)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.125, 0.13},
		{-0.125, -0.13},
		{1.004, 1.0},
		{333.333333, 333.33},
		{0, 0},
	}
	for _, tc := range cases {
		if got := round2(tc.in); !almostEqual(got, tc.want) {
			t.Fatalf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
