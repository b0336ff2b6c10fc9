// Package core implements the insight generation engine: a pure,
// deterministic pipeline that turns a list of bank-statement transactions
// plus three scalar parameters into a structured financial-health report.
//
// The pipeline runs four stages in sequence: expense extraction, budget
// evaluation, cushion evaluation, and recommendation synthesis. It performs
// no I/O, holds no state, and never mutates its inputs, so concurrent
// invocations need no coordination.
package core

import (
	"fmt"
	"math"
	"sort"
)

// cushionDays is the fixed reserve policy: one month of average daily spend.
const cushionDays = 30

// maxTopCategories caps the ranked top-spending list.
const maxTopCategories = 5

// Advisory strings emitted by the recommendation synthesizer.
const (
	msgBudgetOverspent   = "Spending has exceeded the monthly budget; cut back on non-essential expenses."
	msgBudgetApproaching = "Spending is approaching the monthly budget limit. Keep an eye on expenses."
	msgCushionLow        = "The cash cushion is too small; aim to set aside 10-15% of income."
	msgCushionMedium     = "The cash cushion is at a moderate level. Keep saving."
	msgCushionGood       = "The cash cushion covers a full month of spending. Keep up the current savings pace."
)

// GenerateInsights runs the full pipeline. Params are assumed validated
// (see Params.Validate); degenerate values such as a zero budget or an
// empty transaction list are handled by defined fallbacks, not errors.
func GenerateInsights(txs []Transaction, p Params) Report {
	txs = Normalize(txs)

	totalExpense, byCategory := extractExpenses(txs)
	budget := assessBudget(totalExpense, p.MonthlyBudget)
	cushion := assessCushion(p.CurrentBalance, p.AvgDailyExpense)
	top, recommendations := synthesize(budget.Status, cushion.Status, totalExpense, byCategory)

	categories := make(map[string]float64, len(byCategory))
	for name, amount := range byCategory {
		categories[name] = round2(amount)
	}

	return Report{
		MonthlyExpense: round2(totalExpense),
		MonthlyBudget:  round2(p.MonthlyBudget),
		BudgetLeft:     round2(budget.BudgetLeft),
		BudgetStatus:   budget.Status,
		BudgetUsedPct:  budget.UsedPercent,

		CurrentBalance:     round2(p.CurrentBalance),
		AvgDailyExpense:    round2(p.AvgDailyExpense),
		RecommendedCushion: round2(cushion.RecommendedAmount),
		SafetyPillowPct:    cushion.CoveredPercent,
		SafetyPillowStatus: cushion.Status,

		Categories:      categories,
		TopCategories:   top,
		Recommendations: recommendations,
	}
}

// extractExpenses accumulates the total expense and the per-category expense
// totals. Only transactions with a negative net amount (deposit - withdraw)
// count; deposits are ignored entirely.
func extractExpenses(txs []Transaction) (float64, map[string]float64) {
	total := 0.0
	byCategory := make(map[string]float64)

	for _, tx := range txs {
		amount := tx.Deposit - tx.Withdraw
		if amount >= 0 {
			continue
		}
		expense := -amount
		total += expense
		byCategory[tx.Category] += expense
	}

	return total, byCategory
}

// assessBudget derives the percentage-used figure and the status tier.
// Overspend (budget_left < 0) is a harder fact than the rounded percentage
// and dominates the threshold checks.
func assessBudget(totalExpense, monthlyBudget float64) BudgetAssessment {
	left := monthlyBudget - totalExpense

	usedPercent := 0.0
	if monthlyBudget > 0 {
		usedPercent = round2(totalExpense / monthlyBudget * 100)
	}

	status := BudgetOK
	switch {
	case left < 0:
		status = BudgetDanger
	case usedPercent >= 90:
		status = BudgetWarning
	case usedPercent >= 70:
		status = BudgetWatch
	}

	return BudgetAssessment{
		UsedAmount:  totalExpense,
		BudgetLeft:  left,
		UsedPercent: usedPercent,
		Status:      status,
	}
}

// assessCushion compares the current balance against the recommended
// one-month reserve. Zero average spend means the cushion is trivially
// satisfied.
func assessCushion(currentBalance, avgDailyExpense float64) CushionAssessment {
	recommended := avgDailyExpense * cushionDays

	covered := 100.0
	if recommended > 0 {
		covered = round2(currentBalance / recommended * 100)
	}

	status := CushionLow
	switch {
	case covered >= 100:
		status = CushionGood
	case covered >= 60:
		status = CushionMedium
	}

	return CushionAssessment{
		RecommendedAmount: recommended,
		CoveredPercent:    covered,
		Status:            status,
	}
}

// synthesize produces the ranked top-categories list and the ordered advisory
// strings. Message order is fixed: budget (skipped when ok), cushion (always
// one of three), top category (only when there are counted expenses).
func synthesize(budgetStatus, cushionStatus string, totalExpense float64, byCategory map[string]float64) ([]TopCategory, []string) {
	recommendations := make([]string, 0, 3)

	switch budgetStatus {
	case BudgetDanger:
		recommendations = append(recommendations, msgBudgetOverspent)
	case BudgetWarning, BudgetWatch:
		recommendations = append(recommendations, msgBudgetApproaching)
	}

	switch cushionStatus {
	case CushionLow:
		recommendations = append(recommendations, msgCushionLow)
	case CushionMedium:
		recommendations = append(recommendations, msgCushionMedium)
	default:
		recommendations = append(recommendations, msgCushionGood)
	}

	top := rankCategories(byCategory, totalExpense)
	if len(top) > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("The highest spending this month is in the %q category.", top[0].Category))
	}

	return top, recommendations
}

// rankCategories sorts category totals by amount descending with category
// name ascending as the explicit tie-break, and keeps at most five entries.
// Shares use the unrounded total as denominator to avoid compounding
// rounding error.
func rankCategories(byCategory map[string]float64, totalExpense float64) []TopCategory {
	top := make([]TopCategory, 0, maxTopCategories)
	if len(byCategory) == 0 || totalExpense <= 0 {
		return top
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := byCategory[names[i]], byCategory[names[j]]
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})

	if len(names) > maxTopCategories {
		names = names[:maxTopCategories]
	}
	for _, name := range names {
		amount := byCategory[name]
		top = append(top, TopCategory{
			Category: name,
			Amount:   round2(amount),
			Share:    round2(amount / totalExpense * 100),
		})
	}
	return top
}

// round2 rounds to two decimal places, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
