package core

// Budget status tiers, ordered from healthy to overspent.
const (
	BudgetOK      = "ok"
	BudgetWatch   = "watch"
	BudgetWarning = "warning"
	BudgetDanger  = "danger"
)

// Cushion status tiers.
const (
	CushionGood   = "good"
	CushionMedium = "medium"
	CushionLow    = "low"
)

type (
	// BudgetAssessment compares total spending against the monthly budget.
	BudgetAssessment struct {
		UsedAmount  float64
		BudgetLeft  float64
		UsedPercent float64
		Status      string
	}

	// CushionAssessment compares the current balance against the
	// recommended one-month cash reserve.
	CushionAssessment struct {
		RecommendedAmount float64
		CoveredPercent    float64
		Status            string
	}

	// TopCategory is one entry of the ranked top-spending list.
	TopCategory struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
		Share    float64 `json:"share"`
	}

	// Report is the full insight aggregate returned to the caller. It is a
	// pure function result: created fresh per invocation, never shared,
	// never persisted by the engine itself.
	Report struct {
		MonthlyExpense float64 `json:"monthly_expense"`
		MonthlyBudget  float64 `json:"monthly_budget"`
		BudgetLeft     float64 `json:"budget_left"`
		BudgetStatus   string  `json:"budget_status"`
		BudgetUsedPct  float64 `json:"budget_used_percent"`

		CurrentBalance     float64 `json:"current_balance"`
		AvgDailyExpense    float64 `json:"avg_daily_expense"`
		RecommendedCushion float64 `json:"recommended_cushion"`
		SafetyPillowPct    float64 `json:"safety_pillow_percent"`
		SafetyPillowStatus string  `json:"safety_pillow_status"`

		Categories      map[string]float64 `json:"categories"`
		TopCategories   []TopCategory      `json:"top_categories"`
		Recommendations []string           `json:"recommendations"`
	}
)
