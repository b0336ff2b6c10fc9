package classify

// rule maps reference keywords to a category. Keywords are matched as
// lowercase substrings of the normalized reference.
type rule struct {
	keywords   []string
	internal   string
	human      string
	confidence float64
}

var defaultRules = []rule{
	{
		keywords:   []string{"salary", "payroll", "wage"},
		internal:   "income",
		human:      "Income",
		confidence: 0.95,
	},
	{
		keywords:   []string{"grocery", "groceries", "supermarket", "market", "food"},
		internal:   "food",
		human:      "Groceries",
		confidence: 0.9,
	},
	{
		keywords:   []string{"restaurant", "cafe", "coffee", "pizza", "burger", "bar "},
		internal:   "dining",
		human:      "Dining Out",
		confidence: 0.85,
	},
	{
		keywords:   []string{"uber", "taxi", "metro", "bus", "train", "fuel", "gas station", "parking"},
		internal:   "transport",
		human:      "Transport",
		confidence: 0.85,
	},
	{
		keywords:   []string{"pharmacy", "clinic", "hospital", "doctor", "dental"},
		internal:   "health",
		human:      "Health",
		confidence: 0.85,
	},
	{
		keywords:   []string{"rent", "mortgage", "landlord"},
		internal:   "housing",
		human:      "Housing",
		confidence: 0.9,
	},
	{
		keywords:   []string{"electric", "water bill", "utility", "internet", "mobile plan"},
		internal:   "utilities",
		human:      "Utilities",
		confidence: 0.8,
	},
	{
		keywords:   []string{"netflix", "spotify", "subscription", "prime"},
		internal:   "subscriptions",
		human:      "Subscriptions",
		confidence: 0.8,
	},
	{
		keywords:   []string{"cinema", "theatre", "concert", "game"},
		internal:   "entertainment",
		human:      "Entertainment",
		confidence: 0.7,
	},
	{
		keywords:   []string{"clothes", "clothing", "shoes", "apparel"},
		internal:   "clothing",
		human:      "Clothing",
		confidence: 0.7,
	},
	{
		keywords:   []string{"transfer", "withdrawal", "atm"},
		internal:   "cash",
		human:      "Cash & Transfers",
		confidence: 0.6,
	},
}
