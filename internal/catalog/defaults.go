package catalog

import "github.com/pocketledger/pocketledger/internal/model"

// FallbackMarker is the name fragment that identifies a kind's catch-all category.
const FallbackMarker = "Other"

// DefaultCategories returns the categories seeded into an empty catalog.
func DefaultCategories() []model.Category {
	return []model.Category{
		{Name: "Food", Icon: "🍔", Color: "#FF7043", Kind: model.KindExpense, IsDefault: true},
		{Name: "Transport", Icon: "🚌", Color: "#42A5F5", Kind: model.KindExpense, IsDefault: true},
		{Name: "Housing", Icon: "🏠", Color: "#8D6E63", Kind: model.KindExpense, IsDefault: true},
		{Name: "Entertainment", Icon: "🎬", Color: "#AB47BC", Kind: model.KindExpense, IsDefault: true},
		{Name: "Shopping", Icon: "🛍", Color: "#EC407A", Kind: model.KindExpense, IsDefault: true},
		{Name: "Health", Icon: "💊", Color: "#26A69A", Kind: model.KindExpense, IsDefault: true},
		{Name: "Education", Icon: "📚", Color: "#5C6BC0", Kind: model.KindExpense, IsDefault: true},
		{Name: "Other Expenses", Icon: "📦", Color: model.DefaultColor, Kind: model.KindExpense, IsDefault: true},
		{Name: "Salary", Icon: "💼", Color: "#66BB6A", Kind: model.KindIncome, IsDefault: true},
		{Name: "Freelance", Icon: "💻", Color: "#29B6F6", Kind: model.KindIncome, IsDefault: true},
		{Name: "Investments", Icon: "📈", Color: "#FFCA28", Kind: model.KindIncome, IsDefault: true},
		{Name: "Gifts", Icon: "🎁", Color: "#EF5350", Kind: model.KindIncome, IsDefault: true},
		{Name: "Other Income", Icon: "💰", Color: model.DefaultColor, Kind: model.KindIncome, IsDefault: true},
	}
}
