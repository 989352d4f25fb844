package achievements

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// Achievement types.
const (
	FirstAIMessage = "first_ai_message"
	FirstExpense   = "first_expense"
	FirstIncome    = "first_income"
	First100K      = "first_100k"
	BigSpender     = "big_spender"
)

var (
	balanceMilestone = decimal.NewFromInt(100_000)
	bigExpense       = decimal.NewFromInt(50_000)
)

// ruleFunc reports whether a transaction unlocks an achievement. It runs after
// the transaction has been persisted.
type ruleFunc func(ctx context.Context, e *Engine, t model.Transaction) (bool, error)

// Definition is a compiled-in achievement.
type Definition struct {
	Type        string
	Name        string
	Description string
	Emoji       string

	// kind is the transaction kind the rule reacts to; empty means every
	// kind. Definitions without a rule are not driven by transactions.
	kind model.Kind
	rule ruleFunc
}

func (d Definition) record() model.Achievement {
	return model.Achievement{Type: d.Type, Name: d.Name, Description: d.Description, Emoji: d.Emoji}
}

var definitions = []Definition{
	{
		Type:        FirstAIMessage,
		Name:        "Hello, assistant",
		Description: "Send your first message to the assistant",
		Emoji:       "💬",
	},
	{
		Type:        FirstExpense,
		Name:        "First expense",
		Description: "Record your first expense",
		Emoji:       "🧾",
		kind:        model.KindExpense,
		rule:        func(context.Context, *Engine, model.Transaction) (bool, error) { return true, nil },
	},
	{
		Type:        FirstIncome,
		Name:        "First income",
		Description: "Record your first income",
		Emoji:       "💰",
		kind:        model.KindIncome,
		rule:        func(context.Context, *Engine, model.Transaction) (bool, error) { return true, nil },
	},
	{
		Type:        First100K,
		Name:        "Six figures",
		Description: "Reach a balance of 100 000",
		Emoji:       "🏆",
		rule: func(ctx context.Context, e *Engine, _ model.Transaction) (bool, error) {
			bal, err := e.balance.TotalBalance(ctx)
			if err != nil {
				return false, err
			}
			return bal.GreaterThanOrEqual(balanceMilestone), nil
		},
	},
	{
		Type:        BigSpender,
		Name:        "Big spender",
		Description: "Record a single expense of 50 000 or more",
		Emoji:       "💸",
		kind:        model.KindExpense,
		rule: func(_ context.Context, _ *Engine, t model.Transaction) (bool, error) {
			return t.Amount.GreaterThanOrEqual(bigExpense), nil
		},
	},
}

// Definitions returns the compiled-in achievements in display order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}
