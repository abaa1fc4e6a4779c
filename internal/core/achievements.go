package core

// Streak thresholds for the streak achievements.
const (
	ConsistentPlannerDays = 7
	BudgetMasterMonths    = 3
)

// Badge is an entry of the fixed achievement catalog.
type Badge struct {
	Name        string
	Description string
	Icon        string
}

var (
	FirstStep = Badge{
		Name:        "First Step",
		Description: "Logged your first transaction",
		Icon:        "footprints",
	}
	SavingsStar = Badge{
		Name:        "Savings Star",
		Description: "Reached a savings goal",
		Icon:        "star",
	}
	ConsistentPlanner = Badge{
		Name:        "Consistent Planner",
		Description: "Logged in 7 days in a row",
		Icon:        "calendar-check",
	}
	BudgetMaster = Badge{
		Name:        "Budget Master",
		Description: "Stayed within every budget for 3 months in a row",
		Icon:        "trophy",
	}
)
