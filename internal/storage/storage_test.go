package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pennywise/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustUser(t *testing.T, repo *Repository, name string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), core.User{
		Username: name, Email: name + "@example.com", PasswordHash: "x", Currency: "USD",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func date(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRebind(t *testing.T) {
	q := New(nil, Postgres)
	if got := q.rebind("SELECT ? , ? FROM x WHERE y = ?"); got != "SELECT $1 , $2 FROM x WHERE y = $3" {
		t.Fatalf("got %q", got)
	}
	if got := New(nil, SQLite).rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite must keep placeholders, got %q", got)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustUser(t, repo, "alice")

	_, err := repo.CreateUser(ctx, core.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	if !errors.Is(err, core.ErrDuplicateIdentity) {
		t.Fatalf("duplicate username: got %v", err)
	}
	_, err = repo.CreateUser(ctx, core.User{Username: "bob", Email: "alice@example.com", PasswordHash: "x"})
	if !errors.Is(err, core.ErrDuplicateIdentity) {
		t.Fatalf("duplicate email: got %v", err)
	}
	if _, err := repo.GetUserByUsername(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestGoalProgressIsAtomicAndClamped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")

	gid, err := repo.CreateGoal(ctx, core.SavingsGoal{UserID: uid, Name: "Bike", Target: core.Cents(10000)})
	if err != nil {
		t.Fatal(err)
	}
	p, err := repo.AddGoalProgress(ctx, uid, gid, core.Cents(2000))
	if err != nil {
		t.Fatal(err)
	}
	if p.Before.Cents != 0 || p.After.Cents != 2000 || p.Target.Cents != 10000 || p.Name != "Bike" {
		t.Fatalf("unexpected progress %+v", p)
	}

	other := mustUser(t, repo, "mallory")
	if _, err := repo.AddGoalProgress(ctx, other, gid, core.Cents(100)); !errors.Is(err, core.ErrInvalidReference) {
		t.Fatalf("foreign goal: got %v", err)
	}

	if err := repo.SubtractGoalProgress(ctx, uid, gid, core.Cents(5000)); err != nil {
		t.Fatal(err)
	}
	g, err := repo.GetGoal(ctx, uid, gid)
	if err != nil {
		t.Fatal(err)
	}
	if g.Current.Cents != 0 {
		t.Fatalf("current must clamp at zero, got %d", g.Current.Cents)
	}
}

func TestListBudgetsDerivesSpend(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")

	bid, err := repo.CreateBudget(ctx, core.Budget{UserID: uid, Category: "Food", Limit: core.Cents(10000), Period: core.Monthly})
	if err != nil {
		t.Fatal(err)
	}
	for _, cents := range []int64{-2500, -3500, 4000} {
		_, err := repo.InsertTransaction(ctx, core.Transaction{
			UserID: uid, Amount: core.Cents(cents), Description: "x", Date: date(t, "2024-03-05"),
			BudgetID: &bid, Category: core.CategoryFood,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	budgets, err := repo.ListBudgets(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 1 || budgets[0].Spent.Cents != 6000 {
		t.Fatalf("expected spent 6000, got %+v", budgets)
	}
	spent, err := repo.BudgetSpent(ctx, bid)
	if err != nil || spent.Cents != 6000 {
		t.Fatalf("BudgetSpent = %d, %v", spent.Cents, err)
	}
}

func TestListTransactionsOrderAndJoins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")
	gid, _ := repo.CreateGoal(ctx, core.SavingsGoal{UserID: uid, Name: "Trip", Target: core.Cents(1000)})

	insert := func(d string, goal *int64) int64 {
		id, err := repo.InsertTransaction(ctx, core.Transaction{
			UserID: uid, Amount: core.Cents(100), Description: d, Date: date(t, d), GoalID: goal, Category: "Other",
		})
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	insert("2024-01-01", nil)
	insert("2024-03-01", &gid)
	insert("2024-02-01", nil)

	txs, err := repo.ListTransactions(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if txs[0].Date.String() != "2024-03-01" || txs[2].Date.String() != "2024-01-01" {
		t.Fatalf("not newest first: %v %v %v", txs[0].Date, txs[1].Date, txs[2].Date)
	}
	if txs[0].GoalName != "Trip" || txs[0].GoalID == nil || *txs[0].GoalID != gid {
		t.Fatalf("goal join missing: %+v", txs[0])
	}

	if err := repo.DeleteTransaction(ctx, uid+1, txs[0].ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: got %v", err)
	}
	n, _ := repo.CountTransactions(ctx, uid)
	if n != 3 {
		t.Fatalf("count = %d", n)
	}
}

func TestAwardAchievementIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")

	first, err := repo.AwardAchievement(ctx, uid, core.FirstStep)
	if err != nil || !first {
		t.Fatalf("first award: %v %v", first, err)
	}
	again, err := repo.AwardAchievement(ctx, uid, core.FirstStep)
	if err != nil || again {
		t.Fatalf("second award must be a no-op: %v %v", again, err)
	}
	list, _ := repo.ListAchievements(ctx, uid)
	if len(list) != 1 || list[0].Name != core.FirstStep.Name {
		t.Fatalf("unexpected achievements %+v", list)
	}
}

func TestRecordLogin(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")

	steps := []struct {
		day  string
		want int
	}{
		{"2024-05-01", 1}, // first login
		{"2024-05-02", 2}, // next day
		{"2024-05-03", 3},
		{"2024-05-03", 1}, // same day
		{"2024-05-04", 2},
		{"2024-05-07", 1}, // gap
	}
	for _, s := range steps {
		got, err := repo.RecordLogin(ctx, uid, date(t, s.day))
		if err != nil {
			t.Fatal(err)
		}
		if got != s.want {
			t.Fatalf("login on %s: streak %d, want %d", s.day, got, s.want)
		}
	}
}

func TestRecordBudgetCheckOncePerMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")

	streak, updated, err := repo.RecordBudgetCheck(ctx, uid, date(t, "2024-01-15"), true)
	if err != nil || !updated || streak != 1 {
		t.Fatalf("first check: %d %v %v", streak, updated, err)
	}
	if _, updated, _ := repo.RecordBudgetCheck(ctx, uid, date(t, "2024-01-20"), true); updated {
		t.Fatal("second check in the same month must not update")
	}
	streak, _, _ = repo.RecordBudgetCheck(ctx, uid, date(t, "2024-02-01"), true)
	if streak != 2 {
		t.Fatalf("february streak %d, want 2", streak)
	}
	streak, _, _ = repo.RecordBudgetCheck(ctx, uid, date(t, "2024-03-01"), false)
	if streak != 0 {
		t.Fatalf("overspent month must reset, got %d", streak)
	}
	s, _ := repo.GetStreaks(ctx, uid)
	if s.Budget != 0 || s.Login != 0 {
		t.Fatalf("unexpected streaks %+v", s)
	}
}

func TestNotifications(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")

	n1, err := repo.InsertNotification(ctx, uid, core.NotifyBudget, "first")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.InsertNotification(ctx, uid, core.NotifySavings, "second"); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkNotificationRead(ctx, uid, n1.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkNotificationRead(ctx, uid, 999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown notification: %v", err)
	}

	list, err := repo.ListNotifications(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Message != "second" || list[0].IsRead || !list[1].IsRead {
		t.Fatalf("unexpected notifications %+v", list)
	}
}

func TestReportAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")
	gid, _ := repo.CreateGoal(ctx, core.SavingsGoal{UserID: uid, Name: "Trip", Target: core.Cents(50000)})
	bid, _ := repo.CreateBudget(ctx, core.Budget{UserID: uid, Category: "Food", Limit: core.Cents(20000), Period: core.Monthly})

	rows := []core.Transaction{
		{Amount: core.Cents(300000), Description: "salary", Date: date(t, "2024-04-01"), Category: core.CategoryIncome},
		{Amount: core.Cents(-4000), Description: "groceries", Date: date(t, "2024-04-03"), Category: core.CategoryFood, BudgetID: &bid},
		{Amount: core.Cents(-6000), Description: "dinner", Date: date(t, "2024-04-10"), Category: core.CategoryFood, BudgetID: &bid},
		{Amount: core.Cents(10000), Description: "save", Date: date(t, "2024-04-11"), Category: core.CategorySavings, GoalID: &gid},
		{Amount: core.Cents(-9999), Description: "old rent", Date: date(t, "2024-03-31"), Category: core.CategoryHousing},
	}
	for _, r := range rows {
		r.UserID = uid
		if _, err := repo.InsertTransaction(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	rng := core.ReportRange{Start: date(t, "2024-04-01"), End: date(t, "2024-04-30")}

	income, expenses, err := repo.Totals(ctx, uid, rng)
	if err != nil || income.Cents != 310000 || expenses.Cents != 10000 {
		t.Fatalf("totals: %d %d %v", income.Cents, expenses.Cents, err)
	}

	cats, err := repo.CategoryTotals(ctx, uid, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 3 || cats[0].Name != core.CategoryIncome || cats[0].Kind != core.KindIncome {
		t.Fatalf("unexpected categories %+v", cats)
	}

	goals, _ := repo.GoalContributions(ctx, uid, rng)
	if len(goals) != 1 || goals[0].Contributed.Cents != 10000 {
		t.Fatalf("unexpected goals %+v", goals)
	}

	usage, _ := repo.BudgetUsageBetween(ctx, uid, rng)
	if len(usage) != 1 || usage[0].Spent.Cents != 10000 || usage[0].Limit.Cents != 20000 {
		t.Fatalf("unexpected budgets %+v", usage)
	}
}

func TestBudgetUsageExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")
	for _, created := range []string{"2024-04-30", "2024-05-01"} {
		if _, err := repo.CreateBudget(ctx, core.Budget{
			UserID: uid, Category: "Food", Limit: core.Cents(1000), Period: core.Monthly,
			CreatedAt: date(t, created).Add(23 * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}
	april := core.ReportRange{Start: date(t, "2024-04-01"), End: date(t, "2024-04-30")}

	all, err := repo.BudgetUsageBetween(ctx, uid, april)
	if err != nil || len(all) != 2 {
		t.Fatalf("all budgets %+v %v", all, err)
	}
	existing, err := repo.BudgetUsageExisting(ctx, uid, april)
	if err != nil || len(existing) != 1 || existing[0].ID != all[0].ID {
		t.Fatalf("existing budgets %+v %v", existing, err)
	}
	march := core.ReportRange{Start: date(t, "2024-03-01"), End: date(t, "2024-03-31")}
	if none, _ := repo.BudgetUsageExisting(ctx, uid, march); len(none) != 0 {
		t.Fatalf("march budgets %+v", none)
	}
}

func TestInTxRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	uid := mustUser(t, repo, "alice")

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(q *Queries) error {
		if _, err := q.InsertNotification(ctx, uid, core.NotifyInsight, "lost"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	list, _ := repo.ListNotifications(ctx, uid)
	if len(list) != 0 {
		t.Fatalf("rollback left %d rows", len(list))
	}
}
