package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pennywise/internal/backend"
	"pennywise/internal/insight"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	app, err := backend.Build(context.Background(), backend.Config{
		Type:       backend.SQLiteBackend,
		DSN:        filepath.Join(t.TempDir(), "api.db"),
		BcryptCost: 4,
	})
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	srv := NewServer(":0", app, opts)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		app.Close()
	})
	return srv
}

func do(t *testing.T, srv *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(HeaderUsername, user)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func register(t *testing.T, srv *Server, username string) {
	t.Helper()
	body := `{"username":"` + username + `","email":"` + username + `@example.com","password":"secret"}`
	if rr := do(t, srv, http.MethodPost, "/register", "", body); rr.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rr.Code, rr.Body)
	}
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing request id", path)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("%s missing security headers", path)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t, Options{})
	register(t, srv, "alice")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"duplicate username", "/register", `{"username":"alice","email":"other@example.com","password":"x"}`, http.StatusBadRequest},
		{"missing password", "/register", `{"username":"bob","email":"bob@example.com"}`, http.StatusBadRequest},
		{"malformed body", "/register", `{"username":`, http.StatusBadRequest},
		{"password too long", "/register", `{"username":"dave","email":"dave@example.com","password":"` + strings.Repeat("p", 73) + `"}`, http.StatusBadRequest},
		{"login ok", "/login", `{"username":"alice","password":"secret"}`, http.StatusOK},
		{"wrong password", "/login", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", "/login", `{"username":"carol","password":"secret"}`, http.StatusUnauthorized},
		{"login missing fields", "/login", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, tt.path, "", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body)
			}
			var resp map[string]any
			decode(t, rr, &resp)
			if tt.status >= 400 && resp["error"] == "" {
				t.Fatalf("error body missing: %v", resp)
			}
		})
	}

	rr := do(t, srv, http.MethodPost, "/login", "", `{"username":"alice","password":"secret"}`)
	var login loginResponse
	decode(t, rr, &login)
	if login.Username != "alice" || login.UserID == 0 {
		t.Fatalf("unexpected login response %+v", login)
	}
}

func TestUserResolution(t *testing.T) {
	srv := newTestServer(t, Options{})
	if rr := do(t, srv, http.MethodGet, "/transactions", "", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing header status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/budgets", "ghost", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown user status=%d", rr.Code)
	}
}

func TestBudgetTransactionFlow(t *testing.T) {
	srv := newTestServer(t, Options{})
	register(t, srv, "alice")

	rr := do(t, srv, http.MethodPost, "/budgets", "alice", `{"category":"Food","amount":"100","period":"monthly"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status=%d body=%s", rr.Code, rr.Body)
	}
	var budget createdResponse
	decode(t, rr, &budget)

	if rr := do(t, srv, http.MethodPost, "/budgets", "alice", `{"category":"Food","amount":100,"period":"yearly"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad period status=%d", rr.Code)
	}

	body := `{"amount":"-110.00","description":"grocery run","transaction_date":"` + today() +
		`","budget_id":"` + jsonInt(budget.ID) + `","goal_id":""}`
	rr = do(t, srv, http.MethodPost, "/transactions", "alice", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create transaction status=%d body=%s", rr.Code, rr.Body)
	}
	var created transactionCreatedResponse
	decode(t, rr, &created)
	if created.AICategory != "Food" || created.ID == 0 {
		t.Fatalf("unexpected create response %+v", created)
	}

	rr = do(t, srv, http.MethodGet, "/budgets", "alice", "")
	var budgets struct {
		Budgets []struct {
			ID          int64   `json:"id"`
			Amount      float64 `json:"amount"`
			SpentAmount float64 `json:"spent_amount"`
		} `json:"budgets"`
	}
	decode(t, rr, &budgets)
	if len(budgets.Budgets) != 1 || budgets.Budgets[0].SpentAmount != 110 || budgets.Budgets[0].Amount != 100 {
		t.Fatalf("unexpected budgets %+v", budgets)
	}

	rr = do(t, srv, http.MethodGet, "/notifications", "alice", "")
	var feed struct {
		Notifications []notificationJSON `json:"notifications"`
	}
	decode(t, rr, &feed)
	var exceeded bool
	for _, n := range feed.Notifications {
		if strings.HasPrefix(n.Message, "Budget exceeded") {
			exceeded = true
		}
	}
	if !exceeded {
		t.Fatalf("expected a budget exceeded notification, got %+v", feed.Notifications)
	}

	rr = do(t, srv, http.MethodGet, "/achievements", "alice", "")
	var achievements struct {
		Achievements []achievementJSON `json:"achievements"`
	}
	decode(t, rr, &achievements)
	if len(achievements.Achievements) != 1 || achievements.Achievements[0].Name != "First Step" {
		t.Fatalf("unexpected achievements %+v", achievements)
	}

	id := feed.Notifications[0].ID
	if rr := do(t, srv, http.MethodPost, "/notifications/"+jsonInt(id)+"/read", "alice", ""); rr.Code != http.StatusOK {
		t.Fatalf("mark read status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/notifications/99999/read", "alice", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("mark unknown status=%d", rr.Code)
	}
}

func TestTransactionValidation(t *testing.T) {
	srv := newTestServer(t, Options{})
	register(t, srv, "alice")
	register(t, srv, "bob")

	rr := do(t, srv, http.MethodPost, "/savings-goals", "bob", `{"name":"Bike","target_amount":500}`)
	var bobGoal createdResponse
	decode(t, rr, &bobGoal)

	tests := []struct {
		name string
		body string
	}{
		{"missing amount", `{"description":"x","transaction_date":"2024-01-01"}`},
		{"amount not a number", `{"amount":"abc","description":"x","transaction_date":"2024-01-01"}`},
		{"missing description", `{"amount":5,"transaction_date":"2024-01-01"}`},
		{"bad date", `{"amount":5,"description":"x","transaction_date":"01/02/2024"}`},
		{"foreign goal", `{"amount":5,"description":"x","transaction_date":"2024-01-01","goal_id":` + jsonInt(bobGoal.ID) + `}`},
		{"unknown budget", `{"amount":-5,"description":"x","transaction_date":"2024-01-01","budget_id":424242}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, srv, http.MethodPost, "/transactions", "alice", tt.body); rr.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
			}
		})
	}
}

func TestGoalProgressAndDelete(t *testing.T) {
	srv := newTestServer(t, Options{})
	register(t, srv, "alice")

	rr := do(t, srv, http.MethodPost, "/savings-goals", "alice", `{"name":"Trip","target_amount":"100","deadline":"2030-01-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal status=%d body=%s", rr.Code, rr.Body)
	}
	var goal createdResponse
	decode(t, rr, &goal)

	var ids []int64
	for i := 0; i < 3; i++ {
		body := `{"amount":40,"description":"saving","transaction_date":"` + today() + `","goal_id":` + jsonInt(goal.ID) + `}`
		rr := do(t, srv, http.MethodPost, "/transactions", "alice", body)
		if rr.Code != http.StatusCreated {
			t.Fatalf("create status=%d body=%s", rr.Code, rr.Body)
		}
		var created transactionCreatedResponse
		decode(t, rr, &created)
		ids = append(ids, created.ID)
	}

	current := func() float64 {
		rr := do(t, srv, http.MethodGet, "/savings-goals", "alice", "")
		var goals struct {
			Goals []struct {
				CurrentAmount float64 `json:"current_amount"`
				Deadline      string  `json:"deadline"`
			} `json:"goals"`
		}
		decode(t, rr, &goals)
		if len(goals.Goals) != 1 || goals.Goals[0].Deadline != "2030-01-01" {
			t.Fatalf("unexpected goals %+v", goals)
		}
		return goals.Goals[0].CurrentAmount
	}
	if got := current(); got != 120 {
		t.Fatalf("current=%v want 120", got)
	}

	if rr := do(t, srv, http.MethodDelete, "/transactions/"+jsonInt(ids[0]), "alice", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete by path status=%d body=%s", rr.Code, rr.Body)
	}
	if rr := do(t, srv, http.MethodDelete, "/transactions?id="+jsonInt(ids[1]), "alice", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete by query status=%d body=%s", rr.Code, rr.Body)
	}
	if rr := do(t, srv, http.MethodDelete, "/transactions", "alice", `{"id":"`+jsonInt(ids[2])+`"}`); rr.Code != http.StatusOK {
		t.Fatalf("delete by body status=%d body=%s", rr.Code, rr.Body)
	}
	if got := current(); got != 0 {
		t.Fatalf("current=%v want 0", got)
	}

	if rr := do(t, srv, http.MethodDelete, "/transactions/"+jsonInt(ids[0]), "alice", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/transactions", "alice", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("delete without id status=%d", rr.Code)
	}
}

func TestReportChartAndChat(t *testing.T) {
	srv := newTestServer(t, Options{})
	register(t, srv, "alice")

	for _, body := range []string{
		`{"amount":1000,"description":"salary","transaction_date":"` + today() + `"}`,
		`{"amount":-80,"description":"grocery run","transaction_date":"` + today() + `"}`,
		`{"amount":-20,"description":"bus ticket","transaction_date":"` + today() + `"}`,
	} {
		if rr := do(t, srv, http.MethodPost, "/transactions", "alice", body); rr.Code != http.StatusCreated {
			t.Fatalf("create status=%d body=%s", rr.Code, rr.Body)
		}
	}

	rr := do(t, srv, http.MethodGet, "/transaction-report", "alice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d body=%s", rr.Code, rr.Body)
	}
	var report struct {
		Summary struct {
			TotalIncome   float64 `json:"total_income"`
			TotalExpenses float64 `json:"total_expenses"`
			NetBalance    float64 `json:"net_balance"`
		} `json:"summary"`
		Categories []categoryJSON `json:"categories"`
		Insights   string         `json:"insights"`
		Streaks    streaksJSON    `json:"streaks"`
	}
	decode(t, rr, &report)
	if report.Summary.TotalIncome != 1000 || report.Summary.TotalExpenses != 100 || report.Summary.NetBalance != 900 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if report.Insights != insight.ReportPlaceholder {
		t.Fatalf("insights=%q", report.Insights)
	}
	if len(report.Categories) != 3 {
		t.Fatalf("categories=%+v", report.Categories)
	}

	for _, query := range []string{"?start_date=2024-13-01", "?start_date=2024-05-10&end_date=2024-05-01"} {
		if rr := do(t, srv, http.MethodGet, "/transaction-report"+query, "alice", ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s status=%d", query, rr.Code)
		}
	}

	rr = do(t, srv, http.MethodGet, "/transaction-report/chart", "alice", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("chart status=%d type=%s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rr.Body.String(), "\x89PNG") {
		t.Fatal("chart body is not a PNG")
	}
	if rr := do(t, srv, http.MethodGet, "/transaction-report/chart?start_date=2000-01-01&end_date=2000-01-31", "alice", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("empty chart status=%d", rr.Code)
	}

	if rr := do(t, srv, http.MethodPost, "/chat", "alice", `{"query":"","financialData":{}}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty query status=%d", rr.Code)
	}
	chat := `{"query":"How am I doing?","financialData":{"summary":{"total_income":1000,"total_expenses":"100","net_balance":900},` +
		`"categories":[{"name":"Food","amount":80,"type":"Expense"}],"budgets":[],"goals":[]}}`
	rr = do(t, srv, http.MethodPost, "/chat", "alice", chat)
	if rr.Code != http.StatusOK {
		t.Fatalf("chat status=%d body=%s", rr.Code, rr.Body)
	}
	var answer map[string]string
	decode(t, rr, &answer)
	if answer["response"] != insight.ChatFallback {
		t.Fatalf("chat response=%q", answer["response"])
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 2})
	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodGet, "/healthz", "", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodGet, "/healthz", "", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, Options{})
	rr := do(t, srv, http.MethodGet, "/nope", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
	var resp errorResponse
	decode(t, rr, &resp)
	if resp.Error == "" {
		t.Fatal("expected JSON error body")
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
