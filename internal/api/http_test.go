package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/fincoach/internal/advisor"
	"github.com/kalambet/fincoach/internal/composer"
	"github.com/kalambet/fincoach/internal/finance"
	"github.com/kalambet/fincoach/internal/intent"
	"github.com/kalambet/fincoach/internal/profile"
	"github.com/kalambet/fincoach/internal/storage"
)

const testToken = "test-token-12345"

func newTestAdvisor(t *testing.T) *advisor.Advisor {
	t.Helper()
	mgr, err := profile.NewManager(storage.NewMemoryStore(), 0)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(mgr.Close)
	return advisor.New(mgr, composer.New(3))
}

func setupAppHandler(t *testing.T) (http.Handler, *advisor.Advisor) {
	t.Helper()
	adv := newTestAdvisor(t)
	return NewAppHandler(AppDeps{Advisor: adv, Token: testToken}), adv
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorType(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rr.Body.String(), err)
	}
	return body.Error.Type
}

const professionalBody = `{"id":"p1","segment":"professional","age":30,"annual_income":75000,"monthly_expenses":{"rent":1500,"utilities":200,"groceries":400,"dining_out":300,"entertainment":200,"savings":500},"financial_goals":["Retirement planning"],"risk_tolerance":"high"}`

func TestHealth_NoAuth(t *testing.T) {
	h, _ := setupAppHandler(t)
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestAuth(t *testing.T) {
	h, _ := setupAppHandler(t)

	for _, token := range []string{"", "wrong"} {
		rr := serve(h, authReq(http.MethodGet, "/profiles/p1", "", token))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("token %q: status = %d, want 401", token, rr.Code)
		}
		if typ := errorType(t, rr); typ != "authentication_error" {
			t.Errorf("token %q: error type = %q", token, typ)
		}
	}
}

func TestAuth_EmptyServerTokenRejects(t *testing.T) {
	h := NewAppHandler(AppDeps{Advisor: newTestAdvisor(t), Token: ""})
	req := httptest.NewRequest(http.MethodGet, "/profiles/p1", nil)
	req.Header.Set("Authorization", "Bearer ")
	if rr := serve(h, req); rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestCreateProfile(t *testing.T) {
	h, adv := setupAppHandler(t)

	rr := serve(h, authReq(http.MethodPost, "/profiles", professionalBody, testToken))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", rr.Code, rr.Body.String())
	}

	var p profile.Profile
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if p.ID != "p1" || p.Segment != profile.SegmentProfessional || p.RiskTolerance != profile.RiskHigh {
		t.Errorf("profile = %+v", p)
	}

	stored, err := adv.Profile("p1")
	if err != nil {
		t.Fatalf("stored profile: %v", err)
	}
	if stored.MonthlyExpenses["rent"] != 1500 {
		t.Errorf("rent = %v, want 1500", stored.MonthlyExpenses["rent"])
	}
}

func TestListProfiles(t *testing.T) {
	h, adv := setupAppHandler(t)

	rr := serve(h, authReq(http.MethodGet, "/profiles", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"profiles":[]}` {
		t.Errorf("empty list body = %s", got)
	}

	for _, id := range []string{"s2", "p1"} {
		if _, err := adv.CreateProfile(profile.Profile{ID: id, Segment: profile.SegmentStudent}); err != nil {
			t.Fatalf("CreateProfile(%s): %v", id, err)
		}
	}

	rr = serve(h, authReq(http.MethodGet, "/profiles", "", testToken))
	var list ProfileListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(list.Profiles) != 2 || list.Profiles[0] != "p1" || list.Profiles[1] != "s2" {
		t.Errorf("profiles = %v, want [p1 s2]", list.Profiles)
	}

	if rr := serve(h, authReq(http.MethodGet, "/profiles", "", "")); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rr.Code)
	}
}

func TestCreateProfile_GeneratesID(t *testing.T) {
	h, _ := setupAppHandler(t)

	rr := serve(h, authReq(http.MethodPost, "/profiles", `{"segment":"student"}`, testToken))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	var p profile.Profile
	json.Unmarshal(rr.Body.Bytes(), &p)
	if len(p.ID) != 36 {
		t.Errorf("id = %q, want a UUID", p.ID)
	}
	if p.RiskTolerance != profile.RiskModerate {
		t.Errorf("risk tolerance = %q, want moderate default", p.RiskTolerance)
	}
}

func TestCreateProfile_BadRequests(t *testing.T) {
	h, _ := setupAppHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"segment":`},
		{"missing segment", `{"id":"x"}`},
		{"negative income", `{"id":"x","segment":"student","annual_income":-1}`},
		{"negative expense", `{"id":"x","segment":"student","monthly_expenses":{"rent":-5}}`},
		{"unit mismatch", `{"id":"x","segment":"student","annual_income":1000,"monthly_expenses":{"rent":1500}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h, authReq(http.MethodPost, "/profiles", tt.body, testToken))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", rr.Code, rr.Body.String())
			}
			if typ := errorType(t, rr); typ != "invalid_request_error" {
				t.Errorf("error type = %q", typ)
			}
		})
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	h, _ := setupAppHandler(t)
	for _, path := range []string{"/profiles/ghost", "/profiles/ghost/summary"} {
		rr := serve(h, authReq(http.MethodGet, path, "", testToken))
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rr.Code)
		}
	}
}

func TestProfileSummary(t *testing.T) {
	h, _ := setupAppHandler(t)
	serve(h, authReq(http.MethodPost, "/profiles", professionalBody, testToken))

	rr := serve(h, authReq(http.MethodGet, "/profiles/p1/summary", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp SummaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"$75,000.00/year", "Retirement planning"} {
		if !strings.Contains(resp.Summary, want) {
			t.Errorf("summary missing %q:\n%s", want, resp.Summary)
		}
	}
}

func TestUpdateExpenses(t *testing.T) {
	h, _ := setupAppHandler(t)
	serve(h, authReq(http.MethodPost, "/profiles", professionalBody, testToken))

	rr := serve(h, authReq(http.MethodPatch, "/profiles/p1/expenses", `{"expenses":{"rent":1600,"subscriptions":60}}`, testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	var p profile.Profile
	json.Unmarshal(rr.Body.Bytes(), &p)
	if p.MonthlyExpenses["rent"] != 1600 || p.MonthlyExpenses["subscriptions"] != 60 || p.MonthlyExpenses["groceries"] != 400 {
		t.Errorf("expenses not merged: %v", p.MonthlyExpenses)
	}
}

func TestUpdateExpenses_Errors(t *testing.T) {
	h, _ := setupAppHandler(t)
	serve(h, authReq(http.MethodPost, "/profiles", professionalBody, testToken))

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown profile", "/profiles/ghost/expenses", `{"expenses":{"rent":1}}`, http.StatusNotFound},
		{"empty", "/profiles/p1/expenses", `{"expenses":{}}`, http.StatusBadRequest},
		{"negative", "/profiles/p1/expenses", `{"expenses":{"rent":-1}}`, http.StatusBadRequest},
		{"unit mismatch", "/profiles/p1/expenses", `{"expenses":{"rent":90000}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(h, authReq(http.MethodPatch, tt.path, tt.body, testToken))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d; body = %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestQuery(t *testing.T) {
	h, _ := setupAppHandler(t)
	serve(h, authReq(http.MethodPost, "/profiles", professionalBody, testToken))

	tests := []struct {
		query      string
		wantIntent intent.Intent
		wantText   string
	}{
		{"How much tax do I owe?", intent.Tax, "$11,807.50"},
		{"Review my budget", intent.Budget, "Spending Insights"},
		{"Where should I invest?", intent.Investment, "Growth Stock Index"},
		{"How big should my emergency fund be?", intent.Savings, "Emergency Fund Goal"},
		{"hello", intent.General, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			body, _ := json.Marshal(QueryRequest{Query: tt.query})
			rr := serve(h, authReq(http.MethodPost, "/profiles/p1/query", string(body), testToken))
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
			}
			var resp QueryResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", resp.Intent, tt.wantIntent)
			}
			if resp.Response == "" || !strings.Contains(resp.Response, tt.wantText) {
				t.Errorf("response missing %q:\n%s", tt.wantText, resp.Response)
			}
		})
	}
}

func TestQuery_UnknownProfile(t *testing.T) {
	h, _ := setupAppHandler(t)

	rr := serve(h, authReq(http.MethodPost, "/profiles/ghost/query", `{"query":"tax"}`, testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp QueryResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Response != advisor.MsgCreateProfileFirst || resp.Intent != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestQuery_EmptyQuery(t *testing.T) {
	h, _ := setupAppHandler(t)
	rr := serve(h, authReq(http.MethodPost, "/profiles/p1/query", `{"query":""}`, testToken))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestTaxEstimate(t *testing.T) {
	h, _ := setupAppHandler(t)

	rr := serve(h, authReq(http.MethodPost, "/tax/estimate", `{"income":15000}`, testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	var est finance.TaxEstimate
	if err := json.Unmarshal(rr.Body.Bytes(), &est); err != nil {
		t.Fatal(err)
	}
	if est.TotalTax.String() != "1580" {
		t.Errorf("total tax = %s, want 1580", est.TotalTax)
	}
	if got := est.EffectiveRate.StringFixed(2); got != "10.53" {
		t.Errorf("effective rate = %s, want 10.53", got)
	}
	if len(est.Breakdown) != 2 {
		t.Errorf("breakdown has %d brackets, want 2", len(est.Breakdown))
	}
}

func TestTaxEstimate_Negative(t *testing.T) {
	h, _ := setupAppHandler(t)
	rr := serve(h, authReq(http.MethodPost, "/tax/estimate", `{"income":-5}`, testToken))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
