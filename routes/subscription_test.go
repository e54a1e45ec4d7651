package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kataras/iris/v12"
)

// The catalog response must come back in the same order every time, not in
// map iteration order.
func TestListPlansStableOrder(t *testing.T) {
	app := iris.New()
	app.Get("/plans", ListPlans)
	if err := app.Build(); err != nil {
		t.Fatal(err)
	}

	var first []string
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/plans", nil)
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}

		var body struct {
			Plans []struct {
				Name string `json:"name"`
			} `json:"plans"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode plans: %v", err)
		}

		names := make([]string, 0, len(body.Plans))
		for _, p := range body.Plans {
			names = append(names, p.Name)
		}
		for j := 1; j < len(names); j++ {
			if names[j-1] >= names[j] {
				t.Fatalf("plans not sorted by name: %v", names)
			}
		}
		if first == nil {
			first = names
			continue
		}
		for j := range names {
			if names[j] != first[j] {
				t.Fatalf("plan order changed between requests: %v vs %v", first, names)
			}
		}
	}
}
