package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestHandleCurrencyRates_Default(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/currency", nil)
	rec := httptest.NewRecorder()
	if err := HandleCurrencyRates(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	testhelpers.AssertJSONContains(t, rec.Body.String(), "\"base\":\"USD\"")
}

func TestHandleCurrencyRateUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSettings(t, app)

	form := url.Values{}
	form.Set("code", "cdf")
	form.Set("rate", "2800")

	req := httptest.NewRequest(http.MethodPost, "/currency/rates",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	if err := HandleCurrencyRateUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rt := services.LoadRateTable(app)
	if got := rt.Rates["CDF"]; got != 2800 {
		t.Errorf("CDF rate = %v, want 2800 (code should be uppercased)", got)
	}
}

func TestHandleCurrencyRateUpdate_RejectsBadRate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSettings(t, app)

	for _, rate := range []string{"0", "-5", "abc", ""} {
		form := url.Values{}
		form.Set("code", "CDF")
		form.Set("rate", rate)

		req := httptest.NewRequest(http.MethodPost, "/currency/rates",
			strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		if err := HandleCurrencyRateUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("rate %q: expected status 400, got %d", rate, rec.Code)
		}
	}
}

func TestHandleCurrencyRebase(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSettings(t, app)

	rt := services.DefaultRateTable()
	if err := rt.SetRate("CDF", 2800); err != nil {
		t.Fatalf("failed to seed rate: %v", err)
	}
	if err := services.SaveRateTable(app, rt); err != nil {
		t.Fatalf("failed to save rates: %v", err)
	}

	form := url.Values{}
	form.Set("base", "CDF")

	req := httptest.NewRequest(http.MethodPost, "/currency/rebase",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	if err := HandleCurrencyRebase(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	saved := services.LoadRateTable(app)
	if saved.Base != "CDF" {
		t.Errorf("base = %q, want CDF", saved.Base)
	}
	if got := saved.Rates["CDF"]; got != 1 {
		t.Errorf("new base rate = %v, want exactly 1", got)
	}
}

func TestHandleCurrencyRebase_UnknownBase(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestSettings(t, app)

	form := url.Values{}
	form.Set("base", "XXX")

	req := httptest.NewRequest(http.MethodPost, "/currency/rebase",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	if err := HandleCurrencyRebase(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}
