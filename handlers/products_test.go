package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quotedesk/testhelpers"
)

func TestHandleProductCreate_Valid(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{}
	form.Set("name", "24-Port Switch")
	form.Set("part_number", "SW-24")
	form.Set("manufacturer", "Cisco")
	form.Set("price", "1200")
	form.Set("normal_price", "1350")

	req := httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	if err := HandleProductCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	records, err := app.FindRecordsByFilter("products", "part_number = 'SW-24'", "", 1, 0, nil)
	if err != nil || len(records) == 0 {
		t.Fatal("expected product to be created")
	}
	if got := records[0].GetFloat("price"); got != 1200 {
		t.Errorf("price = %v, want 1200", got)
	}
}

func TestHandleProductCreate_BadPrice(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{}
	form.Set("name", "Switch")
	form.Set("price", "twelve")

	req := httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	if err := HandleProductCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleProductList_SearchByPartNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	sw := testhelpers.CreateTestProduct(t, app, "Managed Switch", 1200)
	sw.Set("part_number", "SW-24")
	if err := app.Save(sw); err != nil {
		t.Fatalf("failed to set part number: %v", err)
	}
	testhelpers.CreateTestProduct(t, app, "Router", 900)

	req := httptest.NewRequest(http.MethodGet, "/products?q=SW-24", nil)
	rec := httptest.NewRecorder()
	if err := HandleProductList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertJSONContains(t, body, "Managed Switch")
	if strings.Contains(body, "Router") {
		t.Error("search should exclude non-matching products")
	}
}

func TestHandleProductUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	product := testhelpers.CreateTestProduct(t, app, "Managed Switch", 1200)

	form := url.Values{}
	form.Set("price", "1100")

	req := httptest.NewRequest(http.MethodPost, "/products/"+product.Id,
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", product.Id)
	rec := httptest.NewRecorder()
	if err := HandleProductUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	updated, _ := app.FindRecordById("products", product.Id)
	if got := updated.GetFloat("price"); got != 1100 {
		t.Errorf("price = %v, want 1100", got)
	}
	if got := updated.GetString("name"); got != "Managed Switch" {
		t.Errorf("name = %q, want untouched", got)
	}
}

func TestHandleProductDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	product := testhelpers.CreateTestProduct(t, app, "Managed Switch", 1200)

	req := httptest.NewRequest(http.MethodDelete, "/products/"+product.Id, nil)
	req.SetPathValue("id", product.Id)
	rec := httptest.NewRecorder()
	if err := HandleProductDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, err := app.FindRecordById("products", product.Id); err == nil {
		t.Error("product should be deleted")
	}
}
