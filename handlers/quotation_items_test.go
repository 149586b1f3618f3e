package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quotedesk/testhelpers"
)

func TestHandleQuotationItemCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuotation(t, app, "", "ALM-Q9-020-2026")

	form := url.Values{}
	form.Set("name", "Fiber Patch Cable")
	form.Set("qty", "3")
	form.Set("price", "8.50")

	req := httptest.NewRequest(http.MethodPost, "/quotations/"+q.Id+"/items",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", q.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuotationItemCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	items, err := app.FindAllRecords("quotation_items")
	if err != nil || len(items) != 1 {
		t.Fatalf("expected 1 item, got %d (err %v)", len(items), err)
	}
	it := items[0]
	if got := it.GetFloat("total"); got != 25.5 {
		t.Errorf("item total = %v, want 25.5", got)
	}
	if got := it.GetInt("sort_order"); got != 1 {
		t.Errorf("sort_order = %d, want 1", got)
	}

	updated, _ := app.FindRecordById("quotations", q.Id)
	if got := updated.GetFloat("subtotal"); got != 25.5 {
		t.Errorf("quotation subtotal = %v, want 25.5", got)
	}
}

func TestHandleQuotationItemCreate_SortOrderAppends(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuotation(t, app, "", "ALM-Q9-021-2026")
	testhelpers.CreateTestQuotationItem(t, app, q.Id, 1, "First", "1", "10")
	testhelpers.CreateTestQuotationItem(t, app, q.Id, 2, "Second", "1", "10")

	form := url.Values{}
	form.Set("name", "Third")
	form.Set("qty", "1")
	form.Set("price", "10")

	req := httptest.NewRequest(http.MethodPost, "/quotations/"+q.Id+"/items",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", q.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuotationItemCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	items, _ := app.FindRecordsByFilter("quotation_items",
		"name = {:name}", "", 1, 0, map[string]any{"name": "Third"})
	if len(items) != 1 {
		t.Fatal("expected the new item to be saved")
	}
	if got := items[0].GetInt("sort_order"); got != 3 {
		t.Errorf("sort_order = %d, want 3", got)
	}
}

func TestHandleQuotationItemUpdate_RawQtyPreserved(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuotation(t, app, "", "ALM-Q9-022-2026")
	item := testhelpers.CreateTestQuotationItem(t, app, q.Id, 1, "Switch", "2", "100")

	form := url.Values{}
	form.Set("qty", "3.")

	req := httptest.NewRequest(http.MethodPost, "/quotations/"+q.Id+"/items/"+item.Id,
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("itemId", item.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuotationItemUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	updated, _ := app.FindRecordById("quotation_items", item.Id)
	if got := updated.GetString("qty"); got != "3." {
		t.Errorf("qty = %q, want the raw typed string preserved", got)
	}
	if got := updated.GetFloat("total"); got != 300 {
		t.Errorf("total = %v, want 300", got)
	}
}

func TestHandleQuotationItemDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuotation(t, app, "", "ALM-Q9-023-2026")
	item := testhelpers.CreateTestQuotationItem(t, app, q.Id, 1, "Switch", "2", "100")
	testhelpers.CreateTestQuotationItem(t, app, q.Id, 2, "Router", "1", "50")

	req := httptest.NewRequest(http.MethodDelete, "/quotations/"+q.Id+"/items/"+item.Id, nil)
	req.SetPathValue("itemId", item.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuotationItemDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := app.FindRecordById("quotation_items", item.Id); err == nil {
		t.Error("item should be deleted")
	}
	updated, _ := app.FindRecordById("quotations", q.Id)
	if got := updated.GetFloat("subtotal"); got != 50 {
		t.Errorf("quotation subtotal = %v, want 50 after delete", got)
	}
}

func TestHandleQuotationItemResolve(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuotation(t, app, "", "ALM-Q9-024-2026")
	item := testhelpers.CreateTestQuotationItem(t, app, q.Id, 1, "", "4", "0")
	product := testhelpers.CreateTestProduct(t, app, "Managed Switch", 1200)

	form := url.Values{}
	form.Set("product_id", product.Id)

	req := httptest.NewRequest(http.MethodPost, "/quotations/"+q.Id+"/items/"+item.Id+"/resolve",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("itemId", item.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuotationItemResolve(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, _ := app.FindRecordById("quotation_items", item.Id)
	if got := updated.GetString("name"); got != "Managed Switch" {
		t.Errorf("name = %q, want product name", got)
	}
	if got := updated.GetString("qty"); got != "4" {
		t.Errorf("qty = %q, want typed quantity preserved", got)
	}
	if got := updated.GetFloat("total"); got != 4800 {
		t.Errorf("total = %v, want 4800", got)
	}
}

func TestHandleQuotationItemResolve_UnknownProduct(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	q := testhelpers.CreateTestQuotation(t, app, "", "ALM-Q9-025-2026")
	item := testhelpers.CreateTestQuotationItem(t, app, q.Id, 1, "Typed Name", "4", "10")

	form := url.Values{}
	form.Set("product_id", "missing")

	req := httptest.NewRequest(http.MethodPost, "/quotations/"+q.Id+"/items/"+item.Id+"/resolve",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("itemId", item.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuotationItemResolve(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	unchanged, _ := app.FindRecordById("quotation_items", item.Id)
	if got := unchanged.GetString("name"); got != "Typed Name" {
		t.Errorf("failed resolve should not touch the item, name = %q", got)
	}
}
