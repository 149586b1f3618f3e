package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
	"quotedesk/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateCustomerSnapshots(app); err != nil {
			log.Printf("Warning: customer snapshot migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Serve the SPA bundle from ./static
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		// ── Customers ────────────────────────────────────────────
		se.Router.GET("/api/customers", handlers.HandleCustomerList(app))
		se.Router.POST("/api/customers", handlers.HandleCustomerCreate(app))
		se.Router.GET("/api/customers/{id}", handlers.HandleCustomerView(app))
		se.Router.POST("/api/customers/{id}", handlers.HandleCustomerUpdate(app))
		se.Router.DELETE("/api/customers/{id}", handlers.HandleCustomerDelete(app))

		// ── Products ─────────────────────────────────────────────
		se.Router.GET("/api/products", handlers.HandleProductList(app))
		se.Router.POST("/api/products", handlers.HandleProductCreate(app))
		se.Router.GET("/api/products/{id}", handlers.HandleProductView(app))
		se.Router.POST("/api/products/{id}", handlers.HandleProductUpdate(app))
		se.Router.DELETE("/api/products/{id}", handlers.HandleProductDelete(app))

		// ── Product import ───────────────────────────────────────
		se.Router.GET("/api/products/import/template", handlers.HandleProductTemplate(app))
		se.Router.POST("/api/products/import/validate", handlers.HandleProductImportValidate(app))
		se.Router.POST("/api/products/import/commit", handlers.HandleProductImportCommit(app))
		se.Router.POST("/api/products/import/errors", handlers.HandleProductImportErrorReport(app))

		// ── Quotation exports (before /{id} so "export" never matches as an id) ──
		se.Router.GET("/api/quotations/export/summary", handlers.HandleQuotationSummaryExport(app))
		se.Router.GET("/api/quotations/export/{format}", handlers.HandleQuotationListExport(app))
		se.Router.GET("/api/quotations/next-code", handlers.HandleQuotationNextCode(app))

		// ── Quotations ───────────────────────────────────────────
		se.Router.GET("/api/quotations", handlers.HandleQuotationList(app))
		se.Router.POST("/api/quotations", handlers.HandleQuotationCreate(app))
		se.Router.GET("/api/quotations/{id}", handlers.HandleQuotationView(app))
		se.Router.POST("/api/quotations/{id}", handlers.HandleQuotationUpdate(app))
		se.Router.DELETE("/api/quotations/{id}", handlers.HandleQuotationDelete(app))
		se.Router.GET("/api/quotations/{id}/export/{format}", handlers.HandleQuotationExport(app))
		se.Router.POST("/api/quotations/{id}/send", handlers.HandleQuotationSend(app))

		// ── Line items ───────────────────────────────────────────
		se.Router.POST("/api/quotations/{id}/items", handlers.HandleQuotationItemCreate(app))
		se.Router.POST("/api/quotations/{id}/items/{itemId}", handlers.HandleQuotationItemUpdate(app))
		se.Router.DELETE("/api/quotations/{id}/items/{itemId}", handlers.HandleQuotationItemDelete(app))
		se.Router.POST("/api/quotations/{id}/items/{itemId}/resolve", handlers.HandleQuotationItemResolve(app))

		// ── Trash ────────────────────────────────────────────────
		se.Router.GET("/api/trash", handlers.HandleTrashList(app))
		se.Router.GET("/api/trash/stats", handlers.HandleTrashStats(app))
		se.Router.POST("/api/trash/purge-expired", handlers.HandleTrashPurgeExpired(app))
		se.Router.POST("/api/trash/{id}/restore", handlers.HandleTrashRestore(app))
		se.Router.DELETE("/api/trash/{id}", handlers.HandleTrashPurge(app))

		// ── Currency ─────────────────────────────────────────────
		se.Router.GET("/api/currency", handlers.HandleCurrencyRates(app))
		se.Router.POST("/api/currency/rates", handlers.HandleCurrencyRateUpdate(app))
		se.Router.POST("/api/currency/rebase", handlers.HandleCurrencyRebase(app))

		// Everything else is the SPA shell
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/static/index.html")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
