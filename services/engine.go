package services

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Export errors the HTTP layer can distinguish from generic failures.
var (
	// ErrNoData is returned when an export is requested for an empty
	// dataset instead of emitting a zero-row file.
	ErrNoData = errors.New("export: no data to export")

	// ErrRendererNotReady is returned when the shared document engine
	// failed to initialize; the caller should surface a retry message.
	ErrRendererNotReady = errors.New("export: document renderer not ready, try again")
)

// documentEngine holds the shared, lazily loaded rendering resources:
// optional image assets and the page geometry every PDF export uses.
// Construction happens at most once; all callers share the same instance
// (or the same initialization error).
type documentEngine struct {
	logo      []byte
	signature []byte
	stamp     []byte
	geometry  PageGeometry
}

var (
	engineOnce sync.Once
	engine     *documentEngine
	engineErr  error
)

// assetDir is where optional branding images are looked up. Overridable in
// tests.
var assetDir = "assets"

// getEngine returns the shared document engine, initializing it on first
// use. Repeated calls never re-run initialization: they all observe the
// first outcome.
func getEngine() (*documentEngine, error) {
	engineOnce.Do(func() {
		engine, engineErr = newDocumentEngine()
	})
	if engineErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererNotReady, engineErr)
	}
	return engine, nil
}

func newDocumentEngine() (*documentEngine, error) {
	e := &documentEngine{
		geometry: PageGeometry{
			PageHeight:   355.6, // legal, portrait, mm
			TopMargin:    10,
			BottomMargin: 10,
			FooterHeight: 10,
		},
	}

	// Branding images are optional; a missing file just leaves the block
	// text-only.
	e.logo = readAsset("logo.png")
	e.signature = readAsset("signature.png")
	e.stamp = readAsset("stamp.png")

	// Probe the PDF backend once so a broken environment is reported as a
	// renderer-not-ready condition instead of failing every export midway.
	probe := maroto.New(config.NewBuilder().
		WithPageSize(pagesize.Legal).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		Build())
	if _, err := probe.Generate(); err != nil {
		return nil, fmt.Errorf("pdf backend probe: %w", err)
	}

	return e, nil
}

func readAsset(name string) []byte {
	data, err := os.ReadFile(assetDir + "/" + name)
	if err != nil {
		return nil
	}
	return data
}
