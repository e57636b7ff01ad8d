package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var _ PDFRenderer = (*ChromedpRenderer)(nil)

// A4 in millimeters
const (
	a4WidthMM  = 210
	a4HeightMM = 297
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// RemoteURL points at a running Chrome (ws://host:9222); empty launches one
	RemoteURL string
	// NoSandbox is required when Chrome runs as root in a container
	NoSandbox bool
	Timeout   time.Duration
	Logger    *zap.Logger
}

// ChromedpRenderer prints HTML through headless Chrome. A single browser
// allocator is shared; each render gets its own tab.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates the renderer. Chrome itself starts lazily on
// the first render.
func NewChromedpRenderer(cfg ChromedpConfig) *ChromedpRenderer {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := &ChromedpRenderer{timeout: cfg.Timeout, logger: cfg.Logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Render converts HTML content to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	start := time.Now()
	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()
	// the tab must also end when the caller gives up
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	params := buildPrintParams(req)
	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, req.HTML).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			pdf = data
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	res := &RenderResult{PDFData: pdf, PageCount: countPages(pdf), RenderDuration: time.Since(start)}
	r.logger.Info("PDF rendered",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", res.PageCount),
		zap.Duration("duration", res.RenderDuration))
	return res, nil
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func buildPrintParams(req *RenderRequest) *page.PrintToPDFParams {
	m := req.Margins
	if m == (Margins{}) {
		m = DefaultMargins()
	}
	p := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(a4WidthMM)).
		WithPaperHeight(mmToInches(a4HeightMM)).
		WithMarginTop(mmToInches(m.Top)).
		WithMarginRight(mmToInches(m.Right)).
		WithMarginBottom(mmToInches(m.Bottom)).
		WithMarginLeft(mmToInches(m.Left))
	if req.FooterHTML != "" {
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(req.FooterHTML).
			WithMarginBottom(mmToInches(max(m.Bottom, 15)))
	}
	return p
}
