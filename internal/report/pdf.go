package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
)

// PDFRenderer converts a rendered HTML report to PDF by invoking an
// external HTML-to-PDF tool (wkhtmltopdf by default). The tool is
// resolved at call time; a missing tool is a *domain.RenderError wrapping
// domain.ErrPDFToolMissing, and the HTML input is left untouched.
type PDFRenderer struct {
	tool   string
	logger *slog.Logger
}

// NewPDFRenderer creates a renderer invoking the named tool.
func NewPDFRenderer(tool string, logger *slog.Logger) *PDFRenderer {
	return &PDFRenderer{tool: tool, logger: logger}
}

// Render converts htmlPath to pdfPath. The subprocess is scoped to this
// call and inherits the context's cancellation.
func (p *PDFRenderer) Render(ctx context.Context, htmlPath, pdfPath string) error {
	path, err := exec.LookPath(p.tool)
	if err != nil {
		return &domain.RenderError{Op: "pdf", Err: fmt.Errorf("%w: %q", domain.ErrPDFToolMissing, p.tool)}
	}

	cmd := exec.CommandContext(ctx, path, "--quiet", htmlPath, pdfPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &domain.RenderError{Op: "pdf", Err: fmt.Errorf("%s: %w: %s", p.tool, err, bytes.TrimSpace(out))}
	}

	p.logger.Info("pdf rendered", "tool", p.tool, "html", htmlPath, "pdf", pdfPath)
	return nil
}
