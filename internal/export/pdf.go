// Package export renders an AI-generated implementation plan as a PDF or
// a printable HTML document. Both outputs share the same section order:
// title, summary, time estimate, numbered steps, resources,
// considerations, footer.
package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/notedrop/notedrop-server/internal/model"
)

const (
	pageMargin   = 15.0
	footerHeight = 18.0
)

// RenderPDF writes a paginated plan document. Text is wrapped manually at
// the available content width and every block checks remaining vertical
// space before drawing, starting a new page when it does not fit.
func RenderPDF(w io.Writer, title string, plan *model.Plan) error {
	doc := buildPDF(title, plan)
	return doc.Output(w)
}

func buildPDF(title string, plan *model.Plan) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(130, 130, 130)
		pdf.CellFormat(0, 6, fmt.Sprintf("notedrop plan  |  page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	d := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	// Title
	d.setFont("B", 20, 30, 30, 30)
	d.writeWrapped(title, 9, 0)
	d.space(4)

	// Summary
	if plan.Summary != "" {
		d.setFont("", 11, 60, 60, 60)
		d.writeWrapped(plan.Summary, 5.5, 0)
		d.space(4)
	}

	// Time estimate panel
	if plan.TimeEstimate != "" {
		d.ensureRoom(14)
		pdf.SetFillColor(238, 242, 250)
		pdf.Rect(pageMargin, pdf.GetY(), d.contentWidth(), 12, "F")
		pdf.SetXY(pageMargin+3, pdf.GetY()+3)
		d.setFont("B", 10, 50, 70, 120)
		pdf.CellFormat(0, 6, d.tr("Estimated time: "+plan.TimeEstimate), "", 1, "L", false, 0, "")
		pdf.SetY(pdf.GetY() + 5)
	}

	// Steps
	if len(plan.Steps) > 0 {
		d.heading("Steps")
		for i, step := range plan.Steps {
			d.ensureRoom(12)
			d.setFont("B", 11, 30, 30, 30)
			d.writeWrapped(fmt.Sprintf("%d. %s", i+1, step.Title), 6, 0)
			d.setFont("", 10, 80, 80, 80)
			d.writeWrapped(step.Description, 5, 6)
			d.space(2.5)
		}
	}

	// Resources (check-mark glyphs come from ZapfDingbats)
	if len(plan.Resources) > 0 {
		d.heading("Resources")
		for _, res := range plan.Resources {
			d.ensureRoom(6)
			pdf.SetFont("ZapfDingbats", "", 9)
			pdf.SetTextColor(40, 130, 70)
			pdf.CellFormat(6, 5, "4", "", 0, "L", false, 0, "")
			d.setFont("", 10, 60, 60, 60)
			d.writeWrapped(res, 5, 6)
		}
		d.space(2)
	}

	// Considerations
	if len(plan.Considerations) > 0 {
		d.heading("Considerations")
		for _, c := range plan.Considerations {
			d.ensureRoom(6)
			d.setFont("B", 10, 190, 130, 30)
			pdf.CellFormat(6, 5, "!", "", 0, "C", false, 0, "")
			d.setFont("", 10, 60, 60, 60)
			d.writeWrapped(c, 5, 6)
		}
	}

	return pdf
}

type pdfDoc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (d *pdfDoc) contentWidth() float64 {
	w, _ := d.pdf.GetPageSize()
	return w - 2*pageMargin
}

func (d *pdfDoc) setFont(style string, size float64, r, g, b int) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetTextColor(r, g, b)
}

// ensureRoom starts a new page when fewer than needed millimetres remain
// above the footer.
func (d *pdfDoc) ensureRoom(needed float64) {
	_, h := d.pdf.GetPageSize()
	if d.pdf.GetY()+needed > h-footerHeight {
		d.pdf.AddPage()
	}
}

// writeWrapped splits text at the pixel width available for the current
// font and emits one line per cell, checking for a page break before each
// line. indent shifts the block right (used for step bodies and list
// items).
func (d *pdfDoc) writeWrapped(text string, lineHeight, indent float64) {
	if text == "" {
		return
	}
	width := d.contentWidth() - indent
	lines := d.pdf.SplitText(d.tr(text), width)
	for _, line := range lines {
		d.ensureRoom(lineHeight)
		d.pdf.SetX(pageMargin + indent)
		d.pdf.CellFormat(width, lineHeight, line, "", 1, "L", false, 0, "")
	}
}

func (d *pdfDoc) heading(text string) {
	d.ensureRoom(12)
	d.space(2)
	d.setFont("B", 13, 30, 30, 30)
	d.pdf.CellFormat(0, 7, d.tr(text), "", 1, "L", false, 0, "")
	d.space(1)
}

func (d *pdfDoc) space(h float64) {
	d.pdf.SetY(d.pdf.GetY() + h)
}
