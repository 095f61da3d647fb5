package pdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"willforge/internal/plan"
)

// Body typography. Times for body text, the conventional face for legal
// documents.
const (
	bodyFontSize    = 11.0
	bodyLineHeight  = 6.0
	headingFontSize = 13.0
	titleFontSize   = 18.0
	indentWidth     = 8.0
)

func writeItems(doc *fpdf.Fpdf, items []plan.Item) {
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, item := range items {
		writeClauseHeading(doc, tr, item)
		for _, block := range item.Blocks {
			writeBlock(doc, tr, block)
		}
		doc.Ln(4)
	}
}

func writeClauseHeading(doc *fpdf.Fpdf, tr func(string) string, item plan.Item) {
	doc.SetFont("Times", "B", headingFontSize)
	doc.Ln(4)
	doc.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", item.ClauseNumber, item.Title)), "", "L", false)
	doc.Ln(2)
}

func writeBlock(doc *fpdf.Fpdf, tr func(string) string, block plan.ContentBlock) {
	switch block.Type {
	case plan.BlockHeading:
		doc.SetFont("Times", "B", titleFontSize)
		doc.MultiCell(0, 10, tr(block.Text), "", "C", false)
		doc.Ln(8)

	case plan.BlockParagraph:
		doc.SetFont("Times", "", bodyFontSize)
		doc.MultiCell(0, bodyLineHeight, tr(block.Text), "", "J", false)
		doc.Ln(2)

	case plan.BlockBulletItem:
		writeIndented(doc, tr, "• "+block.Text, block.IndentLevel)

	case plan.BlockNumberedItem:
		writeIndented(doc, tr, block.Text, block.IndentLevel)

	case plan.BlockDefinition:
		writeIndented(doc, tr, "• "+block.Term+" "+block.Definition, block.IndentLevel)

	case plan.BlockSignature:
		if block.Signature != nil {
			writeSignature(doc, tr, block.Signature)
		}
	}
}

func writeIndented(doc *fpdf.Fpdf, tr func(string) string, textContent string, indentLevel int) {
	indent := marginLeft + float64(indentLevel)*indentWidth
	doc.SetLeftMargin(indent)
	doc.SetX(indent)
	doc.SetFont("Times", "", bodyFontSize)
	doc.MultiCell(0, bodyLineHeight, tr(textContent), "", "L", false)
	doc.SetLeftMargin(marginLeft)
	doc.Ln(1)
}

// writeSignature draws one signing area: bold label, then labelled ruled
// lines for name, optional address and occupation, signature, and date.
func writeSignature(doc *fpdf.Fpdf, tr func(string) string, sig *plan.SignatureBlock) {
	const (
		rowHeight = 9.0
		labelX    = marginLeft
		lineX     = marginLeft + 35
		lineEnd   = pageWidth - marginRight
	)

	rows := 2 // signature and date
	if sig.AddressLabel != "" {
		rows++
	}
	if sig.OccupationLabel != "" {
		rows++
	}
	rows++ // name

	needed := float64(rows)*rowHeight + 14
	if doc.GetY()+needed > pageHeight-marginBottom {
		doc.AddPage()
	}

	doc.Ln(4)
	if sig.Label != "" {
		doc.SetFont("Times", "B", bodyFontSize)
		doc.MultiCell(0, bodyLineHeight, tr(sig.Label), "", "L", false)
		doc.Ln(1)
	}

	nameLabel := sig.NameLabel
	if nameLabel == "" {
		nameLabel = "Name"
	}
	writeSignatureRow(doc, tr, nameLabel, sig.Name, lineX, lineEnd, rowHeight)

	if sig.AddressLabel != "" {
		writeSignatureRow(doc, tr, sig.AddressLabel, "", lineX, lineEnd, rowHeight)
	}
	if sig.OccupationLabel != "" {
		writeSignatureRow(doc, tr, sig.OccupationLabel, "", lineX, lineEnd, rowHeight)
	}

	writeSignatureRow(doc, tr, "Signature", "", lineX, lineEnd, rowHeight)

	dateLabel := sig.DateLabel
	if dateLabel == "" {
		dateLabel = "Date"
	}
	writeSignatureRow(doc, tr, dateLabel, "", lineX, lineX+45, rowHeight)

	doc.Ln(3)
}

func writeSignatureRow(doc *fpdf.Fpdf, tr func(string) string, label, value string, lineX, lineEnd, rowHeight float64) {
	y := doc.GetY()
	doc.SetFont("Times", "", 10)
	doc.Text(marginLeft, y+5, tr(label+":"))
	if value != "" {
		doc.SetFont("Times", "B", 10)
		doc.Text(lineX, y+5, tr(value))
	}
	doc.SetDrawColor(0, 0, 0)
	doc.Line(lineX, y+6, lineEnd, y+6)
	doc.SetY(y + rowHeight)
}
