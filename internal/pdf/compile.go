// Package pdf renders document plans into final PDF bytes.
//
// Compilation is deterministic: the document's creation and modification
// dates are pinned to a fixed instant, no wall clock or randomness is
// consulted, and the same plan plus timestamp always produces identical
// bytes. The footer is the only part of the document that carries the
// generation timestamp, at minute resolution, so timestamps that agree to
// the minute yield byte-identical output. The returned hash is computed
// over those bytes.
package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"willforge/internal/plan"
	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/text"
)

// Page geometry in millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 25.0
	marginRight  = 25.0
	marginTop    = 20.0
	marginBottom = 30.0
)

const footerTimezone = "Australia/Brisbane"

// metadataDate is the fixed instant written into PDF CreationDate and
// ModificationDate. Leaving these to track the generation time would leak
// second-resolution timestamps into the bytes and break reproducibility
// within a footer minute; leaving them unset would make fpdf stamp the wall
// clock.
var metadataDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Compiler turns document plans into will PDFs.
type Compiler struct {
	loc *time.Location
}

// NewCompiler constructs a compiler. The footer timezone is fixed; if the
// zone database is unavailable the footer falls back to UTC.
func NewCompiler() *Compiler {
	loc, err := time.LoadLocation(footerTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &Compiler{loc: loc}
}

// Compile renders the plan twice. The first pass carries a page-number-only
// footer and exists solely to be hashed; the second pass is identical except
// its footer embeds that hash alongside the generation timestamp. The
// returned hash covers the final bytes, so it necessarily differs from the
// hash printed inside the document.
func (c *Compiler) Compile(items []plan.Item, generatedAt time.Time) ([]byte, string, error) {
	firstPass, err := c.render(items, generatedAt, "")
	if err != nil {
		return nil, "", err
	}
	contentHash := hashHex(firstPass)

	final, err := c.render(items, generatedAt, contentHash)
	if err != nil {
		return nil, "", err
	}
	return final, hashHex(final), nil
}

func (c *Compiler) render(items []plan.Item, generatedAt time.Time, embeddedHash string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCatalogSort(true)
	doc.SetTitle("Last Will and Testament", true)
	doc.SetAuthor("Will Generator", true)
	doc.SetCreator("Will Generator", true)
	doc.SetCreationDate(metadataDate)
	doc.SetModificationDate(metadataDate)
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(true, marginBottom)
	doc.AliasNbPages("")

	doc.SetFooterFunc(func() {
		doc.SetFont("Times", "", 8)
		doc.SetTextColor(102, 102, 102)
		if embeddedHash != "" {
			doc.SetY(-15)
			footerText := fmt.Sprintf("Generated: %s | Hash: %s",
				text.FormatTimestamp(generatedAt, c.loc),
				text.ShortHash(embeddedHash, 16))
			doc.CellFormat(0, 10, footerText, "", 0, "L", false, 0, "")
		}
		doc.SetY(-15)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", doc.PageNo()), "", 0, "R", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	})

	doc.AddPage()
	writeItems(doc, items)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeRenderFailed, "pdf render failed", err)
	}
	return buf.Bytes(), nil
}

// Verify recomputes the hash of pdfBytes and compares it to expectedHash.
func Verify(pdfBytes []byte, expectedHash string) bool {
	return hashHex(pdfBytes) == expectedHash
}

func hashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
