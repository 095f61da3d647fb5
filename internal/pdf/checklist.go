package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"willforge/internal/will"
	dErrors "willforge/pkg/domain-errors"
	"willforge/pkg/platform/text"
)

// Checklist content. The checklist is a companion document with signing and
// witnessing instructions; it is generated deterministically alongside the
// will and attached to the delivery email.

var checklistBeforeSigning = []string{
	"Read your will completely and carefully",
	"Ensure all names are spelled correctly",
	"Verify all addresses are current and complete",
	"Confirm the distribution matches your intentions",
	"Print the will on plain white A4 paper (do not use pre-printed forms)",
	"Do NOT sign or date the will yet",
	"Arrange for two independent adult witnesses",
}

var checklistWitnessRequirements = []string{
	"Both witnesses must be 18 years or older",
	"Both witnesses must be present at the same time",
	"Witnesses must be mentally competent",
	"Witnesses must watch you sign the will",
	"You must watch both witnesses sign",
	"Each witness must watch the other witness sign",
}

var checklistCannotWitness = []string{
	"Anyone named as a beneficiary in the will",
	"The spouse or partner of any beneficiary",
	"Anyone under 18 years of age",
	"Anyone who is visually impaired (cannot see you sign)",
	"Anyone who does not understand the nature of the document",
}

var checklistSigningProcedure = []string{
	"Print your full name clearly in the will maker section",
	"Sign your name in the presence of both witnesses",
	"Both witnesses must sign in your presence",
	"Each witness must sign in the presence of the other witness",
	"All signatures must be on the same document",
	"Do NOT sign any pages that are blank or incomplete",
	"Date the will on the date of signing (not before)",
}

var checklistAfterSigning = []string{
	"Store the original will in a safe, secure location",
	"Do NOT attach anything to the will (staples, paper clips, etc.)",
	"Do NOT write on the will after signing",
	"Tell your executor where the will is stored",
	"Consider giving a copy to your executor",
	"Review your will every 2-3 years or after major life changes",
}

var checklistNotCovered = []string{
	"Superannuation: Contact your super fund to make a binding death nomination",
	"Jointly held property: Usually passes to the surviving joint owner",
	"Assets in trust: Governed by the trust deed, not your will",
	"Life insurance: Paid to nominated beneficiaries",
	"Company shares: May be subject to shareholder agreements",
}

var checklistLegalAdvice = []string{
	"You have significant assets or complex financial arrangements",
	"You own a business or have company interests",
	"You have beneficiaries with special needs",
	"You want to exclude a family member who may contest",
	"You have assets in multiple jurisdictions",
	"You are in a blended family situation",
	"You are unsure about any aspect of your will",
}

// Checklist renders the execution checklist PDF and returns its bytes and
// hash. The will hash appears in the document reference section so the
// checklist can be matched to its will.
func (c *Compiler) Checklist(ctx *will.Context, willHash string, generatedAt time.Time) ([]byte, string, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCatalogSort(true)
	doc.SetTitle("Will Execution Checklist", true)
	doc.SetAuthor("Will Generator", true)
	doc.SetCreator("Will Generator", true)
	doc.SetCreationDate(metadataDate)
	doc.SetModificationDate(metadataDate)
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(true, 25)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	generated := text.FormatTimestamp(generatedAt, c.loc)

	doc.SetFont("Helvetica", "B", 20)
	doc.MultiCell(0, 10, "WILL EXECUTION CHECKLIST", "", "C", false)
	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(85, 85, 85)
	doc.MultiCell(0, 7, "Instructions for Properly Signing and Witnessing Your Will", "", "C", false)
	doc.SetTextColor(0, 0, 0)
	doc.Ln(8)

	checklistHeading(doc, "Document Reference")
	doc.SetFont("Helvetica", "", bodyFontSize)
	doc.MultiCell(0, bodyLineHeight, tr("Will Maker: "+ctx.WillMaker.FullName), "", "L", false)
	doc.MultiCell(0, bodyLineHeight, "Document Hash: "+text.ShortHash(willHash, 16)+"...", "", "L", false)
	doc.MultiCell(0, bodyLineHeight, "Generated: "+generated, "", "L", false)
	doc.Ln(6)

	checklistHeading(doc, "IMPORTANT")
	doc.SetFont("Helvetica", "B", bodyFontSize)
	doc.SetTextColor(139, 0, 0)
	doc.MultiCell(0, bodyLineHeight,
		"Your will is NOT legally valid until it is properly signed and witnessed. "+
			"Failure to follow these instructions may result in your will being invalid or contested.",
		"", "L", false)
	doc.SetTextColor(0, 0, 0)
	doc.Ln(6)

	checklistSection(doc, tr, "Before You Sign", "", "[ ]", checklistBeforeSigning)
	checklistSection(doc, tr, "Witness Requirements (Queensland)",
		"Your witnesses MUST meet ALL of the following requirements:", "[ ]", checklistWitnessRequirements)
	checklistSection(doc, tr, "Who CANNOT Witness Your Will",
		"The following people should NOT witness your will:", "[x]", checklistCannotWitness)
	checklistSection(doc, tr, "Signing Procedure", "", "[ ]", checklistSigningProcedure)
	checklistSection(doc, tr, "After Signing", "", "[ ]", checklistAfterSigning)
	checklistSection(doc, tr, "What Your Will Does NOT Cover",
		"The following assets may NOT pass under your will:", "•", checklistNotCovered)
	checklistSection(doc, tr, "When to Seek Legal Advice",
		"Consider consulting a solicitor if any of the following apply:", "•", checklistLegalAdvice)

	doc.Ln(10)
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(128, 128, 128)
	doc.MultiCell(0, 5, "This checklist is for guidance only and does not constitute legal advice.", "", "C", false)
	doc.MultiCell(0, 5, "Generated: "+generated, "", "C", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, "", dErrors.Wrap(dErrors.CodeRenderFailed, "checklist render failed", err)
	}
	b := buf.Bytes()
	return b, hashHex(b), nil
}

func checklistHeading(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(26, 66, 50)
	doc.MultiCell(0, 8, title, "", "L", false)
	doc.SetTextColor(0, 0, 0)
	doc.Ln(1)
}

func checklistSection(doc *fpdf.Fpdf, tr func(string) string, title, intro, marker string, items []string) {
	checklistHeading(doc, title)
	doc.SetFont("Helvetica", "", bodyFontSize)
	if intro != "" {
		doc.MultiCell(0, bodyLineHeight, tr(intro), "", "L", false)
		doc.Ln(1)
	}
	for _, item := range items {
		doc.SetX(marginLeft + 4)
		doc.MultiCell(0, bodyLineHeight+1, tr(fmt.Sprintf("%s %s", marker, item)), "", "L", false)
	}
	doc.Ln(5)
}
