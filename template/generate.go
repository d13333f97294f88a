package template

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// blankForm is the embedded HTML claim form printed to PDF when no template
// file is installed. Deliberately plain: the stamper works off the field map
// coordinates, not off anything in this markup.
const blankForm = `<!DOCTYPE html>
<html>
<head><style>
body { font-family: Helvetica, sans-serif; font-size: 9pt; margin: 24px; }
h1 { font-size: 13pt; text-align: center; letter-spacing: 2px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 8px; }
td { border: 1px solid #000; padding: 14px 4px 2px 4px; font-size: 6pt;
     text-transform: uppercase; vertical-align: top; }
.sig { padding-top: 28px; }
</style></head>
<body>
<h1>Health Insurance Claim Form</h1>
<table>
<tr><td colspan="2">Patient Name (Last, First, MI)</td><td>Birth Date</td><td>Sex M / F</td></tr>
<tr><td colspan="2">Patient Address (Street)</td><td>City / State</td><td>ZIP / Phone</td></tr>
<tr><td>Relationship: Self Spouse Child Other</td><td colspan="2">Insured Name</td><td>Insured ID</td></tr>
<tr><td>Group Number</td><td colspan="2">Plan Name</td><td>Accept Assignment</td></tr>
</table>
<table>
<tr><td>Dates of Service</td><td>Place</td><td>CPT/HCPCS</td><td>Diag</td><td>Charges</td><td>Units</td></tr>
<tr><td></td><td></td><td></td><td></td><td></td><td></td></tr>
<tr><td></td><td></td><td></td><td></td><td></td><td></td></tr>
<tr><td></td><td></td><td></td><td></td><td></td><td></td></tr>
<tr><td></td><td></td><td></td><td></td><td></td><td></td></tr>
</table>
<table>
<tr><td>Diagnosis Codes (A-D)</td><td>Total Charge</td><td>Amount Paid</td><td>Balance Due</td></tr>
<tr><td class="sig" colspan="2">Patient Signature / Date</td><td colspan="2">Provider Name / NPI / Tax ID</td></tr>
</table>
</body>
</html>`

// GenerateTemplate prints the embedded blank claim form to a PDF at dstPath
// using headless Chrome. Used as a fallback when TEMPLATE_PATH does not
// exist yet.
func GenerateTemplate(ctx context.Context, dstPath string) error {
	htmlPath := filepath.Join(os.TempDir(), fmt.Sprintf("scanforge_template_%d.html", time.Now().UnixNano()))
	if err := os.WriteFile(htmlPath, []byte(blankForm), 0o644); err != nil {
		return fmt.Errorf("unable to write template HTML: %w", err)
	}
	defer os.Remove(htmlPath)

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 60*time.Second)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(false).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("unable to print template to PDF: %w", err)
	}

	if err := os.WriteFile(dstPath, pdf, 0o644); err != nil {
		return fmt.Errorf("unable to write template PDF %s: %w", dstPath, err)
	}
	Logger.Info("Generated blank template PDF", "path", dstPath)
	return nil
}
