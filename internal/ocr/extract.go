package ocr

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Patterns for pulling structured fields out of raw invoice text.
var (
	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)invoice\s*#?\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)inv\s*#?\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)bill\s*#?\s*:?\s*([A-Z0-9-]+)`),
	}

	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s*:?\s*\$?(\d+[,.]?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)amount\s*due\s*:?\s*\$?(\d+[,.]?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)balance\s*:?\s*\$?(\d+[,.]?\d*\.?\d*)`),
	}

	taxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)tax\s*:?\s*\$?(\d+[,.]?\d*\.?\d*)`),
		regexp.MustCompile(`(?i)vat\s*:?\s*\$?(\d+[,.]?\d*\.?\d*)`),
	}

	poPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)p\.?o\.?\s*#?\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)purchase\s*order\s*#?\s*:?\s*([A-Z0-9-]+)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		regexp.MustCompile(`(\d{2,4}[/\-]\d{1,2}[/\-]\d{1,2})`),
	}

	digitRe = regexp.MustCompile(`\d`)
)

// ExtractFields pulls structured invoice fields from OCR text. Amount fields
// are float64, everything else string.
func ExtractFields(text string) map[string]any {
	fields := map[string]any{}

	text = strings.TrimSpace(text)
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if num, ok := firstMatch(invoiceNumberPatterns, text); ok {
		fields["invoice_number"] = num
	}

	total, haveTotal := firstAmount(totalPatterns, text)
	if haveTotal {
		fields["total_amount"] = total.InexactFloat64()
	}

	// Dates: first found is the invoice date, second the due date.
	var dates []string
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			dates = append(dates, m[1])
		}
	}
	if len(dates) > 0 {
		fields["invoice_date"] = dates[0]
		if len(dates) > 1 {
			fields["due_date"] = dates[1]
		}
	}

	// Vendor name: longest non-numeric line near the top of the document.
	var vendorLines []string
	for i, line := range lines {
		if i >= 10 {
			break
		}
		if len(line) > 5 && !digitRe.MatchString(line) {
			vendorLines = append(vendorLines, line)
		}
	}
	if len(vendorLines) > 0 {
		longest := vendorLines[0]
		for _, line := range vendorLines[1:] {
			if len(line) > len(longest) {
				longest = line
			}
		}
		fields["vendor_name"] = longest
	}

	if po, ok := firstMatch(poPatterns, text); ok {
		fields["po_number"] = po
	}

	tax, haveTax := firstAmount(taxPatterns, text)
	if haveTax {
		fields["tax_amount"] = tax.InexactFloat64()
	}

	if haveTotal && haveTax {
		fields["subtotal"] = total.Sub(tax).InexactFloat64()
	}

	return fields
}

// ConfidenceScores rates the extraction. text_quality normalizes raw text
// length against a typical invoice, field_extraction counts the critical
// fields found, overall is their weighted blend.
func ConfidenceScores(text string, fields map[string]any) map[string]float64 {
	scores := map[string]float64{}

	quality := float64(len(text)) / 500
	if quality > 1 {
		quality = 1
	}
	scores["text_quality"] = quality

	critical := []string{"invoice_number", "total_amount", "vendor_name"}
	found := 0
	for _, name := range critical {
		if v, ok := fields[name]; ok && v != nil && v != "" {
			found++
		}
	}
	scores["field_extraction"] = float64(found) / float64(len(critical))

	scores["overall"] = quality*0.3 + scores["field_extraction"]*0.7
	return scores
}

func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func firstAmount(patterns []*regexp.Regexp, text string) (decimal.Decimal, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		d, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		return d, true
	}
	return decimal.Decimal{}, false
}
