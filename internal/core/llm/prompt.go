package llm

import (
	"strings"

	"github.com/joseph-ayodele/payslip-extractor/constants"
)

// maxPromptText caps the OCR text sent to a provider.
const maxPromptText = 6000

var countryContext = map[constants.Country]string{
	constants.Brazil: "The document is a Brazilian holerite (CLT payslip). Employer tax id is the CNPJ, employee tax id is the CPF. " +
		"social_security is the INSS withholding, income_tax is IRRF, fgts_base/fgts_amount are the FGTS base and deposit, " +
		"vacation_bonus is the one-third vacation supplement (1/3 de férias).",
	constants.France: "The document is a French bulletin de paie. Employer tax id is the SIRET (or SIREN), employee tax id is the NIR " +
		"(numéro de sécurité sociale). social_charges is the total of employee contributions (cotisations salariales), " +
		"income_tax is the prélèvement à la source, gross_pay is the salaire brut, net_pay is the net à payer.",
	constants.Portugal: "The document is a Portuguese recibo de vencimento. Employer and employee tax ids are NIF numbers. " +
		"social_security is the Segurança Social withholding, income_tax is the IRS retention.",
}

// BuildSystemPrompt composes the system message for a country.
func BuildSystemPrompt(country constants.Country) string {
	parts := []string{
		"You are a payslip parser. Return ONLY a JSON object that matches the provided JSON Schema.",
		countryContext[country],
		"Monetary values are decimal strings with a period as decimal separator and no thousands separator (\"8000.00\").",
		"Dates use ISO-8601 (YYYY-MM-DD). For a month reference, period_start is the first day and period_end the last day of that month.",
		"Copy names exactly as printed.",
		"Never output null. If a field is not present, omit it. Do not guess values that are not on the document.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the filename hint and the OCR text.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if filename := strings.TrimSpace(req.FilenameHint); filename != "" {
		b.WriteString("Filename: ")
		b.WriteString(filename)
		b.WriteString("\n")
	}
	ocr := strings.TrimSpace(req.OCRText)
	b.WriteString("\nOCR text:\n")
	if len(ocr) > maxPromptText {
		cut := maxPromptText
		for cut > 0 && !utf8Start(ocr[cut]) {
			cut--
		}
		b.WriteString(ocr[:cut])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(ocr)
	}
	return b.String()
}

func utf8Start(c byte) bool {
	return c&0xC0 != 0x80
}
