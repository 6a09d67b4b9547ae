package validation

import (
	"fmt"
	"strings"

	"github.com/guttosm/brokerfees/internal/domain/models"
)

// BuildCorrectionText renders errs as a numbered correction block to append
// to a generation prompt. It returns "" when errs is empty.
func BuildCorrectionText(errs []models.ValidationError) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nCORRECTIONS FROM PREVIOUS ATTEMPT (YOU MUST FIX THESE):\n\n")
	for i, e := range errs {
		fmt.Fprintf(&b, "%d. %s %s €%s: you said €%s, correct answer is €%s\n",
			i+1, e.Broker, e.Instrument, e.Amount, e.Observed.StringFixed(2), e.Expected.StringFixed(2))
		fmt.Fprintf(&b, "   Reason: %s\n", e.Explanation)
	}
	b.WriteString("\nFix ALL of the above values. Do not change any other values that were correct.")
	return b.String()
}
