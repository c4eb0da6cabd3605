package advisor

import (
	"fmt"
	"strings"

	"finsmart/internal/core"
)

// Prompt renders the user's figures into the question sent to the model.
func Prompt(s core.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analisis keuangan user %s:\n", s.User)
	fmt.Fprintf(&b, "- Total pemasukan: %s\n", core.FormatRupiah(s.Income))
	fmt.Fprintf(&b, "- Total pengeluaran: %s\n", core.FormatRupiah(s.Expense))
	fmt.Fprintf(&b, "- Sisa budget: %s\n", core.FormatRupiah(s.Remaining))
	if top, ok := s.Top(); ok {
		fmt.Fprintf(&b, "- Pengeluaran terbesar: %s (%s)\n", top.Name, core.FormatRupiah(top.Amount))
	}
	b.WriteString("\nBerikan 3 saran keuangan pribadi untuk minggu depan.\n")
	return b.String()
}
