package flatfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/caloriecart/backend/internal/domain"
)

const ruleWidth = 80

// WriteProductsReport writes a numbered, human readable dump of catalog products.
func WriteProductsReport(w io.Writer, products []domain.Product) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Total Products: %d\n", len(products))
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", ruleWidth))

	for i, p := range products {
		fmt.Fprintf(bw, "%d. %s\n", i+1, orNA(p.Description))
		fmt.Fprintf(bw, "   Product ID: %s\n", orNA(p.ProductID))
		fmt.Fprintf(bw, "   Brand: %s\n", orNA(p.Brand))

		if len(p.Items) > 0 {
			item := p.Items[0]
			if item.Price != nil {
				fmt.Fprintf(bw, "   Regular Price: $%s\n", formatFloat(item.Price.Regular))
				if item.Price.Promo > 0 {
					fmt.Fprintf(bw, "   Promo Price: $%s\n", formatFloat(item.Price.Promo))
				}
			}
			if item.Size != "" {
				fmt.Fprintf(bw, "   Size: %s\n", item.Size)
			}
			if item.UPC != "" {
				fmt.Fprintf(bw, "   UPC: %s\n", item.UPC)
			}
		}

		if len(p.Categories) > 0 {
			fmt.Fprintf(bw, "   Categories: %s\n", strings.Join(p.Categories, ", "))
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
