package orders

import (
	"fmt"
	"strings"
)

// Teks WA mengikuti format lama aplikasi (bahasa Indonesia).

func createdMessage(o *Order, productName, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Terima kasih %s. Pesanan: %s x%d. Status: %s", o.CustomerName, productName, o.Quantity, o.Status)
	writeSuffix(&b, o.TrackingNumber, note)
	return b.String()
}

func updatedMessage(o *Order, productName, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pesanan Anda (%s) status: %s", productName, o.Status)
	writeSuffix(&b, o.TrackingNumber, note)
	return b.String()
}

func writeSuffix(b *strings.Builder, tracking, note string) {
	if tracking != "" {
		b.WriteString("\nResi: ")
		b.WriteString(tracking)
	}
	if note != "" {
		b.WriteString("\nCatatan: ")
		b.WriteString(note)
	}
}
