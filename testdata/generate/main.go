// Command generate produces sample Restomax export files under testdata/:
// a monthly accounting CSV and an extracted Z-ticket text. The CSV
// reproduces the export's quirks faithfully: every row appears twice and
// every amount is doubled, with summary lines mixed in.
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

type salesItem struct {
	sourceCode  string
	account     string
	description string
	taxRate     float64
}

var menu = []salesItem{
	{"PLAT", "700100", "Plat du jour", 12},
	{"BOISSON", "700200", "Boissons fraîches", 21},
	{"DESSERT", "700110", "Desserts", 12},
	{"CAFE", "700210", "Cafés", 21},
	{"ALCOOL", "700220", "Vins et bières", 21},
}

type paymentMethod struct {
	sourceCode  string
	description string
	share       float64
}

var methods = []paymentMethod{
	{"CASH", "Espèces", 0.3},
	{"EFT", "Carte bancaire", 0.6},
	{"TICKET", "Ticket Restaurant", 0.1},
}

func main() {
	rng := rand.New(rand.NewSource(7))
	baseDir := findTestdataDir()

	generateMonthlyCSV(rng, baseDir)
	generateZTicketText(baseDir)

	fmt.Println("Test data generation complete.")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// fr formats an amount the way the export does: comma decimal separator.
func fr(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}

func generateMonthlyCSV(rng *rand.Rand, baseDir string) {
	filePath := filepath.Join(baseDir, "restomax_juin.csv")
	f, err := os.Create(filePath)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	defer w.Flush()

	w.Write([]string{
		"N° Z", "Date clôture", "ID Restomax", "Compte général",
		"Description", "TVA", "DEBIT", "CREDIT",
	})

	// One Z closing per day for two weeks.
	writeDoubled := func(record []string) {
		w.Write(record)
		w.Write(record)
	}

	reports := 0
	for day := 1; day <= 14; day++ {
		zNumber := fmt.Sprintf("%d", day)
		date := fmt.Sprintf("%02d/06/2025", day)

		var grossTotal, vatTotal float64
		vatByRate := map[float64]float64{}

		for _, item := range menu {
			net := round2(20 + rng.Float64()*180)
			vat := round2(net * item.taxRate / 100)
			grossTotal += net + vat
			vatTotal += vat
			vatByRate[item.taxRate] += vat

			// Amounts in the file are doubled.
			writeDoubled([]string{
				zNumber, date, item.sourceCode, item.account,
				item.description, fr(item.taxRate), "0,00", fr(net * 2),
			})
		}

		for rate, vat := range vatByRate {
			writeDoubled([]string{
				zNumber, date, fmt.Sprintf("TVA%d", int(rate)), "451000",
				fmt.Sprintf("TVA %d%%", int(rate)), fr(rate), "0,00", fr(round2(vat) * 2),
			})
		}

		remaining := round2(grossTotal)
		for i, m := range methods {
			amount := round2(grossTotal * m.share)
			if i == len(methods)-1 {
				amount = remaining
			}
			remaining = round2(remaining - amount)
			writeDoubled([]string{
				zNumber, date, m.sourceCode, "580000",
				m.description, "0,00", fr(amount * 2), "0,00",
			})
		}

		// Summary lines the parser must ignore.
		w.Write([]string{zNumber, date, "", "700000", "Total CA TVAC", "0,00", "0,00", fr(grossTotal * 2)})
		w.Write([]string{zNumber, date, "", "451000", "Total TVA", "0,00", "0,00", fr(vatTotal * 2)})
		w.Write([]string{zNumber, date, "", "580000", "Total PAIEMENT", "0,00", fr(grossTotal * 2), "0,00"})

		reports++
	}

	fmt.Printf("Generated %d Z reports -> restomax_juin.csv\n", reports)
}

// generateZTicketText writes the extracted text of a two-ticket PDF, using
// the PDF's number format (dot thousands, comma decimal).
func generateZTicketText(baseDir string) {
	pdfAmount := func(v float64) string {
		text := fmt.Sprintf("%.2f", v)
		whole, frac, _ := strings.Cut(text, ".")
		var grouped []string
		for len(whole) > 3 {
			grouped = append([]string{whole[len(whole)-3:]}, grouped...)
			whole = whole[:len(whole)-3]
		}
		grouped = append([]string{whole}, grouped...)
		return strings.Join(grouped, ".") + "," + frac
	}

	var b strings.Builder
	for i, ticket := range []struct {
		number string
		date   string
		base   float64
	}{
		{"101", "15/06/2025", 5284.33},
		{"102", "16/06/2025", 6395.04},
	} {
		if i > 0 {
			b.WriteString("\n")
		}
		vat12 := round2(ticket.base * 0.12)
		gross := round2(ticket.base + vat12)
		eft := round2(gross * 0.7)
		cash := round2(gross - eft)

		fmt.Fprintf(&b, "Z financier %s\n", ticket.number)
		fmt.Fprintf(&b, "Date : %s\n\n", ticket.date)
		b.WriteString("Code Taux HTVA TVA TVAC\n")
		fmt.Fprintf(&b, "A 12.00 %s %s %s\n", pdfAmount(ticket.base), pdfAmount(vat12), pdfAmount(gross))
		b.WriteString("B 0.00 0,00 0,00 0,00\n\n")
		fmt.Fprintf(&b, "eft - 120x : %s EUR\n", pdfAmount(eft))
		fmt.Fprintf(&b, "cash - 35x : %s EUR\n", pdfAmount(cash))
	}

	filePath := filepath.Join(baseDir, "z_ticket_extracted.txt")
	if err := os.WriteFile(filePath, []byte(b.String()), 0o644); err != nil {
		panic(err)
	}
	fmt.Println("Generated 2 Z tickets -> z_ticket_extracted.txt")
}

func findTestdataDir() string {
	candidates := []string{"testdata", filepath.Join("..", "..", "testdata"), "."}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(dir, "generate")); err == nil {
				return dir
			}
		}
	}
	return "."
}
