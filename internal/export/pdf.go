package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/bakhtovar-dev/backend-paxta/internal/calc"
)

// PDF renders a calculation report as an A4 PDF. The built-in core fonts
// carry no Cyrillic glyphs, so all text is transliterated to Latin.
func PDF(v *calc.View, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Stranitsa %d iz {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, "Raschet partiy khlopka", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	line := func(s string) {
		pdf.CellFormat(0, 6, s, "", 1, "L", false, 0, "")
	}
	line("Nazvanie: " + translit(v.Title))
	line("Data sozdaniya: " + v.CreatedAt.Format("02.01.2006 15:04"))
	if v.QuotationDate != nil {
		line("Data kotirovki: " + v.QuotationDate.Format("02.01.2006"))
	}
	line(fmt.Sprintf("Kotirovka LKhB: %g tsentov za funt", v.Quotation))
	if v.DollarRate != nil {
		line(fmt.Sprintf("Kurs dollara: %g somoni", *v.DollarRate))
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, "Obshchaya statistika", "", 1, "L", false, 0, "")
	pdf.Ln(1)
	statsTable(pdf, [][2]string{
		{"Vsego partiy", fmt.Sprintf("%d", v.Totals.TotalBatches)},
		{"Obshchiy ves", formatInt(int(v.Totals.TotalWeight)) + " kg"},
		{"Vsego kip", formatInt(v.Totals.TotalBales)},
		{"Vsego prob", formatInt(v.Totals.TotalSamples)},
		{"Obshchaya summa", fmt.Sprintf("%.2f", v.Totals.TotalAmount)},
	})
	pdf.Ln(6)

	for i, bv := range v.Batches {
		if pdf.GetY() > 240 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, fmt.Sprintf("Partiya %s (%d)", bv.Code, bv.Year), "", 1, "L", false, 0, "")
		statsTable(pdf, [][2]string{
			{"Ves", formatInt(int(bv.Weight)) + " kg"},
			{"Kolichestvo kip", fmt.Sprintf("%d", bv.BalesCount)},
			{"Otobrannykh prob", fmt.Sprintf("%d", bv.SamplesCount)},
		})
		pdf.Ln(3)

		if len(bv.Samples) > 0 {
			samplesTable(pdf, bv)
			pdf.Ln(2)
			statsTable(pdf, [][2]string{
				{"Obshchiy ves prob", fmt.Sprintf("%.2f kg", bv.Stats.TotalWeight)},
				{"Srednyaya nadbavka/skidka", fmt.Sprintf("%.2f", bv.Stats.AvgPremiumDiscount)},
				{"Srednyaya tsena proby", fmt.Sprintf("%.2f", bv.Stats.AvgPrice)},
				{"Obshchaya summa", fmt.Sprintf("%.2f", bv.Stats.TotalAmount)},
			})
		} else {
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(0, 6, "Net dobavlennykh prob", "", 1, "L", false, 0, "")
		}

		if i < len(v.Batches)-1 {
			pdf.Ln(4)
			x, y := pdf.GetX(), pdf.GetY()
			pdf.SetDrawColor(200, 200, 200)
			pdf.Line(x, y, 196, y)
			pdf.SetDrawColor(0, 0, 0)
			pdf.Ln(4)
		}
	}

	return pdf.Output(w)
}

func statsTable(pdf *fpdf.Fpdf, rows [][2]string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 7, "Pokazatel", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 7, "Znachenie", "1", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(70, 6, row[0], "1", 0, "L", fill, 0, "")
		pdf.CellFormat(60, 6, row[1], "1", 1, "L", fill, 0, "")
	}
}

func samplesTable(pdf *fpdf.Fpdf, bv calc.BatchView) {
	headers := []string{"#", "Kol-vo", "Tsvet", "List", "Shtap.", "Ves (kg)", "Nadb./skidka", "Tsena", "Summa"}
	widths := []float64{10, 16, 18, 14, 16, 24, 28, 28, 28}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	for i, s := range bv.Samples {
		fill := i%2 == 1
		pdf.SetFillColor(240, 240, 240)
		cells := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", s.Quantity),
			string(s.ColorGrade),
			fmt.Sprintf("%d", s.LeafGrade),
			fmt.Sprintf("%d", s.StapleLength),
			fmt.Sprintf("%.2f", s.Weight),
			fmt.Sprintf("%.2f", s.PremiumDiscount),
			fmt.Sprintf("%.2f", s.UnitPrice),
			fmt.Sprintf("%.2f", s.Amount),
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 5, c, "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

var translitMap = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "Yo",
	'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "Y", 'К': "K", 'Л': "L", 'М': "M",
	'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U",
	'Ф': "F", 'Х': "Kh", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Shch",
	'Ъ': "", 'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
}

// translit replaces Cyrillic letters with their Latin spellings.
func translit(s string) string {
	var b strings.Builder
	for _, r := range s {
		if repl, ok := translitMap[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
