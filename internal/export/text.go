package export

import (
	"fmt"
	"strings"

	"github.com/bakhtovar-dev/backend-paxta/internal/calc"
)

// Text renders a calculation as a plain-text report suitable for copying
// into messengers and spreadsheets.
func Text(v *calc.View) string {
	var b strings.Builder

	b.WriteString("РАСЧЕТ ПАРТИЙ ХЛОПКА\n")
	b.WriteString("===================\n\n")
	fmt.Fprintf(&b, "Название: %s\n", v.Title)
	fmt.Fprintf(&b, "Дата создания: %s\n", v.CreatedAt.Format("02.01.2006 15:04"))
	if v.QuotationDate != nil {
		fmt.Fprintf(&b, "Дата котировки: %s\n", v.QuotationDate.Format("02.01.2006"))
	}
	fmt.Fprintf(&b, "Котировка ЛХБ: %g центов за фунт\n", v.Quotation)
	if v.DollarRate != nil {
		fmt.Fprintf(&b, "Курс доллара: %g сомони\n", *v.DollarRate)
	}
	b.WriteString("\n")

	b.WriteString("ОБЩАЯ СТАТИСТИКА\n")
	b.WriteString("-----------------\n")
	fmt.Fprintf(&b, "Всего партий: %d\n", v.Totals.TotalBatches)
	fmt.Fprintf(&b, "Общий вес: %s кг\n", formatInt(int(v.Totals.TotalWeight)))
	fmt.Fprintf(&b, "Всего кип: %s\n", formatInt(v.Totals.TotalBales))
	fmt.Fprintf(&b, "Всего проб: %s\n", formatInt(v.Totals.TotalSamples))
	fmt.Fprintf(&b, "Общая сумма: %.2f\n\n", v.Totals.TotalAmount)

	for i, bv := range v.Batches {
		fmt.Fprintf(&b, "ПАРТИЯ %s (%d)\n", bv.Code, bv.Year)
		b.WriteString("-----------------\n")
		fmt.Fprintf(&b, "Вес: %s кг\n", formatInt(int(bv.Weight)))
		fmt.Fprintf(&b, "Количество кип: %d\n", bv.BalesCount)
		fmt.Fprintf(&b, "Общее количество отобранных проб: %d\n\n", bv.SamplesCount)

		if len(bv.Samples) > 0 {
			b.WriteString("Пробы:\n")
			b.WriteString("Кол-во | Сорт по цвету | Сорт по листу | Штап. длина | Вес (кг) | Надбавка/скидка | Цена пробы | Сумма пробы\n")
			b.WriteString("-------+---------------+--------------+-------------+----------+-----------------+------------+------------\n")
			for _, s := range bv.Samples {
				fmt.Fprintf(&b, "%-7d | %-15s | %-14d | %-13d | %-10.2f | %-17.2f | %-12.2f | %.2f\n",
					s.Quantity, s.ColorGrade, s.LeafGrade, s.StapleLength,
					s.Weight, s.PremiumDiscount, s.UnitPrice, s.Amount)
			}

			b.WriteString("\nИтоги по партии:\n")
			fmt.Fprintf(&b, "Общий вес проб: %.2f кг\n", bv.Stats.TotalWeight)
			fmt.Fprintf(&b, "Средняя надбавка/скидка: %.2f\n", bv.Stats.AvgPremiumDiscount)
			fmt.Fprintf(&b, "Средняя цена пробы: %.2f\n", bv.Stats.AvgPrice)
			fmt.Fprintf(&b, "Общая сумма: %.2f\n", bv.Stats.TotalAmount)
		} else {
			b.WriteString("Нет добавленных проб\n")
		}

		if i < len(v.Batches)-1 {
			fmt.Fprintf(&b, "\n%s\n\n", strings.Repeat("=", 80))
		}
	}

	return b.String()
}

// formatInt groups thousands with spaces, the way the reports have always
// shown weights and counts.
func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, " ")
	if neg {
		out = "-" + out
	}
	return out
}
