package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/bakhtovar-dev/backend-paxta/internal/calc"
)

// XLSX renders a calculation as a workbook: a summary sheet with the grand
// totals and one sheet of samples per batch.
func XLSX(v *calc.View, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Сводка"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}

	rows := [][]any{
		{"Название", v.Title},
		{"Дата создания", v.CreatedAt.Format("02.01.2006 15:04")},
		{"Котировка ЛХБ, центов за фунт", v.Quotation},
	}
	if v.QuotationDate != nil {
		rows = append(rows, []any{"Дата котировки", v.QuotationDate.Format("02.01.2006")})
	}
	if v.DollarRate != nil {
		rows = append(rows, []any{"Курс доллара, сомони", *v.DollarRate})
	}
	rows = append(rows,
		[]any{},
		[]any{"Всего партий", v.Totals.TotalBatches},
		[]any{"Общий вес, кг", v.Totals.TotalWeight},
		[]any{"Всего кип", v.Totals.TotalBales},
		[]any{"Всего проб", v.Totals.TotalSamples},
		[]any{"Общая сумма", v.Totals.TotalAmount},
		[]any{"Средняя цена", v.Totals.AvgPrice},
	)
	if err := writeRows(f, summary, 1, rows); err != nil {
		return err
	}

	for _, bv := range v.Batches {
		sheet := fmt.Sprintf("Партия %s", sanitizeSheetName(bv.Code))
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		head := [][]any{
			{"Партия", bv.Code},
			{"Год", bv.Year},
			{"Вес, кг", bv.Weight},
			{"Количество кип", bv.BalesCount},
			{"Отобранных проб", bv.SamplesCount},
			{},
			{"№", "Кол-во", "Сорт по цвету", "Сорт по листу", "Штап. длина", "Вес (кг)", "Надбавка/скидка", "Цена пробы", "Сумма пробы"},
		}
		if err := writeRows(f, sheet, 1, head); err != nil {
			return err
		}

		row := len(head) + 1
		for i, s := range bv.Samples {
			err := writeRows(f, sheet, row, [][]any{{
				i + 1, s.Quantity, string(s.ColorGrade), int(s.LeafGrade), int(s.StapleLength),
				s.Weight, s.PremiumDiscount, s.UnitPrice, s.Amount,
			}})
			if err != nil {
				return err
			}
			row++
		}

		totals := [][]any{
			{},
			{"Общий вес проб, кг", bv.Stats.TotalWeight},
			{"Средняя надбавка/скидка", bv.Stats.AvgPremiumDiscount},
			{"Средняя цена пробы", bv.Stats.AvgPrice},
			{"Общая сумма", bv.Stats.TotalAmount},
		}
		if err := writeRows(f, sheet, row, totals); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, start int, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// sanitizeSheetName strips characters Excel forbids in sheet names.
func sanitizeSheetName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	if len(out) > 25 {
		out = out[:25]
	}
	return string(out)
}
