package series

import (
	"fmt"
	"os"
	"path/filepath"

	"PriceKeeper/internal/model"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used by the workbook mirror.
const DefaultSheet = "Kurse"

// Mirror is a non-authoritative, fully regenerated copy of a series.
type Mirror interface {
	Project(obs []model.Observation) error
}

// XLSXMirror writes the series into a single-sheet workbook for spreadsheet
// users. The file is replaced atomically on every projection.
type XLSXMirror struct {
	Path  string
	Sheet string
}

func NewXLSXMirror(path, sheet string) *XLSXMirror {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &XLSXMirror{Path: path, Sheet: sheet}
}

func (m *XLSXMirror) Project(obs []model.Observation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), m.Sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(m.Sheet, "A1", &[]any{DateColumn, PriceColumn}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, o := range obs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(m.Sheet, cell, &[]any{o.Date.Time(), o.Price.InexactFloat64()}); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(obs) > 0 {
		if err := m.applyStyles(f, len(obs)+1); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.Path), ".mirror-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.Path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

func (m *XLSXMirror) applyStyles(f *excelize.File, lastRow int) error {
	dateFmt, priceFmt := "yyyy-mm-dd", "0.0000"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	priceStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &priceFmt})
	if err != nil {
		return fmt.Errorf("price style: %w", err)
	}
	if err := f.SetCellStyle(m.Sheet, "A2", fmt.Sprintf("A%d", lastRow), dateStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(m.Sheet, "B2", fmt.Sprintf("B%d", lastRow), priceStyle); err != nil {
		return err
	}
	return f.SetColWidth(m.Sheet, "A", "B", 14)
}
