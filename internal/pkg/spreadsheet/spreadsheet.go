package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptyFile is returned when the first sheet has no data rows
	ErrEmptyFile = errors.New("spreadsheet is empty")
	// ErrParseFailed is returned when the bytes are not a readable workbook
	ErrParseFailed = errors.New("failed to parse spreadsheet")
)

// Legacy BIFF workbooks (.xls) live in an OLE2 compound document;
// everything else is handed to the zip-based xlsx reader.
var oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// Row maps a header spelling to the raw cell value. Empty cells are not
// stored, so a lookup miss means the column is absent for that row.
type Row map[string]string

// Sheet is the parsed content of the first worksheet
type Sheet struct {
	Headers []string
	Rows    []Row
}

// Parse reads a workbook from memory and flattens the first sheet into
// header-keyed rows. The reader is chosen by container magic, not by
// filename: plenty of files named .xls in the wild are really xlsx and
// the other way around. No schema is imposed at this stage; whatever
// header strings the file carries become the row keys.
func Parse(data []byte) (*Sheet, error) {
	var rows [][]string
	var err error

	if bytes.HasPrefix(data, oleMagic) {
		rows, err = legacyRows(data)
	} else {
		rows, err = workbookRows(data)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	headers := rows[0]
	sheet := &Sheet{Headers: headers}

	for _, cells := range rows[1:] {
		row := make(Row)
		for i, cell := range cells {
			if i >= len(headers) || cell == "" {
				continue
			}
			row[headers[i]] = cell
		}
		if len(row) == 0 {
			continue // blank line in the sheet
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	if len(sheet.Rows) == 0 {
		return nil, ErrEmptyFile
	}

	return sheet, nil
}

// workbookRows reads the first sheet of an xlsx workbook
func workbookRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	defer f.Close()

	// Always the first sheet, regardless of how many the workbook has
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return rows, nil
}

// legacyRows reads the first sheet of a BIFF .xls workbook
func legacyRows(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyFile
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
