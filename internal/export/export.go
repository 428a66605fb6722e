/* Copyright (c) 2025 NDB Date Mover Team
 * SPDX-License-Identifier: BSD-3-Clause */

// Package export renders enriched query results as CSV or XLSX using the
// configured display columns.
package export

import (
    "encoding/csv"
    "fmt"
    "io"
    "strings"

    "github.com/xuri/excelize/v2"

    "github.com/ntnxnam/ndb-date-mover/internal/domain"
)

const sheetName = "Issues"

// Table is the flattened, display-ready form of a result set.
type Table struct {
    Headers []string
    Rows    [][]string
}

// BuildTable flattens issues into rows following the display column order.
// Date columns use their formatted value when enrichment produced one; a
// tracked column is followed by a derived "<name> Slip" column. Column
// headers come from the field names map, falling back to the raw ID.
func BuildTable(issues []map[string]any, columns []string, names map[string]string) Table {
    slipColumns := map[string]bool{}
    for _, issue := range issues {
        fields, _ := issue["fields"].(map[string]any)
        for _, col := range columns {
            if _, ok := fields[col+"_week_slip"]; ok { slipColumns[col] = true }
        }
    }

    var t Table
    for _, col := range columns {
        t.Headers = append(t.Headers, headerFor(col, names))
        if slipColumns[col] { t.Headers = append(t.Headers, headerFor(col, names)+" Slip") }
    }

    for _, issue := range issues {
        fields, _ := issue["fields"].(map[string]any)
        var row []string
        for _, col := range columns {
            row = append(row, cellValue(issue, fields, col))
            if slipColumns[col] { row = append(row, slipValue(fields, col)) }
        }
        t.Rows = append(t.Rows, row)
    }
    return t
}

func headerFor(col string, names map[string]string) string {
    if n := names[col]; n != "" { return n }
    return col
}

func cellValue(issue, fields map[string]any, col string) string {
    if col == "key" {
        k, _ := issue["key"].(string)
        return k
    }
    if fields == nil { return "" }
    if v, ok := fields[col+"_formatted"].(string); ok && v != "" { return v }
    return flatten(fields[col])
}

func slipValue(fields map[string]any, col string) string {
    if ws, ok := fields[col+"_week_slip"].(domain.SlipResult); ok { return ws.Display }
    return ""
}

func flatten(v any) string {
    switch t := v.(type) {
    case nil:
        return ""
    case string:
        return t
    case map[string]any:
        for _, k := range []string{"displayName", "name", "value"} {
            if s, ok := t[k].(string); ok && s != "" { return s }
        }
        return ""
    case []any:
        parts := make([]string, 0, len(t))
        for _, e := range t {
            if s := flatten(e); s != "" { parts = append(parts, s) }
        }
        return strings.Join(parts, ", ")
    case float64:
        return fmt.Sprintf("%v", t)
    default:
        return fmt.Sprint(t)
    }
}

// WriteCSV streams the table as CSV.
func WriteCSV(w io.Writer, t Table) error {
    cw := csv.NewWriter(w)
    if err := cw.Write(t.Headers); err != nil { return err }
    for _, row := range t.Rows {
        if err := cw.Write(row); err != nil { return err }
    }
    cw.Flush()
    return cw.Error()
}

// WriteXLSX streams the table as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table) error {
    f := excelize.NewFile()
    defer f.Close()

    idx, err := f.NewSheet(sheetName)
    if err != nil { return err }
    if err := f.DeleteSheet("Sheet1"); err != nil { return err }
    f.SetActiveSheet(idx)

    for i, h := range t.Headers {
        cell, err := excelize.CoordinatesToCellName(i+1, 1)
        if err != nil { return err }
        if err := f.SetCellValue(sheetName, cell, h); err != nil { return err }
    }
    for r, row := range t.Rows {
        for i, v := range row {
            cell, err := excelize.CoordinatesToCellName(i+1, r+2)
            if err != nil { return err }
            if err := f.SetCellValue(sheetName, cell, v); err != nil { return err }
        }
    }
    for i := range t.Headers {
        col, err := excelize.ColumnNumberToName(i + 1)
        if err != nil { return err }
        if err := f.SetColWidth(sheetName, col, col, 20); err != nil { return err }
    }
    return f.Write(w)
}
