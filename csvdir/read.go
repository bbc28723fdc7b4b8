// SPDX-License-Identifier: MIT

package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

func readTable(path string, sep rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", path, err, ErrNotCSV)
		}
		rows = append(rows, rec)
	}
}

// ReadMatrixCSV reads a single matrix CSV: the header row holds variable
// names and, unless WithFirstColumnNames(false), the first column holds
// observation names.
func ReadMatrixCSV(path string, opts ...Option) (*Contents, error) {
	o := gatherOptions(opts)
	rows, err := readTable(path, o.sep)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", path, ErrNotCSV)
	}
	header, body := rows[0], rows[1:]
	nCols := len(header)
	if len(body) > 0 {
		nCols = len(body[0])
		if o.firstColumns {
			nCols--
		}
	}
	varNames := header
	if len(header) == nCols+1 {
		varNames = header[1:] // corner label above the names column
	}
	if len(varNames) != nCols {
		return nil, fmt.Errorf("%s: %d names for %d columns: %w", path, len(varNames), nCols, ErrNotCSV)
	}
	obsNames := make([]string, len(body))
	data := make([]float64, 0, len(body)*nCols)
	for i, rec := range body {
		if o.firstColumns {
			if len(rec) == 0 {
				return nil, fmt.Errorf("%s: line %d empty: %w", path, i+2, ErrNotCSV)
			}
			obsNames[i], rec = rec[0], rec[1:]
		} else {
			obsNames[i] = strconv.Itoa(i)
		}
		if len(rec) != nCols {
			return nil, fmt.Errorf("%s: line %d has %d values, want %d: %w", path, i+2, len(rec), nCols, ErrNotCSV)
		}
		vals, ok := parseFloats(rec)
		if !ok {
			return nil, fmt.Errorf("%s: line %d is not numeric: %w", path, i+2, ErrNotCSV)
		}
		data = append(data, vals...)
	}
	x, err := matrix.NewDenseFromData(len(body), nCols, data)
	if err != nil {
		return nil, err
	}
	obs, err := frame.New(obsNames)
	if err != nil {
		return nil, err
	}
	vars, err := frame.New(varNames)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("read matrix csv", zap.String("path", path), zap.Int("n_obs", len(body)), zap.Int("n_vars", nCols))
	return &Contents{X: x, Obs: obs, Var: vars, Uns: map[string]any{}}, nil
}

// ReadDir reads a directory written by WriteDir. Column types follow
// columnFromStrings; string columns are inferred as categoricals unless
// disabled. X is nil when X.csv is absent.
func ReadDir(ctx context.Context, dir string, opts ...Option) (*Contents, error) {
	o := gatherOptions(opts)
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, ErrNotCSV)
	}
	out := &Contents{Uns: map[string]any{}}
	if out.Obs, err = readFrameFile(filepath.Join(dir, ObsFile), o); err != nil {
		return nil, err
	}
	if out.Var, err = readFrameFile(filepath.Join(dir, VarFile), o); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, XFile)); err == nil {
		rows, err := readTable(filepath.Join(dir, XFile), o.sep)
		if err != nil {
			return nil, err
		}
		x, err := denseFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", XFile, err)
		}
		// an n×0 or 0×n matrix is written as blank lines, which read as no rows
		if len(rows) == 0 && out.Obs != nil && out.Var != nil && out.Obs.Len()*out.Var.Len() == 0 {
			if x, err = matrix.NewDense(out.Obs.Len(), out.Var.Len()); err != nil {
				return nil, err
			}
		}
		out.X = x
	}
	if st, err := os.Stat(filepath.Join(dir, UnsDir)); err == nil && st.IsDir() {
		if out.Uns, err = readMapping(ctx, filepath.Join(dir, UnsDir), o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readFrameFile returns nil when the file does not exist.
func readFrameFile(path string, o options) (*frame.Frame, error) {
	rows, err := readTable(path, o.sep)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := frameFromRows(path, rows)
	if err != nil {
		return nil, err
	}
	if o.infer {
		f = frame.InferCategoricals(f)
	}
	return f, nil
}

func frameFromRows(path string, rows [][]string) (*frame.Frame, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header: %w", path, ErrNotCSV)
	}
	header, body := rows[0], rows[1:]
	index := make([]string, len(body))
	cells := make([][]string, len(header)-1)
	for i, rec := range body {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%s: line %d has %d fields, want %d: %w", path, i+2, len(rec), len(header), ErrNotCSV)
		}
		index[i] = rec[0]
		for j := range cells {
			cells[j] = append(cells[j], rec[j+1])
		}
	}
	cols := make([]frame.Column, len(cells))
	for j, vals := range cells {
		if vals == nil {
			vals = []string{}
		}
		cols[j] = columnFromStrings(header[j+1], vals)
	}
	f, err := frame.New(index, cols...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if header[0] != blankIndexHeader {
		f.SetIndexName(header[0])
	}
	return f, nil
}

// columnFromStrings restores the column type from its text: True/False
// cells read as bool, integer literals as int64 and numbers as float64.
// Empty cells only occur in float64 columns (NaN) and strings.
func columnFromStrings(name string, vals []string) frame.Column {
	nonEmpty := 0
	for _, v := range vals {
		if v != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return frame.NewString(name, vals)
	}
	if nonEmpty == len(vals) {
		if b, ok := parseBools(vals); ok {
			return frame.NewBool(name, b)
		}
		if n, ok := parseInts(vals); ok {
			return frame.NewInt64(name, n)
		}
	}
	if f, ok := parseFloats(vals); ok {
		return frame.NewFloat64(name, f)
	}
	return frame.NewString(name, vals)
}

func parseBools(vals []string) ([]bool, bool) {
	out := make([]bool, len(vals))
	for i, v := range vals {
		switch v {
		case "True":
			out[i] = true
		case "False":
		default:
			return nil, false
		}
	}
	return out, true
}

func parseInts(vals []string) ([]int64, bool) {
	out := make([]int64, len(vals))
	for i, v := range vals {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func parseFloats(vals []string) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if strings.TrimSpace(v) == "" {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func denseFromRows(rows [][]string) (*matrix.Dense, error) {
	if len(rows) == 0 {
		return matrix.NewDense(0, 0)
	}
	data := make([][]float64, len(rows))
	for i, rec := range rows {
		vals, ok := parseFloats(rec)
		if !ok {
			return nil, fmt.Errorf("line %d is not numeric: %w", i+1, ErrNotCSV)
		}
		data[i] = vals
	}
	return matrix.NewDenseFromRows(data)
}

// readMapping reverses writeMapping. A file holding one field reads as a
// scalar, one column as a slice, a numeric grid as a matrix.
func readMapping(ctx context.Context, dir string, o options) (map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			sub, err := readMapping(ctx, p, o)
			if err != nil {
				return nil, err
			}
			out[e.Name()] = sub
			continue
		}
		key, ok := strings.CutSuffix(e.Name(), ".csv")
		if !ok {
			continue
		}
		rows, err := readTable(p, o.sep)
		if err != nil {
			return nil, err
		}
		out[key] = valueFromRows(rows)
	}
	return out, nil
}

func valueFromRows(rows [][]string) any {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	switch {
	case len(rows) == 0:
		return []string{}
	case width == 1 && len(rows) == 1:
		if f, ok := parseFloats(rows[0]); ok && rows[0][0] != "" {
			return f[0]
		}
		return rows[0][0]
	case width == 1:
		vals := make([]string, len(rows))
		for i, r := range rows {
			vals[i] = r[0]
		}
		if f, ok := parseFloats(vals); ok {
			return f
		}
		return vals
	}
	if d, err := denseFromRows(rows); err == nil {
		return d
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, ",")
	}
	return lines
}
