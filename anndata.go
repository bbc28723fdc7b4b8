// SPDX-License-Identifier: MIT

package anndata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

// Index keys recognized by NewFromMaps, as in the anndata constructor.
const (
	ObsIndexKey = "row_names"
	VarIndexKey = "col_names"
)

// AnnData is an annotated data matrix: X holds n_obs × n_vars values, Obs
// annotates its rows, Var its columns, Uns carries anything else.
// X may be nil when Obs and Var alone define the shape.
type AnnData struct {
	X   matrix.Matrix
	Obs *frame.Frame
	Var *frame.Frame
	Uns map[string]any
	// Filename is the path the object was read from, or the default target
	// of Write.
	Filename string
}

// New assembles an AnnData. Nil obs/var get default indices sized from x;
// a nil uns becomes an empty map. Frames are used as given, not copied.
//
// Errors:
//   - ErrShape when obs/var lengths disagree with x, or when x is nil and
//     obs or var is missing.
//   - matrix.ErrNilMatrix when x is a typed nil such as (*matrix.Dense)(nil).
func New(x matrix.Matrix, obs, vars *frame.Frame, uns map[string]any) (*AnnData, error) {
	if x != nil {
		if err := matrix.ValidateNotNil(x); err != nil {
			return nil, fmt.Errorf("X: %w", err)
		}
	}
	switch {
	case x != nil:
		if obs == nil {
			obs = frame.Empty(x.Rows())
		}
		if vars == nil {
			vars = frame.Empty(x.Cols())
		}
		if obs.Len() != x.Rows() {
			return nil, fmt.Errorf("obs has %d rows, X has %d: %w", obs.Len(), x.Rows(), ErrShape)
		}
		if vars.Len() != x.Cols() {
			return nil, fmt.Errorf("var has %d rows, X has %d columns: %w", vars.Len(), x.Cols(), ErrShape)
		}
	case obs == nil && vars == nil:
		obs, vars = frame.Empty(0), frame.Empty(0)
	case obs == nil || vars == nil:
		return nil, fmt.Errorf("without X both obs and var are required: %w", ErrShape)
	}
	if uns == nil {
		uns = map[string]any{}
	}
	return &AnnData{X: x, Obs: obs, Var: vars, Uns: uns}, nil
}

// NewFromMaps builds obs and var from column maps (see frame.FromMap).
// The "row_names" entry of obsMap and "col_names" entry of varMap become
// the respective indices.
func NewFromMaps(x matrix.Matrix, obsMap, varMap map[string]any, uns map[string]any) (*AnnData, error) {
	var obs, vars *frame.Frame
	var err error
	if obsMap != nil {
		if obs, err = frame.FromMap(obsMap, ObsIndexKey); err != nil {
			return nil, fmt.Errorf("obs: %w", err)
		}
	}
	if varMap != nil {
		if vars, err = frame.FromMap(varMap, VarIndexKey); err != nil {
			return nil, fmt.Errorf("var: %w", err)
		}
	}
	return New(x, obs, vars, uns)
}

// Shape returns (n_obs, n_vars).
func (a *AnnData) Shape() (int, int) { return a.NObs(), a.NVars() }

// NObs returns the number of observations.
func (a *AnnData) NObs() int {
	if a.X != nil {
		return a.X.Rows()
	}
	if a.Obs != nil {
		return a.Obs.Len()
	}
	return 0
}

// NVars returns the number of variables.
func (a *AnnData) NVars() int {
	if a.X != nil {
		return a.X.Cols()
	}
	if a.Var != nil {
		return a.Var.Len()
	}
	return 0
}

// ObsNames returns the observation index.
func (a *AnnData) ObsNames() []string {
	if a.Obs == nil {
		return frame.DefaultIndex(a.NObs())
	}
	return a.Obs.Index()
}

// VarNames returns the variable index.
func (a *AnnData) VarNames() []string {
	if a.Var == nil {
		return frame.DefaultIndex(a.NVars())
	}
	return a.Var.Index()
}

// Validate checks that obs and var agree with X.
func (a *AnnData) Validate() error {
	if a == nil {
		return ErrNilAnnData
	}
	_, err := New(a.X, a.Obs, a.Var, a.Uns)
	return err
}

// Copy returns a deep copy: matrix, frames and uns (maps and slices) are
// duplicated.
func (a *AnnData) Copy() *AnnData {
	out := &AnnData{Filename: a.Filename, Uns: copyMapping(a.Uns)}
	if a.X != nil {
		out.X = a.X.Clone()
	}
	if a.Obs != nil {
		out.Obs = a.Obs.Clone()
	}
	if a.Var != nil {
		out.Var = a.Var.Clone()
	}
	return out
}

// StringsToCategoricals converts, in place, every string column of obs and
// var whose values repeat into a categorical (categories in first-seen order).
func (a *AnnData) StringsToCategoricals() {
	a.Obs = frame.InferCategoricals(a.Obs)
	a.Var = frame.InferCategoricals(a.Var)
}

// String renders a one-screen summary.
func (a *AnnData) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "AnnData object with n_obs × n_vars = %d × %d", a.NObs(), a.NVars())
	if a.X != nil {
		if _, sparse := a.X.(*matrix.CSR); sparse {
			b.WriteString(" (sparse)")
		}
	} else {
		b.WriteString(" (no X)")
	}
	section := func(name string, keys []string) {
		if len(keys) == 0 {
			return
		}
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = "'" + k + "'"
		}
		fmt.Fprintf(&b, "\n    %s: %s", name, strings.Join(quoted, ", "))
	}
	if a.Obs != nil {
		section("obs", a.Obs.Names())
	}
	if a.Var != nil {
		section("var", a.Var.Names())
	}
	unsKeys := make([]string, 0, len(a.Uns))
	for k := range a.Uns {
		unsKeys = append(unsKeys, k)
	}
	sort.Strings(unsKeys)
	section("uns", unsKeys)
	return b.String()
}

func copyMapping(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyMapping(x)
	case []string:
		return append([]string(nil), x...)
	case []float64:
		return append([]float64(nil), x...)
	case []float32:
		return append([]float32(nil), x...)
	case []int:
		return append([]int(nil), x...)
	case []int32:
		return append([]int32(nil), x...)
	case []int64:
		return append([]int64(nil), x...)
	case []bool:
		return append([]bool(nil), x...)
	case matrix.Matrix:
		return x.Clone()
	case *frame.Frame:
		return x.Clone()
	}
	return v
}
