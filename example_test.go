// SPDX-License-Identifier: MIT

package anndata_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/anndata"
	"github.com/katalvlaran/anndata/blob/memory"
	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

// ExampleAnnData_WriteZarr round-trips a small matrix through an in-memory
// zarr store and shows the repeating string column coming back categorical.
func ExampleAnnData_WriteZarr() {
	ctx := context.Background()
	x, _ := matrix.NewDenseFromRows([][]float64{{1, 0}, {3, 0}, {5, 6}})
	a, _ := anndata.NewFromMaps(x,
		map[string]any{
			anndata.ObsIndexKey: []string{"name1", "name2", "name3"},
			"cell_type":         []string{"T", "B", "B"},
		},
		map[string]any{anndata.VarIndexKey: []string{"CD3E", "MS4A1"}},
		nil)

	store := memory.New()
	if err := a.WriteZarr(ctx, store, "pbmc.zarr"); err != nil {
		fmt.Println(err)
		return
	}
	b, err := anndata.ReadZarr(ctx, store, "pbmc.zarr")
	if err != nil {
		fmt.Println(err)
		return
	}
	col, _ := b.Obs.Column("cell_type")
	fmt.Println(b.NObs(), b.NVars(), b.VarNames())
	fmt.Println(col.(*frame.Categorical).Categories())

	// Output:
	// 3 2 [CD3E MS4A1]
	// [T B]
}

// ExampleAnnData_String prints the summary shown by the inspect command.
func ExampleAnnData_String() {
	x, _ := matrix.NewCSRFromRows([][]float64{{0, 1}, {2, 0}})
	a, _ := anndata.NewFromMaps(x, map[string]any{"batch": []int{1, 2}}, nil, map[string]any{"note": "demo"})
	fmt.Println(a)

	// Output:
	// AnnData object with n_obs × n_vars = 2 × 2 (sparse)
	//     obs: 'batch'
	//     uns: 'note'
}
