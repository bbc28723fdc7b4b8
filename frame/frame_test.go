package frame_test

import (
	"testing"

	"github.com/katalvlaran/anndata/frame"
	"github.com/stretchr/testify/require"
)

// obsFixture mirrors the observation annotations used across the repository.
func obsFixture() map[string]any {
	return map[string]any{
		"row_names": []string{"name1", "name2", "name3"},
		"oanno1":    []string{"cat1", "cat2", "cat2"},
		"oanno2":    []string{"o1", "o2", "o3"},
		"oanno3":    []float64{2.1, 2.2, 2.3},
	}
}

func TestFromMapIndexAndOrder(t *testing.T) {
	f, err := frame.FromMap(obsFixture(), "row_names")
	require.NoError(t, err)
	require.Equal(t, []string{"name1", "name2", "name3"}, f.Index()) // index extracted
	require.Equal(t, "row_names", f.IndexName())                     // index name kept
	require.Equal(t, []string{"oanno1", "oanno2", "oanno3"}, f.Names())
	require.Equal(t, 3, f.Len())

	c, err := f.Column("oanno3")
	require.NoError(t, err)
	require.Equal(t, frame.Float64, c.DType())
}

func TestFromMapDefaultIndex(t *testing.T) {
	f, err := frame.FromMap(map[string]any{"vanno1": []float64{3.1, 3.2}}, "col_names")
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1"}, f.Index())
	require.Equal(t, "", f.IndexName())
}

func TestFromMapErrors(t *testing.T) {
	_, err := frame.FromMap(map[string]any{"a": []complex128{1}}, "")
	require.ErrorIs(t, err, frame.ErrUnsupportedType)

	_, err = frame.FromMap(map[string]any{"a": []float64{1, 2}, "b": []float64{1}}, "")
	require.ErrorIs(t, err, frame.ErrLengthMismatch)

	_, err = frame.FromMap(map[string]any{"idx": []int{1}}, "idx")
	require.ErrorIs(t, err, frame.ErrUnsupportedType)
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := frame.New([]string{"a"}, frame.NewFloat64("x", []float64{1}), frame.NewString("x", []string{"s"}))
	require.ErrorIs(t, err, frame.ErrDuplicateColumn)
}

func TestSetColumnAndDrop(t *testing.T) {
	f, err := frame.New([]string{"a", "b"},
		frame.NewFloat64("x", []float64{1, 2}),
		frame.NewInt64("y", []int64{3, 4}),
		frame.NewBool("z", []bool{true, false}),
	)
	require.NoError(t, err)

	require.NoError(t, f.SetColumn(frame.NewString("y", []string{"p", "q"}))) // replace in place
	require.Equal(t, []string{"x", "y", "z"}, f.Names())

	require.ErrorIs(t, f.SetColumn(frame.NewString("w", []string{"p"})), frame.ErrLengthMismatch)

	require.NoError(t, f.Drop("x"))
	require.Equal(t, []string{"y", "z"}, f.Names())
	c, err := f.Column("z")
	require.NoError(t, err)
	require.Equal(t, "True", c.Format(0))

	require.ErrorIs(t, f.Drop("x"), frame.ErrColumnNotFound)
	_, err = f.Column("x")
	require.ErrorIs(t, err, frame.ErrColumnNotFound)
}

func TestCloneIsDeep(t *testing.T) {
	f, err := frame.New([]string{"a"}, frame.NewFloat64("x", []float64{1}))
	require.NoError(t, err)
	g := f.Clone()
	require.NoError(t, g.SetIndex([]string{"b"}))
	g.Columns()[0].(*frame.Float64Column).Values()[0] = 9

	require.Equal(t, []string{"a"}, f.Index())
	c, _ := f.Column("x")
	require.Equal(t, 1.0, c.(*frame.Float64Column).Values()[0])
}

func TestSetIndexLength(t *testing.T) {
	f := frame.Empty(2)
	require.Equal(t, []string{"0", "1"}, f.Index())
	require.ErrorIs(t, f.SetIndex([]string{"a"}), frame.ErrLengthMismatch)
}
