// Package frame provides the row and column annotation tables of an
// annotated matrix: an ordered set of typed columns sharing a string index.
//
// Column kinds are closed: Float64Column, Int64Column, BoolColumn,
// StringColumn and Categorical. InferCategoricals turns repetitive text
// columns into categoricals whose categories keep first-encounter order.
package frame
