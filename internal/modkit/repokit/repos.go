// Package repokit provides the shared repository seams so repos never import a driver
package repokit

import "platewise/internal/platform/store"

type (
	// Queryer is the read and write surface for SQL repos
	Queryer = store.RowQuerier
	// TxRunner executes a function inside a transaction
	TxRunner = store.TxRunner
	// Rows is a result set
	Rows = store.Rows
	// Row is a single row
	Row = store.Row
	// CommandTag reports a write result
	CommandTag = store.CommandTag
	// Columnar is the clickhouse seam
	Columnar = store.Clickhouse
)

