package match

import "context"

// RowSource yields raw match and roster rows from the data source.
type RowSource interface {
	FetchMatchRows(ctx context.Context) ([]Row, error)
	FetchTeamRows(ctx context.Context) ([]Row, error)
}
