package domain

import "context"

// Extractor turns a row of label images into a structured extraction result.
// Transport failures are returned as errors; refusals are returned as results.
type Extractor interface {
	Extract(ctx context.Context, row ProductRow) (*ExtractionResult, error)
}

// DocumentSink appends one product record to a persistent collection and
// returns the id assigned to the new document.
type DocumentSink interface {
	Insert(ctx context.Context, record *ProductRecord) (string, error)
}

// ProductRepository reads stored products back
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*StoredProduct, error)
	FindByName(ctx context.Context, name string) (*StoredProduct, error)
}

// RowSource streams product rows from an input file. The error channel
// carries at most one fatal read error; both channels close when the
// stream ends.
type RowSource interface {
	Rows(ctx context.Context) (<-chan ProductRow, <-chan error)
}
