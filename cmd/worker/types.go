package main

import (
	"context"

	"github.com/imrishuroy/dispatch-board/internal/dispatch"
)

// Submitter posts one encoded submission to the ingestion endpoint.
type Submitter interface {
	SubmitRaw(ctx context.Context, body []byte) (dispatch.Record, error)
}
