// Package lodestar provides a Go client for the lodestar hybrid retrieval
// service.
//
//	client, _ := lodestar.New("http://localhost:8080",
//	    lodestar.WithAPIKey("secret-key"),
//	)
//
//	doc, _ := client.Ingest(ctx, lodestar.IngestRequest{
//	    Filename: "contract.pdf",
//	    FileType: "pdf",
//	    Text:     extractedText,
//	    Source:   "legal",
//	})
//
//	res, _ := client.Search(ctx, lodestar.SearchRequest{
//	    Query: "termination clause",
//	    TopK:  5,
//	})
//
// All methods return sentinel errors (ErrNotFound, ErrInvalidArgument, ...)
// matchable with errors.Is.
package lodestar
