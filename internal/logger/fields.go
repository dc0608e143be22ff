package logger

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so runs can be
// grepped and aggregated by field.
const (
	// Run lifecycle
	KeyMode   = "mode"   // "dry-run" or "execute"
	KeyTarget = "target" // store target (credentials redacted)
	KeyError  = "error"  // error detail

	// Scan phase
	KeyChunksScanned = "chunks_scanned" // chunk records observed so far
	KeyDistinctFiles = "distinct_files" // distinct parent identifiers observed
	KeyValidFiles    = "valid_files"    // identifiers with live metadata
	KeyOrphanFiles   = "orphan_files"   // identifiers without metadata

	// Reconcile phase
	KeyFileID         = "file_id"         // parent file identifier
	KeyChunks         = "chunks"          // chunk count for one file
	KeyFilesProcessed = "files_processed" // orphans handled so far
	KeyFailedFiles    = "failed_files"    // identifiers whose delete failed
)
