// Package errors provides structured error types for better observability
// and programmatic error handling across blobpush.
//
// Every fatal condition of a publish run maps to one ErrorCode: CONFIG,
// TOOL_MISSING, CONVERSION, IO, MALFORMED_MANIFEST and UPLOAD. The Context map
// names the failing step and artifact so the message printed on exit is
// actionable.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUpload,
//	    "failed to upload blob",
//	    cause,
//	    map[string]any{
//	        "artifact": digest,
//	        "key":      key,
//	    },
//	)
package errors
