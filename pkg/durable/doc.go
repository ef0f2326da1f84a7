// Package durable writes small files so that a reader always sees either the
// previous complete contents or the new complete contents, never a torn file.
//
// Two writers are provided:
//
//   - [Writer] is used on ordinary code paths. It writes a temporary file,
//     fsyncs it, renames it over the target and fsyncs the parent directory,
//     retrying transient failures with a jittered exponential [Backoff].
//   - [CrashWriter] is prepared ahead of time and used from crash handling.
//     On Linux it issues raw syscalls against a pre-opened directory handle
//     and pre-built file names, so a write performs no heap allocation and
//     takes no lock shared with other code.
//
// The two writers use distinct temporary names so a crash write racing a
// normal write cannot interleave bytes in the same temporary file.
package durable
