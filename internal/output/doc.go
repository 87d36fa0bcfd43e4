// Package output renders rustme command results and maps failures to exit
// codes.
//
// # Printer
//
// Every command writes through a Printer, which switches between styled
// human output and JSON:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, useColor).WithStderr(cmd.ErrOrStderr())
//	printer.Success(map[string]any{"message": "Generated 2 files"})
//	printer.Table([]string{"NAME", "VALUE"}, rows)
//
// In JSON mode errors are written to stdout as {"error": "...", "code": N}
// so scripts read a single stream.
//
// # Exit codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad configuration, unresolved reference, malformed input
//	output.ExitSystemError // 2: I/O or network failure
//	output.ExitDrift       // 3: check found documents that need regenerating
//
// Engine packages return ordinary errors; Classify converts them to an
// *ExitError with the right code at the command boundary.
package output
