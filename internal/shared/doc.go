// Package shared holds helpers used by more than one pvflash package.
//
// The testutil subpackage provides the captured slog handler, filename and
// parameter-table fixtures, and a fake IV analysis engine for tests.
package shared
