// Package logging builds the slog logger shared by the aspp command and its
// packages.
package logging
