// Package ui provides styled terminal output for pvdash's one-shot commands.
//
// The live dashboard has its own styles in the dashboard package; this
// package covers the plain CLI surfaces: the header, status symbols and
// the per-vehicle status table.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Reporting vehicles, completed cycles
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Priority vehicles
//	ColorMuted     (gray)   - Secondary text, idle vehicles
//
// Use DisableColors() to switch to monochrome output (for --no-color flag).
package ui
