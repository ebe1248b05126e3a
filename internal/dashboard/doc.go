// Package dashboard implements the adaptive polling dashboard for vehicle
// telemetry.
//
// One panel is shown per configured vehicle. Every cycle fetches the last
// event of each vehicle plus the traffic controller state, appends new
// distance samples to the panels and derives a dashboard-wide status.
//
// # Key Components
//
//	Engine      - Owns the panels; runs fetch, classify and schedule
//	Panel       - One vehicle: distance history and sample freshness
//	Classifier  - Priority (via a Policy) and idleness per panel
//	Cadence     - Picks the delay before the next cycle
//	Model       - The Bubble Tea model rendering the live dashboard
//	Loop        - Drives an Engine without a terminal (plain output)
//
// # Message Flow
//
// Cycles never overlap. Completing a cycle arms exactly one timer:
//
//  1. fetchCmd() calls Engine.Fetch off the update goroutine
//  2. cycleResultMsg arrives; Engine.Complete updates the panels
//  3. tea.Tick arms tickMsg after the cadence's next delay
//  4. tickMsg starts the next cycle unless a refresh superseded it
//
// # Status
//
// A failed cycle shows DISCONNECTED and retries at the normal interval.
// Otherwise the status is PAUSED when every panel is idle, PRIORITY when any
// panel is priority, and NORMAL otherwise.
package dashboard
