package diagram

// ApplyStyling assigns depth-bucketed stroke widths to every connector and
// node indicator and re-arms every expand/collapse toggle with schedule so a
// click queues exactly one more pass (toggling regenerates the affected
// elements with default widths). Width writes happen inside the renderer,
// under its lock, so they cannot race a concurrent serialization. The sweep
// is idempotent and a safe no-op on an empty scene.
func ApplyStyling(r Renderer, widths [4]float64, schedule func()) {
	r.ApplyStrokeWidths(widths)
	r.RearmToggles(schedule)
}
