package diagram

import "sync"

// ViewType classifies a registered host view.
type ViewType string

// Known view types.
const (
	ViewDiagram  ViewType = "diagram"
	ViewDocument ViewType = "document"
)

// GroupNone is the null group; linking against it clears the companion.
const GroupNone = ""

// ViewInfo describes one view the host currently has open.
type ViewInfo struct {
	ID    string
	Type  ViewType
	Group string
}

// Registry tracks open host views by id. The companion relation is modeled
// as a lookup into this table rather than a direct reference, so a closed
// view can never dangle.
type Registry struct {
	mu    sync.RWMutex
	order []string
	views map[string]ViewInfo
}

// NewRegistry creates an empty view registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]ViewInfo)}
}

// Register adds or replaces a view.
func (r *Registry) Register(v ViewInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.views[v.ID]; !ok {
		r.order = append(r.order, v.ID)
	}
	r.views[v.ID] = v
}

// Unregister removes a view, typically on close.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.views[id]; !ok {
		return
	}
	delete(r.views, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a view by id.
func (r *Registry) Get(id string) (ViewInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// InGroup returns the views in a named group, in registration order.
func (r *Registry) InGroup(group string) []ViewInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ViewInfo
	for _, id := range r.order {
		if v := r.views[id]; v.Group == group {
			out = append(out, v)
		}
	}
	return out
}

// UpdateLinkedLeaf links inst to the first diagram-type view in the named
// group, or clears the link for the none group, then triggers one update
// cycle. The diagram never owns the companion's lifecycle; the link is just
// a registry key.
func UpdateLinkedLeaf(reg *Registry, group string, inst *Instance) {
	if group == GroupNone {
		inst.setCompanion("")
	} else {
		id := ""
		for _, v := range reg.InGroup(group) {
			if v.Type == ViewDiagram {
				id = v.ID
				break
			}
		}
		inst.setCompanion(id)
	}
	inst.Update("")
}
