package diagram

import (
	"testing"

	"github.com/starford/ansuz/internal/outline"
)

func groupInstance(t *testing.T, reg *Registry) *Instance {
	t.Helper()
	return NewInstance(InstanceConfig{
		Renderer: &fakeRenderer{},
		Parser:   outline.NewParser(),
		Views:    reg,
	})
}

func TestRegistry_InGroupKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ViewInfo{ID: "doc-1", Type: ViewDocument, Group: "left"})
	reg.Register(ViewInfo{ID: "dia-1", Type: ViewDiagram, Group: "left"})
	reg.Register(ViewInfo{ID: "dia-2", Type: ViewDiagram, Group: "right"})

	got := reg.InGroup("left")
	if len(got) != 2 || got[0].ID != "doc-1" || got[1].ID != "dia-1" {
		t.Fatalf("InGroup(left) = %v", got)
	}
	if got := reg.InGroup("missing"); got != nil {
		t.Errorf("InGroup(missing) = %v, want nil", got)
	}
}

func TestRegistry_ReregisterKeepsPosition(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ViewInfo{ID: "a", Type: ViewDiagram, Group: "g"})
	reg.Register(ViewInfo{ID: "b", Type: ViewDiagram, Group: "g"})
	reg.Register(ViewInfo{ID: "a", Type: ViewDiagram, Group: "g"}) // replace, not append

	got := reg.InGroup("g")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("InGroup(g) = %v", got)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ViewInfo{ID: "a", Type: ViewDiagram, Group: "g"})
	reg.Unregister("a")
	reg.Unregister("a") // second remove is a no-op

	if _, ok := reg.Get("a"); ok {
		t.Error("Get after Unregister reports present")
	}
	if got := reg.InGroup("g"); got != nil {
		t.Errorf("InGroup after Unregister = %v", got)
	}
}

func TestUpdateLinkedLeaf_PicksFirstDiagramInGroup(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ViewInfo{ID: "doc-1", Type: ViewDocument, Group: "g"})
	reg.Register(ViewInfo{ID: "dia-1", Type: ViewDiagram, Group: "g"})
	reg.Register(ViewInfo{ID: "dia-2", Type: ViewDiagram, Group: "g"})

	in := groupInstance(t, reg)
	UpdateLinkedLeaf(reg, "g", in)

	v, ok := in.Companion()
	if !ok || v.ID != "dia-1" {
		t.Fatalf("Companion() = %v, %v; want dia-1", v, ok)
	}
}

func TestUpdateLinkedLeaf_NoneGroupClears(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ViewInfo{ID: "dia-1", Type: ViewDiagram, Group: "g"})

	in := groupInstance(t, reg)
	UpdateLinkedLeaf(reg, "g", in)
	UpdateLinkedLeaf(reg, GroupNone, in)

	if _, ok := in.Companion(); ok {
		t.Error("companion survived link to the none group")
	}
}

func TestUpdateLinkedLeaf_NoDiagramInGroupClears(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ViewInfo{ID: "doc-1", Type: ViewDocument, Group: "g"})

	in := groupInstance(t, reg)
	UpdateLinkedLeaf(reg, "g", in)

	if _, ok := in.Companion(); ok {
		t.Error("companion set with no diagram view in group")
	}
}

func TestCompanion_ClosedViewReportsAbsent(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ViewInfo{ID: "dia-1", Type: ViewDiagram, Group: "g"})

	in := groupInstance(t, reg)
	UpdateLinkedLeaf(reg, "g", in)
	reg.Unregister("dia-1")

	if _, ok := in.Companion(); ok {
		t.Error("companion still resolves after the view closed")
	}
}
