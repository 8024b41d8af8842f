package diagram

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/outline"
	"github.com/starford/ansuz/internal/render"
)

func testInstance(t *testing.T, fr *fakeRenderer, docs *fakeDocs, prefs Preferences) *Instance {
	t.Helper()
	return NewInstance(InstanceConfig{
		Renderer:     fr,
		Parser:       outline.NewParser(),
		Docs:         docs,
		Prefs:        prefs,
		StylingDelay: 10 * time.Millisecond,
	})
}

func TestUpdate_RendersBoundDocument(t *testing.T) {
	fr := &fakeRenderer{}
	docs := &fakeDocs{texts: map[string]string{"plan.md": "# Plan\n## Step\n"}}
	in := testInstance(t, fr, docs, Preferences{})
	in.BindDocument("plan.md", "plan")

	in.Update("")

	calls, fits, title := fr.snapshot()
	if calls != 1 {
		t.Fatalf("SetData calls = %d, want 1", calls)
	}
	if fits != 1 {
		t.Errorf("Fit calls = %d, want 1", fits)
	}
	if title != "Mind map of plan" {
		t.Errorf("title = %q", title)
	}
	if fr.root == nil || fr.root.Content != "Plan" {
		t.Errorf("pushed tree root = %+v", fr.root)
	}
}

func TestUpdate_InlineTextWinsOverDocument(t *testing.T) {
	fr := &fakeRenderer{}
	docs := &fakeDocs{texts: map[string]string{"plan.md": "# FromFile\n"}}
	in := testInstance(t, fr, docs, Preferences{})
	in.BindDocument("plan.md", "plan")

	in.Update("# Inline\n## X\n")

	if docs.reads != 0 {
		t.Errorf("document read despite inline text")
	}
	if fr.root.Content != "Inline" {
		t.Errorf("root = %q, want Inline", fr.root.Content)
	}
}

func TestUpdate_NoDocumentEndsSilently(t *testing.T) {
	fr := &fakeRenderer{}
	in := testInstance(t, fr, &fakeDocs{}, Preferences{})

	in.Update("")

	if calls, _, _ := fr.snapshot(); calls != 0 {
		t.Errorf("SetData calls = %d, want 0", calls)
	}
}

func TestUpdate_EmptyTextLeavesPriorRender(t *testing.T) {
	fr := &fakeRenderer{}
	docs := &fakeDocs{texts: map[string]string{"plan.md": "# Plan\n"}}
	in := testInstance(t, fr, docs, Preferences{})
	in.BindDocument("plan.md", "plan")
	in.Update("")

	docs.mu.Lock()
	docs.texts["plan.md"] = "   \n"
	docs.mu.Unlock()
	in.Update("")

	calls, _, _ := fr.snapshot()
	if calls != 1 {
		t.Errorf("SetData calls = %d, want 1 (empty cycle must not render)", calls)
	}
	if fr.root.Content != "Plan" {
		t.Errorf("prior tree replaced: %q", fr.root.Content)
	}
}

func TestUpdate_ReadFailureLeavesPriorRender(t *testing.T) {
	fr := &fakeRenderer{}
	docs := &fakeDocs{texts: map[string]string{"plan.md": "# Plan\n"}}
	in := testInstance(t, fr, docs, Preferences{})
	in.BindDocument("plan.md", "plan")
	in.Update("")

	docs.mu.Lock()
	docs.err = errors.New("io error")
	docs.mu.Unlock()
	in.Update("")

	if calls, _, _ := fr.snapshot(); calls != 1 {
		t.Errorf("SetData calls = %d, want 1", calls)
	}
}

func TestUpdate_ParseFailureLeavesPriorRender(t *testing.T) {
	fr := &fakeRenderer{}
	in := NewInstance(InstanceConfig{
		Renderer:     fr,
		Parser:       failParser{},
		Docs:         &fakeDocs{},
		StylingDelay: 10 * time.Millisecond,
	})

	in.Update("# anything\n")

	if calls, _, _ := fr.snapshot(); calls != 0 {
		t.Errorf("SetData calls = %d, want 0", calls)
	}
}

func TestUpdate_FitOncePerBinding(t *testing.T) {
	fr := &fakeRenderer{}
	docs := &fakeDocs{texts: map[string]string{"a.md": "# A\n", "b.md": "# B\n"}}
	in := testInstance(t, fr, docs, Preferences{})

	in.BindDocument("a.md", "a")
	in.Update("")
	in.Update("")
	in.Update("")
	if _, fits, _ := fr.snapshot(); fits != 1 {
		t.Errorf("fits = %d, want 1", fits)
	}

	in.BindDocument("b.md", "b")
	in.Update("")
	if _, fits, _ := fr.snapshot(); fits != 2 {
		t.Errorf("fits after rebind = %d, want 2", fits)
	}
}

func TestUpdate_FrontmatterPaletteDrivesColor(t *testing.T) {
	fr := &fakeRenderer{}
	doc := "---\nmarkmap:\n  color:\n    - \"#111\"\n    - \"#222\"\n---\n# T\n## A\n"
	in := testInstance(t, fr, &fakeDocs{}, Preferences{ColorMode: ColorModeDepth})

	in.Update(doc)

	if fr.color == nil {
		t.Fatal("no color function pushed")
	}
	want := []string{"#111", "#222", "#111", "#222"}
	for depth, w := range want {
		if got := fr.color(depth); got != w {
			t.Errorf("color(%d) = %q, want %q", depth, got, w)
		}
	}
}

func TestUpdate_ScreenshotColorsStored(t *testing.T) {
	fr := &fakeRenderer{}
	doc := "---\nmarkmap:\n  screenshotTextColor: \"#333\"\n  screenshotBgColor: \"#eee\"\n---\n# T\n"
	var gotText, gotBG string
	in := NewInstance(InstanceConfig{
		Renderer:     fr,
		Parser:       outline.NewParser(),
		Docs:         &fakeDocs{},
		StylingDelay: 10 * time.Millisecond,
		Screenshot: func(text, bg string) error {
			gotText, gotBG = text, bg
			return nil
		},
	})

	in.Update(doc)
	if err := in.Screenshot(); err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if gotText != "#333" || gotBG != "#eee" {
		t.Errorf("screenshot colors = %q, %q", gotText, gotBG)
	}
}

func TestScreenshot_FailureReported(t *testing.T) {
	in := NewInstance(InstanceConfig{
		Renderer:   &fakeRenderer{},
		Parser:     outline.NewParser(),
		Docs:       &fakeDocs{},
		Screenshot: func(string, string) error { return errors.New("no clipboard") },
	})
	if err := in.Screenshot(); err == nil {
		t.Error("expected error")
	}
}

func TestUpdate_CodeBlockRulesIdempotent(t *testing.T) {
	fr := &fakeRenderer{}
	in := testInstance(t, fr, &fakeDocs{}, Preferences{CodeBlockBackground: "#202020"})

	in.Update("# T\n")
	in.Update("# T\n")

	if len(fr.rules) != 2 {
		t.Errorf("rules = %v, want exactly 2", fr.rules)
	}
	for _, r := range fr.rules {
		if !strings.Contains(r, "#202020") {
			t.Errorf("rule missing configured background: %q", r)
		}
	}
}

func TestCollapseAll_ForcesExpandLevelZero(t *testing.T) {
	fr := &fakeRenderer{}
	in := testInstance(t, fr, &fakeDocs{}, Preferences{})
	in.Update("# T\n## A\n")

	in.CollapseAll()

	calls, _, _ := fr.snapshot()
	if calls != 2 {
		t.Fatalf("SetData calls = %d, want 2", calls)
	}
	if got := fr.opts.Int("initialExpandLevel", -1); got != 0 {
		t.Errorf("initialExpandLevel = %d, want 0", got)
	}
}

func TestCollapseAll_NoOpBeforeFirstRender(t *testing.T) {
	fr := &fakeRenderer{}
	in := testInstance(t, fr, &fakeDocs{}, Preferences{})
	in.CollapseAll()
	if calls, _, _ := fr.snapshot(); calls != 0 {
		t.Errorf("SetData calls = %d, want 0", calls)
	}
}

func TestUpdate_SupersededStylingPassSkipped(t *testing.T) {
	fr := &fakeRenderer{
		connectors: []*render.Element{
			{Kind: render.KindConnector, Depth: 1, StrokeWidth: render.DefaultStrokeWidth},
		},
	}
	in := NewInstance(InstanceConfig{
		Renderer:     fr,
		Parser:       outline.NewParser(),
		Docs:         &fakeDocs{},
		Prefs:        Preferences{StrokeWidths: [4]float64{6, 4, 3, 2}},
		StylingDelay: 20 * time.Millisecond,
	})

	in.Update("# T\n## A\n")
	// A newer cycle starts before the styling delay elapses. It ends
	// silently (no document), so it schedules no pass of its own.
	in.Update("")

	time.Sleep(100 * time.Millisecond)
	if w := fr.Connectors()[0].StrokeWidth; w != render.DefaultStrokeWidth {
		t.Errorf("superseded styling pass ran: width = %v", w)
	}
}

func TestUpdate_StylingPassRunsAfterDelay(t *testing.T) {
	fr := &fakeRenderer{
		connectors: []*render.Element{
			{Kind: render.KindConnector, Depth: 1, StrokeWidth: render.DefaultStrokeWidth},
		},
	}
	in := NewInstance(InstanceConfig{
		Renderer:     fr,
		Parser:       outline.NewParser(),
		Docs:         &fakeDocs{},
		Prefs:        Preferences{StrokeWidths: [4]float64{6, 4, 3, 2}},
		StylingDelay: 5 * time.Millisecond,
	})

	in.Update("# T\n## A\n")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if fr.Connectors()[0].StrokeWidth == 4 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Errorf("styling pass never ran: width = %v", fr.Connectors()[0].StrokeWidth)
}
