package scene

import (
	"testing"
	"time"

	"github.com/smeltergo/compositor/internal/ids"
)

type fakeRegistry struct {
	known map[ids.RendererId]bool
}

func (r fakeRegistry) RendererExists(id ids.RendererId) bool { return r.known[id] }

func TestRegisterOutputRejectsDuplicateComponentIds(t *testing.T) {
	s := NewSceneState(nil)
	root := View{Id: "root", Children: []Child{
		{Component: InputStream{Id: "dup"}},
		{Component: InputStream{Id: "dup"}},
	}}
	if err := s.RegisterOutput("out1", root); err == nil {
		t.Fatal("expected duplicate component id to be rejected")
	}
}

func TestRegisterOutputRejectsUnknownShader(t *testing.T) {
	s := NewSceneState(fakeRegistry{known: map[ids.RendererId]bool{}})
	root := Shader{Id: "s1", ShaderId: "missing"}
	if err := s.RegisterOutput("out1", root); err == nil {
		t.Fatal("expected unknown shader id to be rejected")
	}
}

func TestRegisterOutputAcrossOutputsRejectsSharedComponentId(t *testing.T) {
	s := NewSceneState(nil)
	if err := s.RegisterOutput("out1", InputStream{Id: "shared"}); err != nil {
		t.Fatalf("unexpected error registering out1: %v", err)
	}
	if err := s.RegisterOutput("out2", InputStream{Id: "shared"}); err == nil {
		t.Fatal("expected component id collision across outputs to be rejected")
	}
}

func TestUpdateUnknownOutputFails(t *testing.T) {
	s := NewSceneState(nil)
	err := s.Update("missing", InputStream{Id: "a"}, 0, nil)
	if err == nil {
		t.Fatal("expected update against unregistered output to fail")
	}
}

func TestUpdateCreatesTransitionForDeclaredComponent(t *testing.T) {
	s := NewSceneState(nil)
	start := InputStream{Id: "a", Width: w(0)}
	if err := s.RegisterOutput("out1", start); err != nil {
		t.Fatalf("register: %v", err)
	}

	end := InputStream{Id: "a", Width: w(100)}
	decl := map[ids.ComponentId]Transition{"a": {Duration: time.Second, Easing: Easing{Kind: EasingLinear}}}
	if err := s.Update("out1", end, 0, decl); err != nil {
		t.Fatalf("update: %v", err)
	}

	mid, err := s.Resolve("out1", 500*time.Millisecond)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := mid.(InputStream)
	if *got.Width != 50 {
		t.Fatalf("mid-transition width = %v, want 50", *got.Width)
	}
}

func TestUpdateTransitionKindMismatchRejected(t *testing.T) {
	s := NewSceneState(nil)
	if err := s.RegisterOutput("out1", InputStream{Id: "a"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	decl := map[ids.ComponentId]Transition{"a": {Duration: time.Second}}
	err := s.Update("out1", Text{Id: "a"}, 0, decl)
	if err == nil {
		t.Fatal("expected kind mismatch between transition start/end to be rejected")
	}
}

func TestResolveDropsFinishedTransitions(t *testing.T) {
	s := NewSceneState(nil)
	if err := s.RegisterOutput("out1", Tiles{Id: "a"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	end := Tiles{Id: "a", Margin: 4}
	decl := map[ids.ComponentId]Transition{"a": {Duration: time.Second}}
	if err := s.Update("out1", end, 0, decl); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := s.Resolve("out1", 2*time.Second); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	snaps := s.TileTransitions("out1", 2*time.Second)
	if len(snaps) != 0 {
		t.Fatalf("expected no active tile transitions once finished, got %d", len(snaps))
	}
}

func TestTileTransitionsExposesRawEndpoints(t *testing.T) {
	s := NewSceneState(nil)
	start := Tiles{Id: "t", Children: []Component{InputStream{Id: "c1"}}}
	if err := s.RegisterOutput("out1", start); err != nil {
		t.Fatalf("register: %v", err)
	}

	end := Tiles{Id: "t", Children: []Component{InputStream{Id: "c1"}, InputStream{Id: "c2"}}, Margin: 4}
	decl := map[ids.ComponentId]Transition{"t": {Duration: time.Second, Easing: Easing{Kind: EasingLinear}}}
	if err := s.Update("out1", end, 0, decl); err != nil {
		t.Fatalf("update: %v", err)
	}

	snaps := s.TileTransitions("out1", 500*time.Millisecond)
	if len(snaps) != 1 {
		t.Fatalf("expected one tile transition snapshot, got %d", len(snaps))
	}
	if len(snaps[0].Start.Children) != 1 || len(snaps[0].End.Children) != 2 {
		t.Fatalf("snapshot should expose raw start/end children unmodified")
	}
	if snaps[0].State < 0.49 || snaps[0].State > 0.51 {
		t.Fatalf("snapshot state = %v, want ~0.5", snaps[0].State)
	}
}

func TestUnregisterOutputFreesComponentIds(t *testing.T) {
	s := NewSceneState(nil)
	if err := s.RegisterOutput("out1", InputStream{Id: "a"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.UnregisterOutput("out1")
	if err := s.RegisterOutput("out2", InputStream{Id: "a"}); err != nil {
		t.Fatalf("expected id to be reusable after unregister, got: %v", err)
	}
}
