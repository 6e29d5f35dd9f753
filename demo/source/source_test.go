package source

import (
	"bytes"
	"io"
	"log"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"timeline.znkr.io/demo/model"
	"timeline.znkr.io/demo/modification"
)

func newTestSource(t model.Timeline, w io.Writer) *Source {
	return New(t,
		WithLogger(log.New(w, "", 0)),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
}

func elementsOf(s *Source, sec model.Section) []model.Element {
	var ret []model.Element
	for _, it := range s.Items(sec) {
		ret = append(ret, it.Element())
	}
	return ret
}

// checkParallel verifies that the items show exactly the elements of the current timeline.
func checkParallel(t *testing.T, s *Source) {
	t.Helper()
	tl := s.Timeline()
	for _, sec := range model.Sections {
		want := tl.Elements(sec)
		if diff := cmp.Diff(want, elementsOf(s, sec)); diff != "" && !(len(want) == 0 && s.Len(sec) == 0) {
			t.Errorf("%v items are out of sync (-timeline +items):\n%s", sec, diff)
		}
	}
}

func TestUpdateSameTimeline(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSource(model.Initial(), &buf)

	if changes := s.Update(model.Initial()); changes != nil {
		t.Errorf("Update() = %v, want nil", changes)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %q", buf.String())
	}
	if got := s.Snapshot().Seq; got != 0 {
		t.Errorf("Seq = %d, want 0", got)
	}
}

func TestUpdate(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSource(model.Initial(), &buf)
	keptAudio := s.audios[1]
	renamedEffect := s.effects[0]

	next := model.Initial()
	next.Videos = next.Videos[:3]
	next.Audios = next.Audios[1:]
	next.Effects[0] = model.Effect{Name: "Stars", IconName: "star"}

	changes := s.Update(next)

	want := []Change{
		{
			Section: model.Videos,
			Modifications: []modification.Modification[model.Element]{
				{Op: modification.Remove, Offset: 3, Old: model.Video{Name: "City Lights"}},
			},
		},
		{
			Section: model.Audios,
			Modifications: []modification.Modification[model.Element]{
				{Op: modification.Remove, Offset: 0, Old: model.Initial().Audios[0]},
			},
		},
		{
			Section: model.Effects,
			Modifications: []modification.Modification[model.Element]{
				{Op: modification.Update, Offset: 0, Old: model.Effect{Name: "Sparkles", IconName: "sparkles"}, New: model.Effect{Name: "Stars", IconName: "star"}},
			},
		},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("Update() changes differ (-want +got):\n%s", diff)
	}

	wantLog := "remove video at 3\nremove audio at 0\nupdate effect at 0\n"
	if diff := cmp.Diff(wantLog, buf.String()); diff != "" {
		t.Errorf("log differs (-want +got):\n%s", diff)
	}

	checkParallel(t, s)
	if s.audios[0] != keptAudio {
		t.Errorf("audio item was not kept")
	}
	if s.effects[0] != renamedEffect {
		t.Errorf("effect item was not updated in place")
	}
}

func TestUpdateMove(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSource(model.Initial(), &buf)
	godfather := s.videos[0]

	next := model.Initial()
	next.Videos = append(next.Videos[1:], next.Videos[0])
	s.Update(next)

	if got := buf.String(); got != "move video from 0 to 3\n" {
		t.Errorf("log = %q", got)
	}
	checkParallel(t, s)
	if s.videos[3] != godfather {
		t.Errorf("moved item was not kept")
	}
}

func TestUpdateRandomTimelines(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	s := newTestSource(model.Initial(), io.Discard)
	for range 100 {
		next := model.Random(r)
		s.Update(next)
		if !s.Timeline().Equal(next) {
			t.Fatalf("timeline was not switched over")
		}
		checkParallel(t, s)
	}
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		want    []Change
		wantLog string
		check   func(t *testing.T, s *Source)
	}{
		{
			name: "tap-video",
			cmd:  Tap{Section: model.Videos, Index: 1},
			want: []Change{{
				Section: model.Videos,
				Modifications: []modification.Modification[model.Element]{
					{Op: modification.Update, Offset: 1, Old: model.Video{Name: "The Artist"}, New: model.Video{Name: "The Artist!"}},
				},
			}},
			wantLog: "update video at 1\n",
			check: func(t *testing.T, s *Source) {
				// The timeline itself isn't touched.
				if !s.Timeline().Equal(model.Initial()) {
					t.Errorf("timeline changed")
				}
			},
		},
		{
			name: "tap-audio",
			cmd:  Tap{Section: model.Audios, Index: 0},
			want: []Change{{
				Section: model.Audios,
				Modifications: []modification.Modification[model.Element]{
					{Op: modification.Remove, Offset: 0, Old: model.Initial().Audios[0]},
				},
			}},
			wantLog: "remove audio at 0\n",
			check: func(t *testing.T, s *Source) {
				checkParallel(t, s)
				if s.Len(model.Audios) != 1 {
					t.Errorf("audio was not deleted")
				}
			},
		},
		{
			name: "tap-effect",
			cmd:  Tap{Section: model.Effects, Index: 1},
			want: []Change{{
				Section: model.Effects,
				Modifications: []modification.Modification[model.Element]{
					{Op: modification.Update, Offset: 1, Old: model.Effect{Name: "Moon", IconName: "moon.fill"}, New: model.Effect{Name: "Moon!", IconName: "moon.fill"}},
				},
			}},
			wantLog: "update effect at 1\n",
			check: func(t *testing.T, s *Source) {
				checkParallel(t, s)
				if got := s.Timeline().Effects[1].Name; got != "Moon!" {
					t.Errorf("effect name = %q, want %q", got, "Moon!")
				}
			},
		},
		{
			name:    "add-audio",
			cmd:     AddAudio{Name: "Blowin' in the Wind"},
			wantLog: "insert audio at 0\n",
			check: func(t *testing.T, s *Source) {
				checkParallel(t, s)
				got := s.Timeline().Audios[0]
				if got.Name != "Blowin' in the Wind" || got.Artist != "AI" || got.Volume < 0 || got.Volume > 1 {
					t.Errorf("unexpected new audio: %+v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := newTestSource(model.Initial(), &buf)
			got, err := s.Handle(tt.cmd)
			if err != nil {
				t.Fatalf("Handle() failed: %v", err)
			}
			if tt.want != nil {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("Handle() changes differ (-want +got):\n%s", diff)
				}
			}
			if diff := cmp.Diff(tt.wantLog, buf.String()); diff != "" {
				t.Errorf("log differs (-want +got):\n%s", diff)
			}
			if s.Snapshot().Seq != 1 {
				t.Errorf("Seq = %d, want 1", s.Snapshot().Seq)
			}
			tt.check(t, s)
		})
	}
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"negative-index", Tap{Section: model.Videos, Index: -1}, "out of range"},
		{"index-too-large", Tap{Section: model.Effects, Index: 2}, "out of range"},
		{"unknown-section", Tap{Section: model.Section(9), Index: 0}, "out of range"},
		{"missing-name", AddAudio{}, "missing name"},
		{"nil-command", nil, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSource(model.Initial(), io.Discard)
			_, err := s.Handle(tt.cmd)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Handle() error = %v, want it to contain %q", err, tt.want)
			}
			if s.Snapshot().Seq != 0 {
				t.Errorf("failed command changed the source")
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestSource(model.Initial(), io.Discard)
	if _, err := s.Handle(Tap{Section: model.Videos, Index: 0}); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()

	var sections []model.Section
	for _, sec := range snap.Sections {
		sections = append(sections, sec.Section)
	}
	if diff := cmp.Diff(model.Sections, sections); diff != "" {
		t.Errorf("sections differ (-want +got):\n%s", diff)
	}
	if got := snap.Sections[0].Elements[0]; got != (model.Video{Name: "The Godfather!", HasSound: true}) {
		t.Errorf("first video = %v", got)
	}
	if len(snap.Changes) != 1 {
		t.Errorf("len(Changes) = %d, want 1", len(snap.Changes))
	}

	// Later changes don't leak into the snapshot.
	if _, err := s.Handle(Tap{Section: model.Videos, Index: 0}); err != nil {
		t.Fatal(err)
	}
	if got := snap.Sections[0].Elements[0].(model.Video).Name; got != "The Godfather!" {
		t.Errorf("snapshot changed: %q", got)
	}
}
