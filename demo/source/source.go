// Package source keeps the presentation state of a timeline in sync with the timeline itself.
//
// A [Source] owns one list of items per section. Whenever the timeline changes, the difference
// between the old and the new timeline is turned into an edit script that is replayed on the items,
// so that items of unchanged, updated or moved elements survive the change.
//
// A Source is not safe for concurrent use. It's meant to be owned by a single goroutine, other
// goroutines interact with it by sending [Command] values to the owner and by observing
// [Snapshot] values.
package source

import (
	"fmt"
	"log"
	"math/rand/v2"
	"slices"

	"timeline.znkr.io/demo/model"
	"timeline.znkr.io/demo/modification"
)

// Change lists the modifications applied to one section.
type Change struct {
	Section       model.Section
	Modifications []modification.Modification[model.Element]
}

// Command is a request to change the timeline. It's implemented by Tap and AddAudio.
type Command interface {
	command()
}

// Tap reports that an item was tapped. What happens depends on the section: a tapped video gets an
// exclamation mark appended to its name, a tapped audio is deleted and a tapped effect is renamed
// in the timeline.
type Tap struct {
	Section model.Section
	Index   int
}

// AddAudio inserts a new audio at the start of the audio section.
type AddAudio struct {
	Name string
}

func (Tap) command()      {}
func (AddAudio) command() {}

// Snapshot is an immutable copy of the state of a Source.
type Snapshot struct {
	Seq      int // incremented on every change
	Sections []SectionSnapshot
	Changes  []Change // changes of the last update
}

type SectionSnapshot struct {
	Section  model.Section
	Elements []model.Element
}

type Option func(*Source)

// WithLogger sets the logger used to report modifications.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		s.log = l
	}
}

// WithRand sets the random source used for new audio volumes.
func WithRand(r *rand.Rand) Option {
	return func(s *Source) {
		s.rand = r
	}
}

// Source is the presentation state of a timeline.
type Source struct {
	current model.Timeline
	videos  []*VideoItem
	audios  []*AudioItem
	effects []*EffectItem

	seq     int
	changes []Change

	log  *log.Logger
	rand *rand.Rand
}

// New creates a source showing t.
func New(t model.Timeline, opts ...Option) *Source {
	s := &Source{
		current: t.Clone(),
		videos:  newItems(t.Videos, newVideoItem),
		audios:  newItems(t.Audios, newAudioItem),
		effects: newItems(t.Effects, newEffectItem),
		log:     log.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

func newItems[E, I any](s []E, mk func(E) I) []I {
	ret := make([]I, len(s))
	for i := range s {
		ret[i] = mk(s[i])
	}
	return ret
}

// Timeline returns a copy of the current timeline.
func (s *Source) Timeline() model.Timeline { return s.current.Clone() }

// Len returns the number of items in section sec.
func (s *Source) Len(sec model.Section) int {
	switch sec {
	case model.Videos:
		return len(s.videos)
	case model.Audios:
		return len(s.audios)
	case model.Effects:
		return len(s.effects)
	default:
		return 0
	}
}

// Items returns the items of section sec. The items are owned by s and must not be retained.
func (s *Source) Items(sec model.Section) []Item {
	switch sec {
	case model.Videos:
		return asItems(s.videos)
	case model.Audios:
		return asItems(s.audios)
	case model.Effects:
		return asItems(s.effects)
	default:
		return nil
	}
}

func asItems[I Item](s []I) []Item {
	ret := make([]Item, len(s))
	for i := range s {
		ret[i] = s[i]
	}
	return ret
}

// Update switches s over to timeline t and returns the changes applied to the items. It returns
// nil if t is equal to the current timeline.
func (s *Source) Update(t model.Timeline) []Change {
	if s.current.Equal(t) {
		return nil
	}

	var changes []Change
	var c Change
	s.videos, c = apply(s.log, model.Videos, s.videos, s.current.Videos, t.Videos, newVideoItem, (*VideoItem).update)
	changes = appendChange(changes, c)
	s.audios, c = apply(s.log, model.Audios, s.audios, s.current.Audios, t.Audios, newAudioItem, (*AudioItem).update)
	changes = appendChange(changes, c)
	s.effects, c = apply(s.log, model.Effects, s.effects, s.current.Effects, t.Effects, newEffectItem, (*EffectItem).update)
	changes = appendChange(changes, c)

	s.current = t.Clone()
	s.record(changes)
	return changes
}

func appendChange(changes []Change, c Change) []Change {
	if len(c.Modifications) == 0 {
		return changes
	}
	return append(changes, c)
}

func (s *Source) record(changes []Change) {
	s.seq++
	s.changes = changes
}

type element interface {
	comparable
	model.Element
}

func apply[E element, I any](logger *log.Logger, sec model.Section, items []I, old, next []E, mk func(E) I, update func(I, E) I) ([]I, Change) {
	mods := modification.Infer(modification.Difference(old, next))
	for _, m := range mods {
		logModification(logger, sec, m.Op, m.Offset, m.To)
	}
	items = modification.ApplyFunc(items, mods, mk, update)
	return items, Change{Section: sec, Modifications: toElements(mods)}
}

func logModification(logger *log.Logger, sec model.Section, op modification.Op, offset, to int) {
	switch op {
	case modification.Insert:
		logger.Printf("insert %s at %d", sec.Singular(), offset)
	case modification.Remove:
		logger.Printf("remove %s at %d", sec.Singular(), offset)
	case modification.Update:
		logger.Printf("update %s at %d", sec.Singular(), offset)
	case modification.Move:
		logger.Printf("move %s from %d to %d", sec.Singular(), offset, to)
	}
}

func toElements[E model.Element](mods []modification.Modification[E]) []modification.Modification[model.Element] {
	ret := make([]modification.Modification[model.Element], len(mods))
	for i, m := range mods {
		r := modification.Modification[model.Element]{Op: m.Op, Offset: m.Offset, To: m.To}
		if m.Op != modification.Insert {
			r.Old = m.Old
		}
		if m.Op != modification.Remove {
			r.New = m.New
		}
		ret[i] = r
	}
	return ret
}

// Handle executes cmd and returns the resulting changes.
func (s *Source) Handle(cmd Command) ([]Change, error) {
	switch cmd := cmd.(type) {
	case Tap:
		return s.tap(cmd.Section, cmd.Index)
	case AddAudio:
		if cmd.Name == "" {
			return nil, fmt.Errorf("adding audio: missing name")
		}
		t := s.current.Clone()
		t.Audios = slices.Insert(t.Audios, 0, model.Audio{Name: cmd.Name, Artist: "AI", Volume: s.rand.Float64()})
		return s.Update(t), nil
	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}

func (s *Source) tap(sec model.Section, i int) ([]Change, error) {
	if n := s.Len(sec); i < 0 || i >= n {
		return nil, fmt.Errorf("tapping %v: index %d out of range [0, %d)", sec, i, n)
	}

	switch sec {
	case model.Videos:
		// Only the item is renamed, the timeline stays as is.
		it := s.videos[i]
		old := it.Element()
		it.Name += "!"
		logModification(s.log, sec, modification.Update, i, 0)
		changes := []Change{{
			Section: sec,
			Modifications: []modification.Modification[model.Element]{
				{Op: modification.Update, Offset: i, Old: old, New: it.Element()},
			},
		}}
		s.record(changes)
		return changes, nil
	case model.Audios:
		t := s.current.Clone()
		t.Audios = slices.Delete(t.Audios, i, i+1)
		return s.Update(t), nil
	case model.Effects:
		t := s.current.Clone()
		t.Effects[i].Name += "!"
		return s.Update(t), nil
	default:
		return nil, fmt.Errorf("tapping %v: unknown section", sec)
	}
}

// Snapshot returns a copy of the current state of s.
func (s *Source) Snapshot() Snapshot {
	snap := Snapshot{
		Seq:     s.seq,
		Changes: slices.Clone(s.changes),
	}
	for _, sec := range model.Sections {
		items := s.Items(sec)
		els := make([]model.Element, len(items))
		for i, it := range items {
			els[i] = it.Element()
		}
		snap.Sections = append(snap.Sections, SectionSnapshot{Section: sec, Elements: els})
	}
	return snap
}
