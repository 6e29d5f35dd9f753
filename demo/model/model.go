// Package model contains the timeline shown by the demo: videos, audios and effects.
package model

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
)

// Timeline is the full state of the demo.
type Timeline struct {
	Videos  []Video
	Audios  []Audio
	Effects []Effect
}

type Video struct {
	Name     string
	HasSound bool
}

type Audio struct {
	Name   string
	Artist string
	Volume float64
}

type Effect struct {
	Name     string
	IconName string
}

// Element is a single entry of a timeline section. It's implemented by Video, Audio and Effect
// only.
type Element interface {
	Section() Section
	fmt.Stringer
	element()
}

func (Video) Section() Section  { return Videos }
func (Audio) Section() Section  { return Audios }
func (Effect) Section() Section { return Effects }

func (Video) element()  {}
func (Audio) element()  {}
func (Effect) element() {}

func (v Video) String() string {
	if v.HasSound {
		return v.Name + " (sound)"
	}
	return v.Name
}

func (a Audio) String() string {
	return fmt.Sprintf("%s by %s (%s)", a.Name, a.Artist, formatVolume(a.Volume))
}

func (e Effect) String() string { return e.Name + " [" + e.IconName + "]" }

// Section identifies one of the element lists of a timeline.
type Section int

const (
	Videos Section = iota
	Audios
	Effects
)

// Sections lists all sections in display order.
var Sections = []Section{Videos, Audios, Effects}

func (s Section) String() string {
	switch s {
	case Videos:
		return "videos"
	case Audios:
		return "audios"
	case Effects:
		return "effects"
	default:
		return "Section(" + strconv.Itoa(int(s)) + ")"
	}
}

// Singular returns the name of a single element of the section, e.g. "video".
func (s Section) Singular() string { return strings.TrimSuffix(s.String(), "s") }

// ParseSection returns the section with the given name, ignoring case.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown section %q", name)
}

// Elements returns the elements of section s.
func (t Timeline) Elements(s Section) []Element {
	switch s {
	case Videos:
		return elements(t.Videos)
	case Audios:
		return elements(t.Audios)
	case Effects:
		return elements(t.Effects)
	default:
		panic(fmt.Sprintf("unknown section %v", s))
	}
}

func elements[E Element](s []E) []Element {
	ret := make([]Element, len(s))
	for i := range s {
		ret[i] = s[i]
	}
	return ret
}

// Equal reports whether t and u contain the same elements in the same order.
func (t Timeline) Equal(u Timeline) bool {
	return slices.Equal(t.Videos, u.Videos) &&
		slices.Equal(t.Audios, u.Audios) &&
		slices.Equal(t.Effects, u.Effects)
}

// Clone returns a deep copy of t.
func (t Timeline) Clone() Timeline {
	return Timeline{
		Videos:  slices.Clone(t.Videos),
		Audios:  slices.Clone(t.Audios),
		Effects: slices.Clone(t.Effects),
	}
}

// Initial returns the timeline the demo starts with.
func Initial() Timeline {
	return Timeline{
		Videos: []Video{
			{Name: "The Godfather", HasSound: true},
			{Name: "The Artist", HasSound: false},
			{Name: "Mr. Nobody", HasSound: true},
			{Name: "City Lights", HasSound: false},
		},
		Audios: []Audio{
			{Name: "The Times They Are A-Changin'", Artist: "Bob Dylan", Volume: 0.2},
			{Name: "Sound of Silence", Artist: "Simon & Garfunkel", Volume: 0.5},
		},
		Effects: []Effect{
			{Name: "Sparkles", IconName: "sparkles"},
			{Name: "Moon", IconName: "moon.fill"},
		},
	}
}

// Random returns a timeline with up to four videos, two audios and three effects with random
// names.
func Random(r *rand.Rand) Timeline {
	var t Timeline
	for range r.IntN(5) {
		t.Videos = append(t.Videos, Video{Name: RandomName(r), HasSound: r.IntN(2) == 1})
	}
	for range r.IntN(3) {
		t.Audios = append(t.Audios, Audio{Name: RandomName(r), Artist: RandomName(r), Volume: r.Float64()})
	}
	for range r.IntN(4) {
		t.Effects = append(t.Effects, Effect{Name: RandomName(r), IconName: "questionmark"})
	}
	return t
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomName returns a random alphanumeric string of length 5.
func RandomName(r *rand.Rand) string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = letters[r.IntN(len(letters))]
	}
	return string(b)
}

func formatVolume(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
