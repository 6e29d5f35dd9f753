package source

import "timeline.znkr.io/demo/model"

// Item is the presentation state of a single timeline element. It's implemented by *VideoItem,
// *AudioItem and *EffectItem only.
type Item interface {
	// Element returns the element currently shown by the item.
	Element() model.Element
	item()
}

type VideoItem struct {
	Name     string
	HasSound bool
}

func newVideoItem(v model.Video) *VideoItem { return &VideoItem{Name: v.Name, HasSound: v.HasSound} }

func (it *VideoItem) update(v model.Video) *VideoItem {
	it.Name = v.Name
	it.HasSound = v.HasSound
	return it
}

func (it *VideoItem) Element() model.Element { return model.Video{Name: it.Name, HasSound: it.HasSound} }

type AudioItem struct {
	Name   string
	Artist string
	Volume float64
}

func newAudioItem(a model.Audio) *AudioItem {
	return &AudioItem{Name: a.Name, Artist: a.Artist, Volume: a.Volume}
}

func (it *AudioItem) update(a model.Audio) *AudioItem {
	it.Name = a.Name
	it.Artist = a.Artist
	it.Volume = a.Volume
	return it
}

func (it *AudioItem) Element() model.Element {
	return model.Audio{Name: it.Name, Artist: it.Artist, Volume: it.Volume}
}

type EffectItem struct {
	Name     string
	IconName string
}

func newEffectItem(e model.Effect) *EffectItem { return &EffectItem{Name: e.Name, IconName: e.IconName} }

func (it *EffectItem) update(e model.Effect) *EffectItem {
	it.Name = e.Name
	it.IconName = e.IconName
	return it
}

func (it *EffectItem) Element() model.Element { return model.Effect{Name: it.Name, IconName: it.IconName} }

func (*VideoItem) item()  {}
func (*AudioItem) item()  {}
func (*EffectItem) item() {}
