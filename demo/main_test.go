package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"timeline.znkr.io/demo/model"
	"timeline.znkr.io/demo/server"
	"timeline.znkr.io/demo/source"
)

func writeFile(t *testing.T, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiffCmd(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.md")
	newFile := filepath.Join(dir, "new.md")
	writeFile(t, oldFile, "# Videos\n\n- A\n- B\n- C\n\n# Effects\n\n- Moon | moon\n")
	writeFile(t, newFile, "# Videos\n\n- B\n- C\n- A\n\n# Effects\n\n- Sun | sun\n")

	var out bytes.Buffer
	diffCmd.SetOut(&out)
	defer diffCmd.SetOut(nil)
	if err := diffCmd.RunE(diffCmd, []string{oldFile, newFile}); err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	want := "@ move video from 0 to 2: A\n" +
		"! update effect at 0: Moon [moon] -> Sun [sun]\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("diff output differs (-want +got):\n%s", diff)
	}
}

func TestDiffCmdParseError(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.md")
	writeFile(t, bad, "- orphan\n")

	if err := diffCmd.RunE(diffCmd, []string{bad, bad}); err == nil {
		t.Errorf("diff succeeded on invalid input")
	}
}

func TestInitAndRandomCmd(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "timeline.md")

	if err := initCmd.RunE(initCmd, []string{filename}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	got, err := readTimeline(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(model.Initial()) {
		t.Errorf("init wrote %+v", got)
	}

	if err := randomCmd.RunE(randomCmd, []string{filename}); err != nil {
		t.Fatalf("random failed: %v", err)
	}
	if _, err := readTimeline(filename); err != nil {
		t.Errorf("random wrote an unreadable timeline: %v", err)
	}
}

func TestOwner(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "timeline.md")
	if err := writeTimeline(filename, model.Initial()); err != nil {
		t.Fatal(err)
	}

	o := newOwner(source.New(model.Initial(), source.WithLogger(log.New(io.Discard, "", 0))))
	defer o.store.Close()
	sub := o.store.Subscribe()
	defer sub.Unsubscribe()
	<-sub.C()

	// Reloading an unchanged file doesn't publish anything.
	if err := o.reload(filename); err != nil {
		t.Fatal(err)
	}
	select {
	case snap := <-sub.C():
		t.Errorf("unexpected snapshot %d", snap.Seq)
	default:
	}

	next := model.Initial()
	next.Videos = next.Videos[1:]
	if err := writeTimeline(filename, next); err != nil {
		t.Fatal(err)
	}
	if err := o.reload(filename); err != nil {
		t.Fatal(err)
	}
	if snap := <-sub.C(); snap.Seq != 1 || len(snap.Sections[0].Elements) != 3 {
		t.Errorf("unexpected snapshot after reload: %+v", snap)
	}

	writeFile(t, filename, "# Nope\n")
	if err := o.reload(filename); err == nil {
		t.Errorf("reload succeeded on invalid file")
	}

	reply := make(chan error, 1)
	o.handle(server.Request{Cmd: source.Tap{Section: model.Videos, Index: 7}, Reply: reply})
	if err := <-reply; err == nil {
		t.Errorf("tap out of range succeeded")
	}
	o.handle(server.Request{Cmd: source.AddAudio{Name: "Hurricane"}, Reply: reply})
	if err := <-reply; err != nil {
		t.Errorf("add audio failed: %v", err)
	}
	if snap := <-sub.C(); snap.Seq != 2 {
		t.Errorf("Seq = %d, want 2", snap.Seq)
	}
}
