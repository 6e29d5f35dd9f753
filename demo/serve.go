package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"timeline.znkr.io/demo/server"
	"timeline.znkr.io/demo/source"
	"timeline.znkr.io/demo/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve FILE",
	Short: "Serves the views of timeline FILE and keeps them in sync with the file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving %s: %v", args[0], err)
		}

		t, err := readTimeline(filename)
		if err != nil {
			return err
		}
		o := newOwner(source.New(t))
		defer o.store.Close()

		// Start serving.
		cmds := make(chan server.Request)
		srv, err := server.Run(serveAddr, o.store, cmds)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("%v", err)
			}
		}()
		log.Printf("Now serving at http://%s, press Ctrl-C to shut down", serveAddr)

		// Editors tend to replace files instead of writing them in place, watching the directory
		// catches both.
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("starting watcher: %v", err)
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(filename)); err != nil {
			return fmt.Errorf("starting watch: %v", err)
		}
		log.Printf("Watching %v", filename)

		// Setup signals to react to Ctrl-C.
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)

		for {
			select {
			case event := <-watcher.Events:
				if event.Name != filename || event.Has(fsnotify.Chmod) {
					continue
				}
				if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("Timeline file disappeared, keeping the current timeline")
					continue
				}
				start := time.Now()
				if err := o.reload(filename); err != nil {
					log.Printf("failed to update timeline: %v", err)
					continue
				}
				log.Printf("Timeline reloaded (%v)", time.Since(start))
			case req := <-cmds:
				o.handle(req)
			case err := <-watcher.Errors:
				return fmt.Errorf("watching: %v", err)
			case err := <-srv.Error():
				return fmt.Errorf("serving: %v", err)
			case <-sigint:
				fmt.Print("\r") // remove Ctrl-C output characters
				log.Printf("Received Ctrl-C, shutting down")
				return nil
			}
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "address to serve on")
}

// owner is the only user of the source. It publishes a snapshot after every change.
type owner struct {
	src   *source.Source
	store *store.Store[source.Snapshot]
}

func newOwner(src *source.Source) *owner {
	return &owner{
		src:   src,
		store: store.New(src.Snapshot()),
	}
}

func (o *owner) reload(filename string) error {
	t, err := readTimeline(filename)
	if err != nil {
		return err
	}
	if changes := o.src.Update(t); changes != nil {
		o.store.Set(o.src.Snapshot())
	}
	return nil
}

func (o *owner) handle(req server.Request) {
	_, err := o.src.Handle(req.Cmd)
	if err == nil {
		o.store.Set(o.src.Snapshot())
	}
	req.Reply <- err
}
