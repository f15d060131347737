package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/safecity/safecity/internal/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWatcher(t *testing.T) {
	Convey("Given a watcher over a data directory", t, func() {
		dir := t.TempDir()
		w, err := dataset.NewWatcher([]string{dir}, dataset.WithDebounce(50*time.Millisecond))
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		Reset(func() {
			cancel()
			_ = w.Close()
		})

		Convey("When a burst of files is written", func() {
			for i := 0; i < 3; i++ {
				path := filepath.Join(dir, "extract.csv")
				So(os.WriteFile(path, []byte("BoroughName,MajorText,MinorText,202401\n"), 0o600), ShouldBeNil)
			}

			Convey("Then a single debounced signal fires", func() {
				select {
				case <-w.C:
				case <-time.After(2 * time.Second):
					t.Fatal("expected a change signal")
				}
				// The burst settled; no second signal should be queued.
				select {
				case <-w.C:
					t.Fatal("unexpected second signal")
				case <-time.After(150 * time.Millisecond):
				}
			})
		})
	})

	Convey("Given an unwatchable path", t, func() {
		_, err := dataset.NewWatcher([]string{filepath.Join(t.TempDir(), "missing")})

		Convey("Then construction fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
