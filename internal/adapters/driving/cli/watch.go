package cli

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/logger"
)

// watchDebounce batches bursts of filesystem events (editors and file
// copies fire several per save) into a single re-ingestion.
const watchDebounce = 2 * time.Second

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data directory and re-index on changes",
	Long: `Watches the data directory recursively and re-ingests the corpus
whenever PDF files are added, changed, or removed. Runs until
interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "data directory to watch (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	dir := watchDir
	if dir == "" {
		dir = settings.DataDir
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best-effort cleanup

	if err := addWatchTree(watcher, dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)...\n", dir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// The timer is created stopped and re-armed on every relevant
	// event; ingestion runs once the burst settles.
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	changed := make(map[string]struct{})

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				// New subdirectories must be watched explicitly;
				// fsnotify does not recurse.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchTree(watcher, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
				}
			}
			if !relevantWatchEvent(event) {
				continue
			}
			logger.Debug("Change detected: %s (%s)", event.Name, event.Op)
			changed[event.Name] = struct{}{}
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-debounce.C:
			if len(changed) == 0 {
				continue
			}
			reIngestChanged(cmd, dir, changed)
			changed = make(map[string]struct{})

		case <-sigCh:
			cmd.Println("\nStopping watcher.")
			return nil
		}
	}
}

// reIngestChanged re-ingests every changed file that still exists,
// deferring the lexical rebuild to a single pass after the batch.
// Removed files keep their stale chunks until the next full ingest.
func reIngestChanged(cmd *cobra.Command, dir string, changed map[string]struct{}) {
	files, err := documentSource.ListFiles(dir)
	if err != nil {
		logger.Warn("list files: %v", err)
		return
	}

	var targets []domain.FileInfo
	for _, f := range files {
		if _, ok := changed[f.FullPath]; ok {
			targets = append(targets, f)
		}
	}
	if len(targets) == 0 {
		logger.Warn("changed files no longer present; run 'athena ingest' to refresh the index")
		return
	}

	total := 0
	for i, f := range targets {
		rebuild := i == len(targets)-1
		chunks, err := ingestService.IngestFile(cmd.Context(), f, rebuild)
		if err != nil {
			logger.Warn("re-ingest %s: %v", f.FileName, err)
			continue
		}
		total += chunks
	}
	cmd.Printf("Re-indexed %d file(s), %d chunks.\n", len(targets), total)
}

// addWatchTree registers the directory and every subdirectory.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// relevantWatchEvent reports whether the event should trigger a
// re-ingestion. Only PDF writes, creates, removes, and renames count.
func relevantWatchEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".pdf")
}
