// Photo Curator - A tool to curate a photo library by capture date and keywords
//
// Photos are dropped into _process, renamed to carry keywords, promoted to
// _import and then imported: moved into a year/month/day folder derived from
// their EXIF capture time, given a thumbnail and recorded in a catalog.
// Photos that cannot be imported are quarantined in _failed.
//
// Features:
//   - EXIF capture date extraction
//   - Keyword file names with collision-free numbering
//   - Thumbnails mirrored under _thumbs
//   - SQLite or CSV catalog keyed by path
//   - Cross-device file moving support
//   - Dry-run preview of imports and promotions
//   - Polling watch mode with Prometheus metrics
//
// Usage:
//
//	photo-curator init /path/to/Photos     # Create the library layout
//	photo-curator rename <photo> beach dog # Annotate a photo in _process
//	photo-curator promote                  # Move annotated photos to _import
//	photo-curator import --dry-run         # Show where pending photos would go
//	photo-curator import                   # Import once
//	photo-curator watch --promote          # Promote and import every poll interval
//
// Expected directory structure:
//
//	Photos/
//	├── _process/          <- Drop new photos here
//	├── _import/           <- Annotated photos waiting for import
//	├── _failed/           <- Photos whose import failed
//	├── _thumbs/           <- Thumbnails (mirrors the library)
//	├── _catalog/          <- Catalog database or CSV
//	├── 2017/3/14/         <- Imported photos
//	└── photo-curator.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"photo-curator/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
