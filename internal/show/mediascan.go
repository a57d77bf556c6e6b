package show

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// SequenceMetadata is optional descriptive information read off a media
// file's tags — title/artist/album for display purposes only. It never
// supplies a Sequence's timing: WorkLength/LeadTime/TrailTime are set by
// whoever registers the sequence (imported schedule data, an API call),
// and tag-derived metadata is enrichment on top of that, the way the
// teacher's extractTrackMetadata enriches a Track that already has an ID
// and checksum from the file itself.
type SequenceMetadata struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
}

// ScanMediaMetadata reads tag metadata for every supported file under dir,
// keyed by the path filepath.Walk reports (rooted at dir). Walk errors are
// collected into sink and files whose tags cannot be read are skipped with a
// debug log, rather than aborting the walk — mirrors ScanMusicDirectory's
// errors-are-non-fatal posture.
func ScanMediaMetadata(dir string, sink *ErrSink) (map[string]SequenceMetadata, error) {
	out := make(map[string]SequenceMetadata)
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			sink.Add(WarnMediaUnreadable, path, walkErr.Error())
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if !isSupportedMediaExt(strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		meta, err := readMediaMetadata(path)
		if err != nil {
			slog.Debug("could not read media tags", "path", path, "error", err)
			return nil
		}
		out[path] = meta
		return nil
	})
	return out, err
}

var supportedMediaExts = []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a"}

func isSupportedMediaExt(ext string) bool {
	for _, e := range supportedMediaExts {
		if ext == e {
			return true
		}
	}
	return false
}

func readMediaMetadata(path string) (SequenceMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return SequenceMetadata{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return SequenceMetadata{}, err
	}

	meta := SequenceMetadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Genre:  m.Genre(),
		Year:   m.Year(),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return meta, nil
}
