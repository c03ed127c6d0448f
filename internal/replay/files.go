package replay

import (
	"bytes"
	"cmp"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"birdnest/internal/domain"
)

const (
	snapshotPrefix = "drones-"
	snapshotSuffix = ".xml"
	pilotsFile     = "pilots.json"
)

// snapshotFile is a snapshot file name together with its parsed sequence.
type snapshotFile struct {
	name string
	seq  int64
}

// snapshotName encodes the capture time as zero-padded unix millis so names
// also sort correctly as plain strings.
func snapshotName(at time.Time) string {
	return fmt.Sprintf("%s%015d%s", snapshotPrefix, at.UnixMilli(), snapshotSuffix)
}

// parseSnapshotName extracts the sequence number from a snapshot file name.
func parseSnapshotName(name string) (int64, bool) {
	if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// listSnapshots returns the snapshot files in dir ordered by sequence. A
// missing directory yields no files.
func listSnapshots(dir string) ([]snapshotFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read replay dir: %w", err)
	}

	var files []snapshotFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if seq, ok := parseSnapshotName(e.Name()); ok {
			files = append(files, snapshotFile{name: e.Name(), seq: seq})
		}
	}
	slices.SortFunc(files, func(a, b snapshotFile) int {
		if c := cmp.Compare(a.seq, b.seq); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return files, nil
}

func readSnapshot(path string) (*domain.DronesDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", filepath.Base(path), err)
	}
	var doc domain.DronesDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", filepath.Base(path), err)
	}
	return &doc, nil
}

func encodeSnapshot(doc *domain.DronesDocument) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// readPilots loads the pilot document. A missing file is an empty map.
func readPilots(dir string) (map[string]domain.Pilot, error) {
	data, err := os.ReadFile(filepath.Join(dir, pilotsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.Pilot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pilots: %w", err)
	}
	pilots := map[string]domain.Pilot{}
	if err := json.Unmarshal(data, &pilots); err != nil {
		return nil, fmt.Errorf("decode pilots: %w", err)
	}
	return pilots, nil
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
