package chart

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a chart output format.
type Format int

const (
	// FormatSnapshot writes only the native msgpack snapshot.
	FormatSnapshot Format = iota
	FormatPNG
	FormatJPEG
	FormatTIFF
	FormatSVG
	FormatPDF
	FormatEPS
)

// SnapshotExt is the file extension of native snapshots.
const SnapshotExt = "msgpack"

type formatHandler struct {
	ext    string
	encode func(w io.Writer, s Spec) error
}

func renderer(format string) func(io.Writer, Spec) error {
	return func(w io.Writer, s Spec) error { return s.Encode(w, format) }
}

var formatHandlers = map[Format]formatHandler{
	FormatSnapshot: {ext: SnapshotExt, encode: encodeSnapshot},
	FormatPNG:      {ext: "png", encode: renderer("png")},
	FormatJPEG:     {ext: "jpeg", encode: renderer("jpeg")},
	FormatTIFF:     {ext: "tiff", encode: renderer("tiff")},
	FormatSVG:      {ext: "svg", encode: renderer("svg")},
	FormatPDF:      {ext: "pdf", encode: renderer("pdf")},
	FormatEPS:      {ext: "eps", encode: renderer("eps")},
}

// formatTags maps lower-case save type tags to formats.
var formatTags = map[string]Format{
	"rds":      FormatSnapshot,
	"snapshot": FormatSnapshot,
	"msgpack":  FormatSnapshot,
	"png":      FormatPNG,
	"jpeg":     FormatJPEG,
	"jpg":      FormatJPEG,
	"tiff":     FormatTIFF,
	"tif":      FormatTIFF,
	"svg":      FormatSVG,
	"pdf":      FormatPDF,
	"eps":      FormatEPS,
}

// ParseFormat looks up a save type tag, case-insensitively.
func ParseFormat(tag string) (Format, error) {
	f, ok := formatTags[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, tag)
	}
	return f, nil
}

// Ext returns the file extension of the format, without the dot.
func (f Format) Ext() string {
	return formatHandlers[f].ext
}

// Renders reports whether the format produces an image in addition to the
// snapshot.
func (f Format) Renders() bool {
	return f != FormatSnapshot
}

// String returns the extension of the format.
func (f Format) String() string {
	if h, ok := formatHandlers[f]; ok {
		return h.ext
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Formats returns every format in declaration order.
func Formats() []Format {
	return []Format{FormatSnapshot, FormatPNG, FormatJPEG, FormatTIFF, FormatSVG, FormatPDF, FormatEPS}
}

// Save writes the snapshot {dir}/{name}.msgpack and, when the tag names a
// renderable format, the image {dir}/{name}.{ext}. It returns the written
// paths. An unknown tag returns ErrUnknownFormat before anything is written.
func Save(s Spec, dir, name, tag string) ([]string, error) {
	f, err := ParseFormat(tag)
	if err != nil {
		return nil, err
	}

	targets := []Format{FormatSnapshot}
	if f.Renders() {
		targets = append(targets, f)
	}

	paths := make([]string, 0, len(targets))
	for _, target := range targets {
		path := filepath.Join(dir, name+"."+target.Ext())
		if err := writeFile(path, s, formatHandlers[target].encode); err != nil {
			return paths, fmt.Errorf("failed to save chart to %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, s Spec, encode func(io.Writer, Spec) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644) //nolint:gosec // Charts are meant to be shared
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	bw := bufio.NewWriter(f)
	if err := encode(bw, s); err != nil {
		return err
	}
	return bw.Flush()
}

func encodeSnapshot(w io.Writer, s Spec) error {
	return msgpack.NewEncoder(w).Encode(&s)
}

// LoadSnapshot reads a chart saved by Save.
func LoadSnapshot(path string) (Spec, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided snapshot path is intentional
	if err != nil {
		return Spec{}, err
	}
	defer f.Close()

	var s Spec
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&s); err != nil {
		return Spec{}, fmt.Errorf("failed to decode chart snapshot %s: %w", path, err)
	}
	return s, nil
}
