package export

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
)

// Archive entries of a project.
const (
	StateEntry    = "state.json"
	ManifestEntry = "project.yaml"
	layersDir     = "layers/"

	// FormatVersion is stamped into state.json.
	FormatVersion = 1
)

var ErrBadProject = errors.New("bad project archive")

// Manifest is the human readable summary stored next to state.json.
type Manifest struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
	Frames int    `yaml:"frames"`
	Layers int    `yaml:"layers"`
	Build  string `yaml:"build,omitempty"`
}

func manifestOf(st model.State, build string) Manifest {
	return Manifest{
		Name:   st.Animation.Name,
		Width:  st.Animation.Width,
		Height: st.Animation.Height,
		FPS:    st.FPS,
		Frames: len(st.Animation.Frames),
		Layers: len(st.Animation.LayerIDs()),
		Build:  build,
	}
}

// Project writes the document and every layer buffer as a zip archive.
func Project(w io.Writer, st model.State, reg *raster.Registry, opts Options) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data, err = sjson.SetBytes(data, "format", FormatVersion)
	if err != nil {
		return fmt.Errorf("stamp format: %w", err)
	}
	manifest, err := yaml.Marshal(manifestOf(st, opts.Build))
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	zw := zip.NewWriter(w)
	for _, e := range []struct {
		name string
		data []byte
	}{{StateEntry, data}, {ManifestEntry, manifest}} {
		fw, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}

	for _, id := range st.Animation.LayerIDs() {
		img, ok := reg.Get(id)
		if !ok {
			return fmt.Errorf("layer %s: %w", id, raster.ErrNoBuffer)
		}
		data, err := encodePNG(img)
		if err != nil {
			return fmt.Errorf("layer %s: %w", id, err)
		}
		if err := writeEntry(zw, layersDir+id+".png", data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	logger().Info("project exported", "name", st.Animation.Name, "layers", reg.Len())
	return nil
}

// ProjectFile writes {name}.anim8.zip into dir and returns its path.
func ProjectFile(dir string, st model.State, reg *raster.Registry, opts Options) (string, error) {
	name := strings.TrimSuffix(ArchiveName(st.Animation.Name), ".zip") + ".anim8.zip"
	p := filepath.Join(dir, name)
	err := writeFile(p, func(w io.Writer) error {
		return Project(w, st, reg, opts)
	})
	return p, err
}

// ImportProject reads an archive written by Project. The returned images
// are keyed by layer id; layers without an entry are absent.
func ImportProject(r io.ReaderAt, size int64) (model.State, map[string]image.Image, error) {
	var st model.State
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return st, nil, fmt.Errorf("%w: %v", ErrBadProject, err)
	}

	var stateFile *zip.File
	var layerFiles []*zip.File
	for _, f := range zr.File {
		switch {
		case f.Name == StateEntry:
			stateFile = f
		case strings.HasPrefix(f.Name, layersDir) && path.Ext(f.Name) == ".png":
			layerFiles = append(layerFiles, f)
		}
	}
	if stateFile == nil {
		return st, nil, fmt.Errorf("%w: missing %s", ErrBadProject, StateEntry)
	}

	data, err := readEntry(stateFile)
	if err != nil {
		return st, nil, err
	}
	if err := checkState(data); err != nil {
		return st, nil, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, nil, fmt.Errorf("%w: %v", ErrBadProject, err)
	}
	st = model.Repair(st)
	if err := model.Validate(st); err != nil {
		return st, nil, fmt.Errorf("%w: %w", ErrBadProject, err)
	}

	known := make(map[string]bool)
	for _, id := range st.Animation.LayerIDs() {
		known[id] = true
	}
	images := make(map[string]image.Image, len(layerFiles))
	for _, f := range layerFiles {
		id := strings.TrimSuffix(strings.TrimPrefix(f.Name, layersDir), ".png")
		if !known[id] {
			logger().Warn("skipping unknown layer", "entry", f.Name)
			continue
		}
		img, err := decodeEntry(f)
		if err != nil {
			return st, nil, err
		}
		images[id] = img
	}
	return st, images, nil
}

// OpenProject reads a project archive from disk.
func OpenProject(path string) (model.State, map[string]image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.State{}, nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return model.State{}, nil, err
	}
	return ImportProject(f, info.Size())
}

// checkState rejects documents that cannot be loaded before decoding them.
func checkState(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: %s is not valid JSON", ErrBadProject, StateEntry)
	}
	res := gjson.GetManyBytes(data, "format", "animation.width", "animation.height", "animation.frames.#")
	if v := res[0]; v.Exists() && v.Int() > FormatVersion {
		return fmt.Errorf("%w: format %d is newer than %d", ErrBadProject, v.Int(), FormatVersion)
	}
	if res[1].Int() <= 0 || res[2].Int() <= 0 {
		return fmt.Errorf("%w: size %sx%s", ErrBadProject, res[1].Raw, res[2].Raw)
	}
	if res[3].Int() == 0 {
		return fmt.Errorf("%w: %w", ErrBadProject, ErrEmptyAnimation)
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrBadProject, f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrBadProject, f.Name, err)
	}
	return data, nil
}

func decodeEntry(f *zip.File) (image.Image, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrBadProject, f.Name, err)
	}
	defer rc.Close()
	img, err := png.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrBadProject, f.Name, err)
	}
	return img, nil
}
