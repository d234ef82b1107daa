package maplib

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// Format selects a terrain encoding
type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
)

// ErrMalformed is returned when decoded data does not describe a square terrain
var ErrMalformed = errors.New("malformed terrain")

// TileRecord is the persisted part of a TerrainCell. HeightDiff is derived.
type TileRecord struct {
	Height float32  `json:"height" msgpack:"h"`
	Kind   TileKind `json:"kind" msgpack:"k"`
}

// TransformRecord persists a grid.Transform
type TransformRecord struct {
	Translation [3]float32 `json:"translation" msgpack:"t"`
	Rotation    float32    `json:"rotation" msgpack:"r"`
	Scale       [3]float32 `json:"scale" msgpack:"s"`
}

// File is the on-disk terrain layout: a flat row-major list of tiles plus the side length
type File struct {
	Name      string          `json:"name" msgpack:"name"`
	Size      int             `json:"size" msgpack:"size"`
	Transform TransformRecord `json:"transform" msgpack:"transform"`
	Tiles     []TileRecord    `json:"tiles" msgpack:"tiles"`
}

// ToFile flattens a terrain for persistence
func ToFile(name string, t *Terrain) File {
	tr := t.Transform()
	f := File{
		Name: name,
		Size: t.Size(),
		Transform: TransformRecord{
			Translation: [3]float32{tr.Translation.X, tr.Translation.Y, tr.Translation.Z},
			Rotation:    tr.Rotation,
			Scale:       [3]float32{tr.Scale.X, tr.Scale.Y, tr.Scale.Z},
		},
		Tiles: make([]TileRecord, 0, len(t.Tiles())),
	}
	for _, c := range t.Tiles() {
		f.Tiles = append(f.Tiles, TileRecord{Height: c.Height, Kind: c.Kind})
	}
	return f
}

// Terrain rebuilds the grid described by f
func (f File) Terrain() (*Terrain, error) {
	if area, ok := grid.Area(f.Size); !ok || len(f.Tiles) != area {
		return nil, fmt.Errorf("%w: size %d with %d tiles", ErrMalformed, f.Size, len(f.Tiles))
	}
	cells := make([]TerrainCell, len(f.Tiles))
	for i, r := range f.Tiles {
		if !r.Kind.Valid() {
			return nil, fmt.Errorf("%w: tile %d has kind %d", ErrMalformed, i, r.Kind)
		}
		cells[i] = TerrainCell{Height: r.Height, Kind: r.Kind}
	}
	tr := grid.Transform{
		Translation: vmath.V3(f.Transform.Translation[0], f.Transform.Translation[1], f.Transform.Translation[2]),
		Rotation:    f.Transform.Rotation,
		Scale:       vmath.V3(f.Transform.Scale[0], f.Transform.Scale[1], f.Transform.Scale[2]),
	}
	t := grid.FromParts(f.Size, cells, tr)
	RecomputeHeightDiff(t)
	return t, nil
}

// Encode writes t to w
func Encode(w io.Writer, format Format, name string, t *Terrain) error {
	f := ToFile(name, t)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(&f)
	}
	return fmt.Errorf("maplib: unknown format %d", format)
}

// Decode reads a terrain from r
func Decode(r io.Reader, format Format) (*Terrain, string, error) {
	var f File
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&f)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&f)
	default:
		err = fmt.Errorf("maplib: unknown format %d", format)
	}
	if err != nil {
		return nil, "", err
	}
	t, err := f.Terrain()
	if err != nil {
		return nil, "", err
	}
	return t, f.Name, nil
}

// FormatFor picks the format from a file extension: .msgpack/.mp use
// msgpack, anything else JSON
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	}
	return FormatJSON
}

// Save writes the terrain to path, choosing the format from the extension
func Save(path, name string, t *Terrain) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(fh, FormatFor(path), name, t); err != nil {
		_ = fh.Close()
		return fmt.Errorf("maplib: encode %s: %w", path, err)
	}
	return fh.Close()
}

// Load reads a terrain from path
func Load(path string) (*Terrain, string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer fh.Close()
	t, name, err := Decode(fh, FormatFor(path))
	if err != nil {
		return nil, "", fmt.Errorf("maplib: decode %s: %w", path, err)
	}
	return t, name, nil
}
