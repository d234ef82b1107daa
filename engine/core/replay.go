package core

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// CommandKind identifies a recorded command
type CommandKind uint8

const (
	CmdSpawn CommandKind = iota
	CmdMove
)

// Command is a deterministic input to the world. Pos is the spawn position
// or the move goal; Speed is only used by CmdSpawn.
type Command struct {
	Tick  uint64
	Kind  CommandKind
	Pos   vmath.Vec3
	Speed float32
}

// Encode writes a command as fixed-size little-endian binary
func (c *Command) Encode(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, c)
}

// Decode reads a command written by Encode
func (c *Command) Decode(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, c)
}

// Apply runs cmd against the world. Moves go to every agent.
func (w *World) Apply(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case CmdSpawn:
		w.Spawn(cmd.Pos, cmd.Speed)
		return nil
	case CmdMove:
		_, err := w.Move(ctx, cmd.Pos, nil)
		return err
	}
	return fmt.Errorf("core: unknown command kind %d", cmd.Kind)
}

// Replay records and plays back world commands
type Replay struct {
	Commands []Command
	file     *os.File
	writer   *bufio.Writer
}

// NewReplayRecorder creates a replay file for recording
func NewReplayRecorder(path string) (*Replay, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Replay{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Record writes a command to the replay file
func (r *Replay) Record(cmd Command) error {
	r.Commands = append(r.Commands, cmd)
	return cmd.Encode(r.writer)
}

// Close flushes and closes the replay file
func (r *Replay) Close() error {
	var err error
	if r.writer != nil {
		err = multierr.Append(err, r.writer.Flush())
	}
	if r.file != nil {
		err = multierr.Append(err, r.file.Close())
	}
	return err
}

// LoadReplay loads a replay file. A truncated trailing command is an error.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	replay := &Replay{}
	reader := bufio.NewReader(f)
	for {
		var cmd Command
		err := cmd.Decode(reader)
		if errors.Is(err, io.EOF) {
			return replay, nil
		}
		if err != nil {
			return nil, fmt.Errorf("core: replay %s: command %d: %w", path, len(replay.Commands), err)
		}
		replay.Commands = append(replay.Commands, cmd)
	}
}

// CommandsForTick returns all commands at a given tick during playback
func (r *Replay) CommandsForTick(tick uint64) []Command {
	var result []Command
	for _, c := range r.Commands {
		if c.Tick == tick {
			result = append(result, c)
		}
	}
	return result
}

// LastTick is the tick of the latest command, 0 for an empty replay
func (r *Replay) LastTick() uint64 {
	var last uint64
	for _, c := range r.Commands {
		last = max(last, c.Tick)
	}
	return last
}
