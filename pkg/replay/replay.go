// Package replay reads and writes pre-generated syndrome pattern files.
//
// A replay file is line oriented:
//
//	Syndrome Pattern v1.0 <free text>
//	{"vertex_num":...,"weighted_edges":[[a,b,w],...],"virtual_vertices":[...]}
//	[{"i":...,"j":...,"t":...}, ...]
//	{"syndrome_vertices":[...],"erasures":[...]}
//	...
//
// Replaying a file lets repeated benchmark runs see exactly the same patterns
// without paying for random generation inside the measured loop.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/domain"
)

// Header is the required prefix of the first line.
const Header = "Syndrome Pattern v1.0 "

// maxLineSize bounds a single JSON line.
const maxLineSize = 64 << 20

// File is the parsed content of a replay file.
type File struct {
	Comment     string
	Initializer *domain.Initializer
	Positions   []domain.Position
	Patterns    []domain.SyndromePattern
}

// Writer appends patterns to a replay stream.
type Writer struct {
	w     *bufio.Writer
	count int
}

// NewWriter writes the header, initializer and positions lines.
func NewWriter(w io.Writer, in *domain.Initializer, positions []domain.Position, comment string) (*Writer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(positions) != in.VertexNum {
		return nil, apperror.Newf(apperror.CodeInvalidArgument,
			"positions length %d does not match vertex count %d", len(positions), in.VertexNum)
	}
	rw := &Writer{w: bufio.NewWriter(w)}
	if _, err := rw.w.WriteString(Header + strings.ReplaceAll(comment, "\n", " ") + "\n"); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "write header")
	}
	if err := rw.writeJSON(in); err != nil {
		return nil, err
	}
	if err := rw.writeJSON(positions); err != nil {
		return nil, err
	}
	return rw, nil
}

// Write appends one pattern.
func (rw *Writer) Write(pattern domain.SyndromePattern) error {
	if pattern.SyndromeVertices == nil {
		pattern.SyndromeVertices = []int{}
	}
	if pattern.Erasures == nil {
		pattern.Erasures = []int{}
	}
	if err := rw.writeJSON(pattern); err != nil {
		return err
	}
	rw.count++
	return nil
}

// Count returns the number of patterns written.
func (rw *Writer) Count() int { return rw.count }

// Flush flushes buffered lines to the underlying writer.
func (rw *Writer) Flush() error {
	if err := rw.w.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "flush replay file")
	}
	return nil
}

func (rw *Writer) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "encode replay line")
	}
	data = append(data, '\n')
	if _, err := rw.w.Write(data); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "write replay line")
	}
	return nil
}

// Read parses a replay stream.
//
// Returns CodeInvalidFormat on a version mismatch, missing initializer or
// positions lines, malformed JSON or a positions/vertex count mismatch.
func Read(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	f := &File{}
	line := 0
	for sc.Scan() {
		text := sc.Text()
		switch line {
		case 0:
			if !strings.HasPrefix(text, Header) {
				return nil, invalidFormat(line, "incompatible file version", nil)
			}
			f.Comment = strings.TrimPrefix(text, Header)
		case 1:
			f.Initializer = &domain.Initializer{}
			if err := json.Unmarshal([]byte(text), f.Initializer); err != nil {
				return nil, invalidFormat(line, "bad initializer", err)
			}
		case 2:
			if err := json.Unmarshal([]byte(text), &f.Positions); err != nil {
				return nil, invalidFormat(line, "bad positions", err)
			}
		default:
			if strings.TrimSpace(text) == "" {
				line++
				continue
			}
			var p domain.SyndromePattern
			if err := json.Unmarshal([]byte(text), &p); err != nil {
				return nil, invalidFormat(line, "bad syndrome pattern", err)
			}
			f.Patterns = append(f.Patterns, p)
		}
		line++
	}
	if err := sc.Err(); err != nil {
		return nil, invalidFormat(line, "read failed", err)
	}

	switch {
	case line == 0:
		return nil, invalidFormat(0, "empty file", nil)
	case f.Initializer == nil:
		return nil, invalidFormat(1, "initializer not present in file", nil)
	case line < 3:
		return nil, invalidFormat(2, "positions not present in file", nil)
	}
	if err := f.Initializer.Validate(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidFormat, "invalid initializer")
	}
	if len(f.Positions) != f.Initializer.VertexNum {
		return nil, apperror.Newf(apperror.CodeInvalidFormat,
			"positions length %d does not match vertex count %d", len(f.Positions), f.Initializer.VertexNum)
	}
	return f, nil
}

// ReadFile opens and parses a replay file.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNotFound, "open replay file").WithDetails("path", path)
	}
	defer fh.Close()
	return Read(fh)
}

func invalidFormat(line int, msg string, cause error) error {
	e := apperror.New(apperror.CodeInvalidFormat, fmt.Sprintf("line %d: %s", line+1, msg)).
		WithDetails("line", line+1)
	e.Cause = cause
	return e
}
