// Package report хранит профиль прогона bench-svc и строит по нему сводку.
//
// Профиль это JSON-lines файл: первая строка Header с параметрами прогона,
// далее по одной Entry на раунд.
package report

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"time"

	"qecgraph/pkg/apperror"
)

// Header параметры прогона, первая строка профиля
type Header struct {
	RunID             string    `json:"run_id"`
	Mode              string    `json:"mode"`
	Code              string    `json:"code,omitempty"`
	D                 int       `json:"d,omitempty"`
	NoisyMeasurements int       `json:"noisy_measurements,omitempty"`
	P                 float64   `json:"p,omitempty"`
	Pe                float64   `json:"pe,omitempty"`
	Seed              uint64    `json:"seed"`
	Rounds            int       `json:"rounds"`
	Workers           int       `json:"workers"`
	VertexNum         int       `json:"vertex_num"`
	EdgeNum           int       `json:"edge_num"`
	CacheEnabled      bool      `json:"cache_enabled"`
	StartedAt         time.Time `json:"started_at"`
}

// Entry результат одного раунда
type Entry struct {
	Round       int `json:"round"`
	SyndromeNum int `json:"syndrome_num"`
	// DecodingTime время построения замыкания в секундах
	DecodingTime float64 `json:"decoding_time"`
	Paths        int     `json:"paths"`
	Unreachable  int     `json:"unreachable,omitempty"`
	Finalized    int     `json:"finalized"`
}

// Profile прочитанный профиль
type Profile struct {
	Header  Header
	Entries []Entry
}

// ProfileWriter пишет профиль построчно
type ProfileWriter struct {
	w      *bufio.Writer
	closer io.Closer
	count  int
}

// NewProfileWriter пишет заголовок в w
func NewProfileWriter(w io.Writer, h Header) (*ProfileWriter, error) {
	pw := &ProfileWriter{w: bufio.NewWriter(w)}
	if err := pw.writeLine(h); err != nil {
		return nil, err
	}
	return pw, nil
}

// CreateProfile создаёт файл профиля
func CreateProfile(path string, h Header) (*ProfileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "create profile").
			WithField("bench.profile_path")
	}
	pw, err := NewProfileWriter(f, h)
	if err != nil {
		f.Close()
		return nil, err
	}
	pw.closer = f
	return pw, nil
}

// Write добавляет запись раунда
func (pw *ProfileWriter) Write(e Entry) error {
	if err := pw.writeLine(e); err != nil {
		return err
	}
	pw.count++
	return nil
}

// Count возвращает число записанных раундов
func (pw *ProfileWriter) Count() int { return pw.count }

// Close сбрасывает буфер и закрывает файл, если он был открыт CreateProfile
func (pw *ProfileWriter) Close() error {
	if err := pw.w.Flush(); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "flush profile")
	}
	if pw.closer != nil {
		return pw.closer.Close()
	}
	return nil
}

func (pw *ProfileWriter) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "encode profile line")
	}
	data = append(data, '\n')
	if _, err := pw.w.Write(data); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "write profile line")
	}
	return nil
}

// ReadProfile читает профиль. Первые skipBegin записей пропускаются:
// первые раунды обычно нестабильны. Чтение останавливается на пустой строке.
func ReadProfile(r io.Reader, skipBegin int) (*Profile, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	p := &Profile{}
	line := 0
	for sc.Scan() {
		text := sc.Bytes()
		if len(text) == 0 {
			break
		}
		line++
		if line == 1 {
			if err := json.Unmarshal(text, &p.Header); err != nil {
				return nil, apperror.Wrap(err, apperror.CodeInvalidFormat, "decode profile header").
					WithDetails("line", line)
			}
			continue
		}
		var e Entry
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidFormat, "decode profile entry").
				WithDetails("line", line)
		}
		if skipBegin > 0 {
			skipBegin--
			continue
		}
		p.Entries = append(p.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidFormat, "read profile")
	}
	if line == 0 {
		return nil, apperror.New(apperror.CodeInvalidFormat, "profile is empty")
	}
	return p, nil
}

// LoadProfile читает профиль из файла
func LoadProfile(path string, skipBegin int) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNotFound, "open profile").WithDetails("path", path)
	}
	defer f.Close()
	return ReadProfile(f, skipBegin)
}
