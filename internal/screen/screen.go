// Package screen implements the individual data screens. Every screen turns
// its input into a View; failures never escape as errors but become one
// user-facing Message on the View.
package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tablescope/internal/catalog"
	"github.com/KaramelBytes/tablescope/internal/config"
	"github.com/KaramelBytes/tablescope/internal/logger"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

// Level is the severity of a Message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Message is one notice shown above the screen content.
type Message struct {
	Level Level
	Text  string
}

// Line is one entry of a Section.
type Line struct {
	Title string
	Meta  string
	Text  string
}

// Section is a headed list.
type Section struct {
	Heading string
	Lines   []Line
}

// Panel is a rendered chart document with its heading.
type Panel struct {
	Heading string
	HTML    string
}

// View is everything a screen produces for one request.
type View struct {
	Title    string
	Subtitle string
	Messages []Message
	Sections []Section
	Charts   []Panel
	// Table is the preview grid; Export is the shaped result offered for download.
	Table      *tabular.Table
	TableTitle string
	Export     *tabular.Table
	Summary    string
	Notes      []string

	// Form state: option lists and the values actually used.
	Choices  map[string][]string
	Selected map[string]string
	Source   string

	// Err is the failure that halted the screen, if any.
	Err error
}

func newView(title string) *View {
	return &View{Title: title, Choices: map[string][]string{}, Selected: map[string]string{}}
}

func (v *View) add(level Level, format string, args ...any) {
	v.Messages = append(v.Messages, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

// fail records err as the halting failure and its message.
func (v *View) fail(err error) *View {
	v.Err = err
	v.Messages = append(v.Messages, MessageFor(err))
	if errors.Is(err, tabular.ErrEmptyResult) {
		logger.Debugf("screen %q: %v", v.Title, err)
	} else {
		logger.Warnf("screen %q: %v", v.Title, err)
	}
	return v
}

// Halted reports whether the screen stopped before producing content.
func (v *View) Halted() bool { return v.Err != nil }

// EmptyResultError is an empty filter result with a screen-specific hint.
// It matches tabular.ErrEmptyResult.
type EmptyResultError struct {
	Hint string
}

func (e *EmptyResultError) Error() string {
	if e.Hint == "" {
		return tabular.ErrEmptyResult.Error()
	}
	return tabular.ErrEmptyResult.Error() + ": " + e.Hint
}

func (e *EmptyResultError) Is(target error) bool { return target == tabular.ErrEmptyResult }

// MessageFor converts any failure into the single message shown to the user.
func MessageFor(err error) Message {
	var (
		miss   *tabular.MissingInputError
		dec    *tabular.DecodeError
		schema *tabular.SchemaError
		dates  *tabular.DateColumnError
		empty  *EmptyResultError
	)
	switch {
	case err == nil:
		return Message{Level: LevelSuccess, Text: "완료되었습니다."}
	case errors.As(err, &miss):
		if miss.Source != "" {
			return Message{Level: LevelWarning, Text: fmt.Sprintf("업로드된 파일이 없습니다. 먼저 CSV를 업로드하거나 `%s` 파일을 추가해주세요.", miss.Source)}
		}
		return Message{Level: LevelWarning, Text: "업로드된 파일이 없습니다. 먼저 CSV를 업로드해주세요."}
	case errors.As(err, &dec):
		return Message{Level: LevelError, Text: fmt.Sprintf("CSV 파일을 읽는 중 오류가 발생했습니다. 인코딩 문제일 수 있습니다. (시도한 인코딩: %s)", strings.Join(dec.Encodings, ", "))}
	case errors.As(err, &schema):
		return Message{Level: LevelError, Text: fmt.Sprintf("다음 필수 컬럼을 찾을 수 없습니다: [%s]. CSV 컬럼명을 확인해 주세요. 현재 컬럼: [%s]",
			strings.Join(schema.Missing, ", "), strings.Join(schema.Available, ", "))}
	case errors.As(err, &dates):
		return Message{Level: LevelError, Text: fmt.Sprintf("%s 컬럼을 날짜로 파싱할 수 없습니다. 형식을 확인해주세요 (예: YYYYMMDD 또는 YYYY-MM-DD).", dates.Column)}
	case errors.As(err, &empty) && empty.Hint != "":
		return Message{Level: LevelWarning, Text: empty.Hint}
	case errors.Is(err, tabular.ErrEmptyResult):
		return Message{Level: LevelWarning, Text: "선택한 조건에 해당하는 데이터가 없습니다."}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Message{Level: LevelWarning, Text: "요청이 취소되었습니다."}
	default:
		return Message{Level: LevelError, Text: "처리 중 오류가 발생했습니다: " + err.Error()}
	}
}

// SourceRef names the table a screen should read: a fresh upload, a
// previously ingested source id, or neither (the bundled file).
type SourceRef struct {
	ID     string
	Upload *tabular.Source
}

// Env is what the screens share: configuration, the static catalog and the
// source cache.
type Env struct {
	Config  *config.Global
	Catalog *catalog.Catalog
	Cache   *tabular.Cache
}

// NewEnv loads the embedded catalog and sizes the cache from cfg.
func NewEnv(cfg *config.Global) (*Env, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Catalog: cat, Cache: tabular.NewCache(cfg.CacheSize)}, nil
}

func (e *Env) loadOptions() tabular.LoadOptions {
	return tabular.LoadOptions{Encodings: e.Config.Encodings}
}

// Ingest decodes an upload and caches it under a new source id.
func (e *Env) Ingest(src tabular.Source) (string, *tabular.Loaded, error) {
	l, err := tabular.Load(src, e.loadOptions())
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	e.Cache.Put(id, l)
	logger.Debugf("ingested %s as %s (%s, %d rows)", src.Name, id, l.Encoding, l.Table.Len())
	return id, l, nil
}

// Invalidate drops a cached source. Bundled files are cached under "file:<path>".
func (e *Env) Invalidate(id string) bool {
	return e.Cache.Invalidate(id)
}

// open resolves ref: upload first, then a cached id, then the bundled file.
// An unknown or expired id silently falls back to the bundled file.
func (e *Env) open(ctx context.Context, ref SourceRef, fallback string) (*tabular.Loaded, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	uploaded := ref.Upload != nil && ref.Upload.Data != nil
	path := e.Config.Path(fallback)
	key := "file:" + path
	if !uploaded {
		if ref.ID != "" {
			if l, ok := e.Cache.Get(ref.ID); ok {
				return l, false, nil
			}
			logger.Debugf("source %s not cached; using %s", ref.ID, fallback)
		}
		if l, ok := e.Cache.Get(key); ok {
			return l, true, nil
		}
	}
	src, err := tabular.FirstAvailable(ref.Upload, path)
	if err != nil {
		return nil, true, err
	}
	l, err := tabular.Load(src, e.loadOptions())
	if err != nil || uploaded {
		return l, !uploaded, err
	}
	e.Cache.Put(key, l)
	return l, true, nil
}
