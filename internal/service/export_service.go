package service

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"surveystudio/internal/backend"
	"surveystudio/internal/events"
	"surveystudio/internal/model"
)

// ExportFormat is a backend export format
type ExportFormat string

const (
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
)

var ErrInvalidFormat = errors.New("format must be csv or excel")

// Extension returns the file extension for the format
func (f ExportFormat) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "csv"
}

// ExportBackend downloads export files
type ExportBackend interface {
	Export(ctx context.Context, token, surveyID, format string) (*backend.ExportFile, error)
}

// ExportItem names one survey to export
type ExportItem struct {
	SurveyID string `json:"survey_id"`
	Title    string `json:"title"`
}

// ExportFailure records one item of a batch that could not be exported
type ExportFailure struct {
	SurveyID string `json:"survey_id"`
	Title    string `json:"title"`
	Error    string `json:"error"`
}

// ExportBatch is the outcome of ExportAll
type ExportBatch struct {
	Format   ExportFormat          `json:"format"`
	Files    []*backend.ExportFile `json:"-"`
	Failures []ExportFailure       `json:"failures"`
}

type manifest struct {
	Format   ExportFormat    `json:"format"`
	Exported []string        `json:"exported"`
	Failures []ExportFailure `json:"failures"`
}

// ExportService downloads result exports
type ExportService struct {
	backend   ExportBackend
	publisher events.Publisher
	auth      upstream
	log       logrus.FieldLogger
}

// NewExportService creates a new export service
func NewExportService(b ExportBackend, pub events.Publisher, auth upstream, log logrus.FieldLogger) *ExportService {
	return &ExportService{
		backend:   b,
		publisher: pub,
		auth:      auth,
		log:       log.WithField("component", "export"),
	}
}

// Export downloads one export. When the backend names no file, the name
// is derived from the survey title.
func (s *ExportService) Export(ctx context.Context, session *model.Session, item ExportItem, format ExportFormat) (*backend.ExportFile, error) {
	if format != FormatCSV && format != FormatExcel {
		return nil, ErrInvalidFormat
	}
	f, err := s.backend.Export(ctx, session.Token, item.SurveyID, string(format))
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}
	if f.Filename == "" {
		f.Filename = ExportFilename(item.Title, format)
	}
	publish(ctx, s.publisher, s.log, model.SurveyEvent{
		Type:     model.EventSurveyExported,
		SurveyID: item.SurveyID,
		Title:    item.Title,
		UserID:   session.UserID,
		Format:   string(format),
	})
	return f, nil
}

// ExportAll exports items strictly one after another. A failed item is
// recorded and the rest still run; it contributes no file.
func (s *ExportService) ExportAll(ctx context.Context, session *model.Session, items []ExportItem, format ExportFormat) (*ExportBatch, error) {
	if format != FormatCSV && format != FormatExcel {
		return nil, ErrInvalidFormat
	}
	batch := &ExportBatch{Format: format, Failures: []ExportFailure{}}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := s.Export(ctx, session, item, format)
		if errors.Is(err, ErrSessionEnded) {
			return nil, err
		}
		if err != nil {
			s.log.WithError(err).WithField("survey", item.SurveyID).Warn("export failed")
			batch.Failures = append(batch.Failures, ExportFailure{
				SurveyID: item.SurveyID,
				Title:    item.Title,
				Error:    err.Error(),
			})
			continue
		}
		batch.Files = append(batch.Files, f)
	}
	s.log.WithFields(logrus.Fields{"ok": len(batch.Files), "failed": len(batch.Failures)}).Info("batch export finished")
	return batch, nil
}

const manifestName = "manifest.json"

// WriteZip writes the batch files and a manifest.json of failures to w.
// Duplicate file names get a numeric suffix.
func WriteZip(w io.Writer, batch *ExportBatch) error {
	zw := zip.NewWriter(w)
	seen := map[string]bool{manifestName: true}
	m := manifest{Format: batch.Format, Exported: []string{}, Failures: batch.Failures}
	for _, f := range batch.Files {
		name := uniqueName(f.Filename, seen)
		m.Exported = append(m.Exported, name)
		entry, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	mw, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return err
	}
	return zw.Close()
}

// uniqueName returns name, or name with the lowest free "_N" suffix
// when it is already taken. The returned name is marked taken.
func uniqueName(name string, seen map[string]bool) string {
	if !seen[name] {
		seen[name] = true
		return name
	}
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !seen[candidate] {
			seen[candidate] = true
			return candidate
		}
	}
}

// ExportFilename is "<title>_results.<ext>" with the title lowercased and
// every character outside a-z0-9 replaced by an underscore
func ExportFilename(title string, format ExportFormat) string {
	if title == "" {
		title = "survey"
	}
	clean := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, title)
	return fmt.Sprintf("%s_results.%s", clean, format.Extension())
}
