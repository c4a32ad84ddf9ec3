package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Nombres de los archivos de datos crudos; son los mismos que expone la
// descarga de admin.
const (
	ParticipantsFile = "participants.csv"
	MessagesFile     = "messages.csv"
	RatingsFile      = "ratings.csv"
)

var participantsHeaders = []string{
	"id", "created_at", "completed_at",
	"group", "is_outlier",
	"age", "gender", "education",
	"tipi_1", "tipi_2", "tipi_3", "tipi_4", "tipi_5",
	"tipi_6", "tipi_7", "tipi_8", "tipi_9", "tipi_10",
	"extraversion", "agreeableness", "conscientiousness", "neuroticism", "openness",
	"interests", "communication_style",
	"preferred_bot", "preference_reason",
	"persona_label", "similarities",
}

var messagesHeaders = []string{
	"participant_id", "phase", "role", "content", "bot_type", "topic", "model", "created_at",
}

var ratingsHeaders = []string{
	"participant_id", "phase", "bot_type", "topic",
	"trust", "likability", "similarity", "naturalness", "satisfaction",
	"open_response", "created_at",
}

// CsvStore es el backend de archivos planos: una colección por archivo CSV
// dentro de un directorio de datos. Un unico mutex serializa todas las
// escrituras del proceso; los appends por fila son atomicos a ese nivel.
type CsvStore struct {
	dir string
	mu  sync.Mutex
}

// NewCsvStore crea el directorio y los archivos con cabecera si no existen.
func NewCsvStore(dir string) (*CsvStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &CsvStore{dir: dir}
	for file, headers := range map[string][]string{
		ParticipantsFile: participantsHeaders,
		MessagesFile:     messagesHeaders,
		RatingsFile:      ratingsHeaders,
	} {
		if err := s.initFile(file, headers); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir devuelve el directorio de datos (para la descarga de archivos crudos).
func (s *CsvStore) Dir() string { return s.dir }

func (s *CsvStore) path(file string) string { return filepath.Join(s.dir, file) }

func (s *CsvStore) initFile(file string, headers []string) error {
	path := s.path(file)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", file, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// appendRow agrega una fila al final del archivo. Caller debe sostener el
// mutex del store.
func (s *CsvStore) appendRow(file string, row []string) error {
	f, err := os.OpenFile(s.path(file), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// readRows devuelve todas las filas de datos (sin la cabecera). Caller debe
// sostener el mutex del store.
func (s *CsvStore) readRows(file string) ([][]string, error) {
	f, err := os.Open(s.path(file))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

// rewrite reemplaza el contenido completo del archivo (cabecera + filas).
// Es el mecanismo de actualizacion por campo de participants.csv. Caller
// debe sostener el mutex del store.
func (s *CsvStore) rewrite(file string, headers []string, rows [][]string) error {
	tmp := s.path(file) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(file))
}

// escapeContent aplana saltos de linea para que cada mensaje ocupe una sola
// celda legible en Excel/R; unescapeContent los restaura en la lectura.
func escapeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	return strings.ReplaceAll(content, "\n", `\n`)
}

func unescapeContent(content string) string {
	return strings.ReplaceAll(content, `\n`, "\n")
}
