package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"
)

// MergeRecord describes one successful merge of a capture batch.
type MergeRecord struct {
	RunID      string   `json:"runId"`
	Scope      string   `json:"scope"`
	Added      []string `json:"added"`
	Replaced   []string `json:"replaced"`
	Total      int      `json:"total"`
	Captures   int      `json:"captures"`
	LastUpdate string   `json:"lastUpdate"`
}

type Writer interface {
	Append(ctx context.Context, r MergeRecord) error
}

// MultiWriter fans out writes to multiple underlying writers and stops at the first error.
type MultiWriter struct {
	writers []Writer
}

func NewMultiWriter(ws ...Writer) *MultiWriter {
	return &MultiWriter{writers: ws}
}

func (m *MultiWriter) Append(ctx context.Context, r MergeRecord) error {
	for _, w := range m.writers {
		if err := w.Append(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

type Nop struct{}

func (Nop) Append(context.Context, MergeRecord) error { return nil }

// FileWriter appends one JSON document per line.
type FileWriter struct {
	path string
	mux  sync.Mutex
}

func NewFileWriter(path string) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &FileWriter{path: path}, nil
}

func (w *FileWriter) Append(_ context.Context, r MergeRecord) error {
	w.mux.Lock()
	defer w.mux.Unlock()
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(&r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// KafkaWriter publishes merge records keyed by scope.
type KafkaWriter struct {
	writer kafkaMessageWriter
}

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter accepts a comma-separated list of host:port.
func NewKafkaWriter(bootstrap string, topic string) *KafkaWriter {
	var brokers []string
	for _, a := range strings.Split(bootstrap, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			brokers = append(brokers, a)
		}
	}
	return &KafkaWriter{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}}
}

func newKafkaWriterWith(w kafkaMessageWriter) *KafkaWriter {
	return &KafkaWriter{writer: w}
}

func (k *KafkaWriter) Append(ctx context.Context, r MergeRecord) error {
	b, err := json.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(r.Scope), Value: b}); err != nil {
		return fmt.Errorf("publish merge record: %w", err)
	}
	return nil
}

func (k *KafkaWriter) Close() error {
	return k.writer.Close()
}
