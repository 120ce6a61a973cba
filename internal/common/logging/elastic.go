package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	// DefaultIndex receives log documents when the URL names none
	DefaultIndex = "spinwin-logs"

	indexTimeout = 2 * time.Second
)

// ElasticWriter indexes each encoded log line as one document. It
// implements zapcore.WriteSyncer.
type ElasticWriter struct {
	client *elasticsearch.Client
	index  string
}

func (w *ElasticWriter) Write(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	// zap reuses p after Write returns
	doc := make([]byte, len(p))
	copy(doc, p)

	res, err := w.client.Index(
		w.index,
		bytes.NewReader(doc),
		w.client.Index.WithContext(ctx),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.IsError() {
		return 0, fmt.Errorf("failed to index log line: %s", res.Status())
	}

	return len(p), nil
}

func (w *ElasticWriter) Sync() error {
	return nil
}
