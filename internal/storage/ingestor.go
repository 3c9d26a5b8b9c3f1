package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	sniffLen = 3072
	// maxNameAttempts bounds how far the millisecond prefix is advanced when
	// a generated name is already taken.
	maxNameAttempts = 8
)

// Ingestor names uploaded files and writes them to a BlobStore.
type Ingestor struct {
	store BlobStore
	log   *zap.Logger
	now   func() time.Time
}

// NewIngestor creates an Ingestor writing to store
func NewIngestor(store BlobStore, log *zap.Logger) *Ingestor {
	return &Ingestor{
		store: store,
		log:   log.With(zap.String("component", "ingestor")),
		now:   time.Now,
	}
}

// Ingest writes every part in order and returns one asset reference per part,
// in the same order. Writes are not rolled back: on failure the returned
// slice holds the references already written and the error wraps ErrStorage.
func (i *Ingestor) Ingest(ctx context.Context, parts []FilePart) ([]string, error) {
	refs := make([]string, 0, len(parts))
	for idx, part := range parts {
		name, err := i.ingestOne(ctx, part)
		if err != nil {
			i.log.Error("upload write failed",
				zap.Int("index", idx),
				zap.String("filename", part.Filename),
				zap.Int("written", len(refs)),
				zap.Error(err))
			return refs, fmt.Errorf("%w: file %d (%s): %w", ErrStorage, idx, part.Filename, err)
		}
		refs = append(refs, URLPrefix+name)
	}
	return refs, nil
}

func (i *Ingestor) ingestOne(ctx context.Context, part FilePart) (string, error) {
	if part.Content == nil {
		return "", errors.New("missing file content")
	}

	br := bufio.NewReaderSize(part.Content, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := mimetype.Detect(head).String()

	base := SanitizeFilename(part.Filename)
	ts := i.now().UnixMilli()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := strconv.FormatInt(ts+int64(attempt), 10) + "-" + base
		err := i.store.Put(ctx, name, contentType, br)
		if errors.Is(err, ErrBlobExists) {
			continue
		}
		if err != nil {
			return "", err
		}
		i.log.Debug("upload stored",
			zap.String("name", name),
			zap.String("content_type", contentType))
		return name, nil
	}
	return "", fmt.Errorf("no free name for %q after %d attempts", base, maxNameAttempts)
}
