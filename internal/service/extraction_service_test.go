package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"smartstudy/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func uploads(name, body string) []domain.UploadedFile {
	return []domain.UploadedFile{{Name: name, Size: int64(len(body)), Content: strings.NewReader(body)}}
}

func TestCheckFileExtension(t *testing.T) {
	for _, name := range []string{"a.pdf", "B.DOCX", "c.doc", "d.pptx", "e.ppt", "notes.txt"} {
		assert.NoError(t, CheckFileExtension(name), name)
	}
	err := CheckFileExtension("image.png")
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeUnsupportedFile, domainErr.Code)
}

func TestExtractionService_CachesByContent(t *testing.T) {
	extractor := new(MockTextExtractor)
	c := newMemoryCache()
	svc := NewExtractionService(extractor, c, time.Hour, 1024)
	ctx := context.Background()

	extractor.On("ExtractText", ctx, mock.MatchedBy(func(files []domain.UploadedFile) bool {
		return len(files) == 1 && files[0].Name == "notes.txt" && files[0].Size == 14
	})).Return("Cells use ATP.", nil).Once()

	text, err := svc.Extract(ctx, uploads("notes.txt", "Cells use ATP."))
	require.NoError(t, err)
	assert.Equal(t, "Cells use ATP.", text)

	text, err = svc.Extract(ctx, uploads("notes.txt", "Cells use ATP."))
	require.NoError(t, err)
	assert.Equal(t, "Cells use ATP.", text)

	extractor.AssertNumberOfCalls(t, "ExtractText", 1)
	keys := c.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "smartstudy:extract:text:"))
}

func TestExtractionService_Validation(t *testing.T) {
	extractor := new(MockTextExtractor)
	svc := NewExtractionService(extractor, nil, 0, 4)
	ctx := context.Background()

	_, err := svc.Extract(ctx, nil)
	var validationErr domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, domain.CodeMissingField, validationErr.Code)

	_, err = svc.Extract(ctx, uploads("slides.key", "x"))
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeUnsupportedFile, domainErr.Code)

	_, err = svc.Extract(ctx, uploads("big.txt", "too large"))
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeOutOfRange, domainErr.Code)

	extractor.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything)
}

func TestExtractionService_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("ExtractorError", func(t *testing.T) {
		extractor := new(MockTextExtractor)
		extractor.On("ExtractText", ctx, mock.Anything).Return("", errors.New("connection refused")).Once()
		c := newMemoryCache()

		_, err := NewExtractionService(extractor, c, time.Hour, 0).Extract(ctx, uploads("a.pdf", "%PDF"))

		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.CodeExtractionFailed, domainErr.Code)
		assert.Empty(t, c.keys(), "failures are not cached")
	})

	t.Run("EmptyText", func(t *testing.T) {
		extractor := new(MockTextExtractor)
		extractor.On("ExtractText", ctx, mock.Anything).Return("  \n ", nil).Once()

		_, err := NewExtractionService(extractor, nil, time.Hour, 0).Extract(ctx, uploads("a.pdf", "%PDF"))

		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.CodeExtractionFailed, domainErr.Code)
	})

	t.Run("CacheReadErrorFallsThrough", func(t *testing.T) {
		extractor := new(MockTextExtractor)
		extractor.On("ExtractText", ctx, mock.Anything).Return("text", nil).Once()
		c := newMemoryCache()
		c.err = errors.New("redis down")

		text, err := NewExtractionService(extractor, c, time.Hour, 0).Extract(ctx, uploads("a.txt", "text"))

		require.NoError(t, err)
		assert.Equal(t, "text", text)
	})
}

// blockingExtractor holds every call until release is closed.
type blockingExtractor struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (b *blockingExtractor) ExtractText(ctx context.Context, files []domain.UploadedFile) (string, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		close(b.started)
	}
	<-b.release
	return "shared text", nil
}

func (b *blockingExtractor) Health(ctx context.Context) error { return nil }

func TestExtractionService_ConcurrentCallsShareOneExtraction(t *testing.T) {
	extractor := &blockingExtractor{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewExtractionService(extractor, nil, time.Hour, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.Extract(ctx, uploads("a.txt", "same"))
	}()
	<-extractor.started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = svc.Extract(ctx, uploads("a.txt", "same"))
	}()
	time.Sleep(50 * time.Millisecond)
	close(extractor.release)
	wg.Wait()

	assert.Equal(t, []string{"shared text", "shared text"}, results)
	extractor.mu.Lock()
	defer extractor.mu.Unlock()
	assert.LessOrEqual(t, extractor.calls, 2)
}
