package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"smartstudy/internal/cache"
	"smartstudy/internal/domain"
	"smartstudy/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultExtractionTTL = time.Hour

// ExtractionService turns uploaded documents into text, caching by content.
type ExtractionService interface {
	Extract(ctx context.Context, files []domain.UploadedFile) (string, error)
}

type extractionService struct {
	extractor    domain.TextExtractor
	cache        domain.Cache
	ttl          time.Duration
	maxFileBytes int64
	sfGroup      singleflight.Group
}

// NewExtractionService creates an ExtractionService. cache may be nil, in
// which case every call reaches the extractor.
func NewExtractionService(extractor domain.TextExtractor, cache domain.Cache, ttl time.Duration, maxFileBytes int64) ExtractionService {
	if ttl <= 0 {
		ttl = defaultExtractionTTL
	}
	return &extractionService{
		extractor:    extractor,
		cache:        cache,
		ttl:          ttl,
		maxFileBytes: maxFileBytes,
	}
}

// CheckFileExtension rejects documents the extractor cannot read.
func CheckFileExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(domain.SupportedExtensions, ext) {
		return domain.NewUnsupportedFileError(name, ext)
	}
	return nil
}

func (s *extractionService) Extract(ctx context.Context, files []domain.UploadedFile) (string, error) {
	if len(files) == 0 {
		return "", domain.NewMissingFieldError("files")
	}

	// Buffer every upload once: the bytes feed both the cache key and the extractor.
	buffered := make([]domain.UploadedFile, 0, len(files))
	hasher := sha256.New()
	for _, f := range files {
		if err := CheckFileExtension(f.Name); err != nil {
			return "", err
		}
		data, err := io.ReadAll(f.Content)
		if err != nil {
			return "", domain.NewExtractionError(fmt.Sprintf("failed to read %s", f.Name), err)
		}
		if s.maxFileBytes > 0 && int64(len(data)) > s.maxFileBytes {
			return "", domain.NewError(domain.CodeOutOfRange, fmt.Sprintf("file %s exceeds the %d byte limit", f.Name, s.maxFileBytes), nil)
		}
		hasher.Write([]byte(f.Name))
		hasher.Write([]byte{0})
		hasher.Write(data)
		buffered = append(buffered, domain.UploadedFile{Name: f.Name, Size: int64(len(data)), Content: bytes.NewReader(data)})
	}
	cacheKey := cache.ExtractionKey(hex.EncodeToString(hasher.Sum(nil)))

	if s.cache != nil {
		text, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err == nil && text != "":
			logger.Get().Debug("Extraction cache hit", zap.String("key", cacheKey))
			return text, nil
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			logger.Get().Warn("Extraction cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	res, err, shared := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		text, err := s.extractor.ExtractText(ctx, buffered)
		if err != nil {
			var domainErr *domain.DomainError
			if errors.As(err, &domainErr) {
				return nil, err
			}
			return nil, domain.NewExtractionError("failed to extract text from documents", err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, domain.NewExtractionError("no text could be extracted from the uploaded documents", nil)
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, cacheKey, text, s.ttl); err != nil {
				logger.Get().Warn("Failed to cache extracted text", zap.String("key", cacheKey), zap.Error(err))
			}
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		logger.Get().Debug("Extraction shared with concurrent caller", zap.String("key", cacheKey))
	}

	text, ok := res.(string)
	if !ok {
		return "", domain.NewInternalError(fmt.Sprintf("unexpected extraction result type %T", res), nil)
	}
	logger.Get().Info("Extracted text from documents", zap.Int("files", len(files)), zap.Int("chars", len(text)))
	return text, nil
}

var _ ExtractionService = (*extractionService)(nil)
