package service

import (
	"bytes"
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/media"
)

// prepareImageForUpload runs the optional processor. A failed downscale keeps
// the original photo; anything else is returned to the caller.
func prepareImageForUpload(ctx context.Context, processor media.Processor, upload media.Upload, maxDimension int, logger *zap.Logger) (io.Reader, int64, string, error) {
	if processor == nil {
		return upload.Reader, upload.Size, upload.ContentType, nil
	}
	result, err := processor.Process(ctx, upload, maxDimension)
	if err != nil {
		if errors.Is(err, media.ErrTranscode) && result != nil {
			logger.Warn("photo downscale failed, uploading original", zap.Error(err))
		} else {
			return nil, 0, "", err
		}
	}
	return bytes.NewReader(result.Bytes), int64(len(result.Bytes)), result.ContentType, nil
}
