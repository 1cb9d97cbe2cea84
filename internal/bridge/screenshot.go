package bridge

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/mj1618/uibridge/internal/protocol"
)

// ScreenshotSource is the slice of Gateway the encoder needs.
type ScreenshotSource interface {
	Screenshot(ctx context.Context, window protocol.Handle) ([]byte, error)
}

// ScreenshotMIMEType is the media type of captured images.
const ScreenshotMIMEType = "image/png"

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// CaptureScreenshot fetches a window's image in one round trip and returns
// PNG bytes ready for base64 embedding. A payload without a PNG signature
// is a protocol error. scale in (0,1) resamples the image down before
// returning it, the same token-economy knob the screenshot CLI offers;
// 0 or 1 returns the peer's bytes untouched.
func CaptureScreenshot(ctx context.Context, src ScreenshotSource, window protocol.Handle, scale float64) ([]byte, error) {
	data, err := src.Screenshot(ctx, window)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("%w: screenshot payload is not PNG", ErrProtocol)
	}
	if scale <= 0 || scale >= 1 {
		return data, nil
	}
	return scalePNG(data, scale)
}

func scalePNG(data []byte, scale float64) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %v", ErrProtocol, err)
	}

	b := src.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode scaled screenshot: %w", err)
	}
	return out.Bytes(), nil
}
