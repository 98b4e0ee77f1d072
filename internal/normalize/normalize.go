package normalize

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// Register WEBP decoding; imaging itself registers PNG, JPEG and GIF.
	_ "golang.org/x/image/webp"

	"captioner/internal/domain"
	"captioner/internal/infra"
)

const (
	// DefaultMaxDimension bounds the larger side of transmitted images.
	DefaultMaxDimension = 1024

	defaultConcurrency = 4
)

// Normalizer downsizes working-set images so no dimension exceeds the bound,
// re-encoding downsized images to JPEG for broad provider compatibility.
// Images already within bounds keep their original bytes and encoding.
type Normalizer struct {
	MaxDimension int
	Concurrency  int
	Logger       infra.Logger
}

// Apply normalizes every asset in place with bounded parallelism. A decode
// failure never drops an image: it is recorded on the asset and surfaces as
// that image's captioning failure.
func (n *Normalizer) Apply(ctx context.Context, assets []*domain.ImageAsset) error {
	concurrency := n.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			n.normalize(asset)
			return nil
		})
	}
	return g.Wait()
}

func (n *Normalizer) normalize(a *domain.ImageAsset) {
	maxDimension := n.MaxDimension
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	img, err := imaging.Decode(bytes.NewReader(a.Data))
	if err != nil {
		a.DecodeErr = fmt.Errorf("%w: %s: %v", domain.ErrImageDecode, a.Filename, err)
		return
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDimension && height <= maxDimension {
		n.Logger.Debug().
			Str("filename", a.Filename).
			Int("width", width).
			Int("height", height).
			Msg("normalize: within bounds, keeping original encoding")
		return
	}

	newWidth, newHeight := fitDimensions(width, height, maxDimension)
	resized := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, resized, imaging.JPEG); err != nil {
		a.DecodeErr = fmt.Errorf("%w: %s: re-encode: %v", domain.ErrImageDecode, a.Filename, err)
		return
	}
	a.Data = buf.Bytes()
	a.Subtype = "jpeg"
	a.Normalized = true
	n.Logger.Debug().
		Str("filename", a.Filename).
		Str("from", fmt.Sprintf("%dx%d", width, height)).
		Str("to", fmt.Sprintf("%dx%d", newWidth, newHeight)).
		Msg("normalize: resized")
}

// fitDimensions scales (width, height) so the larger side equals max while
// preserving aspect ratio, rounding the smaller side down.
func fitDimensions(width, height, max int) (int, int) {
	if width >= height {
		return max, height * max / width
	}
	return width * max / height, max
}
