package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/model"
	"github.com/sells-group/dish-catalog/pkg/cloudinary"
)

// Context keys the media store uses for descriptive text.
const (
	contextAlt     = "alt"
	contextCaption = "caption"
)

// Descriptor converts a listed resource into an asset descriptor. The listing
// prefix is stripped from the public id so that the remaining segments read
// country/dish/file; the file segment carries the resource format as its
// extension.
func Descriptor(prefix string, r cloudinary.Resource) model.AssetDescriptor {
	path := strings.TrimPrefix(r.PublicID, listingRoot(prefix))
	path = strings.Trim(path, "/")

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if n := len(segments); n > 0 && r.Format != "" && !strings.HasSuffix(strings.ToLower(segments[n-1]), "."+strings.ToLower(r.Format)) {
		segments[n-1] += "." + r.Format
	}

	url := r.SecureURL
	if url == "" {
		url = r.URL
	}
	return model.AssetDescriptor{
		ID:           r.PublicID,
		PathSegments: segments,
		Width:        r.Width,
		Height:       r.Height,
		SizeBytes:    r.Bytes,
		Format:       strings.ToLower(r.Format),
		AltText:      r.ContextValue(contextAlt),
		CaptionText:  r.ContextValue(contextCaption),
		URL:          url,
		Tags:         r.Tags,
	}
}

// listingRoot returns the folder part of a prefix pattern: "dishes/*" and
// "dishes/" both yield "dishes/". A prefix without a trailing slash is
// treated as a folder.
func listingRoot(prefix string) string {
	p := strings.TrimRight(strings.TrimSpace(prefix), "*")
	if p == "" {
		return ""
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// inventory lists the assets under prefix. Listing is not paginated; a
// truncated response is logged and accepted, and reported through the
// second return value.
func (p *Pipeline) inventory(ctx context.Context, prefix string) ([]model.AssetDescriptor, bool, error) {
	resp, err := p.media.ListResources(ctx, cloudinary.ListRequest{
		Prefix:     prefix,
		MaxResults: p.cfg.Media.MaxResults,
	})
	if err != nil {
		return nil, false, eris.Wrap(err, "pipeline: list inventory")
	}
	if resp.Truncated() {
		p.log.Warn("pipeline: inventory truncated",
			zap.String("prefix", prefix),
			zap.Int("listed", len(resp.Resources)),
		)
	}
	assets := make([]model.AssetDescriptor, 0, len(resp.Resources))
	for _, r := range resp.Resources {
		assets = append(assets, Descriptor(prefix, r))
	}
	return assets, resp.Truncated(), nil
}
