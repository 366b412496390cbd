// Package images pins image references to digests, so a trial records
// the exact image it ran.
package images

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// Resolve turns a tag reference into a digest reference by asking the
// registry. A reference which is already a digest is returned as-is.
func Resolve(ctx context.Context, imageRef string) (string, error) {
	if strings.Contains(imageRef, "@sha256:") {
		return imageRef, nil
	}

	ref, err := name.ParseReference(imageRef)
	if err != nil {
		return "", fmt.Errorf("cannot parse image reference %s: %w", imageRef, err)
	}

	desc, err := remote.Head(ref, remote.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("cannot resolve image %s: %w", imageRef, err)
	}

	return fmt.Sprintf(
		"%s@%s", ref.Context().Name(), desc.Digest.String(),
	), nil
}
