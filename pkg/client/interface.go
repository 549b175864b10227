package client

import (
	"context"

	"github.com/menta2k/seamcarver/pkg/types"
)

// VisionClient is a vision model backend able to locate subjects in an image
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	LocateSubjects(ctx context.Context, model, prompt, imgB64 string) (*types.Detection, error)
}
