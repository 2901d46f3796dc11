package imagemodel

import (
	"context"
	"errors"

	"BiasLens/internal/entity"
	"BiasLens/pkg/httpclient"
)

type Model string

const (
	InstructPix2Pix Model = "InstructPix2Pix"
	Img2Img         Model = "Img2Img"
	MagicBrush      Model = "MagicBrush"
)

type Info struct {
	Name            Model   `json:"name"`
	Endpoint        string  `json:"endpoint"`
	MinutesPerImage float64 `json:"minutes_per_image"`
	Experimental    bool    `json:"experimental"`
}

var catalog = []Info{
	{Name: InstructPix2Pix, Endpoint: "/transform-image", MinutesPerImage: 1.5},
	{Name: Img2Img, Endpoint: "/transform-img2img", MinutesPerImage: 3, Experimental: true},
	{Name: MagicBrush, Endpoint: "/transform-magicbrush", MinutesPerImage: 3.5},
}

func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(name string) (Info, bool) {
	for _, info := range catalog {
		if string(info.Name) == name {
			return info, true
		}
	}
	return Info{}, false
}

var ErrNoImage = errors.New("transform response carries neither base64 nor url")

type Request struct {
	Occupation string          `json:"occupation"`
	Images     entity.ImageRef `json:"images"`
}

type Response struct {
	Transform struct {
		Occupation string `json:"occupation"`
		Images     struct {
			Original string `json:"original"`
			URL      string `json:"url"`
			Base64   string `json:"base64"`
		} `json:"images"`
	} `json:"transform"`
}

// ResolvedURL prefers inline base64 over the hosted URL.
func (r *Response) ResolvedURL() string {
	if r.Transform.Images.Base64 != "" {
		return "data:image/png;base64," + r.Transform.Images.Base64
	}
	return r.Transform.Images.URL
}

type ITransformer interface {
	Transform(ctx context.Context, model Info, occupation string, image entity.ImageRef) (string, error)
}

type transformer struct {
	client *httpclient.Client
}

func New(client *httpclient.Client) ITransformer {
	return &transformer{client: client}
}

func (t *transformer) Transform(ctx context.Context, model Info, occupation string, image entity.ImageRef) (string, error) {
	var resp Response
	if err := t.client.PostJSON(ctx, model.Endpoint, Request{Occupation: occupation, Images: image}, &resp); err != nil {
		return "", err
	}

	transformed := resp.ResolvedURL()
	if transformed == "" {
		return "", ErrNoImage
	}

	return transformed, nil
}
