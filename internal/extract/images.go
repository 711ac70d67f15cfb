package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	xdraw "golang.org/x/image/draw"

	"github.com/pdfwatch/pdfwatch/internal/common"
	"github.com/pdfwatch/pdfwatch/internal/service"
)

// Payload budgets for the classification service (5 MB hard limit per
// image, with safety margins matching the compression tiers).
const (
	payloadCeiling = 5_000_000
	lightBudget    = 4_900_000
	strongBudget   = 4_700_000
)

// Adaptive upscale thresholds: small encoded pages get enlarged so text
// stays legible to the vision classifier.
const (
	smallPage  = 500_000
	mediumPage = 1_500_000
)

// ExtractImages returns encoded rasters for up to maxPages pages. Each
// page contributes its dominant embedded image (scanned documents carry
// one full-page raster). Pages without a usable image are skipped; an
// ExtractionFailure surfaces only when the file itself is unreadable.
func (e *Extractor) ExtractImages(path string, maxPages int) ([]service.PageImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}
	defer func() { _ = f.Close() }()

	conf := pdfmodel.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}

	pages := ctx.PageCount
	if pages > maxPages {
		pages = maxPages
	}

	var out []service.PageImage
	for pageNr := 1; pageNr <= pages; pageNr++ {
		img := e.pageRaster(ctx, pageNr)
		if img == nil {
			continue
		}

		encoded, err := encodePNG(img)
		if err != nil {
			continue
		}

		// Upscale small pages before deciding on compression.
		switch {
		case len(encoded) < smallPage:
			img = scale(img, 2.0)
		case len(encoded) < mediumPage:
			img = scale(img, 1.5)
		}
		if encoded, err = encodePNG(img); err != nil {
			continue
		}

		if len(encoded) <= payloadCeiling {
			out = append(out, service.PageImage{Data: encoded, MediaType: "image/png", Page: pageNr})
			continue
		}

		data, mediaType := e.lightCompress(img)
		out = append(out, service.PageImage{Data: data, MediaType: mediaType, Page: pageNr})
	}

	if len(out) == 0 {
		return nil, common.ErrNoImages
	}
	return out, nil
}

// pageRaster decodes the largest embedded image on a page.
func (e *Extractor) pageRaster(ctx *pdfmodel.Context, pageNr int) image.Image {
	if len(pdfcpu.ImageObjNrs(ctx, pageNr)) == 0 {
		return nil
	}

	images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
	if err != nil {
		e.logger.Warn("page image extraction failed", "page", pageNr, "error", err)
		return nil
	}

	var best image.Image
	bestArea := 0
	for _, pi := range images {
		data, err := io.ReadAll(pi)
		if err != nil {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		b := img.Bounds()
		if area := b.Dx() * b.Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}
	return best
}

// lightCompress re-encodes as JPEG starting at quality 95, stepping down
// gently; if quality alone cannot meet the budget it falls through to the
// strong compressor which also downscales.
func (e *Extractor) lightCompress(img image.Image) ([]byte, string) {
	flat := flatten(img)

	for quality := 95; quality >= 80; quality -= 5 {
		data, err := encodeJPEG(flat, quality)
		if err != nil {
			break
		}
		if len(data) <= lightBudget {
			return data, "image/jpeg"
		}
	}
	return e.strongCompress(flat)
}

// strongCompress shrinks dimensions to 800px max, walks quality down to
// 30, and as a last resort keeps downscaling by 20% at quality 50.
func (e *Extractor) strongCompress(img image.Image) ([]byte, string) {
	b := img.Bounds()
	if b.Dx() > 800 || b.Dy() > 800 {
		ratio := 800.0 / float64(max(b.Dx(), b.Dy()))
		img = scale(img, ratio)
	}
	flat := flatten(img)

	var data []byte
	var err error
	for quality := 85; quality >= 30; quality -= 10 {
		data, err = encodeJPEG(flat, quality)
		if err != nil {
			return nil, "image/jpeg"
		}
		if len(data) <= strongBudget {
			return data, "image/jpeg"
		}
	}

	for len(data) > strongBudget {
		b = flat.Bounds()
		if b.Dx() <= 400 && b.Dy() <= 400 {
			break
		}
		flat = flatten(scale(flat, 0.8))
		if data, err = encodeJPEG(flat, 50); err != nil {
			break
		}
	}
	return data, "image/jpeg"
}

// flatten draws the image onto a white RGB background so that alpha
// channels survive JPEG encoding.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Over)
	return dst
}

// scale resamples the image by the given factor.
func scale(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 || h < 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
