package importer

import (
	"encoding/base64"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/scenedemo/internal/engine/asset"
	"github.com/Faultbox/scenedemo/internal/engine/texture"
)

// baseColorImage returns the source image index of the material's base
// color texture, if any.
func baseColorImage(doc *gltf.Document, prim *gltf.Primitive) (int, bool) {
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return 0, false
	}
	pbr := doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return 0, false
	}
	ti := pbr.BaseColorTexture.Index
	if ti < 0 || ti >= len(doc.Textures) || doc.Textures[ti].Source == nil {
		return 0, false
	}
	src := *doc.Textures[ti].Source
	if src < 0 || src >= len(doc.Images) {
		return 0, false
	}
	return src, true
}

// baseColorFactor returns the material's base color, white by default.
func baseColorFactor(doc *gltf.Document, prim *gltf.Primitive) [4]float64 {
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return [4]float64{1, 1, 1, 1}
	}
	pbr := doc.Materials[*prim.Material].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return [4]float64{1, 1, 1, 1}
	}
	return *pbr.BaseColorFactor
}

// loadImage decodes image idx of doc. External URIs resolve against the
// model file's directory; data URIs and buffer views are decoded in memory.
// The returned name identifies the image in logs and errors.
func loadImage(doc *gltf.Document, modelPath string, idx int) (image.Image, string, error) {
	im := doc.Images[idx]

	switch {
	case im.BufferView != nil:
		name := fmt.Sprintf("%s#image%d", modelPath, idx)
		data, err := bufferViewBytes(doc, *im.BufferView)
		if err != nil {
			return nil, name, asset.Formatf("texture", name, "%v", err)
		}
		img, err := texture.Decode(data, name)
		return img, name, err

	case strings.HasPrefix(im.URI, "data:"):
		name := fmt.Sprintf("%s#image%d", modelPath, idx)
		data, err := decodeDataURI(im.URI)
		if err != nil {
			return nil, name, asset.Formatf("texture", name, "%v", err)
		}
		img, err := texture.Decode(data, name)
		return img, name, err

	case im.URI != "":
		ref := im.URI
		if u, err := url.PathUnescape(ref); err == nil {
			ref = u
		}
		path := asset.Resolve(modelPath, ref)
		img, err := texture.Load(path)
		return img, path, err
	}
	return nil, modelPath, asset.Formatf("texture", modelPath, "image %d has no source", idx)
}

func bufferViewBytes(doc *gltf.Document, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	bv := doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d [%d:%d] exceeds buffer of %d bytes", idx, bv.ByteOffset, end, len(data))
	}
	return data[bv.ByteOffset:end], nil
}

func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("data URI is not base64")
	}
	return base64.StdEncoding.DecodeString(payload)
}
