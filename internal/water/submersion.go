package water

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/san-kum/hydrosim/internal/body"
)

// SubmersionResult describes the part of a hull below the water surface.
// Face arrays are indexed by hull face and hold the submerged area, the
// world normal and the world centre of the submerged part.
type SubmersionResult struct {
	Volume      float64
	Centroid    mgl64.Vec3
	FaceAreas   []float64
	FaceNormals []mgl64.Vec3
	FaceCenters []mgl64.Vec3
}

// Submersion publishes the current submersion. Results are read-only and
// stay valid until the next update.
type Submersion interface {
	Submerged() (SubmersionResult, bool)
}

// VoxelHull approximates a box hull with a grid of cells and face sample
// points. Update recomputes the submersion into buffers owned by the hull.
type VoxelHull struct {
	Size       mgl64.Vec3 // full box extents in the body frame
	Offset     mgl64.Vec3 // box centre in the body frame
	Resolution int

	body    body.Body
	surface Surface
	log     zerolog.Logger

	cells      []mgl64.Vec3
	cellVolume float64
	cellHeight float64

	faceNormals [6]mgl64.Vec3
	faceArea    [6]float64
	faceSamples [6][]mgl64.Vec3

	result SubmersionResult
	valid  bool
}

func NewVoxelHull(b body.Body, surface Surface, size, offset mgl64.Vec3, resolution int, log zerolog.Logger) *VoxelHull {
	if resolution < 1 {
		resolution = 1
	}
	h := &VoxelHull{
		Size:       size,
		Offset:     offset,
		Resolution: resolution,
		body:       b,
		surface:    surface,
		log:        log,
		result: SubmersionResult{
			FaceAreas:   make([]float64, 6),
			FaceNormals: make([]mgl64.Vec3, 6),
			FaceCenters: make([]mgl64.Vec3, 6),
		},
	}
	h.build()
	return h
}

func (h *VoxelHull) build() {
	n := h.Resolution
	step := mgl64.Vec3{h.Size[0] / float64(n), h.Size[1] / float64(n), h.Size[2] / float64(n)}
	half := h.Size.Mul(0.5)
	h.cellVolume = step[0] * step[1] * step[2]
	h.cellHeight = step[1]

	h.cells = make([]mgl64.Vec3, 0, n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				h.cells = append(h.cells, mgl64.Vec3{
					-half[0] + (float64(i)+0.5)*step[0],
					-half[1] + (float64(j)+0.5)*step[1],
					-half[2] + (float64(k)+0.5)*step[2],
				})
			}
		}
	}

	// faces in +x, -x, +y, -y, +z, -z order
	for f := 0; f < 6; f++ {
		axis, sign := f/2, 1.0
		if f%2 == 1 {
			sign = -1
		}
		u, v := (axis+1)%3, (axis+2)%3
		var normal mgl64.Vec3
		normal[axis] = sign
		h.faceNormals[f] = normal
		h.faceArea[f] = h.Size[u] * h.Size[v]

		samples := make([]mgl64.Vec3, 0, n*n)
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				var p mgl64.Vec3
				p[axis] = sign * half[axis]
				p[u] = -half[u] + (float64(a)+0.5)*step[u]
				p[v] = -half[v] + (float64(b)+0.5)*step[v]
				samples = append(samples, p)
			}
		}
		h.faceSamples[f] = samples
	}
}

// Update recomputes the submersion for the body's current pose. Call it
// once per tick before any contributor reads the result.
func (h *VoxelHull) Update() {
	h.reset()
	h.valid = false
	if h.surface == nil {
		return
	}

	centre := body.TransformPoint(h.body, h.Offset)
	if _, ok := h.surface.Project(centre); !ok {
		h.log.Warn().Str("body", h.body.Name()).Msg("submersion query failed, hull treated as dry")
		return
	}

	var volume float64
	var moment mgl64.Vec3
	for _, c := range h.cells {
		p := body.TransformPoint(h.body, h.Offset.Add(c))
		fill := h.fill(p, h.cellHeight)
		if fill == 0 {
			continue
		}
		v := fill * h.cellVolume
		volume += v
		moment = moment.Add(p.Mul(v))
	}
	h.result.Volume = volume
	if volume > 0 {
		h.result.Centroid = moment.Mul(1 / volume)
	} else {
		h.result.Centroid = body.TransformPoint(h.body, h.Offset)
	}

	rot := h.body.Rotation()
	for f := 0; f < 6; f++ {
		normal := rot.Rotate(h.faceNormals[f])
		h.result.FaceNormals[f] = normal

		var wet float64
		var centre mgl64.Vec3
		samples := h.faceSamples[f]
		for _, s := range samples {
			p := body.TransformPoint(h.body, h.Offset.Add(s))
			if fill := h.fill(p, 0); fill > 0 {
				wet++
				centre = centre.Add(p)
			}
		}
		if wet > 0 {
			h.result.FaceAreas[f] = h.faceArea[f] * wet / float64(len(samples))
			h.result.FaceCenters[f] = centre.Mul(1 / wet)
		} else {
			h.result.FaceCenters[f] = body.TransformPoint(h.body, h.Offset.Add(h.faceNormals[f].Mul(0.5*h.Size[f/2])))
		}
	}
	h.valid = true
}

// fill is the submerged fraction of a cell of the given height centred on p.
func (h *VoxelHull) fill(p mgl64.Vec3, height float64) float64 {
	depth := HeightAt(h.surface, p, h.log) - p.Y()
	if height <= 0 {
		if depth > 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, math.Min(1, depth/height+0.5))
}

func (h *VoxelHull) reset() {
	h.result.Volume = 0
	h.result.Centroid = mgl64.Vec3{}
	for f := 0; f < 6; f++ {
		h.result.FaceAreas[f] = 0
		h.result.FaceNormals[f] = mgl64.Vec3{}
		h.result.FaceCenters[f] = mgl64.Vec3{}
	}
}

// Submerged returns the last computed result. The slices are shared with
// the hull and must not be modified.
func (h *VoxelHull) Submerged() (SubmersionResult, bool) {
	return h.result, h.valid
}

// FullVolume is the volume of the whole box.
func (h *VoxelHull) FullVolume() float64 {
	return h.Size[0] * h.Size[1] * h.Size[2]
}
