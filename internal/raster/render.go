package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/erinpentecost/parallaxmap/internal/logger"
	"github.com/erinpentecost/parallaxmap/internal/shading"
)

// ClearColor fills every pixel no surface covers.
var ClearColor = color.RGBA{R: 26, G: 26, B: 38, A: 255}

const defaultTileRows = 16

// Scene is everything that moves between frames.
type Scene struct {
	Camera Camera
	Light  Light
	Quad   Quad
	// Marker draws the light as a small sphere on the left half.
	Marker bool
}

func DefaultScene() Scene {
	return Scene{
		Camera: DefaultCamera(),
		Light:  DefaultLight(),
		Quad:   DemoQuad(),
		Marker: true,
	}
}

type Options struct {
	Width  int
	Height int
	// Workers bounds concurrent tiles. 0 means GOMAXPROCS.
	Workers int
	// Supersample renders at this multiple of Width and Height and scales
	// the result down.
	Supersample int
	TileRows    int
}

// Renderer draws the split-screen comparison. It holds no per-frame state
// and may be shared.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width < 2 || opts.Height < 1 {
		return nil, fmt.Errorf("render size %dx%d is too small", opts.Width, opts.Height)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	if opts.TileRows <= 0 {
		opts.TileRows = defaultTileRows
	}
	return &Renderer{opts: opts}, nil
}

func (r *Renderer) Options() Options { return r.opts }

// SplitScreen returns two square viewports side by side and centred on the
// middle column, aligned to the bottom edge.
func SplitScreen(width, height int) (left, right image.Rectangle) {
	halfW := width / 2
	squareW := min(height, halfW)
	top := height - squareW
	left = image.Rect(halfW-squareW, top, halfW, height)
	right = image.Rect(halfW, top, halfW+squareW, height)
	return left, right
}

type pass struct {
	rect   image.Rectangle
	shader shading.Shader
	marker bool
}

// Render shades left with the basic technique's shader and right with the
// steep one. On error no image is returned.
func (r *Renderer) Render(ctx context.Context, scene Scene, left, right shading.Shader) (*image.RGBA, error) {
	if left == nil || right == nil {
		return nil, errors.New("render: both shaders are required")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render frame: %w", err)
	}
	start := time.Now()

	ss := r.opts.Supersample
	width, height := r.opts.Width*ss, r.opts.Height*ss
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: ClearColor}, image.Point{}, draw.Src)

	scene.Light = scene.Light.Clamped()
	st := newSetup(scene, float32(width/2)/float32(height))
	lrect, rrect := SplitScreen(width, height)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	tiles := 0
	for _, p := range []pass{
		{rect: lrect, shader: left, marker: scene.Marker},
		{rect: rrect, shader: right},
	} {
		bounds := st.screenBounds(scene.Quad, p)
		for y0 := bounds.Min.Y; y0 < bounds.Max.Y; y0 += r.opts.TileRows {
			rows := image.Rect(bounds.Min.X, y0, bounds.Max.X, min(y0+r.opts.TileRows, bounds.Max.Y))
			tiles++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				st.shadeRows(img, scene, p, rows)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render frame: %w", err)
	}

	out := img
	if ss > 1 {
		out = image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
		draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	logger.Debug("frame rendered",
		zap.Int("tiles", tiles),
		zap.Int("supersample", ss),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// setup is the per-frame transform state shared read-only by every tile.
type setup struct {
	inv      mgl32.Mat4
	proj     mgl32.Mat4
	mvp      mgl32.Mat4
	eye      mgl32.Vec3
	light    mgl32.Vec3
	lightEye mgl32.Vec3
	tanHalf  float32
	aspect   float32
}

func newSetup(scene Scene, aspect float32) setup {
	cam := scene.Camera
	mv := cam.ModelView()
	inv := InvertRigid(mv)
	proj := cam.Projection(aspect)
	lightEye := cam.View().Mul4x1(scene.Light.Position.Vec4(1)).Vec3()
	return setup{
		inv:      inv,
		proj:     proj,
		mvp:      proj.Mul4(mv),
		eye:      inv.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3(),
		light:    inv.Mul4x1(lightEye.Vec4(1)).Vec3(),
		lightEye: lightEye,
		tanHalf:  math32.Tan(mgl32.DegToRad(cam.FovY) / 2),
		aspect:   aspect,
	}
}

// ray is the unit eye-space direction through the centre of pixel (x, y).
func (s setup) ray(vp image.Rectangle, x, y int) mgl32.Vec3 {
	ndcX := 2*(float32(x-vp.Min.X)+0.5)/float32(vp.Dx()) - 1
	ndcY := 1 - 2*(float32(y-vp.Min.Y)+0.5)/float32(vp.Dy())
	return mgl32.Vec3{ndcX * s.tanHalf * s.aspect, ndcY * s.tanHalf, -1}.Normalize()
}

// project maps an eye-space point to pixel coordinates in vp.
func (s setup) project(vp image.Rectangle, clip mgl32.Vec4) (mgl32.Vec2, bool) {
	if clip[3] <= 1e-6 {
		return mgl32.Vec2{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	return mgl32.Vec2{
		float32(vp.Min.X) + (ndc[0]+1)/2*float32(vp.Dx()),
		float32(vp.Min.Y) + (1-ndc[1])/2*float32(vp.Dy()),
	}, true
}

// screenBounds is the part of the viewport the quad, and the marker when
// drawn, can cover. Pixels outside keep the clear colour.
func (s setup) screenBounds(q Quad, p pass) image.Rectangle {
	var box image.Rectangle
	for _, c := range q.Corners() {
		px, ok := s.project(p.rect, s.mvp.Mul4x1(c.Vec4(1)))
		if !ok {
			return p.rect
		}
		box = box.Union(pixelBox(px, 1))
	}
	if p.marker {
		depth := -s.lightEye[2]
		if depth <= markerRadius {
			return p.rect
		}
		px, ok := s.project(p.rect, s.proj.Mul4x1(s.lightEye.Vec4(1)))
		if !ok {
			return p.rect
		}
		// Conservative: r/(d-r) bounds the tangent of the sphere's half angle.
		radius := markerRadius / (depth - markerRadius) / s.tanHalf * float32(p.rect.Dy()) / 2
		radius *= max(1, 1/s.aspect)
		box = box.Union(pixelBox(px, radius+1))
	}
	return box.Intersect(p.rect)
}

func pixelBox(c mgl32.Vec2, r float32) image.Rectangle {
	return image.Rect(
		int(math32.Floor(c[0]-r)), int(math32.Floor(c[1]-r)),
		int(math32.Ceil(c[0]+r))+1, int(math32.Ceil(c[1]+r))+1,
	)
}

// shadeRows writes only pixels inside rows, so tiles never overlap.
func (s setup) shadeRows(img *image.RGBA, scene Scene, p pass, rows image.Rectangle) {
	markerColor := toRGBA(scene.Light.Color)
	for y := rows.Min.Y; y < rows.Max.Y; y++ {
		for x := rows.Min.X; x < rows.Max.X; x++ {
			dirEye := s.ray(p.rect, x, y)
			dir := s.inv.Mul4x1(dirEye.Vec4(0)).Vec3()
			hit, ok := scene.Quad.Intersect(s.eye, dir)

			if p.marker {
				if t, mok := hitSphere(dirEye, s.lightEye, markerRadius); mok && (!ok || t < hit.T) {
					img.SetRGBA(x, y, markerColor)
					continue
				}
			}
			if !ok {
				continue
			}
			img.SetRGBA(x, y, toRGBA(p.shader.Shade(scene.Quad.Fragment(hit, s.eye, s.light))))
		}
	}
}

func toRGBA(c mgl32.Vec3) color.RGBA {
	q := func(v float32) uint8 {
		if !(v > 0) {
			return 0
		}
		return uint8(min(v, 1)*255 + 0.5)
	}
	return color.RGBA{R: q(c[0]), G: q(c[1]), B: q(c[2]), A: 255}
}
