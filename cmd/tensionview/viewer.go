package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tension/internal/config"
	"github.com/Faultbox/midgard-tension/internal/deform"
	"github.com/Faultbox/midgard-tension/internal/gpu"
	"github.com/Faultbox/midgard-tension/internal/logger"
	"github.com/Faultbox/midgard-tension/internal/reload"
	"github.com/Faultbox/midgard-tension/internal/shader"
	"github.com/Faultbox/midgard-tension/internal/tension"
	"github.com/Faultbox/midgard-tension/internal/window"
	"github.com/Faultbox/midgard-tension/pkg/math"
	"github.com/Faultbox/midgard-tension/pkg/meshdata"
)

// intensityStep is the change applied per key press.
const intensityStep = 0.25

// viewer is the host side of the deformer: it owns the window loop, the
// draw state and the reload watcher, and forwards lifecycle events.
type viewer struct {
	cfg *config.Config
	win *window.Window
	log *zap.Logger

	program *shader.Program
	store   *gpu.GLProgramStore
	device  *gpu.GLDevice

	vao        uint32
	ebo        uint32
	indexCount int32
	center     math.Vec3
	extent     float32

	meshRef  string
	mesh     *meshdata.Snapshot
	wobble   *deform.Wobble
	deformer *tension.Deformer
	watcher  *reload.Watcher

	wireframe bool
}

func newViewer(cfg *config.Config, win *window.Window, meshRef string) (*viewer, error) {
	v := &viewer{
		cfg:     cfg,
		win:     win,
		log:     logger.Named("viewer"),
		device:  gpu.NewGLDevice(),
		meshRef: meshRef,
	}

	program, err := shader.Compile(tensionVertexShader, tensionFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("tension shader: %w", err)
	}
	v.program = program
	v.store = gpu.NewGLProgramStore(program, map[string]uint32{
		gpu.LabelAdjacency:  bindingAdjacency,
		gpu.LabelRestDeltas: bindingRestDeltas,
		gpu.LabelVertices:   bindingVertices,
	})

	mesh, err := meshdata.Open(meshRef)
	if err != nil {
		v.Close()
		return nil, err
	}

	gl.GenVertexArrays(1, &v.vao)
	gl.GenBuffers(1, &v.ebo)
	v.setMesh(mesh)

	v.deformer = tension.New(tension.Options{
		Mesh:        tension.MeshFunc(v.currentMesh),
		Vertices:    v.wobble,
		Device:      v.device,
		Store:       v.store,
		Scale:       func() [3]float32 { return [3]float32{1, 1, 1} },
		PersistBake: cfg.Tension.PersistBake,
		Stretch:     cfg.Tension.Stretch.Parameters(),
		Squash:      cfg.Tension.Squash.Parameters(),
		Logger:      logger.Named("tension"),
	})
	if err := v.deformer.Activate(); err != nil {
		v.Close()
		return nil, fmt.Errorf("activate: %w", err)
	}

	if cfg.Viewer.WatchMesh && !strings.HasPrefix(meshRef, meshdata.GridPrefix) {
		w, err := reload.Watch(meshRef, logger.Named("reload"))
		if err != nil {
			v.log.Warn("mesh file will not be watched", zap.String("path", meshRef), zap.Error(err))
		} else {
			v.watcher = w
		}
	}

	return v, nil
}

func (v *viewer) currentMesh() (*meshdata.Snapshot, error) {
	return v.mesh, nil
}

// setMesh installs a new mesh on the host side: draw indices, framing and
// the deformation source. The deformer picks it up on its next lifecycle
// event.
func (v *viewer) setMesh(mesh *meshdata.Snapshot) {
	v.mesh = mesh
	v.wobble = deform.NewWobble(v.device, mesh, v.cfg.Viewer.WobbleAmplitude, v.cfg.Viewer.WobbleFrequency)
	if v.deformer != nil {
		v.deformer.SetVertexSource(v.wobble)
	}

	gl.BindVertexArray(v.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, v.ebo)
	if len(mesh.Triangles) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Triangles)*4, gl.Ptr(mesh.Triangles), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)
	v.indexCount = int32(len(mesh.Triangles))

	lo, hi := mesh.Bounds()
	v.center = math.Vec3(lo).Midpoint(hi)
	// Leave room for the wobble on both sides.
	v.extent = 0.6 * (1 + v.cfg.Viewer.WobbleAmplitude) * max(hi[0]-lo[0], hi[1]-lo[1])
	if v.extent == 0 {
		v.extent = 1
	}
}

// Run drives the render loop until the window closes.
func (v *viewer) Run() {
	last := time.Now()
	fpsFrames := 0
	fpsStart := last

	for {
		if quit := v.handleEvents(); quit {
			return
		}
		if v.watcher != nil && v.watcher.Changed() {
			v.reloadMesh()
		}

		now := time.Now()
		v.wobble.Advance(float32(now.Sub(last).Seconds()))
		last = now

		if err := v.deformer.PerFrameUpdate(); err != nil && !errors.Is(err, tension.ErrNotReady) {
			v.log.Warn("frame update failed", zap.Error(err))
		}
		v.draw()
		v.win.SwapBuffers()

		fpsFrames++
		if elapsed := now.Sub(fpsStart); elapsed >= time.Second {
			stretch, squash := v.deformer.Stretch(), v.deformer.Squash()
			v.win.SetTitle(fmt.Sprintf("Tension Viewer - %s - %.0f fps - %s - stretch %.2f squash %.2f",
				v.mesh.Name, float64(fpsFrames)/elapsed.Seconds(), v.deformer.State(),
				stretch.Intensity(), squash.Intensity()))
			fpsFrames = 0
			fpsStart = now
		}
	}
}

func (v *viewer) handleEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true
		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			if v.handleKey(e.Keysym.Scancode) {
				return true
			}
		}
	}
	return false
}

func (v *viewer) handleKey(key sdl.Scancode) bool {
	stretch, squash := v.deformer.Stretch(), v.deformer.Squash()

	switch key {
	case sdl.SCANCODE_ESCAPE:
		return true
	case sdl.SCANCODE_R:
		if err := v.deformer.ForceRebake(); err != nil {
			v.log.Error("force rebake failed", zap.Error(err))
		}
	case sdl.SCANCODE_V:
		if err := v.deformer.Reconfigure(); err != nil {
			v.log.Error("reconfigure failed", zap.Error(err))
		}
	case sdl.SCANCODE_T:
		if v.deformer.State() == tension.StateReady {
			v.deformer.TearDown()
		} else if err := v.deformer.Activate(); err != nil {
			v.log.Error("activate failed", zap.Error(err))
		}
	case sdl.SCANCODE_P:
		err := errors.Join(stretch.ForcePush(), squash.ForcePush())
		if err != nil {
			v.log.Warn("force push skipped", zap.Error(err))
		}
	case sdl.SCANCODE_UP:
		stretch.SetIntensity(stretch.Intensity() + intensityStep)
	case sdl.SCANCODE_DOWN:
		stretch.SetIntensity(stretch.Intensity() - intensityStep)
	case sdl.SCANCODE_RIGHT:
		squash.SetIntensity(squash.Intensity() + intensityStep)
	case sdl.SCANCODE_LEFT:
		squash.SetIntensity(squash.Intensity() - intensityStep)
	case sdl.SCANCODE_W:
		v.wireframe = !v.wireframe
	case sdl.SCANCODE_S:
		v.cfg.StoreParameters(stretch.Values(), squash.Values())
		if err := v.cfg.Save(); err != nil {
			v.log.Error("failed to save parameters", zap.Error(err))
		} else {
			v.log.Info("parameters saved", zap.String("dir", config.ConfigDir()))
		}
	}
	return false
}

// reloadMesh reloads the watched file inside the deformer's reload boundary.
// A file that fails to load leaves the previous mesh in place.
func (v *viewer) reloadMesh() {
	err := reload.Apply(v.deformer, func() error {
		mesh, err := meshdata.LoadFile(v.meshRef)
		if err != nil {
			return err
		}
		v.setMesh(mesh)
		return nil
	})
	if err != nil {
		v.log.Error("mesh reload failed", zap.String("path", v.meshRef), zap.Error(err))
		return
	}
	v.log.Info("mesh reloaded", zap.String("path", v.meshRef), zap.Int("vertices", v.mesh.VertexCount()))
}

func (v *viewer) draw() {
	width, height := v.win.Size()
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0.12, 0.12, 0.14, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if v.deformer.State() != tension.StateReady || v.store.Buffers[gpu.LabelVertices] == nil {
		return
	}

	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	viewProj := math.Frame(v.center, v.extent, aspect)
	gl.ProgramUniformMatrix4fv(v.program.ID, v.program.Uniform("uViewProj"), 1, false, viewProj.Ptr())

	// Per-frame automatic push of everything the deformer recorded.
	v.store.BindNow()

	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	v.program.Use()
	gl.BindVertexArray(v.vao)
	gl.DrawElements(gl.TRIANGLES, v.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Close tears the deformer down and frees GL objects.
func (v *viewer) Close() {
	if v.watcher != nil {
		v.watcher.Close()
	}
	if v.deformer != nil {
		v.deformer.TearDown()
	}
	if v.ebo != 0 {
		gl.DeleteBuffers(1, &v.ebo)
	}
	if v.vao != 0 {
		gl.DeleteVertexArrays(1, &v.vao)
	}
	if v.program != nil {
		v.program.Delete()
	}
}
