package main

import (
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tension/internal/config"
	"github.com/Faultbox/midgard-tension/internal/deform"
	"github.com/Faultbox/midgard-tension/internal/gpu"
	"github.com/Faultbox/midgard-tension/internal/logger"
	"github.com/Faultbox/midgard-tension/internal/tension"
	"github.com/Faultbox/midgard-tension/pkg/meshdata"
)

// cmdSimulate drives a Deformer through a scripted host lifecycle on a
// host-memory device: activation, frames, validation events, a forced
// rebake and a teardown/setup cycle. It fails if any buffer outlives the
// final teardown.
func cmdSimulate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	frames := fs.Int("frames", 240, "Number of frames to run")
	reconfigureEvery := fs.Int("reconfigure-every", 60, "Send a validation event every n frames (0 = never)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: tensionbake simulate [-frames n] <mesh>")
	}

	snap, err := meshdata.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	log := logger.Named("tension")
	device := gpu.NewMemoryDevice()
	store := gpu.NewPropertyBlock()
	wobble := deform.NewWobble(device, snap, cfg.Viewer.WobbleAmplitude, cfg.Viewer.WobbleFrequency)

	d := tension.New(tension.Options{
		Mesh:        tension.StaticMesh{Snapshot: snap},
		Vertices:    wobble,
		Device:      device,
		Store:       store,
		PersistBake: cfg.Tension.PersistBake,
		Stretch:     cfg.Tension.Stretch.Parameters(),
		Squash:      cfg.Tension.Squash.Parameters(),
		Logger:      log,
	})

	if err := d.Activate(); err != nil {
		return fmt.Errorf("activate: %w", err)
	}

	const dt = float32(1) / 60
	failed := 0
	for frame := 1; frame <= *frames; frame++ {
		wobble.Advance(dt)

		switch {
		case frame == *frames/2:
			if err := d.ForceRebake(); err != nil {
				return fmt.Errorf("force rebake at frame %d: %w", frame, err)
			}
		case frame == *frames*3/4:
			d.TearDown()
			if err := d.Activate(); err != nil {
				return fmt.Errorf("reactivate at frame %d: %w", frame, err)
			}
		case *reconfigureEvery > 0 && frame%*reconfigureEvery == 0:
			if err := d.Reconfigure(); err != nil {
				return fmt.Errorf("reconfigure at frame %d: %w", frame, err)
			}
		}

		if err := d.PerFrameUpdate(); err != nil {
			failed++
			log.Warn("frame update failed", zap.Int("frame", frame), zap.Error(err))
		}
	}

	peak := device.Live()
	d.TearDown()
	d.TearDown()

	id, baked := d.BakeInfo()
	fmt.Printf("Frames:           %d (%d failed)\n", *frames, failed)
	fmt.Printf("Baked:            %v (mesh id %d)\n", baked, id)
	fmt.Printf("Buffers created:  %d\n", device.Created())
	fmt.Printf("Buffers in use:   %d before teardown\n", peak)
	fmt.Printf("Buffers leaked:   %d\n", device.Live())
	fmt.Printf("Store writes:     %d\n", store.Writes)

	if device.Live() != 0 {
		return fmt.Errorf("%d buffers leaked", device.Live())
	}
	if failed > 0 {
		return fmt.Errorf("%d frame updates failed", failed)
	}
	return nil
}
