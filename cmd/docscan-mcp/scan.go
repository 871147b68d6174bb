package main

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
	"github.com/ironsheep/docscan-mcp/internal/scanner"
	"github.com/spf13/cobra"
)

var (
	scanOut string
	scanFPS float64
)

var scanCmd = &cobra.Command{
	Use:   "scan <frame>...",
	Short: "Replay captured frames through the live scanner and save the locked page",
	Long: `Replay frames, in capture order, at a fixed frame rate as if they came
from a camera. Frames the detector is too busy for are dropped, exactly as
in live capture. The page is saved once the outline has held steady.

Requires OpenCV detection (build with -tags gocv).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "output image path; the format follows the extension")
	scanCmd.Flags().Float64Var(&scanFPS, "fps", 10, "playback frame rate")
	_ = scanCmd.MarkFlagRequired("out")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if scanFPS <= 0 {
		return errors.Newf("--fps must be positive, got %g", scanFPS)
	}

	seq := detection.NewSequence(cfg.ContourDetector(), cfg.SequenceOptions(logger)...)

	var (
		result rectify.Result
		locked bool
	)
	sc, err := scanner.New(seq, cfg.Stabilizer,
		scanner.WithLogger(logger),
		scanner.WithRectifyOptions(cfg.RectifyOptions(logger)...),
		scanner.OnTrack(func(t scanner.Track) {
			logger.Debugw("track", logging.FieldEvent, t.Kind.String())
		}),
		scanner.OnResult(func(res rectify.Result) {
			result, locked = res, true
		}),
	)
	if err != nil {
		seq.Close()
		return err
	}

	cache := imaging.NewImageCache()
	ticker := time.NewTicker(time.Duration(float64(time.Second) / scanFPS))
	defer ticker.Stop()

	sc.Start()
	for _, path := range args {
		frame, err := cache.Load(path)
		if err != nil {
			seq.Close()
			sc.Close()
			return err
		}
		sc.Frame(frame)
		cache.Evict(path)
		<-ticker.C
	}
	// Let in-flight detections reach the stabilizer before shutting down.
	seq.Close()
	sc.Close()

	processed, dropped := seq.Stats()
	logger.Infow("replay finished", "frames", len(args), "processed", processed, "dropped_frames", dropped)

	if !locked {
		return errors.WithHint(errors.New("no steady page found"),
			"feed more frames of the same page, or rebuild with -tags gocv to enable detection")
	}
	if !result.OK() {
		return errors.New("locked outline could not be rectified")
	}
	if err := imaging.Save(result.Cropped, scanOut); err != nil {
		return err
	}

	b := result.Cropped.Bounds()
	logger.Infow("page written", logging.FieldPath, scanOut,
		logging.FieldWidth, b.Dx(), logging.FieldHeight, b.Dy())
	return nil
}
