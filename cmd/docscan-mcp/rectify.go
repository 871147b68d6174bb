package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
	"github.com/spf13/cobra"
)

var (
	rectifyQuad     []float64
	rectifyOrigin   string
	rectifyEnhance  string
	rectifyMaxDim   int
	rectifyOut      string
	rectifyReadText bool
)

var rectifyCmd = &cobra.Command{
	Use:   "rectify <image>",
	Short: "Flatten the document page in an image and save it",
	Long: `Flatten the page inside a quad into an upright image.

The quad is 8 normalized numbers, corners clockwise from the top-left:
tlx,tly,trx,try,brx,bry,blx,bly. Without --quad the page is detected with
OpenCV (when built with -tags gocv), falling back to a centered outline.

Examples:
  docscan-mcp rectify photo.jpg --out page.png
  docscan-mcp rectify photo.jpg --quad 0.1,0.9,0.9,0.9,0.9,0.1,0.1,0.1 --enhance document --out page.png
  docscan-mcp rectify photo.jpg --out page.png --text`,
	Args: cobra.ExactArgs(1),
	RunE: runRectify,
}

func init() {
	rectifyCmd.Flags().Float64SliceVar(&rectifyQuad, "quad", nil, "page corners (8 normalized numbers)")
	rectifyCmd.Flags().StringVar(&rectifyOrigin, "origin", "", "quad origin: bottom-left or top-left (default from config)")
	rectifyCmd.Flags().StringVar(&rectifyEnhance, "enhance", "", "page filter: none, grayscale, document or binary (default from config)")
	rectifyCmd.Flags().IntVar(&rectifyMaxDim, "max-dimension", 0, "downscale so neither side exceeds this many pixels")
	rectifyCmd.Flags().StringVarP(&rectifyOut, "out", "o", "", "output image path; the format follows the extension")
	rectifyCmd.Flags().BoolVar(&rectifyReadText, "text", false, "print the page text (Tesseract OCR)")
	_ = rectifyCmd.MarkFlagRequired("out")
}

func runRectify(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	frame, err := imaging.NewImageCache().Load(args[0])
	if err != nil {
		return err
	}

	opts := cfg.RectifyOptions(logger)
	var quad geometry.Quad
	switch len(rectifyQuad) {
	case 0:
		var found bool
		quad, found, err = detection.DetectOrDefault(cmd.Context(), cfg.ContourDetector(), frame.AsImage())
		if err != nil && !errors.Is(err, detection.ErrBackendUnavailable) {
			return err
		}
		if err != nil {
			logger.Warnw("detection unavailable, using default outline", logging.FieldError, err)
			quad = detection.DefaultQuad()
		}
		logger.Infow("page outline", "found", found, logging.FieldQuad, quad.String())
		// Detectors report in the camera convention.
		opts = append(opts, rectify.WithOrigin(rectify.OriginBottomLeft))
	case 8:
		q := rectifyQuad
		quad, _ = geometry.NewQuadClockwise([]geometry.Point{
			geometry.Pt(q[0], q[1]), geometry.Pt(q[2], q[3]),
			geometry.Pt(q[4], q[5]), geometry.Pt(q[6], q[7]),
		})
	default:
		return errors.Newf("--quad needs 8 numbers, got %d", len(rectifyQuad))
	}

	if cmd.Flags().Changed("origin") {
		origin, err := rectify.ParseOrigin(rectifyOrigin)
		if err != nil {
			return err
		}
		opts = append(opts, rectify.WithOrigin(origin))
	}
	if cmd.Flags().Changed("enhance") {
		mode, err := imaging.ParseEnhanceMode(rectifyEnhance)
		if err != nil {
			return err
		}
		opts = append(opts, rectify.WithEnhance(mode))
	}
	if cmd.Flags().Changed("max-dimension") {
		opts = append(opts, rectify.WithMaxDimension(rectifyMaxDim))
	}

	res := rectify.New(opts...).Rectify(frame, quad)
	if !res.OK() {
		return errors.WithHint(
			errors.New("quad does not describe a convex page of usable size"),
			"check the corner order: top-left, top-right, bottom-right, bottom-left")
	}
	if err := imaging.Save(res.Cropped, rectifyOut); err != nil {
		return err
	}

	b := res.Cropped.Bounds()
	logger.Infow("page written", logging.FieldPath, rectifyOut,
		logging.FieldWidth, b.Dx(), logging.FieldHeight, b.Dy())

	if !rectifyReadText {
		return nil
	}
	page, err := ocr.ReadPage(res.Cropped, cfg.OCR.Language)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), page.Text)
	return nil
}
