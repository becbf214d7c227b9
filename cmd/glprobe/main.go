package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fxnlabs/webgl-matrix/fixtures"
	"github.com/fxnlabs/webgl-matrix/internal/logger"
	"github.com/fxnlabs/webgl-matrix/pkg/capability"
	"github.com/fxnlabs/webgl-matrix/pkg/gl"
	"github.com/fxnlabs/webgl-matrix/pkg/gl/gltest"
	"github.com/fxnlabs/webgl-matrix/pkg/layout"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var rootLogger *zap.Logger

func main() {
	var zapLogger *zap.Logger

	app := &cli.App{
		Name:  "glprobe",
		Usage: "Inspect GPU capability profiles and exercise the texture matrix core",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "verbosity",
				Value: "info",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			zapLogger, err = logger.New(c.String("verbosity"))
			if err != nil {
				return err
			}
			rootLogger = zapLogger.Named("glprobe")
			return nil
		},
		Commands: []*cli.Command{
			probeCommand(),
			shapesCommand(),
			roundtripCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("failed to run app", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadProfile resolves the --profile / --preset pair into a capability
// profile, preferring an explicit file path.
func loadProfile(c *cli.Context) (*capability.Profile, error) {
	if path := c.String("profile"); path != "" {
		return capability.LoadProfile(path)
	}
	preset := c.String("preset")
	data, ok := fixtures.Profiles()[preset]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", preset)
	}
	return capability.ParseProfile(data)
}

func resolveProfile(profile *capability.Profile) (*capability.TextureConfig, error) {
	var hf gl.HalfFloatExtension
	if profile.HalfFloat() {
		hf = gltest.HalfFloatOES{}
	}
	return capability.Resolve(profile.Set(), hf)
}

func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "profile",
			Usage: "path to a capability profile YAML",
		},
		&cli.StringFlag{
			Name:  "preset",
			Value: "webgl2",
			Usage: "embedded capability preset (webgl2, webgl1_float, webgl1_halffloat, webgl1_byte)",
		},
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Resolve a capability profile and print the texture format descriptor",
		Flags: profileFlags(),
		Action: func(c *cli.Context) error {
			profile, err := loadProfile(c)
			if err != nil {
				return err
			}
			cfg, err := resolveProfile(profile)
			if err != nil {
				return err
			}

			fmt.Printf("profile: %s (tier %s)\n", profile.Name, profile.GLTier())
			fmt.Printf("  internal float:      %s\n", gl.EnumName(cfg.InternalFormatFloat))
			fmt.Printf("  internal half-float: %s\n", gl.EnumName(cfg.InternalFormatHalfFloat))
			fmt.Printf("  internal packed:     %s\n", gl.EnumName(cfg.InternalFormatPacked))
			fmt.Printf("  upload:              %s / %s, %d channel(s)\n",
				gl.EnumName(cfg.UploadFormat), gl.EnumName(cfg.UploadType), cfg.UploadChannels)
			fmt.Printf("  half-float type:     %s\n", gl.EnumName(cfg.HalfFloatType))
			fmt.Printf("  render type:         %s\n", gl.EnumName(cfg.RenderType))
			fmt.Printf("  download:            %s / %s (%s mode, unpack %d channels)\n",
				gl.EnumName(cfg.DownloadFormat), gl.EnumName(cfg.DownloadType),
				cfg.DownloadMode, cfg.DownloadUnpackChannels)
			fmt.Printf("  max texture size:    %d\n", cfg.MaxTextureSize)
			return nil
		},
	}
}

func shapesCommand() *cli.Command {
	return &cli.Command{
		Name:      "shapes",
		Usage:     "Print the physical texture shapes for a logical matrix",
		ArgsUsage: "ROWS COLS",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-size",
				Value: capability.DefaultMaxTextureSize,
				Usage: "maximum texture dimension",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected ROWS COLS, got %d argument(s)", c.NArg())
			}
			rows, err := strconv.Atoi(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("invalid rows: %w", err)
			}
			cols, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return fmt.Errorf("invalid cols: %w", err)
			}

			uw, uh := layout.UnpackedShape(rows, cols, c.Int("max-size"))
			pw, ph := layout.PackedShape(rows, cols)
			fmt.Printf("logical:  %d x %d (%d values)\n", rows, cols, rows*cols)
			fmt.Printf("unpacked: %d x %d texels\n", uw, uh)
			fmt.Printf("packed:   %d x %d texels\n", pw, ph)
			return nil
		},
	}
}
