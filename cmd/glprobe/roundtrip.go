package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/fxnlabs/webgl-matrix/pkg/gl/gltest"
	"github.com/fxnlabs/webgl-matrix/pkg/gpgpu"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func roundtripCommand() *cli.Command {
	flags := append(profileFlags(),
		&cli.IntFlag{Name: "rows", Value: 256, Usage: "logical matrix rows"},
		&cli.IntFlag{Name: "cols", Value: 256, Usage: "logical matrix columns"},
		&cli.BoolFlag{Name: "packed", Usage: "use the packed four-channel layout"},
	)

	return &cli.Command{
		Name:  "roundtrip",
		Usage: "Encode, upload, download, and decode a matrix over the in-memory context",
		Flags: flags,
		Action: func(c *cli.Context) error {
			figure.NewFigure("glprobe", "", true).Print()
			fmt.Println("")

			profile, err := loadProfile(c)
			if err != nil {
				return err
			}
			cfg, err := resolveProfile(profile)
			if err != nil {
				return err
			}

			log := rootLogger.Named("roundtrip")
			rows, cols := c.Int("rows"), c.Int("cols")

			glctx := gltest.NewContext()
			glctx.SetMaxTextureSize(cfg.MaxTextureSize)
			manager := gpgpu.NewManager(glctx, cfg, log)
			engine := gpgpu.NewEngine(glctx, cfg, &gltest.AsyncReader{Context: glctx}, log)
			defer engine.Close()

			matrix := make([]float32, rows*cols)
			for i := range matrix {
				// Keep values binary16-exact so half-float profiles
				// round-trip bit-for-bit.
				matrix[i] = float32(rand.Intn(2048)) / 4
			}

			role := gpgpu.RoleUpload
			if c.Bool("packed") {
				role = gpgpu.RolePacked
			}
			tex, err := manager.Allocate(rows, cols, role)
			if err != nil {
				return err
			}
			defer manager.Dispose(tex)

			start := time.Now()
			var got []float32
			if c.Bool("packed") {
				if err := engine.UploadPackedMatrix(tex, rows, cols, matrix); err != nil {
					return err
				}
				got, err = engine.DownloadPackedMatrix(tex, rows, cols)
			} else {
				if err := engine.UploadMatrix(tex, rows, cols, matrix); err != nil {
					return err
				}
				got, err = engine.DownloadMatrix(tex, rows, cols)
			}
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			var maxErr float64
			for i := range matrix {
				if diff := math.Abs(float64(matrix[i] - got[i])); diff > maxErr {
					maxErr = diff
				}
			}

			log.Info("round trip complete",
				zap.Int("rows", rows), zap.Int("cols", cols),
				zap.String("profile", profile.Name),
				zap.Bool("packed", c.Bool("packed")),
				zap.Duration("elapsed", elapsed),
				zap.Float64("maxAbsError", maxErr))
			fmt.Printf("profile=%s shape=%dx%d packed=%v elapsed=%v maxAbsError=%g\n",
				profile.Name, rows, cols, c.Bool("packed"), elapsed, maxErr)
			return nil
		},
	}
}
