package main

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erinpentecost/parallaxmap/internal/config"
	"github.com/erinpentecost/parallaxmap/internal/logger"
	"github.com/erinpentecost/parallaxmap/internal/shading"
	"github.com/erinpentecost/parallaxmap/internal/texture"
)

// loadMaps reads the configured textures concurrently. Missing paths are
// replaced with generated ones so the demo always has something to draw.
func loadMaps(ctx context.Context, cfg config.TexturesConfig) (shading.Maps, error) {
	var (
		albedo *texture.AlbedoMap
		height *texture.HeightField
		normal *texture.NormalMap
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := loadAlbedo(cfg)
		if err != nil {
			return err
		}
		albedo = texture.NewAlbedoMap(s)
		return nil
	})
	g.Go(func() error {
		var err error
		normal, height, err = loadRelief(cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return shading.Maps{}, err
	}

	m := &texture.Material{Height: height, Normal: normal, Albedo: albedo}
	if err := m.Validate(); err != nil {
		return shading.Maps{}, err
	}
	return shading.Maps{Height: height, Normal: normal, Albedo: albedo}, nil
}

func loadAlbedo(cfg config.TexturesConfig) (*texture.Sampler, error) {
	if cfg.Albedo != "" {
		logger.Debug("loading texture", zap.String("path", cfg.Albedo))
		return texture.LoadSampler(cfg.Albedo)
	}
	s, err := texture.FromImage(texture.GenerateAlbedo(cfg.ProceduralSize))
	if err != nil {
		return nil, fmt.Errorf("albedo: %w", err)
	}
	return s, nil
}

// loadRelief resolves the height and normal maps: a packed normal-height
// texture wins, then separate files, then generation. A normal map is derived
// from the height image when none is given.
func loadRelief(cfg config.TexturesConfig) (*texture.NormalMap, *texture.HeightField, error) {
	if cfg.NormalHeight != "" {
		if cfg.Height != "" || cfg.Normal != "" {
			logger.Warn("packed normal-height texture overrides separate maps",
				zap.String("normal_height", cfg.NormalHeight),
				zap.String("height", cfg.Height),
				zap.String("normal", cfg.Normal))
		}
		img, err := texture.Load(cfg.NormalHeight)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using packed normal-height texture", zap.String("path", cfg.NormalHeight))
		return texture.SplitNormalHeight(img)
	}

	heightImg, err := loadOr(cfg.Height, func() image.Image { return texture.GenerateHeight(cfg.ProceduralSize) })
	if err != nil {
		return nil, nil, err
	}
	hs, err := texture.FromImage(heightImg)
	if err != nil {
		return nil, nil, fmt.Errorf("height: %w", err)
	}

	normalImg, err := loadOr(cfg.Normal, func() image.Image {
		return texture.NormalFromHeight(heightImg, cfg.NormalStrength)
	})
	if err != nil {
		return nil, nil, err
	}
	ns, err := texture.FromImage(normalImg)
	if err != nil {
		return nil, nil, fmt.Errorf("normal: %w", err)
	}
	return texture.NewNormalMap(ns), texture.NewHeightField(hs), nil
}

func loadOr(path string, generate func() image.Image) (image.Image, error) {
	if path == "" {
		return generate(), nil
	}
	logger.Debug("loading texture", zap.String("path", path))
	return texture.Load(path)
}
