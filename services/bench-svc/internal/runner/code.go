package runner

import (
	"qecgraph/pkg/apperror"
	"qecgraph/pkg/config"
	"qecgraph/pkg/example"
)

// BuildCode строит код по параметрам прогона. При workers > 1 генерация
// синдромов идёт через параллельные реплики.
func BuildCode(cfg config.BenchConfig) (example.Code, error) {
	switch cfg.Code {
	case config.CodeRepetition:
		c, err := example.NewRepetitionCode(cfg.D, cfg.P, cfg.MaxHalfWeight)
		if err != nil {
			return nil, err
		}
		return prepare(c, cfg)
	case config.CodePlanar:
		c, err := example.NewPlanarCode(cfg.D, cfg.P, cfg.MaxHalfWeight)
		if err != nil {
			return nil, err
		}
		return prepare(c, cfg)
	case config.CodePhenomenological:
		c, err := example.NewPhenomenologicalCode(cfg.D, cfg.NoisyMeasurements, cfg.P, cfg.MaxHalfWeight)
		if err != nil {
			return nil, err
		}
		return prepare(c, cfg)
	case config.CodeCircuitLevel:
		c, err := example.NewCircuitLevelCode(cfg.D, cfg.NoisyMeasurements, cfg.P, cfg.MaxHalfWeight)
		if err != nil {
			return nil, err
		}
		return prepare(c, cfg)
	default:
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "unknown code %q", cfg.Code).
			WithField("bench.code")
	}
}

// prepare выставляет вероятность стирания до клонирования реплик
func prepare[C example.Replica[C]](c C, cfg config.BenchConfig) (example.Code, error) {
	if cfg.Pe > 0 {
		c.Base().SetErasureProbability(cfg.Pe)
	}
	if cfg.Workers <= 1 {
		return c, nil
	}
	p, err := example.NewParallel(c, cfg.Workers)
	if err != nil {
		return nil, err
	}
	return p, nil
}
