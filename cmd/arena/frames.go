package main

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/match"
)

// frameLogger is the headless presentation layer: it logs a status line
// every interval frames and the final frame of the match.
type frameLogger struct {
	logger   *zap.Logger
	interval uint64
}

func newFrameLogger(logger *zap.Logger, interval int) *frameLogger {
	if interval <= 0 {
		interval = 60
	}
	return &frameLogger{logger: logger, interval: uint64(interval)}
}

// Observe implements gameserver.Observer.
func (f *frameLogger) Observe(fr match.Frame) {
	final := fr.Phase != match.PhasePlaying
	if !final && fr.Tick%f.interval != 0 {
		return
	}
	fields := []zap.Field{
		zap.Stringer("phase", fr.Phase),
		zap.Uint64("tick", fr.Tick),
		zap.Int("projectiles", len(fr.Projectiles)),
		zap.Bool("disconnected", fr.Disconnected),
	}
	for i, c := range fr.Combatants {
		if c.Name == "" {
			continue
		}
		prefix := "p1_"
		if i == 1 {
			prefix = "p2_"
		}
		fields = append(fields,
			zap.String(prefix+"name", c.Name),
			zap.Int(prefix+"health", c.Health),
			zap.Float64(prefix+"x", c.X),
			zap.Float64(prefix+"y", c.Y),
		)
	}
	available := 0
	for _, p := range fr.Pickups {
		if p.Available {
			available++
		}
	}
	fields = append(fields, zap.Int("pickups_available", available))
	if final {
		f.logger.Info("final frame", fields...)
		return
	}
	f.logger.Debug("frame", fields...)
}
