// Package main provides the headless arena binary. It runs one match in any
// mode, driving local combatants with the AI autopilot, and logs the result.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/inventory"
	"github.com/cory-johannsen/arena/internal/game/match"
	"github.com/cory-johannsen/arena/internal/game/world"
	"github.com/cory-johannsen/arena/internal/gameserver"
	"github.com/cory-johannsen/arena/internal/netplay"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	modeFlag := flag.String("mode", "", "match mode (versus, ai, host, join); overrides match.mode")
	addrFlag := flag.String("addr", "", "host address to join; defaults to network.host:network.port")
	weaponsDir := flag.String("weapons-dir", "", "path to weapon YAML definitions; empty = built-in table")
	armorDir := flag.String("armor-dir", "", "path to armor YAML definitions; empty = built-in table")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *modeFlag != "" {
		cfg.Match.Mode = *modeFlag
	}
	if *weaponsDir != "" {
		cfg.Content.WeaponsDir = *weaponsDir
	}
	if *armorDir != "" {
		cfg.Content.ArmorDir = *armorDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	mode, err := match.ParseMode(cfg.Match.Mode)
	if err != nil {
		logger.Fatal("parsing mode", zap.Error(err))
	}

	contentStart := time.Now()
	reg, err := inventory.LoadRegistry(cfg.Content.WeaponsDir, cfg.Content.ArmorDir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("weapons", len(reg.Weapons())),
		zap.Int("armors", len(reg.Armors())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	src := dice.NewSource(cfg.Match.Seed)
	mgr := match.NewManager(match.Options{
		Registry: reg,
		Source:   src,
		Width:    cfg.Arena.Width,
		Height:   cfg.Arena.Height,
		Respawn:  world.RespawnRule{MinTicks: cfg.Match.RespawnMinTicks, MaxTicks: cfg.Match.RespawnMaxTicks},
		Logger:   observability.Component(logger, "match"),
	})

	tier, err := ai.ParseTier(cfg.Match.Difficulty)
	if err != nil {
		logger.Fatal("parsing difficulty", zap.Error(err))
	}

	lc := server.NewLifecycle(observability.Component(logger, "lifecycle"))
	runnerCfg := gameserver.Config{
		Interval: cfg.Arena.TickInterval(),
		Observer: newFrameLogger(logger, cfg.Arena.TickHz),
		Logger:   observability.Component(logger, "runner"),
	}

	session, setup, err := mgr.Prepare(mode)
	if err != nil {
		logger.Fatal("preparing match", zap.Error(err))
	}
	if err := runSetup(setup, cfg.Match); err != nil {
		logger.Fatal("selecting loadouts", zap.Error(err))
	}

	var loadouts match.Loadouts
	if mode.Networked() {
		local, err := setup.Local(cfg.Match.Name)
		if err != nil {
			logger.Fatal("local loadout", zap.Error(err))
		}
		peer, closeLink, err := connect(mode, cfg, *addrFlag, logger)
		if err != nil {
			logger.Fatal("connecting peer", zap.Error(err))
		}
		lc.Add("link", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			},
			StopFn: closeLink,
		})

		remote, err := exchangeHello(peer, local, cfg.Network.ConnectTimeout)
		if err != nil {
			closeLink()
			logger.Fatal("handshake", zap.Error(err))
		}
		loadouts = match.NetworkLoadouts(mode, local, remote)
		runnerCfg.Link = peer
		runnerCfg.LocalSlot = mode.LocalSlot()
		runnerCfg.Input = gameserver.NewAutopilot(tier, src, observability.Component(logger, "autopilot"), mode.LocalSlot())
	} else {
		loadouts, err = setup.Loadouts()
		if err != nil {
			logger.Fatal("building loadouts", zap.Error(err))
		}
		loadouts[0].Name = cfg.Match.Name
		runnerCfg.Input = gameserver.NewAutopilot(tier, src, observability.Component(logger, "autopilot"), humanSlots(loadouts)...)
	}

	if err := session.Start(loadouts); err != nil {
		logger.Fatal("starting match", zap.Error(err))
	}
	runner := gameserver.NewRunner(session, runnerCfg)

	lc.Add("match", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			if err := runner.Run(ctx); err != nil {
				return err
			}
			logResult(logger, session, runner)
			return nil
		},
	})

	logger.Info("arena initialized",
		zap.String("mode", string(mode)),
		zap.Duration("startup", time.Since(start)),
	)

	err = lc.Run(context.Background())
	mgr.End()
	if err != nil {
		logger.Error("arena exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// runSetup walks the selection menu with the choices from the match config.
// In AI mode the opponent's loadout is drawn by the menu itself.
func runSetup(s *match.Setup, m config.MatchConfig) error {
	for !s.Done() {
		var id string
		switch s.Step() {
		case match.StepDifficulty:
			id = m.Difficulty
		case match.StepP1Weapon:
			id = m.P1Weapon
		case match.StepP1Armor:
			id = m.P1Armor
		case match.StepP2Weapon:
			id = m.P2Weapon
		case match.StepP2Armor:
			id = m.P2Armor
		}
		if err := s.Select(id); err != nil {
			return err
		}
	}
	return nil
}

// humanSlots returns the indexes of human-controlled loadouts.
func humanSlots(l match.Loadouts) []int {
	var out []int
	for i, lo := range l {
		if lo.Controller.Kind == combat.ControlHuman {
			out = append(out, i)
		}
	}
	return out
}

// connect hosts or joins according to mode and returns the connected peer
// and a function that releases the link.
func connect(mode match.Mode, cfg config.Config, addr string, logger *zap.Logger) (*netplay.Peer, func(), error) {
	opts := netplay.OptionsFromConfig(cfg.Network, observability.Component(logger, "netplay"))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mode == match.ModeHost {
		host := netplay.NewHost(opts)
		if err := host.Listen(cfg.Network.Addr()); err != nil {
			return nil, nil, err
		}
		logger.Info("waiting for peer", zap.String("addr", host.Addr()), zap.Stringer("state", host.State()))
		peer, err := host.WaitPeer(ctx)
		if err != nil {
			_ = host.Close()
			return nil, nil, err
		}
		return peer, func() { _ = host.Close() }, nil
	}

	if addr == "" {
		addr = cfg.Network.Addr()
	}
	peer, err := netplay.Dial(ctx, addr, opts)
	if err != nil {
		return nil, nil, err
	}
	return peer, func() { _ = peer.Close() }, nil
}

func exchangeHello(peer *netplay.Peer, local match.Loadout, timeout time.Duration) (match.Loadout, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	h, err := netplay.Handshake(ctx, peer, netplay.HelloPayload{Name: local.Name, Weapon: local.WeaponID, Armor: local.ArmorID})
	if err != nil {
		return match.Loadout{}, err
	}
	return match.Loadout{Name: h.Name, WeaponID: h.Weapon, ArmorID: h.Armor}, nil
}

func logResult(logger *zap.Logger, s *match.Session, r *gameserver.Runner) {
	if r.Disconnected() {
		logger.Warn("match aborted: peer disconnected", zap.Uint64("ticks", s.TickCount()))
		return
	}
	fields := []zap.Field{zap.Uint64("ticks", s.TickCount())}
	if w, ok := s.Winner(); ok {
		c := s.Combatant(w)
		fields = append(fields, zap.String("winner", c.Name), zap.Int("health", c.Health))
	} else {
		fields = append(fields, zap.Bool("draw", true))
	}
	logger.Info("match over", fields...)
}
