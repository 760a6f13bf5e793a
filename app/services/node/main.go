// This program runs a standalone mining node. It repeatedly races a group of
// parallel workers over the proof of work puzzle, validates each solved block
// through the state transition engine and applies the account changes to the
// in memory database.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/zimcoin/blockchain/foundation/blockchain/database"
	"github.com/zimcoin/blockchain/foundation/blockchain/genesis"
	"github.com/zimcoin/blockchain/foundation/blockchain/state"
	"github.com/zimcoin/blockchain/foundation/blockchain/worker"
	"github.com/zimcoin/blockchain/foundation/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		State struct {
			GenesisPath  string        `conf:"default:zblock/genesis.json"`
			Miner        string        `conf:"default:0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"`
			Workers      int           `conf:"default:4"`
			MiningWindow time.Duration `conf:"default:30s"`
			MinNonce     uint64        `conf:"default:30000000000"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis file: %w", err)
	}

	db, err := database.New(gen)
	if err != nil {
		return fmt.Errorf("unable to create database: %w", err)
	}

	minerID, err := database.ToAccountID(cfg.State.Miner)
	if err != nil {
		return fmt.Errorf("invalid miner account: %w", err)
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	coordinator, err := worker.NewCoordinator(cfg.State.Workers, cfg.State.MinNonce, ev)
	if err != nil {
		return fmt.Errorf("unable to create mining coordinator: %w", err)
	}

	// =========================================================================
	// Mining loop

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-shutdown
		log.Infow("shutdown", "status", "shutdown started")
		cancel()
	}()

	difficulty := new(big.Int).SetUint64(gen.Difficulty)
	var prevBlockID common.Hash
	var height uint64

	for ctx.Err() == nil {
		template := worker.Template{
			PrevBlockID: prevBlockID,
			Height:      height,
			Miner:       minerID.Bytes(),
			TimeStamp:   uint64(time.Now().UTC().Unix()),
			Difficulty:  difficulty,
		}

		cutoff := time.Now().Add(cfg.State.MiningWindow)

		block, found, err := coordinator.Mine(ctx, template, cutoff)
		if err != nil {
			return fmt.Errorf("mining: %w", err)
		}
		if !found {
			log.Infow("mining", "status", "no solution inside the window", "height", height)
			continue
		}

		changes, err := state.Apply(block, difficulty, db.CopyAccounts())
		if err != nil {
			return fmt.Errorf("applying mined block: %w", err)
		}
		db.ApplyChanges(changes)

		log.Infow("mining", "status", "block accepted", "height", height, "block", block.BlockID.Hex(), "nonce", block.Nonce, "miner balance", db.Query(minerID).Balance)

		prevBlockID = block.BlockID
		height++
	}

	return nil
}
