package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/chanceme/emueeprom/config"
	"github.com/chanceme/emueeprom/engine"
	"github.com/chanceme/emueeprom/flash"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (defaults to the canonical in-memory geometry)")
	tui := flag.Bool("tui", false, "start the interactive bubbletea shell instead of the plain REPL")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logrus.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	}

	dev, closer, err := openDevice(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open backing device")
	}
	if closer != nil {
		defer closer()
	}

	eng := engine.New(dev)
	if err := eng.Init(); err != nil {
		logrus.WithError(err).Fatal("failed to initialize engine")
	}

	session := NewSession(eng)

	if *tui {
		if err := RunTUI(session); err != nil {
			logrus.WithError(err).Fatal("tui exited with error")
		}
		return
	}

	RunPlain(session, os.Stdin, os.Stdout)
	fmt.Println()
}

func openDevice(cfg config.Config) (flash.Device, func(), error) {
	geom := cfg.Geometry()

	if cfg.BackingDev == "" || cfg.BackingDev == "memory" {
		dev, err := flash.NewMemory(geom)
		if err != nil {
			return nil, nil, err
		}
		return dev, nil, nil
	}

	dev, err := flash.OpenFile(cfg.BackingDev, geom)
	if err != nil {
		return nil, nil, err
	}
	return dev, func() { dev.Close() }, nil
}
