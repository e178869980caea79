// Package main is the entry point for mio-bridge, a serial-to-everything
// dispatch bridge: it reads line-oriented commands from a serial port
// (or a connected WebSocket client) and drives a keyboard, mouse, MIDI
// output, OSC endpoint, and WebSocket broadcast from them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/nugget/mio-bridge/internal/bridge"
	"github.com/nugget/mio-bridge/internal/config"
	"github.com/nugget/mio-bridge/internal/eventloop"
	"github.com/nugget/mio-bridge/internal/serialio"
	"github.com/nugget/mio-bridge/internal/uiaction"
	"github.com/nugget/mio-bridge/internal/wsserver"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file")
	device := pflag.String("device", "", "override serial.device from config")
	baud := pflag.Int("baud", 0, "override serial.baud_rate from config")
	wsPort := pflag.Int("ws-port", 0, "override websocket.port from config")
	listPorts := pflag.Bool("list-ports", false, "list available serial ports and exit")
	listMIDI := pflag.Bool("list-midi", false, "list available MIDI output ports and exit")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *listPorts {
		for _, p := range serialio.ListPorts() {
			fmt.Println(p)
		}
		return
	}

	if *listMIDI {
		sink, err := bridge.NewRtMidiSink(logger)
		if err != nil {
			logger.Error("open midi driver", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		for _, p := range sink.ListPorts() {
			fmt.Printf("%d: %s\n", p.Index, p.Name)
		}
		return
	}

	cfgPath, err := config.FindConfig(*configPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *baud != 0 {
		cfg.Serial.BaudRate = *baud
	}
	if *wsPort != 0 {
		cfg.WebSocket.Port = *wsPort
	}

	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			logger.Error("invalid log_level in config", "error", err)
			os.Exit(1)
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: config.ReplaceLogLevelNames,
		}))
	}

	logger.Info("mio-bridge starting", "config", cfgPath)

	run(logger, cfg)
}

func run(logger *slog.Logger, cfg *config.Config) {
	sinks, teardown := buildSinks(logger, cfg)
	defer teardown()

	router := bridge.NewRouter(logger, sinks)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered, releasing held keys", "panic", r)
			os.Exit(1)
		}
	}()

	var serialLines <-chan string
	var serialReader *serialio.Reader
	if cfg.Serial.Device != "" {
		reader, err := serialio.Open(cfg.Serial.Device, cfg.Serial.BaudRate, logger)
		if err != nil {
			logger.Warn("serial port unavailable, running without serial input", "error", err)
		} else {
			serialReader = reader
			serialLines = reader.Lines()
			logger.Info("serial port opened", "device", cfg.Serial.Device, "baud", cfg.Serial.BaudRate)
		}
	} else {
		logger.Warn("no serial.device configured, running without serial input")
	}
	if serialReader != nil {
		defer serialReader.Close()
	}

	var wsLines <-chan string
	var wsSrv *wsserver.Server
	if cfg.WebSocket.Enabled {
		hub, _ := sinks.Broadcaster.(*bridge.BroadcastHub)
		addr := fmt.Sprintf("%s:%d", cfg.WebSocket.Host, cfg.WebSocket.Port)
		wsSrv = wsserver.NewServer(addr, hub, logger)
		wsLines = wsSrv.Incoming()
		go func() {
			if err := wsSrv.ListenAndServe(); err != nil {
				logger.Error("websocket server stopped", "error", err)
			}
		}()
	}
	if wsSrv != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			wsSrv.Shutdown(ctx)
		}()
	}

	signals := uiaction.NewSignalProducer()
	defer signals.Close()

	loop := eventloop.New(logger, router, time.Duration(cfg.Protocol.WatchdogIntervalMS)*time.Millisecond)
	stop := make(chan struct{})

	loop.Run(stop, eventloop.Sources{
		SerialLines: serialLines,
		WsLines:     wsLines,
		Actions:     signals.Actions(),
	})

	logger.Info("mio-bridge stopped")
}

// sinkCloser is an adapter shim that needs an explicit Close. The
// teardown func buildSinks returns closes every one of them in a single
// deferred call so run's early-return paths can't leak one.
type sinkCloser interface{ Close() error }

func buildSinks(logger *slog.Logger, cfg *config.Config) (bridge.Sinks, func()) {
	var sinks bridge.Sinks
	var closers []sinkCloser

	if cfg.Keyboard.Enabled {
		kb, err := bridge.NewUinputKeyboard("/dev/uinput", logger)
		if err != nil {
			logger.Warn("keyboard sink disabled", "error", err)
		} else {
			sinks.Keyboard = kb
			closers = append(closers, kb)
		}
	}

	if cfg.Mouse.Enabled {
		m, err := bridge.NewUinputMouse("/dev/uinput")
		if err != nil {
			logger.Warn("mouse sink disabled", "error", err)
		} else {
			sinks.Mouse = m
			closers = append(closers, m)
		}
	}

	if cfg.MIDI.Enabled {
		midiSink, err := bridge.NewRtMidiSink(logger)
		if err != nil {
			logger.Warn("midi sink disabled", "error", err)
		} else {
			sinks.MIDI = midiSink
			closers = append(closers, midiSink)
			if cfg.MIDI.AutoConnect {
				ports := midiSink.ListPorts()
				if len(ports) > 0 {
					if name, err := midiSink.Connect(ports[0].Index); err != nil {
						logger.Warn("midi auto_connect failed", "error", err)
					} else {
						logger.Info("midi auto-connected", "port", name)
					}
				} else {
					logger.Warn("midi auto_connect found no ports")
				}
			}
		}
	}

	if cfg.WebSocket.Enabled {
		sinks.Broadcaster = bridge.NewBroadcastHub()
	}

	if cfg.OSC.Enabled {
		local := fmt.Sprintf("%s:%d", cfg.OSC.LocalAddress, cfg.OSC.LocalPort)
		remote := fmt.Sprintf("%s:%d", cfg.OSC.RemoteAddress, cfg.OSC.RemotePort)
		osc, err := bridge.NewUDPOSCSender(local, remote)
		if err != nil {
			logger.Warn("osc sink disabled", "error", err)
		} else {
			sinks.OSC = osc
			closers = append(closers, osc)
		}
	}

	return sinks, func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn("sink close failed", "error", err)
			}
		}
	}
}
