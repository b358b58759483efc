// telemetryd is the ground station daemon. It listens for telemetry packets
// on UDP, decodes every message against the registered type table, archives
// decoded values to SQLite, and optionally appends the raw message bytes to
// a flight log and forwards datagrams to a secondary consumer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/skyward-data/telemetry/internal/config"
	"github.com/skyward-data/telemetry/internal/monitoring"
	"github.com/skyward-data/telemetry/internal/telemetry/binlog"
	"github.com/skyward-data/telemetry/internal/telemetry/message"
	"github.com/skyward-data/telemetry/internal/telemetry/network"
	"github.com/skyward-data/telemetry/internal/telemetry/packet"
	"github.com/skyward-data/telemetry/internal/telemetry/serial"
	"github.com/skyward-data/telemetry/internal/telemetry/store"
	"github.com/skyward-data/telemetry/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to JSON config file")
	sessionName = flag.String("session", "flight", "Name for this recording session")
	pcapFile    = flag.String("pcap", "", "Replay packets from a PCAP file instead of listening")
	serialPort  = flag.String("serial", "", "Read packets from a radio modem serial port instead of UDP")
	serialBaud  = flag.Int("baud", 57600, "Serial port baud rate")
	verbose     = flag.Bool("v", false, "Verbose logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("telemetryd", version.String())
		return
	}
	monitoring.SetVerbose(*verbose)

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	if err := run(cfg); err != nil {
		log.Fatalf("telemetryd: %v", err)
	}
}

func run(cfg *config.Config) error {
	reg := message.Standard()
	if path := cfg.GetTypesFile(); path != "" {
		if err := message.RegisterTypesFile(reg, path); err != nil {
			return fmt.Errorf("failed to load types file: %w", err)
		}
		monitoring.Logf("loaded extra message types from %s (%d total)", path, reg.Len())
	}

	archive, err := store.Open(cfg.GetDBPath())
	if err != nil {
		return err
	}
	defer archive.Close()

	session, err := archive.BeginSession(*sessionName)
	if err != nil {
		return err
	}
	monitoring.Logf("recording session %s (%s)", session.Name, session.ID)

	var rawLog *binlog.Writer
	if path := cfg.GetLogPath(); path != "" {
		rawLog, err = binlog.Create(path)
		if err != nil {
			return err
		}
		defer rawLog.Close()
		monitoring.Logf("appending raw messages to %s", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var forwarder *network.Forwarder
	if addr := cfg.GetForwardAddr(); addr != "" {
		forwarder, err = network.NewForwarder(addr, cfg.GetForwardPort(), cfg.GetLogInterval())
		if err != nil {
			return err
		}
		defer forwarder.Close()
		forwarder.Start(ctx)
	}

	handler := packetHandler(reg, archive, session.ID, rawLog)

	if *serialPort != "" {
		port, err := serial.Open(*serialPort, *serialBaud)
		if err != nil {
			return err
		}
		monitoring.Logf("telemetryd %s reading from %s at %d baud", version.String(), *serialPort, *serialBaud)
		// Serial frames carry the same packet bytes as UDP datagrams.
		return port.Monitor(ctx, func(frame []byte) error {
			return handler(frame, nil)
		})
	}

	if *pcapFile != "" {
		_, portStr, err := net.SplitHostPort(cfg.GetListenAddr())
		if err != nil {
			return fmt.Errorf("invalid listen address %q: %w", cfg.GetListenAddr(), err)
		}
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
			return fmt.Errorf("invalid listen port %q: %w", portStr, err)
		}
		return network.ReplayPCAP(ctx, *pcapFile, port, handler)
	}

	listener := network.NewListener(network.ListenerConfig{
		Address:     cfg.GetListenAddr(),
		RcvBuf:      cfg.GetRcvBuf(),
		ReadTimeout: cfg.GetReadTimeout(),
		Forwarder:   forwarder,
	})

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	monitoring.Logf("telemetryd %s listening on %s", version.String(), cfg.GetListenAddr())
	return listener.Listen(handler)
}

// packetHandler decodes one datagram as a sequenced packet and archives
// every message in it. Sequence gaps are logged but never fatal: the stream
// keeps flowing through dropped packets.
func packetHandler(reg *message.Registry, archive *store.Store, sessionID string, rawLog *binlog.Writer) network.Handler {
	var lastSeq atomic.Uint64 // sequence+1, so zero means "none seen yet"

	return func(data []byte, src *net.UDPAddr) error {
		scanner, err := packet.NewScanner(reg, data)
		if err != nil {
			return fmt.Errorf("packet from %v: %w", src, err)
		}

		seq := scanner.Sequence()
		if prev := lastSeq.Swap(uint64(seq) + 1); prev != 0 && uint64(seq) != prev {
			monitoring.Logf("sequence gap: expected %d, got %d", prev, seq)
		}

		for scanner.Scan() {
			dec := scanner.Message()
			if err := archive.RecordMessage(sessionID, dec, &seq); err != nil {
				return err
			}
			if rawLog != nil {
				raw, err := dec.Type.Encode(dec.Timestamp, dec.Values)
				if err != nil {
					return err
				}
				if err := rawLog.WriteRaw(raw); err != nil {
					return err
				}
			}
			monitoring.Debugf("%s @ %d ns from %v", dec.Type.Code(), dec.Timestamp, src)
		}
		return scanner.Err()
	}
}
