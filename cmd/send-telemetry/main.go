// send-telemetry generates synthetic flight telemetry and sends it to a
// ground station over UDP. It is the bench test source for telemetryd: each
// tick emits one sequenced packet carrying an IMU sample, the current roll
// servo state, and a sequence-error beacon.
package main

import (
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skyward-data/telemetry/internal/telemetry/message"
	"github.com/skyward-data/telemetry/internal/telemetry/network"
	"github.com/skyward-data/telemetry/internal/version"
)

var (
	host        = flag.String("host", "127.0.0.1", "Ground station host")
	port        = flag.Int("port", 35001, "Ground station UDP port")
	rate        = flag.Duration("rate", 10*time.Millisecond, "Interval between packets")
	count       = flag.Int("count", 0, "Number of packets to send (0 = until interrupted)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		log.Println("send-telemetry", version.String())
		return
	}

	reg := message.Standard()
	sender, err := network.NewSender(*host, *port)
	if err != nil {
		log.Fatalf("Failed to create sender: %v", err)
	}
	defer sender.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*rate)
	defer ticker.Stop()

	log.Printf("sending telemetry to %s:%d every %v", *host, *port, *rate)

	start := time.Now()
	var sequence uint32
	for {
		select {
		case <-sigs:
			log.Printf("sent %d packets", sequence)
			return
		case <-ticker.C:
			ts := uint64(time.Since(start).Nanoseconds())
			if err := sendSample(reg, sender, sequence, ts); err != nil {
				log.Fatalf("Send failed: %v", err)
			}
			sequence++
			if *count > 0 && int(sequence) >= *count {
				log.Printf("sent %d packets", sequence)
				return
			}
		}
	}
}

// sendSample encodes one packet's worth of synthetic messages. The IMU
// values trace slow sinusoids so plots at the receiving end look like a
// vehicle gently rocking on the pad.
func sendSample(reg *message.Registry, sender *network.Sender, sequence uint32, ts uint64) error {
	phase := float64(ts) / 1e9

	adis, err := message.Encode(reg, "ADIS", ts, message.Values{
		"VCC":     uint64(2440),
		"Gyro_X":  int64(40 * math.Sin(phase)),
		"Gyro_Y":  int64(40 * math.Cos(phase)),
		"Gyro_Z":  int64(0),
		"Acc_X":   int64(-30000),
		"Acc_Y":   int64(150 * math.Sin(phase/3)),
		"Acc_Z":   int64(150 * math.Cos(phase/3)),
		"Magn_X":  int64(2000),
		"Magn_Y":  int64(-300),
		"Magn_Z":  int64(4400),
		"Temp":    int64(120),
		"Aux_ADC": uint64(0),
	})
	if err != nil {
		return err
	}

	roll, err := message.Encode(reg, "ROLL", ts, message.Values{
		"Angle":   5 * math.Sin(phase/2),
		"Disable": uint64(0),
	})
	if err != nil {
		return err
	}

	seqn, err := message.Encode(reg, "SEQN", ts, message.Values{
		"Sequence": uint64(sequence),
	})
	if err != nil {
		return err
	}

	return sender.SendPacket(sequence, adis, roll, seqn)
}
