//go:build pcap
// +build pcap

package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/skyward-data/telemetry/internal/monitoring"
)

// ReplayPCAP replays telemetry datagrams captured to a PCAP file through
// the same handler path as a live Listener. Only UDP packets on udpPort are
// considered. Available when building with the 'pcap' tag.
func ReplayPCAP(ctx context.Context, pcapFile string, udpPort int, handler Handler) error {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("failed to open PCAP file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filter); err != nil {
		return fmt.Errorf("failed to set BPF filter %q: %w", filter, err)
	}

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	count := 0
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("PCAP replay stopped after %d packets", count)
			return ctx.Err()
		case pkt := <-source.Packets():
			if pkt == nil {
				monitoring.Logf("PCAP replay complete: %d packets in %v", count, time.Since(start))
				return nil
			}

			udpLayer := pkt.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}

			count++
			src := &net.UDPAddr{Port: int(udp.SrcPort)}
			if netLayer := pkt.NetworkLayer(); netLayer != nil {
				src.IP = net.IP(netLayer.NetworkFlow().Src().Raw())
			}
			if err := handler(udp.Payload, src); err != nil {
				monitoring.Logf("error handling PCAP packet %d: %v", count, err)
			}
		}
	}
}
