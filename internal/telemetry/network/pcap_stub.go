//go:build !pcap
// +build !pcap

package network

import (
	"context"
	"errors"
)

// ReplayPCAP requires the 'pcap' build tag (and libpcap at link time).
func ReplayPCAP(ctx context.Context, pcapFile string, udpPort int, handler Handler) error {
	return errors.New("PCAP replay not available: rebuild with -tags pcap")
}
