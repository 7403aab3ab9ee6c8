package feed

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// connNotifier tracks connection lifecycle events via the
// network.Notifiee interface.
type connNotifier struct {
	feed *Feed
}

// Connected is called when a new connection is opened.
func (cn *connNotifier) Connected(_ network.Network, conn network.Conn) {
	remotePeer := conn.RemotePeer()
	if remotePeer == cn.feed.host.ID() {
		return // Ignore self-connections.
	}
	cn.feed.addPeer(remotePeer, "")
}

// Disconnected is called when a connection is closed. The peer is
// removed only once no connections to it remain.
func (cn *connNotifier) Disconnected(net network.Network, conn network.Conn) {
	remotePeer := conn.RemotePeer()
	if len(net.ConnsToPeer(remotePeer)) == 0 {
		cn.feed.removePeer(remotePeer)
	}
}

// Listen is called when the node starts listening on a new address.
func (cn *connNotifier) Listen(network.Network, multiaddr.Multiaddr) {}

// ListenClose is called when the node stops listening on an address.
func (cn *connNotifier) ListenClose(network.Network, multiaddr.Multiaddr) {}

// discoveryNotifee handles mDNS peer discovery notifications.
type discoveryNotifee struct {
	feed *Feed
}

// HandlePeerFound is called when a peer is discovered via mDNS.
func (d *discoveryNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == d.feed.host.ID() {
		return // Ignore self.
	}

	ctx, cancel := context.WithTimeout(d.feed.ctx, 5*time.Second)
	defer cancel()

	if err := d.feed.host.Connect(ctx, pi); err == nil {
		d.feed.addPeer(pi.ID, "mdns")
	}
}
