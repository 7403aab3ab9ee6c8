// Package feed gossips committed donation records between nodes using
// libp2p. The feed is observational: records are announcements about
// state another node already committed, never instructions to mutate
// the local ledger.
package feed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	libp2pcrypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	drouting "github.com/libp2p/go-libp2p/p2p/discovery/routing"
	dutil "github.com/libp2p/go-libp2p/p2p/discovery/util"
	"golang.org/x/sync/errgroup"

	"github.com/spacefund-io/spacefund/internal/donation"
	"github.com/spacefund-io/spacefund/internal/log"
	"github.com/spacefund-io/spacefund/internal/storage"
)

const (
	// maxMessageSize caps a gossip message. Records are tiny; anything
	// approaching this is garbage.
	maxMessageSize = 64 * 1024

	// dhtDiscoveryInterval is how often DHT FindPeers runs.
	dhtDiscoveryInterval = 30 * time.Second

	// peerConnectTimeout is the timeout for connecting to a persisted peer.
	peerConnectTimeout = 5 * time.Second
)

// Config holds feed configuration.
type Config struct {
	ListenAddr   string
	Port         int
	Seeds        []string
	MaxPeers     int
	NoDiscover   bool
	DHTServer    bool       // Run DHT in server mode (for seed nodes)
	DB           storage.DB // Peer persistence (nil = disabled, for tests)
	DeploymentID string     // Isolates discovery and topics per deployment
	DataDir      string     // Persists the node identity key
}

// Feed is one node's connection to the record gossip network.
type Feed struct {
	host   host.Host
	pubsub *pubsub.PubSub
	config Config
	ctx    context.Context
	cancel context.CancelFunc

	topic *pubsub.Topic
	sub   *pubsub.Subscription

	recordHandler func(peer.ID, *donation.Record)

	mu    sync.RWMutex
	peers map[peer.ID]*Peer

	peerStore *peerStore   // nil if Config.DB is nil
	dht       *dht.IpfsDHT // nil if NoDiscover
}

// Peer is one connected feed peer.
type Peer struct {
	ID          peer.ID
	ConnectedAt time.Time
	Source      string // "dht", "mdns", "seed"
}

// New creates a feed node. Start opens the network.
func New(cfg Config) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Feed{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
		peers:  make(map[peer.ID]*Peer),
	}
	if cfg.DB != nil {
		f.peerStore = newPeerStore(cfg.DB)
	}
	return f
}

// recordTopic returns the GossipSub topic for this deployment's records.
func (f *Feed) recordTopic() string {
	return "/spacefund/records/1.0.0/" + f.config.DeploymentID
}

// rendezvous returns the DHT/mDNS discovery namespace, isolated per
// deployment so mainnet and devnet nodes never mesh.
func (f *Feed) rendezvous() string {
	return "spacefund/" + f.config.DeploymentID
}

// Start opens the libp2p host, joins the record topic, and begins
// peer discovery.
func (f *Feed) Start() error {
	addr := fmt.Sprintf("/ip4/%s/tcp/%d", f.config.ListenAddr, f.config.Port)

	opts := []libp2p.Option{
		libp2p.ListenAddrStrings(addr),
	}

	// Load or generate a persistent identity so the peer ID survives
	// restarts.
	if f.config.DataDir != "" {
		privKey, err := loadOrCreateIdentity(f.config.DataDir)
		if err != nil {
			return fmt.Errorf("load feed identity: %w", err)
		}
		opts = append(opts, libp2p.Identity(privKey))
	}

	h, err := libp2p.New(opts...)
	if err != nil {
		return fmt.Errorf("create libp2p host: %w", err)
	}
	f.host = h

	h.Network().Notify(&connNotifier{feed: f})

	// Init DHT before GossipSub so the DHT can serve as a peer source.
	if !f.config.NoDiscover {
		if err := f.initDHT(); err != nil {
			h.Close()
			return fmt.Errorf("init dht: %w", err)
		}
	}

	ps, err := pubsub.NewGossipSub(f.ctx, h,
		pubsub.WithMaxMessageSize(maxMessageSize),
	)
	if err != nil {
		f.closeDHT()
		h.Close()
		return fmt.Errorf("create pubsub: %w", err)
	}
	f.pubsub = ps

	f.topic, err = ps.Join(f.recordTopic())
	if err != nil {
		f.closeDHT()
		h.Close()
		return fmt.Errorf("join record topic: %w", err)
	}
	f.sub, err = f.topic.Subscribe()
	if err != nil {
		f.closeDHT()
		h.Close()
		return fmt.Errorf("subscribe records: %w", err)
	}

	go f.readLoop()

	// Reconnect persisted peers in background.
	go f.loadPersistedPeers()

	// Connect to seeds (first attempt is blocking, retries run in
	// background).
	if len(f.config.Seeds) > 0 {
		log.Feed.Info().Int("seeds", len(f.config.Seeds)).Msg("Connecting to seeds...")
	}
	f.connectSeedsOnce()
	go f.connectSeedsLoop()

	if !f.config.NoDiscover {
		f.startMDNS()
		go f.runDHTDiscovery()
	}

	if f.peerStore != nil {
		go f.runPersistLoop()
	}

	return nil
}

// Stop shuts down the feed.
func (f *Feed) Stop() error {
	f.persistPeers()

	f.cancel()
	if f.sub != nil {
		f.sub.Cancel()
	}
	if f.topic != nil {
		f.topic.Close()
	}
	f.closeDHT()
	if f.host != nil {
		return f.host.Close()
	}
	return nil
}

// PublishRecord broadcasts a committed donation record. It satisfies
// donation.Sink: failures are logged, never surfaced, because the
// ledger state is already committed.
func (f *Feed) PublishRecord(rec *donation.Record) {
	if f.topic == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Feed.Error().Err(err).Msg("marshal record")
		return
	}
	if err := f.topic.Publish(f.ctx, data); err != nil {
		log.Feed.Warn().Err(err).Msg("publish record")
	}
}

// SetRecordHandler registers a callback for records received from
// peers. The handler must treat them as unverified announcements.
func (f *Feed) SetRecordHandler(fn func(from peer.ID, rec *donation.Record)) {
	f.recordHandler = fn
}

func (f *Feed) readLoop() {
	for {
		msg, err := f.sub.Next(f.ctx)
		if err != nil {
			return // Context cancelled.
		}
		if msg.ReceivedFrom == f.host.ID() {
			continue // Skip own messages.
		}
		f.handleMessage(msg)
	}
}

func (f *Feed) handleMessage(msg *pubsub.Message) {
	defer func() { recover() }()
	f.addPeer(msg.ReceivedFrom, "")
	if f.recordHandler == nil {
		return
	}
	var rec donation.Record
	if err := json.Unmarshal(msg.Data, &rec); err != nil {
		log.Feed.Debug().
			Str("peer", msg.ReceivedFrom.String()[:16]).
			Msg("dropping malformed record")
		return
	}
	f.recordHandler(msg.ReceivedFrom, &rec)
}

// ID returns the peer ID of this node.
func (f *Feed) ID() peer.ID {
	if f.host == nil {
		return ""
	}
	return f.host.ID()
}

// Addrs returns the full multiaddrs of this node.
func (f *Feed) Addrs() []string {
	if f.host == nil {
		return nil
	}
	var addrs []string
	for _, a := range f.host.Addrs() {
		addrs = append(addrs, fmt.Sprintf("%s/p2p/%s", a, f.host.ID()))
	}
	return addrs
}

// Host returns the underlying libp2p host (nil before Start).
func (f *Feed) Host() host.Host {
	return f.host
}

// PeerCount returns the number of connected peers.
func (f *Feed) PeerCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.peers)
}

// PeerList returns a snapshot of connected peers.
func (f *Feed) PeerList() []*Peer {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Peer, 0, len(f.peers))
	for _, p := range f.peers {
		out = append(out, p)
	}
	return out
}

func (f *Feed) addPeer(id peer.ID, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, exists := f.peers[id]; exists {
		if p.Source == "" && source != "" {
			p.Source = source
		}
		return
	}
	f.peers[id] = &Peer{
		ID:          id,
		ConnectedAt: time.Now(),
		Source:      source,
	}
}

func (f *Feed) removePeer(id peer.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.peers, id)
}

// connectSeedsOnce dials every seed in parallel (blocking). Returns
// true if at least one seed connected.
func (f *Feed) connectSeedsOnce() bool {
	var (
		g         errgroup.Group
		mu        sync.Mutex
		connected bool
	)
	for _, addr := range f.config.Seeds {
		g.Go(func() error {
			info, err := peer.AddrInfoFromString(addr)
			if err != nil {
				log.Feed.Warn().Str("addr", addr).Err(err).Msg("Bad seed address")
				return nil
			}
			ctx, cancel := context.WithTimeout(f.ctx, 10*time.Second)
			defer cancel()
			if err := f.host.Connect(ctx, *info); err != nil {
				log.Feed.Warn().Str("peer", info.ID.String()[:16]).Err(err).Msg("Seed connect failed")
				return nil
			}
			f.addPeer(info.ID, "seed")
			log.Feed.Info().Str("peer", info.ID.String()[:16]).Msg("Seed connected")
			mu.Lock()
			connected = true
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return connected
}

// connectSeedsLoop retries seed connections every 10s while peerless.
func (f *Feed) connectSeedsLoop() {
	if len(f.config.Seeds) == 0 {
		return
	}
	for {
		select {
		case <-f.ctx.Done():
			return
		case <-time.After(10 * time.Second):
			if f.PeerCount() == 0 {
				log.Feed.Info().Int("seeds", len(f.config.Seeds)).Msg("No peers, retrying seeds...")
				f.connectSeedsOnce()
			}
		}
	}
}

// --- Discovery ---

func (f *Feed) startMDNS() {
	svc := mdns.NewMdnsService(f.host, f.rendezvous(), &discoveryNotifee{feed: f})
	// mDNS failure is non-fatal.
	_ = svc.Start()
}

func (f *Feed) initDHT() error {
	mode := dht.ModeClient
	if f.config.DHTServer {
		mode = dht.ModeServer
	}
	kadDHT, err := dht.New(f.ctx, f.host, dht.Mode(mode))
	if err != nil {
		return fmt.Errorf("create kad-dht: %w", err)
	}
	f.dht = kadDHT
	return kadDHT.Bootstrap(f.ctx)
}

func (f *Feed) closeDHT() {
	if f.dht != nil {
		f.dht.Close()
		f.dht = nil
	}
}

func (f *Feed) runDHTDiscovery() {
	if f.dht == nil {
		return
	}

	routingDiscovery := drouting.NewRoutingDiscovery(f.dht)
	dutil.Advertise(f.ctx, routingDiscovery, f.rendezvous())

	ticker := time.NewTicker(dhtDiscoveryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.findDHTPeers(routingDiscovery)
		}
	}
}

func (f *Feed) findDHTPeers(routingDiscovery *drouting.RoutingDiscovery) {
	ctx, cancel := context.WithTimeout(f.ctx, 20*time.Second)
	defer cancel()

	peerCh, err := routingDiscovery.FindPeers(ctx, f.rendezvous())
	if err != nil {
		return
	}

	for p := range peerCh {
		if p.ID == f.host.ID() || len(p.Addrs) == 0 {
			continue
		}

		// Respect MaxPeers.
		if f.config.MaxPeers > 0 && f.PeerCount() >= f.config.MaxPeers {
			return
		}

		connectCtx, connectCancel := context.WithTimeout(f.ctx, peerConnectTimeout)
		if err := f.host.Connect(connectCtx, p); err == nil {
			f.addPeer(p.ID, "dht")
		}
		connectCancel()
	}
}

// --- Peer Persistence ---

func (f *Feed) persistPeers() {
	if f.peerStore == nil || f.host == nil {
		return
	}

	f.mu.RLock()
	snapshot := make([]peer.ID, 0, len(f.peers))
	sources := make(map[peer.ID]string)
	for id, p := range f.peers {
		snapshot = append(snapshot, id)
		sources[id] = p.Source
	}
	f.mu.RUnlock()

	now := time.Now().Unix()
	for _, id := range snapshot {
		addrs := f.host.Peerstore().Addrs(id)
		addrStrs := make([]string, len(addrs))
		for i, a := range addrs {
			addrStrs[i] = a.String()
		}
		rec := peerRecord{
			ID:       id.String(),
			Addrs:    addrStrs,
			LastSeen: now,
			Source:   sources[id],
		}
		f.peerStore.save(rec) // Best-effort, ignore errors.
	}
}

func (f *Feed) loadPersistedPeers() {
	if f.peerStore == nil {
		return
	}

	f.peerStore.pruneStale(staleThreshold)

	records, err := f.peerStore.loadAll()
	if err != nil {
		return
	}

	for _, rec := range records {
		id, err := peer.Decode(rec.ID)
		if err != nil {
			continue
		}
		if id == f.host.ID() {
			continue
		}

		info := peer.AddrInfo{ID: id}
		for _, addr := range rec.Addrs {
			ma, err := peer.AddrInfoFromString(fmt.Sprintf("%s/p2p/%s", addr, rec.ID))
			if err != nil {
				continue
			}
			info.Addrs = append(info.Addrs, ma.Addrs...)
		}
		if len(info.Addrs) == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(f.ctx, peerConnectTimeout)
		f.host.Connect(ctx, info) // Best-effort reconnect.
		cancel()
	}
}

func (f *Feed) runPersistLoop() {
	ticker := time.NewTicker(persistInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.persistPeers()
			f.peerStore.pruneStale(staleThreshold)
		}
	}
}

// loadOrCreateIdentity loads a persisted libp2p identity key from
// dataDir, or generates one and saves it, so the peer ID is stable.
func loadOrCreateIdentity(dataDir string) (libp2pcrypto.PrivKey, error) {
	keyPath := filepath.Join(dataDir, "node.key")

	data, err := os.ReadFile(keyPath)
	if err == nil {
		keyBytes, err := hex.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("decode node key: %w", err)
		}
		return libp2pcrypto.UnmarshalEd25519PrivateKey(keyBytes)
	}

	priv, _, err := libp2pcrypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	raw, err := priv.Raw()
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(raw)), 0600); err != nil {
		return nil, fmt.Errorf("save node key: %w", err)
	}

	return priv, nil
}
