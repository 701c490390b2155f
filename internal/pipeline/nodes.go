package pipeline

import (
	"cmp"
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"firestige.xyz/dissector/internal/core/tree"
	"firestige.xyz/dissector/internal/metrics"
)

// Node is an Art-Net node learnt from an ArtPollReply.
type Node struct {
	IP           netip.Addr     `json:"ip"`
	BindIndex    uint64         `json:"bind_index"`
	ShortName    string         `json:"short_name"`
	LongName     string         `json:"long_name"`
	Firmware     uint64         `json:"firmware"`
	MAC          string         `json:"mac,omitempty"`
	InUniverses  []uint64       `json:"in_universes,omitempty"`
	OutUniverses []uint64       `json:"out_universes,omitempty"`
	Source       netip.AddrPort `json:"source"`
	LastSeen     time.Time      `json:"last_seen"`
}

// Key identifies a node: its IP address plus bind index, since one device
// answers with one reply per bound port group.
func (n Node) Key() string {
	return n.IP.String() + "/" + strconv.FormatUint(n.BindIndex, 10)
}

// NodeDirectory tracks the Art-Net nodes seen on the network. Entries
// expire when a node stops answering polls for longer than the TTL.
type NodeDirectory struct {
	nodes *cache.Cache
}

// NewNodeDirectory creates a directory whose entries live for ttl.
func NewNodeDirectory(ttl time.Duration) *NodeDirectory {
	d := &NodeDirectory{nodes: cache.New(ttl, ttl/2)}
	d.nodes.OnEvicted(func(string, any) {
		metrics.ArtNetNodes.Set(float64(d.nodes.ItemCount()))
	})
	return d
}

// Observe records the node announced by t if t is an ArtPollReply.
// It reports whether the directory changed.
func (d *NodeDirectory) Observe(t *tree.Tree) bool {
	if t.Opcode() != "OpPollReply" {
		return false
	}
	ref, ok := t.Find("artnet.poll_reply.ip")
	if !ok {
		return false
	}
	ip, ok := netip.AddrFromSlice(t.Node(ref).Bytes)
	if !ok {
		return false
	}

	meta := t.Packet().Meta
	n := Node{
		IP:       ip,
		Source:   meta.SrcAddr,
		LastSeen: meta.Timestamp,
	}
	if n.LastSeen.IsZero() {
		n.LastSeen = time.Now()
	}
	n.BindIndex, _ = t.UintValue("artnet.poll_reply.bind_index")
	n.ShortName, _ = t.StringValue("artnet.poll_reply.short_name")
	n.LongName, _ = t.StringValue("artnet.poll_reply.long_name")
	n.Firmware, _ = t.UintValue("artnet.poll_reply.vers_info")
	if ref, ok := t.Find("artnet.poll_reply.mac"); ok {
		n.MAC = net.HardwareAddr(t.Node(ref).Bytes).String()
	}
	for _, r := range t.FindAll("artnet.poll_reply.in_address") {
		n.InUniverses = append(n.InUniverses, t.Node(r).Uint)
	}
	for _, r := range t.FindAll("artnet.poll_reply.out_address") {
		n.OutUniverses = append(n.OutUniverses, t.Node(r).Uint)
	}

	d.nodes.SetDefault(n.Key(), n)
	metrics.ArtNetNodes.Set(float64(d.nodes.ItemCount()))
	return true
}

// Get returns the node with the given key.
func (d *NodeDirectory) Get(key string) (Node, bool) {
	v, ok := d.nodes.Get(key)
	if !ok {
		return Node{}, false
	}
	return v.(Node), true
}

// Nodes returns the live nodes ordered by key.
func (d *NodeDirectory) Nodes() []Node {
	items := d.nodes.Items()
	out := make([]Node, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(Node))
	}
	slices.SortFunc(out, func(a, b Node) int {
		if c := a.IP.Compare(b.IP); c != 0 {
			return c
		}
		return cmp.Compare(a.BindIndex, b.BindIndex)
	})
	return out
}

// ServeHTTP lists the live nodes as JSON.
func (d *NodeDirectory) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d.Nodes()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Len returns the number of live nodes.
func (d *NodeDirectory) Len() int { return d.nodes.ItemCount() }
