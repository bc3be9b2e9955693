package auth

import (
	"hash/crc32"
	"sort"
	"strconv"
	"sync"
)

// ConsistentHashRing 一致性哈希环，用于把令牌缓存键分散到各鉴权节点
type ConsistentHashRing struct {
	hash     func(data []byte) uint32
	replicas int
	mu       sync.RWMutex
	keys     []uint32 // 已排序的虚拟节点哈希
	owners   map[uint32]string
	nodes    map[string]struct{}
}

// NewConsistentHashRing 创建哈希环，nodes 为空时使用一个默认节点
func NewConsistentHashRing(nodes []string, replicas int) *ConsistentHashRing {
	if replicas <= 0 {
		replicas = 50
	}
	if len(nodes) == 0 {
		nodes = []string{"auth-node-default"}
	}
	ch := &ConsistentHashRing{
		hash:     crc32.ChecksumIEEE,
		replicas: replicas,
		owners:   make(map[uint32]string),
		nodes:    make(map[string]struct{}),
	}
	ch.Add(nodes...)
	return ch
}

func (c *ConsistentHashRing) virtual(node string, i int) uint32 {
	return c.hash([]byte(node + "#" + strconv.Itoa(i)))
}

// Add 批量添加节点，已存在的节点忽略
func (c *ConsistentHashRing) Add(nodes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(nodes)
}

// SetNodes 把节点集合替换为 nodes：多出的下线，缺少的加入。
// 下线节点的键迁移到环上的后继节点，其余键归属不变
func (c *ConsistentHashRing) SetNodes(nodes []string) {
	if len(nodes) == 0 {
		return
	}
	want := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		want[n] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for n := range c.nodes {
		if _, ok := want[n]; !ok {
			c.remove(n)
		}
	}
	c.add(nodes)
}

func (c *ConsistentHashRing) add(nodes []string) {
	for _, node := range nodes {
		if _, ok := c.nodes[node]; ok {
			continue
		}
		c.nodes[node] = struct{}{}
		for i := 0; i < c.replicas; i++ {
			h := c.virtual(node, i)
			c.keys = append(c.keys, h)
			c.owners[h] = node
		}
	}
	c.sortKeys()
}

func (c *ConsistentHashRing) remove(node string) {
	delete(c.nodes, node)
	kept := c.keys[:0]
	for _, h := range c.keys {
		if c.owners[h] == node {
			delete(c.owners, h)
			continue
		}
		kept = append(kept, h)
	}
	c.keys = kept
}

func (c *ConsistentHashRing) sortKeys() {
	sort.Slice(c.keys, func(i, j int) bool { return c.keys[i] < c.keys[j] })
}

// Nodes 当前节点，按名称排序
func (c *ConsistentHashRing) Nodes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.nodes))
	for n := range c.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// GetNode 顺时针查找负责 key 的节点，环为空时返回空串
func (c *ConsistentHashRing) GetNode(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.keys) == 0 {
		return ""
	}
	h := c.hash([]byte(key))
	idx := sort.Search(len(c.keys), func(i int) bool { return c.keys[i] >= h })
	if idx == len(c.keys) {
		idx = 0
	}
	return c.owners[c.keys[idx]]
}
