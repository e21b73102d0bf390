package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/S0me0neR0man/skipstash/internal/client"
	"github.com/S0me0neR0man/skipstash/internal/config"
	"github.com/S0me0neR0man/skipstash/internal/keyrange"
	"github.com/S0me0neR0man/skipstash/internal/rowkey"
	"github.com/S0me0neR0man/skipstash/internal/skipscan"
)

const (
	displayCounter = 100
	scanInterval   = time.Millisecond * 50
	maxSplitKeys   = 6
	writers        = 5
)

// rows are (uint32 in [0, 50), word, int64 in [-20, 20))
var schema = rowkey.MustSchema(rowkey.Fixed(4), rowkey.Variable(), rowkey.Fixed(8))

// domains lists every value a field can take, in key order
var domains = func() [][][]byte {
	var ints, words, longs [][]byte
	for i := uint32(0); i < 50; i++ {
		ints = append(ints, rowkey.Uint32(i))
	}
	var grow func(prefix string)
	grow = func(prefix string) {
		words = append(words, []byte(prefix))
		if len(prefix) == 3 {
			return
		}
		for _, c := range "abc" {
			grow(prefix + string(c))
		}
	}
	grow("")
	sort.Slice(words, func(i, j int) bool { return bytes.Compare(words[i], words[j]) < 0 })
	for i := int64(-20); i < 20; i++ {
		longs = append(longs, rowkey.Int64(i))
	}
	return [][][]byte{ints, words, longs}
}()

// randomKey returns a key whose first field is owner modulo writers,
// a negative owner takes any key.
func randomKey(rnd *rand.Rand, owner int) []byte {
	values := make([][]byte, len(domains))
	for i, d := range domains {
		values[i] = d[rnd.Intn(len(d))]
	}
	if owner >= 0 {
		n := len(domains[0]) / writers
		values[0] = domains[0][rnd.Intn(n)*writers+owner]
	}
	return schema.MustKey(values...)
}

// randomSlot picks sorted distinct values and pairs them into disjoint ranges.
func randomSlot(rnd *rand.Rand, domain [][]byte) []keyrange.KeyRange {
	if len(domain[0]) == 0 {
		// an empty bound means unbound
		domain = domain[1:]
	}
	n := 1 + rnd.Intn(6)
	picked := rnd.Perm(len(domain))[:n]
	sort.Ints(picked)

	var slot []keyrange.KeyRange
	for i := 0; i < len(picked); {
		lo := domain[picked[i]]
		if i+1 == len(picked) || rnd.Intn(3) == 0 {
			slot = append(slot, keyrange.Point(lo))
			i++
			continue
		}
		hi := domain[picked[i+1]]
		if i == 0 && rnd.Intn(5) == 0 {
			lo = nil
		}
		if i+2 == len(picked) && rnd.Intn(5) == 0 {
			hi = nil
		}
		slot = append(slot, keyrange.New(lo, rnd.Intn(2) == 0, hi, rnd.Intn(2) == 0))
		i += 2
	}
	return slot
}

func randomFilter(rnd *rand.Rand) (*skipscan.Filter, error) {
	slots := make([][]keyrange.KeyRange, 1+rnd.Intn(len(domains)))
	for i := range slots {
		slots[i] = randomSlot(rnd, domains[i])
	}
	return skipscan.New(slots, schema)
}

func matches(f *skipscan.Filter, key []byte) bool {
	values, err := schema.Fields(key)
	if err != nil {
		return false
	}
	for i, slot := range f.Slots() {
		in := false
		for _, r := range slot {
			if r.Contains(values[i]) {
				in = true
				break
			}
		}
		if !in {
			return false
		}
	}
	return true
}

// Checker writes random rows and runs random skip scans against the server,
// comparing every result with the rows it wrote itself.
type Checker struct {
	toDisplay chan string

	// writers share mu, a scan takes it exclusively so it sees a settled table
	mu       sync.RWMutex
	mirrorMu sync.Mutex
	mirror   map[string]struct{}

	wg sync.WaitGroup

	scans      atomic.Int64
	mismatches atomic.Int64

	client *client.GRPCClient
	sugar  *zap.SugaredLogger
}

func NewChecker(conf *config.Config, logger *zap.Logger) (*Checker, error) {
	c, err := client.NewGRPClient(conf.Address, conf.Token)
	if err != nil {
		return nil, err
	}

	return &Checker{
		client:    c,
		sugar:     logger.Sugar(),
		toDisplay: make(chan string),
		mirror:    make(map[string]struct{}),
	}, nil
}

func (c *Checker) Go(ctx context.Context) {
	c.wg.Add(1 + writers + 2)

	go c.display(ctx)

	for owner := 0; owner < writers; owner++ {
		go c.write(ctx, owner)
	}
	go c.scan(ctx, writers)
	go c.scan(ctx, writers+1)
}

func (c *Checker) Wait() error {
	c.wg.Wait()
	return c.client.Close()
}

func (c *Checker) display(ctx context.Context) {
	defer c.wg.Done()
	c.sugar.Infow("display start")

	for {
		select {
		case <-ctx.Done():
			c.sugar.Infow("display done")
			return
		case s := <-c.toDisplay:
			n, err := fmt.Fprint(os.Stdout, s)
			if err != nil {
				c.sugar.Fatalw("fprintf stdout", "err", err, "n", n)
			}
		}
	}
}

func (c *Checker) show(ctx context.Context, s string) {
	select {
	case c.toDisplay <- s:
	case <-ctx.Done():
	}
}

// write puts and removes keys whose first field is owner modulo writers,
// so no two writers touch the same row.
func (c *Checker) write(ctx context.Context, owner int) {
	defer c.wg.Done()

	rnd := rand.New(rand.NewSource(int64(owner)))
	count := 0
	c.sugar.Infow("write start", "owner", owner)

	for ctx.Err() == nil {
		key := randomKey(rnd, owner)
		put := rnd.Intn(4) != 0

		c.mu.RLock()
		var err error
		if put {
			value := []byte(time.Now().String())
			err = c.client.Put(ctx, key, value)
			if err == nil && rnd.Intn(10) == 0 {
				if rerr := c.readBack(ctx, key, value); rerr != nil && ctx.Err() == nil {
					c.sugar.Errorw("get", "key", fmt.Sprintf("%x", key), "error", rerr)
				}
			}
		} else {
			err = c.client.Remove(ctx, key)
		}
		c.mirrorMu.Lock()
		switch {
		case put && err == nil:
			c.mirror[string(key)] = struct{}{}
		case !put && (err == nil || status.Code(err) == codes.NotFound):
			if _, ok := c.mirror[string(key)]; ok != (err == nil) {
				c.mismatches.Add(1)
				c.sugar.Errorw("remove mismatch", "key", fmt.Sprintf("%x", key), "stored", ok, "error", err)
			}
			delete(c.mirror, string(key))
			err = nil
		}
		c.mirrorMu.Unlock()
		c.mu.RUnlock()

		if err != nil {
			if ctx.Err() == nil {
				c.sugar.Errorw("write", "key", fmt.Sprintf("%x", key), "put", put, "error", err)
			}
			continue
		}

		count++
		if count == displayCounter {
			count = 0
			c.show(ctx, "W")
		}
	}
	c.sugar.Infow("write done", "owner", owner)
}

// readBack gets key and compares it with the value just put.
func (c *Checker) readBack(ctx context.Context, key, value []byte) error {
	got, err := c.client.Get(ctx, key)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, value) {
		c.mismatches.Add(1)
		c.sugar.Errorw("get mismatch", "key", fmt.Sprintf("%x", key), "want", string(value), "got", string(got))
	}
	return nil
}

func (c *Checker) scan(ctx context.Context, seed int64) {
	defer c.wg.Done()

	rnd := rand.New(rand.NewSource(seed))
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()
	c.sugar.Infow("scan start")

	for {
		select {
		case <-ctx.Done():
			c.sugar.Infow("scan done")
			return
		case <-ticker.C:
			if err := c.checkOne(ctx, rnd); err != nil && ctx.Err() == nil {
				c.sugar.Errorw("scan", "error", err)
			}
			if c.scans.Add(1)%displayCounter == 0 {
				c.show(ctx, "S")
			}
		}
	}
}

func (c *Checker) checkOne(ctx context.Context, rnd *rand.Rand) error {
	f, err := randomFilter(rnd)
	if err != nil {
		return err
	}
	splits := make([][]byte, rnd.Intn(maxSplitKeys))
	for i := range splits {
		splits[i] = randomKey(rnd, -1)
	}
	sort.Slice(splits, func(i, j int) bool { return bytes.Compare(splits[i], splits[j]) < 0 })
	for i := len(splits) - 1; i > 0; i-- {
		if bytes.Equal(splits[i], splits[i-1]) {
			splits = append(splits[:i], splits[i+1:]...)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.client.ScanPartitions(ctx, f, splits)
	if err != nil {
		return err
	}

	var want [][]byte
	for key := range c.mirror {
		if matches(f, []byte(key)) {
			want = append(want, []byte(key))
		}
	}
	sort.Slice(want, func(i, j int) bool { return bytes.Compare(want[i], want[j]) < 0 })

	same := len(want) == len(rows)
	for i := 0; same && i < len(want); i++ {
		same = bytes.Equal(want[i], rows[i].Key)
	}
	if !same {
		c.mismatches.Add(1)
		c.sugar.Errorw("scan mismatch",
			"filter", f.String(),
			"splits", len(splits),
			"want", len(want),
			"got", len(rows),
		)
	}
	return nil
}
