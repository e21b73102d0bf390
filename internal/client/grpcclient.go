package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/S0me0neR0man/skipstash/internal/grpcproto"
	"github.com/S0me0neR0man/skipstash/internal/skipscan"
	"github.com/S0me0neR0man/skipstash/internal/token"
)

var ErrBadSplitKeys = errors.New("split keys must be non-empty and sorted")

type Row = grpcproto.Row

type GRPCClient struct {
	conn   *grpc.ClientConn
	client grpcproto.StashClient
}

func NewGRPClient(address, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := GRPCClient{}

	opts = append([]grpc.DialOption{
		grpc.WithPerRPCCredentials(token.New(accessToken)),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	var err error
	c.conn, err = grpc.Dial(address, opts...)
	if err != nil {
		return nil, err
	}
	c.client = grpcproto.NewStashClient(c.conn)

	return &c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Put(ctx context.Context, key, value []byte) error {
	_, err := c.client.Put(ctx, (&grpcproto.PutRequest{Key: key, Value: value}).Wrap())
	return err
}

// Get returns the value stored under key.
func (c *GRPCClient) Get(ctx context.Context, key []byte) ([]byte, error) {
	msg, err := c.client.Get(ctx, (&grpcproto.GetRequest{Key: key}).Wrap())
	if err != nil {
		return nil, err
	}
	row, err := grpcproto.UnwrapRow(msg)
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (c *GRPCClient) Remove(ctx context.Context, key []byte) error {
	_, err := c.client.Remove(ctx, (&grpcproto.RemoveRequest{Key: key}).Wrap())
	return err
}

// Scan returns the rows of [lower, upper) the filter matches. A nil filter
// returns the whole range.
func (c *GRPCClient) Scan(ctx context.Context, filter *skipscan.Filter, lower, upper []byte) ([]Row, error) {
	var raw []byte
	if filter != nil {
		var err error
		if raw, err = filter.MarshalBinary(); err != nil {
			return nil, err
		}
	}
	return c.scan(ctx, &grpcproto.ScanRequest{Lower: lower, Upper: upper, Filter: raw})
}

func (c *GRPCClient) scan(ctx context.Context, req *grpcproto.ScanRequest) ([]Row, error) {
	stream, err := c.client.Scan(ctx, req.Wrap())
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := grpcproto.UnwrapRow(msg)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
}

// ScanPartitions splits the key space at splitKeys, scans every partition
// concurrently and returns the rows in key order. The filter is encoded once,
// each partition is navigated by its own copy on the server.
func (c *GRPCClient) ScanPartitions(ctx context.Context, filter *skipscan.Filter, splitKeys [][]byte) ([]Row, error) {
	for i, key := range splitKeys {
		if len(key) == 0 || (i > 0 && bytes.Compare(splitKeys[i-1], key) >= 0) {
			return nil, fmt.Errorf("%w: split key %d %x", ErrBadSplitKeys, i, key)
		}
	}

	var raw []byte
	if filter != nil {
		var err error
		if raw, err = filter.MarshalBinary(); err != nil {
			return nil, err
		}
	}

	parts := make([][]Row, len(splitKeys)+1)
	g, ctx := errgroup.WithContext(ctx)
	for i := range parts {
		i := i
		req := &grpcproto.ScanRequest{Filter: raw}
		if i > 0 {
			req.Lower = splitKeys[i-1]
		}
		if i < len(splitKeys) {
			req.Upper = splitKeys[i]
		}
		g.Go(func() error {
			rows, err := c.scan(ctx, req)
			if err != nil {
				return fmt.Errorf("partition %d [%x, %x): %w", i, req.Lower, req.Upper, err)
			}
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []Row
	for _, p := range parts {
		rows = append(rows, p...)
	}
	return rows, nil
}
