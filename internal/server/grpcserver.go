package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/S0me0neR0man/skipstash/internal/config"
	"github.com/S0me0neR0man/skipstash/internal/grpcproto"
	"github.com/S0me0neR0man/skipstash/internal/metrics"
	"github.com/S0me0neR0man/skipstash/internal/skipscan"
	"github.com/S0me0neR0man/skipstash/internal/stashdb"
	"github.com/S0me0neR0man/skipstash/internal/token"
)

var (
	errMissingMetadata = status.Errorf(codes.InvalidArgument, "missing metadata")
	errInvalidToken    = status.Errorf(codes.Unauthenticated, "invalid token")
)

// ScanIDTrailer is the trailer key carrying the id a scan was logged under
const ScanIDTrailer = "scan-id"

type GRPCServer struct {
	grpcproto.UnimplementedStashServer

	stash   *stashdb.Stash
	sugar   *zap.SugaredLogger
	gserv   *grpc.Server
	conf    *config.Config
	filters *filterCache

	metrics  *metrics.Metrics
	registry *prometheus.Registry

	wg sync.WaitGroup
}

func NewStashServer(stash *stashdb.Stash, conf *config.Config, logger *zap.Logger) (*GRPCServer, error) {
	ss := &GRPCServer{
		stash:   stash,
		conf:    conf,
		sugar:   logger.Sugar(),
		metrics: metrics.NilMetrics(),
	}
	if conf.MetricsAddress != "" {
		ss.registry = prometheus.NewRegistry()
		ss.metrics = metrics.GetPrometheusMetrics("skipstash")
		ss.metrics.Register(ss.registry)
	}

	var err error
	if ss.filters, err = newFilterCache(conf.FilterCacheSize, logger, ss.metrics); err != nil {
		return nil, err
	}
	return ss, nil
}

// Start listens on the configured address and serves until ctx is done.
func (ss *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", ss.conf.Address)
	if err != nil {
		return err
	}
	return ss.Serve(ctx, lis)
}

func (ss *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(ss.ensureValidToken),
		grpc.StreamInterceptor(ss.ensureValidTokenStream),
	}

	ss.gserv = grpc.NewServer(opts...)
	grpcproto.RegisterStashServer(ss.gserv, ss)
	ss.sugar.Infow("gprcserver start", "address", lis.Addr().String())

	ss.wg.Add(2)
	go ss.saveToDisk(ctx)
	go ss.gracefulStop(ctx)
	if ss.registry != nil {
		ss.wg.Add(1)
		go ss.serveMetrics(ctx)
	}

	return ss.gserv.Serve(lis)
}

func (ss *GRPCServer) saveToDisk(ctx context.Context) {
	defer ss.wg.Done()
	if ss.conf.StoreInterval == 0 {
		return
	}

	ticker := time.NewTicker(ss.conf.StoreInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := ss.stash.SaveToDisk(ctx)
			if err != nil {
				ss.sugar.Errorw("stash.SaveToDisk", "error", err)
			}
		case <-ctx.Done():
			if err := ss.stash.SaveToDisk(context.Background()); err != nil {
				ss.sugar.Errorw("stash.SaveToDisk on stop", "error", err)
			}
			return
		}
	}
}

func (ss *GRPCServer) gracefulStop(ctx context.Context) {
	defer ss.wg.Done()

	<-ctx.Done()
	ss.gserv.GracefulStop()
}

func (ss *GRPCServer) serveMetrics(ctx context.Context) {
	defer ss.wg.Done()

	srv := &http.Server{
		Addr: ss.conf.MetricsAddress,
		Handler: promhttp.InstrumentMetricHandler(
			ss.registry, promhttp.HandlerFor(ss.registry, promhttp.HandlerOpts{}),
		),
		ReadHeaderTimeout: time.Minute,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	ss.sugar.Infow("prometheus server start", "address", ss.conf.MetricsAddress)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		ss.sugar.Errorw("prometheus ListenAndServe", "error", err)
	}
}

func (ss *GRPCServer) Wait() {
	ss.wg.Wait()
}

func (ss *GRPCServer) checkToken(ctx context.Context) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return errMissingMetadata
	}
	if !token.Valid(md, ss.conf.Token) {
		return errInvalidToken
	}
	return nil
}

func (ss *GRPCServer) ensureValidToken(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if err := ss.checkToken(ctx); err != nil {
		ss.sugar.Debugw("ensureValidToken", "method", info.FullMethod, "error", err)
		return nil, err
	}
	return handler(ctx, req)
}

func (ss *GRPCServer) ensureValidTokenStream(srv interface{}, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if err := ss.checkToken(stream.Context()); err != nil {
		ss.sugar.Debugw("ensureValidTokenStream", "method", info.FullMethod, "error", err)
		return err
	}
	return handler(srv, stream)
}

func (ss *GRPCServer) Put(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	req, err := grpcproto.UnwrapPutRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err = ss.stash.Put(req.Key, req.Value); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &emptypb.Empty{}, nil
}

func (ss *GRPCServer) Get(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	req, err := grpcproto.UnwrapGetRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	value, err := ss.stash.Get(req.Key)
	if errors.Is(err, stashdb.ErrRecordNotFound) {
		return nil, status.Errorf(codes.NotFound, "%x: %v", req.Key, err)
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return (&grpcproto.Row{Key: req.Key, Value: value}).Wrap(), nil
}

func (ss *GRPCServer) Remove(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	req, err := grpcproto.UnwrapRemoveRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	err = ss.stash.Remove(req.Key)
	if errors.Is(err, stashdb.ErrRecordNotFound) {
		return nil, status.Errorf(codes.NotFound, "%x: %v", req.Key, err)
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &emptypb.Empty{}, nil
}

func (ss *GRPCServer) Scan(in *wrapperspb.BytesValue, stream grpcproto.Stash_ScanServer) error {
	req, err := grpcproto.UnwrapScanRequest(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	scanID := uuid.New().String()
	stream.SetTrailer(metadata.Pairs(ScanIDTrailer, scanID))

	var filter *skipscan.Filter
	if len(req.Filter) > 0 {
		if filter, err = ss.filters.get(req.Filter); err != nil {
			return status.Errorf(codes.InvalidArgument, "filter: %v", err)
		}
	}

	stats, err := ss.stash.Scan(stream.Context(), stashdb.ScanRequest{
		Lower:  req.Lower,
		Upper:  req.Upper,
		Filter: filter,
	}, func(key, value []byte) error {
		return stream.Send((&grpcproto.Row{Key: key, Value: value}).Wrap())
	})
	ss.metrics.ObserveScan(stats.Visited, stats.Included, stats.Skipped, stats.Seeks, stats.Clipped)
	ss.sugar.Debugw("scan",
		"scan", scanID,
		"visited", stats.Visited,
		"included", stats.Included,
		"skipped", stats.Skipped,
		"seeks", stats.Seeks,
		"clipped", stats.Clipped,
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, skipscan.ErrUnexpectedKeyStructure):
		ss.sugar.Errorw("scan", "scan", scanID, "filter", fmt.Sprintf("%016x", filter.Hash()), "error", err)
		return status.Errorf(codes.FailedPrecondition, "scan %s: %v", scanID, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Error(codes.Internal, fmt.Sprintf("scan %s: %v", scanID, err))
	}
}
