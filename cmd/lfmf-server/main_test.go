package main

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/signalsfoundry/groundwave/internal/config"
	"github.com/signalsfoundry/groundwave/internal/logging"
	"github.com/signalsfoundry/groundwave/internal/rpc"
	"github.com/signalsfoundry/groundwave/model"
)

func TestServerStartupSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	cfg := config.Default()
	cfg.Server.MetricsAddr = ""
	cfg.Tracing.Enabled = false
	cfg.Stations = []model.Station{
		{ID: "tx", LatDeg: 52, LonDeg: 0, FrequencyMHz: 0.198, TxPowerW: 1000, Polarization: model.PolarizationVertical},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, logging.Noop(), lis)
	}()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	defer conn.Close()

	client := rpc.NewPredictionServiceClient(conn)
	resp, err := client.ListStations(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if n := len(resp.AsMap()["stations"].([]any)); n != 1 {
		t.Fatalf("stations = %d, want 1", n)
	}

	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}
