package service

import (
	"context"
	"time"

	"github.com/goodnatureofminers/btcrelay/internal/relay/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	EventSink interface {
		Publish(ctx context.Context, events []model.Event) error
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
		SetBestHeight(height uint32)
		IncEvent(kind model.EventKind)
	}
)
