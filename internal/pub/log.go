package pub

import (
	"banco/internal/types"
	"context"

	log "github.com/sirupsen/logrus"
)

type logPub struct{}

// NewLog writes events to the logrus standard logger at info level.
func NewLog() logPub { return logPub{} }

func (logPub) Notify(_ context.Context, ev types.Event) error {
	fields := log.Fields{"event": ev.Kind}
	for k, v := range ev.Fields {
		fields[k] = v
	}
	log.WithFields(fields).Info(ev.Message)
	return nil
}

type nopPub struct{}

func NewNop() nopPub { return nopPub{} }

func (nopPub) Notify(context.Context, types.Event) error { return nil }
