package pubsub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/qsightlab/pubsub-relay/pkg/logx"
	"github.com/qsightlab/pubsub-relay/pkg/messaging"
)

// State - listener lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateListening
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateListening:
		return "Listening"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

const (
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second

	// A receive session that survives this long resets the restart budget.
	backoffResetUptime = 1 * time.Minute
)

// ListenerConfig - restart policy for the supervised receive loop.
type ListenerConfig struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// MaxRestarts - consecutive restart budget before the listener gives up
	// and transitions to Crashed. Zero means unlimited.
	MaxRestarts int
}

// delivery - one broker delivery plus its ack/nack resolution callbacks.
type delivery struct {
	msg  messaging.InboundMessage
	ack  func()
	nack func()
}

// receiveFunc - a blocking receive session. Returns nil only on a clean stop.
type receiveFunc func(ctx context.Context, dispatch func(context.Context, delivery)) error

// Listener - managed subscribe loop. Runs the blocking receive call on one
// dedicated goroutine and restarts it with bounded backoff on failure, so a
// one-off broker hiccup does not permanently silence message intake.
type Listener struct {
	receive   receiveFunc
	handler   messaging.Handler
	config    ListenerConfig
	state     atomic.Int32
	done      chan struct{}
	startOnce sync.Once
}

// NewListener - Listener constructor over a bound subscription.
func NewListener(sub *pubsub.Subscription, handler messaging.Handler, config ListenerConfig) *Listener {
	return newListener(subscriptionReceive(sub), handler, config)
}

func newListener(receive receiveFunc, handler messaging.Handler, config ListenerConfig) *Listener {
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaultInitialBackoff
	}

	if config.MaxBackoff <= 0 {
		config.MaxBackoff = defaultMaxBackoff
	}

	return &Listener{
		receive: receive,
		handler: handler,
		config:  config,
		done:    make(chan struct{}),
	}
}

// State - current lifecycle state.
func (l *Listener) State() State {
	return State(l.state.Load())
}

// Done - closed once the listener has fully stopped or crashed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Start - run the supervised receive loop until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		l.state.Store(int32(StateStarting))

		go l.run(ctx)
	})
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)

	backoff := l.config.InitialBackoff
	restarts := 0

	for {
		l.state.Store(int32(StateListening))
		sessionStart := time.Now()

		err := l.receive(ctx, l.dispatch)

		if ctx.Err() != nil || err == nil {
			l.state.Store(int32(StateStopped))
			logx.GetLogger().LogInfo(ctx, "Subscriber listener stopped")

			return
		}

		logx.GetLogger().LogError(ctx, "Subscriber receive loop failed", err)

		if time.Since(sessionStart) >= backoffResetUptime {
			backoff = l.config.InitialBackoff
			restarts = 0
		}

		restarts++
		if l.config.MaxRestarts > 0 && restarts > l.config.MaxRestarts {
			l.state.Store(int32(StateCrashed))
			logx.GetLogger().LogError(ctx, fmt.Sprintf("Subscriber listener crashed after %d restarts", restarts-1), err)

			return
		}

		l.state.Store(int32(StateStarting))
		logx.GetLogger().LogWarning(ctx, fmt.Sprintf("Restarting subscriber receive loop in %s", backoff))

		select {
		case <-ctx.Done():
			l.state.Store(int32(StateStopped))
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > l.config.MaxBackoff {
			backoff = l.config.MaxBackoff
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, d delivery) {
	outcome := l.handler(ctx, d.msg)

	if outcome.Ack {
		d.ack()
		return
	}

	logx.GetLogger().LogWarning(ctx, fmt.Sprintf("Nacking message %s: %s", d.msg.ID, outcome.Reason))
	d.nack()
}

// subscriptionReceive adapts the SDK's blocking Receive to a receiveFunc.
func subscriptionReceive(sub *pubsub.Subscription) receiveFunc {
	return func(ctx context.Context, dispatch func(context.Context, delivery)) error {
		return sub.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			payload := make([]byte, len(msg.Data))
			copy(payload, msg.Data)

			attempt := 0
			if msg.DeliveryAttempt != nil {
				attempt = *msg.DeliveryAttempt
			}

			dispatch(msgCtx, delivery{
				msg: messaging.InboundMessage{
					ID:              msg.ID,
					Data:            payload,
					Attributes:      msg.Attributes,
					DeliveryAttempt: attempt,
				},
				ack:  msg.Ack,
				nack: msg.Nack,
			})
		})
	}
}
