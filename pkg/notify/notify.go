// Package notify delivers customer notifications through an in-process
// actor. Senders fire and forget; delivery never blocks a request.
package notify

import (
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// OrderPlaced is sent after a successful checkout.
type OrderPlaced struct {
	OrderID     string
	OrderNumber string
	UserID      string
	Total       string
}

// PaymentVerified is sent when an admin marks a bank transfer as paid.
type PaymentVerified struct {
	PaymentID   string
	OrderID     string
	OrderNumber string
	UserID      string
	VerifiedBy  string
}

type notificationActor struct {
	logger *zap.Logger
}

func (a *notificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *OrderPlaced:
		a.logger.Info("sending order confirmation",
			zap.String("order_number", msg.OrderNumber),
			zap.String("user_id", msg.UserID),
			zap.String("total", msg.Total))

	case *PaymentVerified:
		a.logger.Info("sending payment receipt",
			zap.String("order_number", msg.OrderNumber),
			zap.String("user_id", msg.UserID),
			zap.String("verified_by", msg.VerifiedBy))

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopped:
		a.logger.Info("Notification actor stopped")
	}
}

// Notifier owns the actor system and the notification actor PID.
type Notifier struct {
	system *actor.ActorSystem
	pid    *actor.PID
}

func Start(logger *zap.Logger) (*Notifier, error) {
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &notificationActor{logger: logger.Named("notification-actor")}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Notifier{system: system, pid: pid}, nil
}

func (n *Notifier) OrderPlaced(msg *OrderPlaced) {
	n.system.Root.Send(n.pid, msg)
}

func (n *Notifier) PaymentVerified(msg *PaymentVerified) {
	n.system.Root.Send(n.pid, msg)
}

func (n *Notifier) Shutdown() {
	n.system.Root.Stop(n.pid)
	n.system.Shutdown()
}
