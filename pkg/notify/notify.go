package notify

import (
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// OrderPlaced asks the confirmation actor to send an order confirmation.
type OrderPlaced struct {
	OrderNumber string
	Email       string
	GrandTotal  string
}

// ConfirmationActor dispatches order confirmations off the request path.
type ConfirmationActor struct {
	logger *zap.Logger
}

func (a *ConfirmationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *OrderPlaced:
		a.logger.Info("Sending order confirmation",
			zap.String("order_number", msg.OrderNumber),
			zap.String("email", msg.Email),
			zap.String("grand_total", msg.GrandTotal))

	case *actor.Started:
		a.logger.Info("Confirmation actor started")

	case *actor.Stopping:
		a.logger.Info("Confirmation actor stopping")
	}
}

// Notifier owns the actor system and the confirmation actor pid. OrderPlaced
// sends are fire-and-forget; a lost confirmation never fails a checkout.
type Notifier struct {
	system *actor.ActorSystem
	pid    *actor.PID
}

func NewNotifier(logger *zap.Logger) (*Notifier, error) {
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &ConfirmationActor{logger: logger.Named("confirmation-actor")}
	})
	pid, err := system.Root.SpawnNamed(props, "confirmation-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn confirmation actor: %w", err)
	}

	return &Notifier{system: system, pid: pid}, nil
}

func (n *Notifier) OrderPlaced(msg *OrderPlaced) {
	n.system.Root.Send(n.pid, msg)
}

func (n *Notifier) Shutdown() {
	n.system.Shutdown()
}
