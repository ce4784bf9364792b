package verify

import (
	"context"
	"fmt"
	"io"
)

// Deliverer hands a freshly generated code to an external delivery channel.
// Delivery is fire-and-forget from the flow's point of view: a delivery
// error aborts the transition that triggered it, but the channel gives no
// receipt guarantee.
type Deliverer interface {
	Deliver(ctx context.Context, phone, code string) error
}

// ConsoleDeliverer prints the code instead of sending it. Dev mode only.
type ConsoleDeliverer struct {
	W io.Writer
}

func (d *ConsoleDeliverer) Deliver(ctx context.Context, phone, code string) error {
	_, err := fmt.Fprintf(d.W, "verification code for %s: %s\n", phone, code)
	return err
}
