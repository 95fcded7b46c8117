// Package zephyr is an in-process event dispatch engine. Application code
// emits typed events; registered listeners receive them through one of three
// delivery strategies: local functions, remote webhooks, or task submissions
// handed to a queue backend.
//
// A Dispatcher delivers synchronously (EmitSync blocks until every listener
// finishes) or asynchronously (EmitAsync returns a Handle that can be
// awaited). Listener failures are isolated: one listener's error, panic,
// timeout or rejection never prevents delivery to the others, and every
// delivery produces an Outcome.
//
//	d := zephyr.New()
//	d.On("order.created", func(ctx context.Context, evt zephyr.Event) error {
//	    return index(ctx, evt.Payload)
//	})
//	d.Register(zephyr.NewWebhookListener("order.created", zephyr.WebhookConfig{
//	    URL:        "https://billing.example.com/hooks/orders",
//	    MaxRetries: 3,
//	}))
//
//	outcomes := d.Emit(ctx, "order.created", order)
package zephyr
