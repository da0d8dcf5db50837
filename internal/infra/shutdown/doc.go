// Package shutdown stops issuemesh-server components in order.
//
// Components register a Step as they start. On SIGINT, SIGTERM, an
// explicit Stop (for example after the listener fails) or cancellation of
// the context given to Wait, the steps run newest first under one
// deadline. The HTTP server therefore stops taking requests before the
// issue service and the history recorder flush.
//
//	c := shutdown.New(30*time.Second, shutdown.WithLogger(log))
//	c.Register("history", recorder.Close)
//	c.Register("http", srv.Shutdown)
//	err := c.Wait(context.Background())
package shutdown
