//go:build !lfmqdebug

package rb

// guard is a no-op outside of lfmqdebug builds.
type guard struct{}

func (guard) enterProducer() {}
func (guard) exitProducer()  {}
func (guard) enterConsumer() {}
func (guard) exitConsumer()  {}
