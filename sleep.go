package corosched

import "time"

// Sleep returns the canonical AsynchronousCall: it wakes its Task, with no
// result and no error, once d has elapsed on the Scheduler's HostLoop.
func Sleep(d time.Duration) AsynchronousCall {
	return &sleepCall{d: d}
}

type sleepCall struct {
	BaseCall
	d      time.Duration
	cancel func()
}

func (c *sleepCall) Arm() error {
	c.cancel = c.context().Scheduler.Host().StartTimer(c.d, func() {
		c.Wake(nil, nil)
	})
	return nil
}
