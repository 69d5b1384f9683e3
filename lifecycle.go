package corosched

// Owner is a Task's lifecycle parent. The scheduler is the default Owner for
// any Task created without one; a coroutine author may pass a different
// Owner to NewTask to track a group of Tasks under a narrower lifecycle,
// mirroring the reference parent/child relationship in the data model
// rather than first-class cancellation. An Owner is released from a Task
// only when that Task terminates; there is no early release.
type Owner interface {
	// own is called exactly once, when a Task is created under this Owner.
	own(t *Task)
	// release is called exactly once, when the Task terminates (normally or
	// exceptionally).
	release(t *Task)
}

// GroupOwner is an Owner grouping an arbitrary set of Tasks under a single
// narrower lifecycle than the Scheduler itself, e.g. "every Task belonging
// to this connection". onEmpty, if non-nil, fires exactly once, the moment
// the group's live count first reaches zero having owned at least one Task.
//
// own/release are unexported on Owner, so application code cannot write its
// own implementation directly; GroupOwner is the supported way to obtain one.
type GroupOwner struct {
	onEmpty func()
	live    int
	seeded  bool
	emitted bool
}

// NewGroupOwner constructs a GroupOwner. Pass it as NewTask's owner argument
// for each Task that should share this lifecycle.
func NewGroupOwner(onEmpty func()) *GroupOwner {
	return &GroupOwner{onEmpty: onEmpty}
}

// Live reports the number of Tasks currently owned by g.
func (g *GroupOwner) Live() int { return g.live }

func (g *GroupOwner) own(t *Task) {
	g.live++
	g.seeded = true
}

func (g *GroupOwner) release(t *Task) {
	g.live--
	if g.seeded && g.live == 0 && !g.emitted {
		g.emitted = true
		if g.onEmpty != nil {
			g.onEmpty()
		}
	}
}
