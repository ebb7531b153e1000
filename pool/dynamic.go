package pool

type dynamic struct{}

// NewDynamic returns a Pool without an admission limit: every reservation succeeds.
func NewDynamic() Pool { return dynamic{} }

func (dynamic) Reserve(int) bool { return true }

func (dynamic) Go(fn func()) { go fn() }

func (dynamic) Release(int) {}
