package component

// Change is a recorded state change that can be undone.
type Change interface {
	Undo()
}

// ChangeFunc adapts a function to Change.
type ChangeFunc func()

func (f ChangeFunc) Undo() { f() }

type versionRecord struct {
	number  int
	changes []Change
}

// Version returns the current version number, starting at 0.
func (p *Page) Version() int { return p.version }

func (p *Page) tracking() bool {
	return p.versioned && p.renderCount > 0 && !p.rendering
}

// RecordChange registers a change for the next version. Changes are tracked
// only after the first render and never during rendering.
func (p *Page) RecordChange(ch Change) {
	if !p.tracking() {
		return
	}
	p.pending = append(p.pending, ch)
}

// CommitVersion turns pending changes into a new version. It reports whether
// the version number changed.
func (p *Page) CommitVersion() bool {
	if len(p.pending) == 0 {
		return false
	}
	p.version++
	p.history = append(p.history, versionRecord{number: p.version, changes: p.pending})
	p.pending = nil
	if over := len(p.history) - p.maxVersions; over > 0 {
		p.history = p.history[over:]
	}
	return true
}

// OldestVersion returns the oldest version RollbackTo can reach.
func (p *Page) OldestVersion() int {
	if len(p.history) == 0 {
		return p.version
	}
	return p.history[0].number - 1
}

// RollbackTo undoes versions newer than v. Pending changes are undone too.
func (p *Page) RollbackTo(v int) error {
	if v > p.version || v < p.OldestVersion() {
		return ErrVersionUnavailable
	}
	tracked := p.versioned
	p.versioned = false
	defer func() { p.versioned = tracked }()

	undo(p.pending)
	p.pending = nil
	for len(p.history) > 0 && p.history[len(p.history)-1].number > v {
		last := p.history[len(p.history)-1]
		undo(last.changes)
		p.history = p.history[:len(p.history)-1]
	}
	p.version = v
	return nil
}

func undo(changes []Change) {
	for i := len(changes) - 1; i >= 0; i-- {
		changes[i].Undo()
	}
}
