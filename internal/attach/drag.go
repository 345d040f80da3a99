// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import "sync"

// DragDepth tracks nested drag-enter and drag-leave events so the drop
// overlay only hides when the drag has fully left the surface. Child
// regions fire their own enter/leave pairs; a plain boolean would
// flicker.
type DragDepth struct {
	mu    sync.Mutex
	depth int
}

// Enter records a drag entering a region.
func (d *DragDepth) Enter() {
	d.mu.Lock()
	d.depth++
	d.mu.Unlock()
}

// Leave records a drag leaving a region. The counter never goes
// negative; stray leave events are absorbed.
func (d *DragDepth) Leave() {
	d.mu.Lock()
	if d.depth > 0 {
		d.depth--
	}
	d.mu.Unlock()
}

// Reset clears the counter, used on drop and on surface teardown.
func (d *DragDepth) Reset() {
	d.mu.Lock()
	d.depth = 0
	d.mu.Unlock()
}

// Visible reports whether the drop overlay should be showing.
func (d *DragDepth) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.depth > 0
}
