package session

import (
	"github.com/google/uuid"

	"mulberry/canvas/internal/board"
)

// DefaultLayerID is the id of the always-present default layer. Nodes
// with no layer assignment live on it implicitly.
const DefaultLayerID = "default"

// Layer is a named, orderable, hideable and lockable partition of a
// board's nodes. Layers are session-local.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
	Order   int
}

// Layers is the ordered layer registry of one session.
type Layers struct {
	list   []Layer
	active string
}

func (l *Layers) reset() {
	l.list = []Layer{{ID: DefaultLayerID, Name: "Default", Visible: true, Order: 0}}
	l.active = DefaultLayerID
}

func (l *Layers) find(id string) *Layer {
	for i := range l.list {
		if l.list[i].ID == id {
			return &l.list[i]
		}
	}
	return nil
}

// observe registers a layer id seen on a loaded node so visibility and
// lock state can be tracked for it. The display name defaults to the id.
func (l *Layers) observe(id string) {
	if id == "" || l.find(id) != nil {
		return
	}
	l.list = append(l.list, Layer{ID: id, Name: id, Visible: true, Order: len(l.list)})
}

// AddLayer appends a new visible, unlocked layer and returns it.
func (s *Session) AddLayer(name string) Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	layer := Layer{ID: uuid.NewString(), Name: name, Visible: true, Order: len(s.layers.list)}
	s.layers.list = append(s.layers.list, layer)
	return layer
}

// DeleteLayer removes a layer. The default layer cannot be deleted;
// nodes assigned to a deleted layer fall back to the default layer.
func (s *Session) DeleteLayer(id string) {
	if id == DefaultLayerID {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.layers.list[:0]
	for _, l := range s.layers.list {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.layers.list = kept
	if s.layers.active == id {
		s.layers.active = DefaultLayerID
	}
}

// ToggleVisibility flips a layer's visibility. Hidden layers' nodes stay
// in the node list untouched; they are only excluded from rendering and
// interaction.
func (s *Session) ToggleVisibility(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.layers.find(id); l != nil {
		l.Visible = !l.Visible
	}
}

// ToggleLock flips a layer's lock flag.
func (s *Session) ToggleLock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.layers.find(id); l != nil {
		l.Locked = !l.Locked
	}
}

// SetActiveLayer marks the layer new nodes are assigned to.
func (s *Session) SetActiveLayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layers.find(id) != nil {
		s.layers.active = id
	}
}

// ActiveLayer returns the id of the active layer.
func (s *Session) ActiveLayer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.active
}

// LayerList returns the layers in order.
func (s *Session) LayerList() []Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Layer(nil), s.layers.list...)
}

// EffectiveLayerID resolves a node's layer: its assignment when that
// layer is known, otherwise the default layer.
func (s *Session) EffectiveLayerID(n *board.Node) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers.effective(n.LayerID)
}

func (l *Layers) effective(layerID string) string {
	if layerID != "" && l.find(layerID) != nil {
		return layerID
	}
	return DefaultLayerID
}

// NodeVisible reports whether a node's effective layer is visible.
func (s *Session) NodeVisible(n *board.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layers.find(s.layers.effective(n.LayerID))
	return l == nil || l.Visible
}

// NodeLocked reports whether a node's effective layer is locked. Locked
// nodes stay visible and selectable but cannot be dragged or connected.
func (s *Session) NodeLocked(n *board.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layers.find(s.layers.effective(n.LayerID))
	return l != nil && l.Locked
}
