package services

import (
	"math"
	"sort"

	"blueprint-backend/domain/config"
	"blueprint-backend/domain/core/aggregates"
	"blueprint-backend/domain/core/entities"
	"blueprint-backend/domain/core/valueobjects"
)

// LayoutEngine computes and repairs node positions: overlap resolution
// after drags and placements, column auto-spacing, and full realignment.
// It mutates node positions through the aggregate but never touches
// history; the orchestrator decides what is undoable.
//
// Heights come from an injected measured-height override map fed by the
// presentation layer, with a pure fallback table keyed by (type, expanded)
// so the engine stays testable without a renderer.
type LayoutEngine struct {
	cfg      *config.DomainConfig
	measured map[valueobjects.NodeID]float64
	shifts   map[valueobjects.NodeID]expandShift
	baseline map[valueobjects.NodeID]valueobjects.Position
}

// expandShift records a vertical displacement applied to the nodes sitting
// below an expanded node, so collapsing can reverse it exactly.
type expandShift struct {
	delta    float64
	affected []valueobjects.NodeID
}

// fallbackHeights maps node type to (collapsed, expanded) pixel heights,
// used when no measured height has been reported.
var fallbackHeights = map[entities.NodeType][2]float64{
	entities.NodeTypeIdea:      {100, 280},
	entities.NodeTypeFeature:   {90, 260},
	entities.NodeTypeScreen:    {90, 240},
	entities.NodeTypeTechStack: {80, 200},
	entities.NodeTypePrompt:    {80, 220},
	entities.NodeTypeNote:      {70, 180},
}

// NewLayoutEngine creates a layout engine with empty caches.
func NewLayoutEngine(cfg *config.DomainConfig) *LayoutEngine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &LayoutEngine{
		cfg:      cfg,
		measured: make(map[valueobjects.NodeID]float64),
		shifts:   make(map[valueobjects.NodeID]expandShift),
		baseline: make(map[valueobjects.NodeID]valueobjects.Position),
	}
}

// SetMeasuredHeight records a renderer-measured pixel height for a node.
// Heights at or below zero clear the override.
func (e *LayoutEngine) SetMeasuredHeight(id valueobjects.NodeID, height float64) {
	if height <= 0 {
		delete(e.measured, id)
		return
	}
	e.measured[id] = height
}

// NodeHeight returns the effective height of a node: the measured override
// when present, else the fallback for (type, expanded).
func (e *LayoutEngine) NodeHeight(node *entities.Node) float64 {
	if h, ok := e.measured[node.ID()]; ok {
		return h
	}
	if pair, ok := fallbackHeights[node.Type()]; ok {
		if node.Expanded() {
			return pair[1]
		}
		return pair[0]
	}
	if node.Expanded() {
		return e.cfg.ExpandedHeight
	}
	return e.cfg.CollapsedHeight
}

// ResolveOverlap repositions the given node so its bounding box intersects
// no other node. If the current position is free it is kept. Otherwise the
// engine searches outward in Chebyshev rings on a fixed step grid, taking
// the free candidate nearest (Euclidean) to the target. The search is
// bounded and never fails: with no free slot inside the bound the node
// keeps its overlapping position.
func (e *LayoutEngine) ResolveOverlap(canvas *aggregates.Canvas, id valueobjects.NodeID) {
	node := canvas.GetNode(id)
	if node == nil {
		return
	}

	target := node.Position()
	if !e.overlapsAny(canvas, node, target) {
		return
	}

	step := e.cfg.GridStep
	for ring := 1; ring <= e.cfg.MaxRings; ring++ {
		best := target
		bestDist := math.Inf(1)
		for _, offset := range ringOffsets(ring) {
			candidate, err := target.Translate(offset[0]*step, offset[1]*step)
			if err != nil {
				continue
			}
			if e.overlapsAny(canvas, node, candidate) {
				continue
			}
			if d := candidate.DistanceTo(target); d < bestDist {
				bestDist = d
				best = candidate
			}
		}
		if !math.IsInf(bestDist, 1) {
			canvas.MoveNode(id, best)
			return
		}
	}
	// Search bound exhausted: overlap is a soft constraint, leave the node.
}

// AutoSpaceColumns pushes vertically stacked nodes apart. Nodes are grouped
// into discrete x-columns by rounding to the bucket width; within each
// column any node whose top sits above the previous node's bottom plus the
// minimum gap is pushed down.
func (e *LayoutEngine) AutoSpaceColumns(canvas *aggregates.Canvas) {
	for _, column := range e.columns(canvas) {
		for i := 1; i < len(column); i++ {
			prev := column[i-1]
			curr := column[i]
			minTop := prev.Position().Y() + e.NodeHeight(prev) + e.cfg.VerticalGap
			if curr.Position().Y() < minTop {
				moved, err := valueobjects.NewPosition(curr.Position().X(), minTop)
				if err == nil {
					canvas.MoveNode(curr.ID(), moved)
				}
			}
		}
	}
}

// Realign resets the whole layout. When a saved baseline exists it is
// restored verbatim for every node still present; otherwise all nodes are
// bucketed by type into fixed columns in canonical type order, rows evenly
// spaced and centered vertically. The computed layout becomes the new
// baseline.
func (e *LayoutEngine) Realign(canvas *aggregates.Canvas) {
	if len(e.baseline) > 0 {
		for _, node := range canvas.Nodes() {
			if pos, ok := e.baseline[node.ID()]; ok {
				canvas.MoveNode(node.ID(), pos)
			}
		}
		return
	}

	byType := make(map[entities.NodeType][]*entities.Node)
	for _, node := range canvas.Nodes() {
		byType[node.Type()] = append(byType[node.Type()], node)
	}

	for col, nodeType := range entities.CanonicalTypeOrder {
		nodes := byType[nodeType]
		if len(nodes) == 0 {
			continue
		}
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].Position().Y() < nodes[j].Position().Y()
		})

		total := 0.0
		for _, node := range nodes {
			total += e.NodeHeight(node)
		}
		total += float64(len(nodes)-1) * e.cfg.VerticalGap

		x := float64(col) * e.cfg.ColumnSpacingX
		y := -total / 2
		for _, node := range nodes {
			pos, err := valueobjects.NewPosition(x, y)
			if err == nil {
				canvas.MoveNode(node.ID(), pos)
			}
			y += e.NodeHeight(node) + e.cfg.VerticalGap
		}
	}

	e.CaptureBaseline(canvas)
}

// CaptureBaseline saves the current positions as the layout to restore on
// the next Realign.
func (e *LayoutEngine) CaptureBaseline(canvas *aggregates.Canvas) {
	e.baseline = make(map[valueobjects.NodeID]valueobjects.Position, canvas.NodeCount())
	for _, node := range canvas.Nodes() {
		e.baseline[node.ID()] = node.Position()
	}
}

// ClearBaseline drops the saved layout so the next Realign recomputes
// per-type columns.
func (e *LayoutEngine) ClearBaseline() {
	e.baseline = make(map[valueobjects.NodeID]valueobjects.Position)
}

// ApplyExpandShift pushes every node sitting below the toggled node in the
// same column down by delta and records the affected set keyed by the
// toggled node id, so a later collapse reverses the exact shift.
func (e *LayoutEngine) ApplyExpandShift(canvas *aggregates.Canvas, id valueobjects.NodeID, delta float64) {
	node := canvas.GetNode(id)
	if node == nil || delta == 0 {
		return
	}

	bucket := e.bucket(node.Position().X())
	var affected []valueobjects.NodeID
	for _, other := range canvas.Nodes() {
		if other.ID().Equals(id) {
			continue
		}
		if e.bucket(other.Position().X()) != bucket {
			continue
		}
		if other.Position().Y() <= node.Position().Y() {
			continue
		}
		moved, err := other.Position().Translate(0, delta)
		if err != nil {
			continue
		}
		canvas.MoveNode(other.ID(), moved)
		affected = append(affected, other.ID())
	}

	if delta > 0 {
		e.shifts[id] = expandShift{delta: delta, affected: affected}
	}
}

// ReverseExpandShift undoes a recorded expand shift and reports whether one
// existed. Affected nodes deleted since the expansion are skipped; the
// reversal is intentionally verbatim rather than recomputed, so interleaved
// moves can leave it partially stale.
func (e *LayoutEngine) ReverseExpandShift(canvas *aggregates.Canvas, id valueobjects.NodeID) bool {
	shift, ok := e.shifts[id]
	if !ok {
		return false
	}
	delete(e.shifts, id)

	for _, affectedID := range shift.affected {
		node := canvas.GetNode(affectedID)
		if node == nil {
			continue
		}
		moved, err := node.Position().Translate(0, -shift.delta)
		if err != nil {
			continue
		}
		canvas.MoveNode(affectedID, moved)
	}
	return true
}

// Forget drops every per-node cache entry for a deleted node.
func (e *LayoutEngine) Forget(id valueobjects.NodeID) {
	delete(e.measured, id)
	delete(e.shifts, id)
	delete(e.baseline, id)
}

// Reset clears all layout caches. Used on project switch.
func (e *LayoutEngine) Reset() {
	e.measured = make(map[valueobjects.NodeID]float64)
	e.shifts = make(map[valueobjects.NodeID]expandShift)
	e.baseline = make(map[valueobjects.NodeID]valueobjects.Position)
}

// overlapsAny tests axis-aligned bounding-box intersection between the
// node placed at pos and every other node on the canvas.
func (e *LayoutEngine) overlapsAny(canvas *aggregates.Canvas, node *entities.Node, pos valueobjects.Position) bool {
	w := e.cfg.NodeWidth
	h := e.NodeHeight(node)
	for _, other := range canvas.Nodes() {
		if other.ID().Equals(node.ID()) {
			continue
		}
		op := other.Position()
		oh := e.NodeHeight(other)
		if pos.X() < op.X()+w && op.X() < pos.X()+w &&
			pos.Y() < op.Y()+oh && op.Y() < pos.Y()+h {
			return true
		}
	}
	return false
}

// columns groups nodes into x-buckets and sorts each bucket by y. Ties
// break on node id so spacing is deterministic.
func (e *LayoutEngine) columns(canvas *aggregates.Canvas) [][]*entities.Node {
	buckets := make(map[int][]*entities.Node)
	for _, node := range canvas.Nodes() {
		b := e.bucket(node.Position().X())
		buckets[b] = append(buckets[b], node)
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	columns := make([][]*entities.Node, 0, len(keys))
	for _, k := range keys {
		column := buckets[k]
		sort.SliceStable(column, func(i, j int) bool {
			if column[i].Position().Y() != column[j].Position().Y() {
				return column[i].Position().Y() < column[j].Position().Y()
			}
			return column[i].ID().String() < column[j].ID().String()
		})
		columns = append(columns, column)
	}
	return columns
}

func (e *LayoutEngine) bucket(x float64) int {
	return int(math.Round(x / e.cfg.ColumnBucketWidth))
}

// ringOffsets enumerates the grid offsets on the Chebyshev ring of the
// given radius: every (dx, dy) with max(|dx|, |dy|) == r.
func ringOffsets(r int) [][2]float64 {
	offsets := make([][2]float64, 0, 8*r)
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if maxAbs(dx, dy) == r {
				offsets = append(offsets, [2]float64{float64(dx), float64(dy)})
			}
		}
	}
	return offsets
}

func maxAbs(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}
