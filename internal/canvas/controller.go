package canvas

import (
	"fmt"
	"sync"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// Editor is the subset of *editor.Store the controller drives.
type Editor interface {
	Snapshot() editor.State
	View() geometry.View
	SetView(v geometry.View) error
	DraftAddPoint(p geometry.Point) (zone.ID, error)
	LotDraftAddPoint(p geometry.Point) error
	LotDraftComplete() (zone.ID, error)
	SelectZone(id zone.ID) error
	SelectLot(id zone.ID) error
	MoveZoneVertex(id zone.ID, i int, px geometry.Point) error
	MoveLotVertex(zoneID, lotID zone.ID, i int, px geometry.Point) error
}

// Options tunes pointer handling.
type Options struct {
	// HitRadius is the vertex pick radius in screen pixels.
	HitRadius float64

	// LotCloseRadius closes a lot draft when a click lands this close to
	// its first point, in image pixels.
	LotCloseRadius float64

	ZoomIn   float64
	ZoomOut  float64
	MinScale float64
	MaxScale float64

	// ClickSlop is how far, in screen pixels, a select-mode press may
	// travel and still count as a click.
	ClickSlop float64
}

// DefaultOptions returns the stock pointer settings.
func DefaultOptions() Options {
	return Options{
		HitRadius:      geometry.DefaultHitRadius,
		LotCloseRadius: 10,
		ZoomIn:         1.1,
		ZoomOut:        0.9,
		MinScale:       0.05,
		MaxScale:       20,
		ClickSlop:      3,
	}
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gesturePan
	gestureZoneVertex
	gestureLotVertex
)

// gesture is the press currently held down.
type gesture struct {
	kind      gestureKind
	start     geometry.Point
	startView geometry.View
	moved     bool
	zoneID    zone.ID
	lotID     zone.ID
	vertex    int
}

// Controller interprets pointer events for one editor. It is safe for
// concurrent use, though pointer streams are expected from one client.
type Controller struct {
	ed   Editor
	opts Options

	mu sync.Mutex
	g  gesture
}

// New creates a controller. Zero option fields take their defaults.
func New(ed Editor, opts Options) *Controller {
	def := DefaultOptions()
	if opts.HitRadius <= 0 {
		opts.HitRadius = def.HitRadius
	}
	if opts.LotCloseRadius <= 0 {
		opts.LotCloseRadius = def.LotCloseRadius
	}
	if opts.ZoomIn <= 0 {
		opts.ZoomIn = def.ZoomIn
	}
	if opts.ZoomOut <= 0 {
		opts.ZoomOut = def.ZoomOut
	}
	if opts.MinScale <= 0 {
		opts.MinScale = def.MinScale
	}
	if opts.MaxScale <= 0 {
		opts.MaxScale = def.MaxScale
	}
	if opts.ClickSlop <= 0 {
		opts.ClickSlop = def.ClickSlop
	}
	return &Controller{ed: ed, opts: opts}
}

// Options returns the controller's settings.
func (c *Controller) Options() Options {
	return c.opts
}

// PointerDown starts a gesture at a screen position.
func (c *Controller) PointerDown(screen geometry.Point) error {
	if !screen.Finite() {
		return fmt.Errorf("%w: %+v", ErrInvalidPointer, screen)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.ed.Snapshot()
	img := geometry.ScreenToImage(screen.X, screen.Y, st.View)
	c.g = gesture{}

	switch st.Tool {
	case editor.ToolSelect:
		c.g = gesture{kind: gesturePan, start: screen, startView: st.View}
		return nil

	case editor.ToolDrawZone:
		_, err := c.ed.DraftAddPoint(img)
		return err

	case editor.ToolDrawLot:
		if len(st.LotDraft) >= zone.MinLotPoints && geometry.Within(img, st.LotDraft[0], c.opts.LotCloseRadius) {
			_, err := c.ed.LotDraftComplete()
			return err
		}
		return c.ed.LotDraftAddPoint(img)

	case editor.ToolEditZone:
		z, ok := st.Zone(st.ActiveZone)
		if !ok {
			return editor.ErrNoActiveZone
		}
		q := z.Quad()
		if i := c.pick(q[:], img, st.View); i != geometry.NoVertex {
			c.g = gesture{kind: gestureZoneVertex, start: screen, zoneID: z.ID, vertex: i}
		}
		return nil

	case editor.ToolEditLot:
		z, ok := st.Zone(st.ActiveZone)
		if !ok {
			return editor.ErrNoActiveZone
		}
		li := z.LotIndex(st.ActiveLot)
		if li < 0 {
			return editor.ErrLotNotFound
		}
		if i := c.pick(z.Lots[li].Polygon(), img, st.View); i != geometry.NoVertex {
			c.g = gesture{kind: gestureLotVertex, start: screen, zoneID: z.ID, lotID: st.ActiveLot, vertex: i}
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrNotAllowed, st.Tool)
}

// pick finds the vertex under the pointer. The hit radius is in screen
// pixels, so it shrinks in image space as the view zooms in.
func (c *Controller) pick(poly []geometry.Point, img geometry.Point, v geometry.View) int {
	return geometry.NearestVertex(poly, img.X, img.Y, c.opts.HitRadius/v.Scale)
}

// PointerMove continues the current gesture. Without a pressed gesture
// it does nothing.
func (c *Controller) PointerMove(screen geometry.Point) error {
	if !screen.Finite() {
		return fmt.Errorf("%w: %+v", ErrInvalidPointer, screen)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.g.kind {
	case gesturePan:
		d := screen.Sub(c.g.start)
		if !c.g.moved && d.DistSq(geometry.Point{}) <= c.opts.ClickSlop*c.opts.ClickSlop {
			return nil
		}
		c.g.moved = true
		return c.ed.SetView(c.g.startView.Pan(d.X, d.Y))

	case gestureZoneVertex:
		c.g.moved = true
		img := geometry.ScreenToImage(screen.X, screen.Y, c.ed.View())
		return c.ed.MoveZoneVertex(c.g.zoneID, c.g.vertex, img)

	case gestureLotVertex:
		c.g.moved = true
		img := geometry.ScreenToImage(screen.X, screen.Y, c.ed.View())
		return c.ed.MoveLotVertex(c.g.zoneID, c.g.lotID, c.g.vertex, img)
	}
	return nil
}

// PointerUp ends the gesture. A select-mode press that did not travel
// past the click slop selects what is under the pointer: a lot of the
// active zone first, then the topmost zone. Clicking empty image clears
// the selection.
func (c *Controller) PointerUp(screen geometry.Point) error {
	if !screen.Finite() {
		return fmt.Errorf("%w: %+v", ErrInvalidPointer, screen)
	}

	c.mu.Lock()
	g := c.g
	c.g = gesture{}
	c.mu.Unlock()

	if g.kind != gesturePan || g.moved {
		return nil
	}

	st := c.ed.Snapshot()
	img := geometry.ScreenToImage(screen.X, screen.Y, st.View)

	if active, ok := st.Zone(st.ActiveZone); ok {
		for _, l := range active.Lots {
			if geometry.Contains(l.Polygon(), img) {
				return c.ed.SelectLot(l.ID)
			}
		}
	}
	for i := len(st.Zones) - 1; i >= 0; i-- {
		q := st.Zones[i].Quad()
		if geometry.Contains(q[:], img) {
			if st.Zones[i].ID == st.ActiveZone {
				return c.ed.SelectLot(zone.ID{})
			}
			return c.ed.SelectZone(st.Zones[i].ID)
		}
	}
	return c.ed.SelectZone(zone.ID{})
}

// Wheel zooms about the pointer by one wheel step. Only select mode zooms.
func (c *Controller) Wheel(screen geometry.Point, deltaY float64) error {
	if !screen.Finite() {
		return fmt.Errorf("%w: %+v", ErrInvalidPointer, screen)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.ed.Snapshot()
	if st.Tool != editor.ToolSelect {
		return fmt.Errorf("%w: zoom in %v", ErrNotAllowed, st.Tool)
	}
	if deltaY == 0 {
		return nil
	}

	factor := geometry.WheelFactor(deltaY, c.opts.ZoomIn, c.opts.ZoomOut)
	scale := geometry.ClampScale(st.View.Scale*factor, c.opts.MinScale, c.opts.MaxScale)
	if scale == st.View.Scale {
		return nil
	}
	return c.ed.SetView(geometry.ZoomAt(st.View, screen, scale))
}

// Dragging reports whether a vertex is being moved.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g.kind == gestureZoneVertex || c.g.kind == gestureLotVertex
}
