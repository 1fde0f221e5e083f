package canvas

import (
	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// Scene is what a renderer needs to draw one frame. All coordinates are
// image pixels; the renderer applies View.
type Scene struct {
	View  geometry.View     `json:"view"`
	Tool  editor.Tool       `json:"tool"`
	Image *editor.ImageMeta `json:"image,omitempty"`
	Zones []ZoneShape       `json:"zones"`

	// Handles are the draggable vertices of the zone or lot being edited.
	Handles []Handle `json:"handles,omitempty"`

	ZoneDraft []geometry.Point `json:"zone_draft,omitempty"`
	LotDraft  []geometry.Point `json:"lot_draft,omitempty"`

	// HandleRadius is the pick radius in image pixels at the current zoom.
	HandleRadius float64 `json:"handle_radius"`
}

// ZoneShape is a zone outline with its lots.
type ZoneShape struct {
	ID       zone.ID          `json:"id"`
	Type     zone.Type        `json:"zone_type"`
	Points   []geometry.Point `json:"points"`
	Lots     []LotShape       `json:"lots,omitempty"`
	Active   bool             `json:"active"`
	Placed   bool             `json:"placed"`
	Occupied *int             `json:"occupied,omitempty"`
}

// LotShape is a lot outline.
type LotShape struct {
	ID     zone.ID          `json:"id"`
	Points []geometry.Point `json:"points"`
	Active bool             `json:"active"`
}

// Handle is an editable vertex.
type Handle struct {
	Index int            `json:"index"`
	Point geometry.Point `json:"point"`
}

// Scene builds the render primitives for the editor's current state.
func (c *Controller) Scene() Scene {
	return BuildScene(c.ed.Snapshot(), c.opts.HitRadius)
}

// BuildScene converts an editor state into render primitives.
func BuildScene(st editor.State, hitRadius float64) Scene {
	sc := Scene{
		View:      st.View,
		Tool:      st.Tool,
		Image:     st.Image,
		Zones:     make([]ZoneShape, 0, len(st.Zones)),
		ZoneDraft: st.ZoneDraft,
		LotDraft:  st.LotDraft,
	}
	if st.View.Scale > 0 {
		sc.HandleRadius = hitRadius / st.View.Scale
	}

	for _, z := range st.Zones {
		q := z.Quad()
		shape := ZoneShape{
			ID:       z.ID,
			Type:     z.Type,
			Points:   q[:],
			Active:   z.ID == st.ActiveZone,
			Placed:   z.HasCompleteGeo(),
			Occupied: z.Occupied,
		}
		for _, l := range z.Lots {
			shape.Lots = append(shape.Lots, LotShape{
				ID:     l.ID,
				Points: l.Polygon(),
				Active: shape.Active && l.ID == st.ActiveLot,
			})
		}
		sc.Zones = append(sc.Zones, shape)

		if !shape.Active {
			continue
		}
		switch st.Tool {
		case editor.ToolEditZone:
			sc.Handles = handles(q[:])
		case editor.ToolEditLot:
			if li := z.LotIndex(st.ActiveLot); li >= 0 {
				sc.Handles = handles(z.Lots[li].Polygon())
			}
		}
	}
	return sc
}

func handles(poly []geometry.Point) []Handle {
	out := make([]Handle, len(poly))
	for i, p := range poly {
		out[i] = Handle{Index: i, Point: p}
	}
	return out
}
