package drawing

import (
	"encoding/json"
	"time"

	"archmap/backend/internal/constants"
)

// Drawing is one saved canvas. The snapshot is stored as-is.
type Drawing struct {
	ID        string          `json:"id"`
	Filename  string          `json:"filename"`
	Snapshot  json.RawMessage `json:"snapshot"`
	Version   int             `json:"version"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Summary is a drawing without its snapshot, for listings
type Summary struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Version   int       `json:"version"`
	UserID    string    `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary drops the snapshot
func (d Drawing) Summary() Summary {
	return Summary{
		ID:        d.ID,
		Filename:  d.Filename,
		Version:   d.Version,
		UserID:    d.UserID,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d Drawing) clone() Drawing {
	c := d
	c.Snapshot = append(json.RawMessage(nil), d.Snapshot...)
	return c
}

// ============================================================================
// Application shape
// ============================================================================

// Default application shape props
const (
	DefaultShapeName   = "New App"
	DefaultShapeWidth  = 250
	DefaultShapeHeight = 100
	DefaultShapeColor  = "black"
)

// ShapeProps are the props of the application shape on the canvas
type ShapeProps struct {
	Name          string   `json:"name"`
	Icons         []string `json:"icons"`
	W             float64  `json:"w"`
	H             float64  `json:"h"`
	Color         string   `json:"color"`
	ApplicationID string   `json:"application_id,omitempty"`
}

// ShapeTemplate is a palette entry dropped onto the canvas
type ShapeTemplate struct {
	Type  string     `json:"type"`
	Props ShapeProps `json:"props"`
}

// NewApplicationShape returns the default application shape
func NewApplicationShape() ShapeTemplate {
	return ShapeTemplate{
		Type: constants.ApplicationShapeType,
		Props: ShapeProps{
			Name:  DefaultShapeName,
			Icons: []string{},
			W:     DefaultShapeWidth,
			H:     DefaultShapeHeight,
			Color: DefaultShapeColor,
		},
	}
}
