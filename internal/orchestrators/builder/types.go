package builder

import "github.com/KirkDiggler/rpg-world/internal/entities"

// CreateWorldInput describes a new world. TimeOfDay defaults to morning.
type CreateWorldInput struct {
	Name        string
	Description string
	IsTemplate  bool
	TimeOfDay   entities.TimeOfDay
	WorldState  entities.Attributes
}

// CreateWorldOutput holds the new world
type CreateWorldOutput struct {
	World *entities.World
}

// CreateLocationInput describes a new location
type CreateLocationInput struct {
	WorldID          int64
	ParentLocationID *int64
	Name             string
	Description      string
	LocationType     string
	State            entities.Attributes
}

// CreateLocationOutput holds the new location
type CreateLocationOutput struct {
	Location *entities.Location
}

// CopyWorldInput clones a world. Name defaults to the source name.
type CopyWorldInput struct {
	SourceWorldID int64
	Name          string
	Description   string
	IsTemplate    bool
}

// CopyCounts reports how many rows of each kind were copied
type CopyCounts struct {
	Locations   int
	Connections int
	Characters  int
	Containers  int
	Items       int
}

// CopyWorldOutput holds the new world and what went into it
type CopyWorldOutput struct {
	World  *entities.World
	Counts CopyCounts
}

// ImportTemplateInput holds a YAML world template
type ImportTemplateInput struct {
	Data []byte
	// IsTemplate overrides the template's own flag when set
	IsTemplate *bool
}

// ImportTemplateOutput holds the imported world and the ids assigned to
// each named location
type ImportTemplateOutput struct {
	World     *entities.World
	Locations map[string]int64
	Counts    CopyCounts
}
