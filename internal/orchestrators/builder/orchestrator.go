// Package builder creates worlds: single worlds and locations, deep copies
// of existing worlds, and worlds imported from YAML templates
package builder

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-world/internal/entities"
	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
	"github.com/KirkDiggler/rpg-world/internal/repositories/worldstate"
)

// Service defines the world building operations
type Service interface {
	CreateWorld(ctx context.Context, input *CreateWorldInput) (*CreateWorldOutput, error)
	CreateLocation(ctx context.Context, input *CreateLocationInput) (*CreateLocationOutput, error)
	CopyWorld(ctx context.Context, input *CopyWorldInput) (*CopyWorldOutput, error)
	ImportTemplate(ctx context.Context, input *ImportTemplateInput) (*ImportTemplateOutput, error)
}

// Config holds the dependencies for the builder
type Config struct {
	Repository worldstate.Repository
	EventLog   eventlog.Service
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.EventLog == nil {
		vb.RequiredField("EventLog")
	}

	return vb.Build()
}

type orchestrator struct {
	repo     worldstate.Repository
	eventLog eventlog.Service
}

// NewOrchestrator creates a new world builder
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		repo:     cfg.Repository,
		eventLog: cfg.EventLog,
	}, nil
}

func (o *orchestrator) CreateWorld(ctx context.Context, input *CreateWorldInput) (*CreateWorldOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *CreateWorldOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		w, err := o.createWorld(ctx, tx, input)
		if err != nil {
			return err
		}
		out = &CreateWorldOutput{World: w}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) createWorld(ctx context.Context, tx *worldstate.Tx, input *CreateWorldInput) (*entities.World, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument("world name is required")
	}
	tod := input.TimeOfDay
	if tod == "" {
		tod = entities.TimeMorning
	}
	if !tod.IsValid() {
		return nil, errors.InvalidArgumentf("invalid time of day %q", tod)
	}

	w := &entities.World{
		Name:        input.Name,
		Description: input.Description,
		IsTemplate:  input.IsTemplate,
		TimeOfDay:   tod,
		WorldState:  input.WorldState.Clone(),
	}
	if err := tx.CreateWorld(ctx, w); err != nil {
		return nil, err
	}

	if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   w.ID,
		EventType: entities.EventWorldCreated,
		Target:    entities.Ref(entities.KindWorld, w.ID),
		Data: entities.Attributes{
			"name":        w.Name,
			"is_template": w.IsTemplate,
		},
	}); err != nil {
		return nil, err
	}
	return w, nil
}

func (o *orchestrator) CreateLocation(ctx context.Context, input *CreateLocationInput) (*CreateLocationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *CreateLocationOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		if _, err := tx.GetWorld(ctx, input.WorldID); err != nil {
			return err
		}
		loc, err := o.createLocation(ctx, tx, input)
		if err != nil {
			return err
		}
		out = &CreateLocationOutput{Location: loc}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *orchestrator) createLocation(ctx context.Context, tx *worldstate.Tx, input *CreateLocationInput) (*entities.Location, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument("location name is required")
	}
	if input.ParentLocationID != nil {
		parent, err := tx.GetLocation(ctx, *input.ParentLocationID)
		if err != nil {
			return nil, err
		}
		if parent.WorldID != input.WorldID {
			return nil, errors.InvalidArgumentf("parent location %d belongs to another world", parent.ID)
		}
	}

	loc := &entities.Location{
		WorldID:          input.WorldID,
		ParentLocationID: input.ParentLocationID,
		Name:             input.Name,
		Description:      input.Description,
		LocationType:     input.LocationType,
		State:            input.State.Clone(),
	}
	if err := tx.CreateLocation(ctx, loc); err != nil {
		return nil, err
	}

	data := entities.Attributes{"name": loc.Name}
	if loc.ParentLocationID != nil {
		data["parent_location_id"] = *loc.ParentLocationID
	}
	if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
		WorldID:   loc.WorldID,
		EventType: entities.EventLocationCreated,
		Target:    entities.Ref(entities.KindLocation, loc.ID),
		Data:      data,
	}); err != nil {
		return nil, err
	}
	return loc, nil
}

// snapshot is everything a world copy reads from its source
type snapshot struct {
	world       *entities.World
	locations   []*entities.Location
	connections []*entities.Connection
	characters  []*entities.Character
	containers  []*entities.Container
	items       []*entities.Item
}

// readSnapshot loads the source world through r. Inside a transaction
// every index and row read is watched.
func readSnapshot(ctx context.Context, r worldstate.Reader, worldID int64) (*snapshot, error) {
	snap := &snapshot{}
	var err error

	if snap.world, err = r.GetWorld(ctx, worldID); err != nil {
		return nil, err
	}
	if snap.locations, err = r.ListLocations(ctx, worldID); err != nil {
		return nil, err
	}
	if snap.connections, err = r.ListConnections(ctx, worldID); err != nil {
		return nil, err
	}
	if snap.characters, err = r.ListCharacters(ctx, worldID); err != nil {
		return nil, err
	}
	if snap.containers, err = r.ListContainers(ctx, worldID); err != nil {
		return nil, err
	}
	if snap.items, err = r.ListItems(ctx, worldID); err != nil {
		return nil, err
	}
	return snap, nil
}

func (o *orchestrator) CopyWorld(ctx context.Context, input *CopyWorldInput) (*CopyWorldOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var out *CopyWorldOutput
	err := o.repo.Update(ctx, func(tx *worldstate.Tx) error {
		// read through tx so a concurrent change to any source entity
		// retries the copy
		snap, err := readSnapshot(ctx, tx, input.SourceWorldID)
		if err != nil {
			return err
		}

		name := input.Name
		if name == "" {
			name = snap.world.Name
		}
		description := input.Description
		if description == "" {
			description = snap.world.Description
		}

		w := &entities.World{
			Name:        name,
			Description: description,
			IsTemplate:  input.IsTemplate,
			TimeOfDay:   snap.world.TimeOfDay,
			DaysElapsed: snap.world.DaysElapsed,
			WorldState:  snap.world.WorldState.Clone(),
		}
		if err := tx.CreateWorld(ctx, w); err != nil {
			return err
		}

		counts, err := copyInto(ctx, tx, snap, w.ID)
		if err != nil {
			return err
		}

		if _, err := o.eventLog.Log(ctx, tx, &eventlog.LogInput{
			WorldID:   w.ID,
			EventType: entities.EventWorldCopied,
			Target:    entities.Ref(entities.KindWorld, w.ID),
			Data: entities.Attributes{
				"source_world_id": input.SourceWorldID,
				"locations":       counts.Locations,
				"connections":     counts.Connections,
				"characters":      counts.Characters,
				"containers":      counts.Containers,
				"items":           counts.Items,
			},
		}); err != nil {
			return err
		}

		out = &CopyWorldOutput{World: w, Counts: counts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "world copied",
		"source_world_id", input.SourceWorldID,
		"world_id", out.World.ID,
		"locations", out.Counts.Locations,
		"characters", out.Counts.Characters,
		"items", out.Counts.Items)

	return out, nil
}

// idMap translates source ids to the ids of their copies
type idMap map[int64]int64

func (m idMap) lookup(kind entities.EntityKind, id int64) (int64, error) {
	newID, ok := m[id]
	if !ok {
		return 0, errors.Internalf("%s %d was not copied", kind, id)
	}
	return newID, nil
}

func (m idMap) lookupPtr(kind entities.EntityKind, id *int64) (*int64, error) {
	if id == nil {
		return nil, nil
	}
	newID, err := m.lookup(kind, *id)
	if err != nil {
		return nil, err
	}
	return &newID, nil
}

// copyInto clones the snapshot's rows into worldID. Quests and the event
// history stay with the source world.
func copyInto(ctx context.Context, tx *worldstate.Tx, snap *snapshot, worldID int64) (CopyCounts, error) {
	var counts CopyCounts
	locations := idMap{}
	characters := idMap{}
	containers := idMap{}
	items := idMap{}

	// parents may come later in iteration order, so link them in a second pass
	copies := make([]*entities.Location, len(snap.locations))
	for i, src := range snap.locations {
		loc := &entities.Location{
			WorldID:      worldID,
			Name:         src.Name,
			Description:  src.Description,
			LocationType: src.LocationType,
			State:        src.State.Clone(),
		}
		if err := tx.CreateLocation(ctx, loc); err != nil {
			return counts, err
		}
		locations[src.ID] = loc.ID
		copies[i] = loc
	}
	for i, src := range snap.locations {
		if src.ParentLocationID == nil {
			continue
		}
		parent, err := locations.lookupPtr(entities.KindLocation, src.ParentLocationID)
		if err != nil {
			return counts, err
		}
		copies[i].ParentLocationID = parent
		if err := tx.PutLocation(ctx, copies[i]); err != nil {
			return counts, err
		}
	}
	counts.Locations = len(copies)

	for _, src := range snap.characters {
		locID, err := locations.lookup(entities.KindLocation, src.LocationID)
		if err != nil {
			return counts, err
		}
		ch := *src
		ch.ID = 0
		ch.WorldID = worldID
		ch.LocationID = locID
		ch.AdditionalStats = src.AdditionalStats.Clone()
		ch.SetHP(ch.MaxHP)
		if err := tx.CreateCharacter(ctx, &ch); err != nil {
			return counts, err
		}
		characters[src.ID] = ch.ID
		counts.Characters++
	}

	for _, src := range snap.containers {
		c := *src
		c.ID = 0
		c.WorldID = worldID
		var err error
		if c.LocationID, err = locations.lookupPtr(entities.KindLocation, src.LocationID); err != nil {
			return counts, err
		}
		if c.CharacterID, err = characters.lookupPtr(entities.KindCharacter, src.CharacterID); err != nil {
			return counts, err
		}
		if err := tx.CreateContainer(ctx, &c); err != nil {
			return counts, err
		}
		containers[src.ID] = c.ID
		counts.Containers++
	}

	for _, src := range snap.items {
		it := *src
		it.ID = 0
		it.WorldID = worldID
		it.Properties = src.Properties.Clone()
		var err error
		if it.LocationID, err = locations.lookupPtr(entities.KindLocation, src.LocationID); err != nil {
			return counts, err
		}
		if it.CharacterID, err = characters.lookupPtr(entities.KindCharacter, src.CharacterID); err != nil {
			return counts, err
		}
		if it.ContainerID, err = containers.lookupPtr(entities.KindContainer, src.ContainerID); err != nil {
			return counts, err
		}
		if err := tx.CreateItem(ctx, &it); err != nil {
			return counts, err
		}
		items[src.ID] = it.ID
		counts.Items++
	}

	for _, src := range snap.connections {
		c := *src
		c.ID = 0
		c.WorldID = worldID
		var err error
		if c.FromLocationID, err = locations.lookup(entities.KindLocation, src.FromLocationID); err != nil {
			return counts, err
		}
		if c.ToLocationID, err = locations.lookup(entities.KindLocation, src.ToLocationID); err != nil {
			return counts, err
		}
		if src.RequiredItemID != nil {
			// keys from outside the world are dropped rather than shared
			c.RequiredItemID = nil
			if id, ok := items[*src.RequiredItemID]; ok {
				c.RequiredItemID = &id
			}
		}
		if err := tx.CreateConnection(ctx, &c); err != nil {
			return counts, err
		}
		counts.Connections++
	}

	return counts, nil
}
